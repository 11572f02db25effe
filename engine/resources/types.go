package resources

import (
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima/engine/skeleton"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a resource the tools know about. */
	ResourceTypeNone ResourceType = iota
	/** @brief Binary motion container (.motn). */
	ResourceTypeMotion
	/** @brief YAML interchange document of any format. */
	ResourceTypeInterchange
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeMotion:
		return "motion"
	case ResourceTypeInterchange:
		return "interchange"
	default:
		return "none"
	}
}

// TypeForPath classifies a file by its extension.
func TypeForPath(path string) ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".motn":
		return ResourceTypeMotion
	case ".yaml", ".yml":
		return ResourceTypeInterchange
	default:
		return ResourceTypeNone
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The kind of file the resource was loaded from. */
	Type ResourceType
	/** @brief The size of the resource file in bytes. */
	DataSize uint64
	/**
	 * @brief The resource data: *motion.Container, []*anim.Animation
	 * or *skeleton.Rig depending on the file.
	 */
	Data interface{}
}

/** @brief Parameters used when loading a resource. */
type LoadParams struct {
	/** @brief Name given to the resource. Defaults to the file name. */
	Name string
	/** @brief Resolves bone indices of containers without their own bone table. */
	Skeleton skeleton.Skeleton
}
