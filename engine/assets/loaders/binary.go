package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/resources"
)

// BinaryLoader loads .motn containers.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, params resources.LoadParams) (*resources.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var opts []motion.Option
	if params.Skeleton != nil {
		opts = append(opts, motion.WithSkeleton(params.Skeleton))
	}
	c, err := motion.Read(buf, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &resources.Resource{
		Name:     resourceName(path, params),
		FullPath: path,
		Type:     resources.ResourceTypeMotion,
		DataSize: uint64(len(buf)),
		Data:     c,
	}, nil
}

func (bl *BinaryLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	return nil
}

func resourceName(path string, params resources.LoadParams) string {
	if params.Name != "" {
		return params.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
