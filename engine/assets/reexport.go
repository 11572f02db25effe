package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/interchange"
	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/resources"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

// ReExporter writes the interchange form of every changed motion
// container. Output goes to OutputDir, or next to the container when empty.
type ReExporter struct {
	Manager   *AssetManager
	OutputDir string
	Skeleton  skeleton.Skeleton
}

// Handle is meant to be passed to AssetManager.OnChange.
func (re *ReExporter) Handle(info AssetInfo) {
	if info.Type != resources.ResourceTypeMotion {
		return
	}
	out, err := re.Export(info.Path)
	if err != nil {
		core.LogError("re-export of %s failed: %s", info.Path, err)
		return
	}
	core.LogInfo("re-exported %s to %s", info.Path, out)
}

// Export loads the container at path and writes its YAML document. It
// returns the written path.
func (re *ReExporter) Export(path string) (string, error) {
	res, err := re.Manager.LoadAsset(path, resources.LoadParams{Skeleton: re.Skeleton})
	if err != nil {
		return "", err
	}
	defer re.Manager.UnloadAsset(res)

	c, ok := res.Data.(*motion.Container)
	if !ok {
		return "", fmt.Errorf("%s did not load as a motion container", path)
	}
	data, err := interchange.MarshalMotion(c)
	if err != nil {
		return "", err
	}

	dir := re.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".yaml")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}
