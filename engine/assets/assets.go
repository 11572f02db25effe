package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima/engine/assets/loaders"
	"github.com/spaghettifunk/anima/engine/containers"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/resources"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the motion and interchange files under a directory
// and reports changed files once they have been quiet for the debounce
// interval.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool

	debounce time.Duration
	pending  *containers.RingQueue[string]
	onChange func(AssetInfo)
}

// NewAssetManager creates a manager whose change backlog holds up to
// backlog files.
func NewAssetManager(debounce time.Duration, backlog int) (*AssetManager, error) {
	if backlog < 1 {
		return nil, fmt.Errorf("asset backlog must hold at least one file, got %d", backlog)
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		debounce: debounce,
		pending:  containers.NewRingQueue[string](backlog),
	}
	am.registerLoader(resources.ResourceTypeMotion, &loaders.BinaryLoader{})
	am.registerLoader(resources.ResourceTypeInterchange, &loaders.InterchangeLoader{})
	return am, nil
}

// OnChange sets the callback run for every created or modified asset. It
// must be set before Initialize.
func (am *AssetManager) OnChange(fn func(AssetInfo)) {
	am.onChange = fn
}

// Initialize indexes assetsDir and starts watching it and its
// sub-directories.
func (am *AssetManager) Initialize(assetsDir string) error {
	if err := am.addRecursive(assetsDir); err != nil {
		return err
	}
	go am.start()
	return nil
}

// Shutdown stops watching and waits for the event loop to exit.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrClosed
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	select {
	case <-am.stopped:
	case <-time.After(time.Second):
	}
	return am.fsnotify.Close()
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Assets returns the indexed assets ordered by path.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset loads an indexed asset with the loader of its type.
func (am *AssetManager) LoadAsset(path string, params resources.LoadParams) (*resources.Resource, error) {
	path = filepath.Clean(path)

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, params)
}

func (am *AssetManager) UnloadAsset(res *resources.Resource) error {
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", res.Type)
	}
	return loader.Unload(res)
}

func (am *AssetManager) start() {
	defer close(am.stopped)

	var flush <-chan time.Time
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogError("watching %s: %s", e.Name, err)
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) {
					am.enqueue(e.Name)
					flush = time.After(am.debounce)
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-flush:
			flush = nil
			am.flush()

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) enqueue(path string) {
	path = filepath.Clean(path)
	if am.pending.Contains(path, func(a, b string) bool { return a == b }) {
		return
	}
	if err := am.pending.Enqueue(path); err != nil {
		core.LogWarn("change backlog full, dropping %s", path)
	}
}

// flush reports every pending change in arrival order.
func (am *AssetManager) flush() {
	for !am.pending.IsEmpty() {
		path, _ := am.pending.Dequeue()
		am.mutex.RLock()
		info, ok := am.assets[path]
		am.mutex.RUnlock()
		if !ok || am.onChange == nil {
			continue
		}
		am.onChange(info)
	}
}

// watchRecursive adds all directories under the given one to the watch
// list and indexes the files found.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes a created or modified file and reports whether
// it is an asset.
func (am *AssetManager) handleFileEvent(path string) bool {
	path = filepath.Clean(path)
	assetType := resources.TypeForPath(path)
	if assetType == resources.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	prev := am.assets[path]
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: prev.LastLoaded,
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}
