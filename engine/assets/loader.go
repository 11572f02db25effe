package assets

import "github.com/spaghettifunk/anima/engine/resources"

type Loader interface {
	Load(path string, params resources.LoadParams) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
