package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/anima/engine/interchange"
	"github.com/spaghettifunk/anima/engine/resources"
)

// InterchangeLoader loads YAML documents of every interchange format.
type InterchangeLoader struct{}

func (il *InterchangeLoader) Load(path string, params resources.LoadParams) (*resources.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, err := interchange.Detect(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var data interface{}
	switch format {
	case interchange.FormatMotion:
		data, err = interchange.UnmarshalMotion(buf)
	case interchange.FormatNeutral:
		data, err = interchange.UnmarshalNeutral(buf)
	case interchange.FormatRig:
		data, err = interchange.UnmarshalRig(buf)
	default:
		err = fmt.Errorf("%w: %q", interchange.ErrWrongFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &resources.Resource{
		Name:     resourceName(path, params),
		FullPath: path,
		Type:     resources.ResourceTypeInterchange,
		DataSize: uint64(len(buf)),
		Data:     data,
	}, nil
}

func (il *InterchangeLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	return nil
}
