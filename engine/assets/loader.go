package assets

import "github.com/spaghettifunk/meshdraw/engine/resources"

type Loader interface {
	Load(path string, assetType resources.ResourceType) (*resources.Resource, error) // Resource.Data depends on the asset type
	Unload(*resources.Resource) error
}
