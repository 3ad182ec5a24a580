package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/meshdraw/engine/core"
	"github.com/spaghettifunk/meshdraw/engine/resources"
)

// ConfigLoader reads TOML configuration files on top of the defaults.
type ConfigLoader struct{}

func (cl *ConfigLoader) Load(path string, assetType resources.ResourceType) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	cfg := core.DefaultConfig()
	if err := core.ParseConfig(data, cfg); err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     assetType,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (cl *ConfigLoader) Unload(res *resources.Resource) error {
	res.Data = nil
	return nil
}
