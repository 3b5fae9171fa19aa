package trace

import (
	"fmt"

	"github.com/cavusmuhammed68/ICC-IEEE/core/factory"
)

// StoreConfig holds the settings shared by the file based backends.
type StoreConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var storeRegistry = factory.NewRegistry[Store]()

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates a Store from cfg. An empty type disables persistence.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" || cfg.Type == "none" {
		return NopStore{}, nil
	}
	return storeRegistry.Create(cfg)
}

func decodeStoreConfig(conf map[string]any) (StoreConfig, error) {
	var sc StoreConfig
	if err := factory.Decode(conf, &sc); err != nil {
		return sc, err
	}
	if sc.Path == "" {
		return sc, fmt.Errorf("trace store: path is required")
	}
	return sc, nil
}

func init() {
	_ = RegisterStore("jsonl", func(conf map[string]any) (Store, error) {
		sc, err := decodeStoreConfig(conf)
		if err != nil {
			return nil, err
		}
		if sc.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(sc.Path, sc.MaxSizeMB, sc.MaxBackups, sc.MaxAgeDays)
		}
		return NewJSONLStore(sc.Path)
	})
	_ = RegisterStore("sqlite", func(conf map[string]any) (Store, error) {
		sc, err := decodeStoreConfig(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(sc.Path)
	})
}
