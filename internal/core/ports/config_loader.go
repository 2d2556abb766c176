package ports

import "go.trai.ch/taskhistory/internal/core/domain"

// ConfigLoader defines the interface for loading the cache configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration starting at cwd and walking up.
	// Defaults rooted at cwd are returned when no configuration file exists.
	Load(cwd string) (*domain.Config, error)
}
