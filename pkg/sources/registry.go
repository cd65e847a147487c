package sources

import (
	"fmt"
	"sync"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds an adapter factory to the registry
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// Create creates a new adapter instance by type and name
func Create(adapterType, name string, cfg *config.AdapterConfig, logger *logging.Logger) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()

	key := fmt.Sprintf("%s.%s", adapterType, name)
	factory, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown adapter: %s", key)
	}

	return factory(cfg, logger)
}

// List returns all registered adapter names
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
