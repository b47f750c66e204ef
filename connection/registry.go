package connection

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps connection names to their config.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
}

func NewRegistry() *Registry {
	return &Registry{
		configs: map[string]Config{},
	}
}

// Configure registers cfg under cfg.Name, replacing any config already registered with that name.
func (r *Registry) Configure(cfg Config) error {
	if cfg.Name == "" {
		return errNoName
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[cfg.Name] = cfg.clone()
	return nil
}

// AddConfigs configures each of cfgs in order, stopping at the first invalid one.
func (r *Registry) AddConfigs(cfgs ...Config) error {
	for i, cfg := range cfgs {
		if err := r.Configure(cfg); err != nil {
			return fmt.Errorf("config %d: %w", i, err)
		}
	}
	return nil
}

func (r *Registry) Resolve(name string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[name]
	if !ok {
		return Config{}, fmt.Errorf("connection %q: %w", name, ErrUnknownConnection)
	}
	return cfg.clone(), nil
}

// Names returns the configured connection names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
