package config

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Provider caches the loaded configuration for a process. The zero value is
// not usable; construct with NewProvider.
type Provider struct {
	loader       *Loader
	explicitPath string

	current atomic.Pointer[Config]
	group   singleflight.Group
}

// NewProvider returns a provider that loads through loader. explicitPath is
// passed to every Load call.
func NewProvider(loader *Loader, explicitPath string) *Provider {
	if loader == nil {
		loader = NewLoader()
	}
	return &Provider{loader: loader, explicitPath: explicitPath}
}

// Get returns the cached config, loading it on first use. Concurrent first
// calls share one load.
func (p *Provider) Get() *Config {
	if cfg := p.current.Load(); cfg != nil {
		return cfg
	}
	v, _, _ := p.group.Do("load", func() (any, error) {
		if cfg := p.current.Load(); cfg != nil {
			return cfg, nil
		}
		cfg := p.loader.Load(p.explicitPath)
		p.current.Store(cfg)
		return cfg, nil
	})
	return v.(*Config)
}

// GetConfig returns the cached config, or reloads first when reload is set.
func (p *Provider) GetConfig(reload bool) *Config {
	if reload {
		return p.Reload()
	}
	return p.Get()
}

// Reload loads the config again and swaps it in.
func (p *Provider) Reload() *Config {
	v, _, _ := p.group.Do("reload", func() (any, error) {
		cfg := p.loader.Load(p.explicitPath)
		p.current.Store(cfg)
		return cfg, nil
	})
	return v.(*Config)
}

// Clear drops the cached config; the next Get loads again.
func (p *Provider) Clear() {
	p.current.Store(nil)
}

// Set installs cfg as the cached config.
func (p *Provider) Set(cfg *Config) {
	p.current.Store(cfg)
}

var defaultProvider atomic.Pointer[Provider]

func init() {
	defaultProvider.Store(NewProvider(nil, ""))
}

// SetDefaultProvider replaces the process-wide provider.
func SetDefaultProvider(p *Provider) {
	if p != nil {
		defaultProvider.Store(p)
	}
}

// GetConfig returns the process-wide config.
func GetConfig(reload bool) *Config {
	return defaultProvider.Load().GetConfig(reload)
}

// ClearCache drops the process-wide cached config.
func ClearCache() {
	defaultProvider.Load().Clear()
}
