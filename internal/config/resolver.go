package config

import "slices"

// Resolve returns a sorted list of module IDs from the configuration.
// The deterministic order doubles as the provisioning order the wiring
// depends on: channel.* modules register their services before
// metadata.*, and both before sync.* resolves them.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
