package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "channel.discord", "metadata.drive", "sync.shadow").
type ModuleID string

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every module implements. Behavior is
// added through the optional lifecycle interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
