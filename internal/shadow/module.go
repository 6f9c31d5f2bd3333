package shadow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/core"
	"github.com/okkema/linkshade/internal/metadata"
	"github.com/okkema/linkshade/pkg/chat"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Provisioner = (*Module)(nil)
	_ core.Validator   = (*Module)(nil)
)

// Module wires the engine between the channel and the metadata provider.
// It must be provisioned after both collaborators; the sorted module load
// order (channel.* < metadata.* < sync.*) guarantees that.
type Module struct {
	engine *Engine
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "sync.shadow",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner. It resolves the channel and the
// metadata provider from the service registry, builds the engine, and
// installs its handler as the channel inbox.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	svc, ok := ctx.GetService("channel.service")
	if !ok {
		return errors.New("sync: channel.service not found (is a channel module configured?)")
	}
	ch, ok := svc.(channel.Channel)
	if !ok {
		return errors.New("sync: channel.service does not implement channel.Channel")
	}

	svc, ok = ctx.GetService("metadata.provider")
	if !ok {
		return errors.New("sync: metadata.provider not found (is a metadata module configured?)")
	}
	provider, ok := svc.(metadata.Provider)
	if !ok {
		return errors.New("sync: metadata.provider does not implement metadata.Provider")
	}

	m.engine = NewEngine(ch, provider, ctx.Logger)
	ch.SetInbox(func(ev chat.Event) error {
		return m.engine.Handle(context.Background(), ev)
	})

	ctx.RegisterService("shadow.engine", m.engine)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.engine == nil {
		return errors.New("sync: engine not provisioned")
	}
	return nil
}
