// Package sweep periodically replays channel history through the
// synchronization engine so state missed during downtime converges.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/core"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Config holds the sweep module configuration.
type Config struct {
	Schedule string   `yaml:"schedule"`
	Channels []string `yaml:"channels"`
	Depth    int      `yaml:"depth"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Schedule == "" {
		c.Schedule = "*/15 * * * *"
	}
	if c.Depth == 0 {
		c.Depth = 100
	}
}

// Module runs the resync job on a cron schedule. The engine and channel
// services are resolved at Start, after every module has been provisioned.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	scheduler *Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "sweep",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sweep: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(ctx.Logger)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if len(m.config.Channels) == 0 {
		return errors.New("sweep: at least one channel is required")
	}
	if m.config.Depth < 1 || m.config.Depth > 100 {
		return fmt.Errorf("sweep: depth must be 1-100, got %d", m.config.Depth)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(m.config.Schedule); err != nil {
		return fmt.Errorf("sweep: invalid schedule %q: %w", m.config.Schedule, err)
	}
	return nil
}

// Start implements core.Starter. Services are resolved here rather than in
// Provision because the module load order is alphabetical and "sweep"
// provisions before "sync.shadow" registers the engine.
func (m *Module) Start() error {
	svc, ok := m.appCtx.GetService("channel.service")
	if !ok {
		return errors.New("sweep: channel.service not found (is a channel module configured?)")
	}
	ch, ok := svc.(channel.Service)
	if !ok {
		return errors.New("sweep: channel.service does not implement channel.Service")
	}

	svc, ok = m.appCtx.GetService("shadow.engine")
	if !ok {
		return errors.New("sweep: shadow.engine not found (is the sync.shadow module configured?)")
	}
	handler, ok := svc.(EventHandler)
	if !ok {
		return errors.New("sweep: shadow.engine does not implement EventHandler")
	}

	job := &ResyncJob{
		Service:      ch,
		Handler:      handler,
		Channels:     m.config.Channels,
		Depth:        m.config.Depth,
		Logger:       m.logger,
		ScheduleExpr: m.config.Schedule,
	}
	if err := m.scheduler.RegisterJob(job); err != nil {
		return err
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}
