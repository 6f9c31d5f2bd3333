package drive

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/okkema/linkshade/internal/core"
	"github.com/okkema/linkshade/internal/metadata"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Drive{})
}

// Compile-time interface guards.
var (
	_ metadata.Provider = (*Client)(nil)
	_ core.Configurable = (*Drive)(nil)
	_ core.Provisioner  = (*Drive)(nil)
	_ core.Validator    = (*Drive)(nil)
)

// Config holds the Drive metadata module configuration.
type Config struct {
	APIKey      string `yaml:"api_key"`
	AccessToken string `yaml:"access_token"`
	APIURL      string `yaml:"api_url"`
}

// Drive is the Google Drive metadata provider module. It registers its
// client as the metadata service the synchronization module resolves.
type Drive struct {
	config Config
	client *Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (d *Drive) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "metadata.drive",
		New: func() core.Module { return &Drive{} },
	}
}

// Configure implements core.Configurable.
func (d *Drive) Configure(node *yaml.Node) error {
	if err := node.Decode(&d.config); err != nil {
		return fmt.Errorf("drive: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (d *Drive) Provision(ctx *core.AppContext) error {
	d.logger = ctx.Logger
	d.client = NewClient(d.config.APIKey, d.config.AccessToken, d.config.APIURL)
	ctx.RegisterService("metadata.provider", d.client)
	return nil
}

// Validate implements core.Validator.
func (d *Drive) Validate() error {
	if d.config.APIKey == "" && d.config.AccessToken == "" {
		return errors.New("drive: either api_key or access_token is required")
	}
	if d.config.APIKey != "" && d.config.AccessToken != "" {
		return errors.New("drive: api_key and access_token are mutually exclusive")
	}
	if d.config.APIURL != "" {
		u, err := url.Parse(d.config.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("drive: api_url must be a valid http/https URL, got %q", d.config.APIURL)
		}
	}
	return nil
}
