package discord

import (
	"fmt"
	"net/url"
)

// Default gateway intents: GUILDS | GUILD_MESSAGES | MESSAGE_CONTENT.
// Message content is a privileged intent and must also be enabled on the
// bot's application page.
const defaultIntents = 1<<0 | 1<<9 | 1<<15

// Config holds the Discord channel configuration.
type Config struct {
	Token             string   `yaml:"token"`
	APIURL            string   `yaml:"api_url"`
	Intents           int      `yaml:"intents"`
	WatchChannels     []string `yaml:"watch_channels"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.APIURL == "" {
		c.APIURL = "https://discord.com/api/v10"
	}
	if c.Intents == 0 {
		c.Intents = defaultIntents
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 25
	}
}

// validate checks configuration field constraints beyond basic presence
// checks. It is called from Discord.Validate after defaults have been
// applied.
func (c *Config) validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("discord: api_url must be a valid http/https URL, got %q", c.APIURL)
		}
	}

	if c.Intents < 0 {
		return fmt.Errorf("discord: intents must be non-negative, got %d", c.Intents)
	}

	if c.RequestsPerSecond < 0 || c.RequestsPerSecond > 50 {
		return fmt.Errorf("discord: requests_per_second must be 0-50, got %g", c.RequestsPerSecond)
	}

	return nil
}
