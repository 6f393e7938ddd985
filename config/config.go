package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/roster"
	"github.com/rotaops/rota/infra/chat"
	"github.com/rotaops/rota/infra/notion"
	"github.com/rotaops/rota/infra/store"
)

type Config struct {
	Store        store.Config     `json:"store"`
	Schedule     roster.Config    `json:"schedule"`
	Availability PluginConfig     `json:"availability"`
	Journal      PluginConfig     `json:"journal"`
	Chat         chat.Config      `json:"chat"`
	Presence     chat.RedisConfig `json:"presence"`
	Notion       notion.Config    `json:"notion"`
	Metrics      metrics.Config   `json:"metrics"`
	API          APIConfig        `json:"api"`
	Identity     IdentityConfig   `json:"identity"`
	Sentry       SentryConfig     `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("ROTA_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rota_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset sections with production defaults.
func (c *Config) SetDefaults() {
	c.Store.SetDefaults()
	c.Schedule.SetDefaults()
	if c.Availability.Type == "" {
		c.Availability.Type = "none"
	}
	if c.Journal.Type == "" {
		c.Journal.Type = "jsonl"
		if c.Journal.Conf == nil {
			c.Journal.Conf = map[string]any{"path": "rota-journal.log"}
		}
	}
}
