package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// GroupRule assigns Name to every conversation whose title matches Pattern,
// a case-insensitive glob. Rules are tried in order; the first match wins.
type GroupRule struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

type Config struct {
	ServerURL             string      `json:"server_url"`
	LinkBase              string      `json:"link_base"`
	DiscardStaleResponses bool        `json:"discard_stale_responses"`
	LogLevel              string      `json:"log_level"` // "debug", "info", "warn", "error"
	ExportPath            string      `json:"export_path,omitempty"`
	ListenAddr            string      `json:"listen_addr"`
	SearchLimit           int         `json:"search_limit"`
	Groups                []GroupRule `json:"groups,omitempty"`
}

// AddGroup appends a rule. Returns false if a rule with the same pattern exists.
func (c *Config) AddGroup(name, pattern string) bool {
	for _, g := range c.Groups {
		if strings.EqualFold(g.Pattern, pattern) {
			return false
		}
	}
	c.Groups = append(c.Groups, GroupRule{Name: name, Pattern: pattern})
	return true
}

// RemoveGroup drops every rule assigning name. Returns false if none did.
func (c *Config) RemoveGroup(name string) bool {
	kept := c.Groups[:0]
	for _, g := range c.Groups {
		if g.Name != name {
			kept = append(kept, g)
		}
	}
	removed := len(kept) != len(c.Groups)
	c.Groups = kept
	return removed
}

func DefaultConfig() Config {
	return Config{
		ServerURL:             "http://127.0.0.1:5000",
		LinkBase:              "https://chat.openai.com/c/",
		DiscardStaleResponses: true,
		LogLevel:              "info",
		ListenAddr:            "127.0.0.1:5000",
		SearchLimit:           100,
	}
}

func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "convo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "convo")
}

// DataDir holds the index database and the log file.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "convo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "convo")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func Load() Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultConfig().SearchLimit
	}
	return cfg
}

func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0o644)
}
