// Package config loads server configuration: built-in defaults, then a YAML
// file, then DESKFOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"deskfolio.dev/internal/desktop/content"
	"deskfolio.dev/internal/desktop/modules"
	"deskfolio.dev/internal/desktop/shell"
)

const (
	BackendSQLite = "sqlite"
	BackendNone   = "none"

	maxQueueLimit = 64
)

type Config struct {
	Listen    string        `yaml:"listen"`
	ClueTotal int           `yaml:"clue_total"`
	Lang      string        `yaml:"lang"`
	Session   SessionSpec   `yaml:"session"`
	Journal   JournalSpec   `yaml:"journal"`
	Index     IndexSpec     `yaml:"index"`
	Admin     AdminSpec     `yaml:"admin"`
	Content   []ContentSpec `yaml:"content"`
}

type SessionSpec struct {
	MaxQueue int `yaml:"max_queue"`
	// MaxSessions caps live sessions; 0 means no cap.
	MaxSessions int `yaml:"max_sessions"`
}

type JournalSpec struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type IndexSpec struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

type AdminSpec struct {
	Enabled bool `yaml:"enabled"`
}

// ContentSpec is one lobby menu entry.
type ContentSpec struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
}

// Load reads path over the defaults. An empty or missing path yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg.Normalize()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Listen:    ":8080",
		ClueTotal: modules.TotalClues,
		Lang:      "en",
		Session: SessionSpec{
			MaxQueue:    8,
			MaxSessions: 256,
		},
		Journal: JournalSpec{
			Enabled: false,
			Dir:     "journal",
		},
		Index: IndexSpec{
			Backend: BackendSQLite,
		},
		Admin: AdminSpec{Enabled: true},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Listen = strings.TrimSpace(c.Listen)
	c.Lang = strings.TrimSpace(c.Lang)
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.Session.MaxQueue == 0 {
		c.Session.MaxQueue = 8
	}
	c.Journal.Dir = strings.TrimSpace(c.Journal.Dir)
	c.Index.Backend = strings.ToLower(strings.TrimSpace(c.Index.Backend))
	if c.Index.Backend == "" {
		c.Index.Backend = BackendSQLite
	}
	if strings.TrimSpace(c.Index.DSN) == "" {
		c.Index.DSN = ":memory:"
	}
	if len(c.Content) == 0 {
		for _, e := range modules.Catalog(modules.Deps{}) {
			c.Content = append(c.Content, ContentSpec{Key: string(e.Key), Title: e.Title})
		}
	}
	for i := range c.Content {
		c.Content[i].Key = strings.TrimSpace(c.Content[i].Key)
		c.Content[i].Title = strings.TrimSpace(c.Content[i].Title)
		if c.Content[i].Title == "" {
			c.Content[i].Title = content.DeriveTitle(content.Key(c.Content[i].Key))
		}
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	if c.ClueTotal <= 0 {
		return fmt.Errorf("clue_total must be > 0")
	}
	if _, err := language.Parse(c.Lang); err != nil {
		return fmt.Errorf("lang %q: %w", c.Lang, err)
	}
	if c.Session.MaxQueue < 1 || c.Session.MaxQueue > maxQueueLimit {
		return fmt.Errorf("session.max_queue must be in [1, %d]", maxQueueLimit)
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions must be >= 0")
	}
	if c.Journal.Enabled && c.Journal.Dir == "" {
		return fmt.Errorf("journal.dir must not be empty when journal is enabled")
	}
	switch c.Index.Backend {
	case BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("index.backend must be %q or %q, got %q", BackendSQLite, BackendNone, c.Index.Backend)
	}
	seen := map[string]bool{}
	for i, e := range c.Content {
		if _, err := content.ParseKey(e.Key); err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
		if seen[e.Key] {
			return fmt.Errorf("content[%d]: duplicate key %q", i, e.Key)
		}
		seen[e.Key] = true
	}
	return nil
}

// LangTag returns the configured language, falling back to English.
func (c Config) LangTag() language.Tag {
	tag, err := language.Parse(c.Lang)
	if err != nil {
		return language.English
	}
	return tag
}

// Menu returns the lobby launcher entries in configured order.
func (c Config) Menu() []shell.MenuItem {
	out := make([]shell.MenuItem, 0, len(c.Content))
	for _, e := range c.Content {
		out = append(out, shell.MenuItem{Key: content.Key(e.Key), Title: e.Title})
	}
	return out
}

// CheckMenu verifies every menu key resolves in reg.
func (c Config) CheckMenu(reg *content.Registry) error {
	for _, e := range c.Content {
		if _, err := reg.Resolve(content.Key(e.Key)); err != nil {
			return fmt.Errorf("lobby menu: %w", err)
		}
	}
	return nil
}
