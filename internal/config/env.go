package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverlay holds the DESKFOLIO_* variables. Unset variables stay nil and
// leave the loaded value alone.
type envOverlay struct {
	Listen         *string `env:"DESKFOLIO_LISTEN"`
	ClueTotal      *int    `env:"DESKFOLIO_CLUE_TOTAL"`
	Lang           *string `env:"DESKFOLIO_LANG"`
	MaxSessions    *int    `env:"DESKFOLIO_MAX_SESSIONS"`
	JournalEnabled *bool   `env:"DESKFOLIO_JOURNAL_ENABLED"`
	JournalDir     *string `env:"DESKFOLIO_JOURNAL_DIR"`
	IndexBackend   *string `env:"DESKFOLIO_INDEX_BACKEND"`
	IndexDSN       *string `env:"DESKFOLIO_INDEX_DSN"`
	AdminEnabled   *bool   `env:"DESKFOLIO_ADMIN_ENABLED"`
}

// ApplyEnv overlays environment variables onto cfg and re-validates it.
func ApplyEnv(cfg *Config) error {
	var o envOverlay
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setString(&cfg.Listen, o.Listen)
	setString(&cfg.Lang, o.Lang)
	setString(&cfg.Journal.Dir, o.JournalDir)
	setString(&cfg.Index.Backend, o.IndexBackend)
	setString(&cfg.Index.DSN, o.IndexDSN)
	if o.ClueTotal != nil {
		cfg.ClueTotal = *o.ClueTotal
	}
	if o.MaxSessions != nil {
		cfg.Session.MaxSessions = *o.MaxSessions
	}
	if o.JournalEnabled != nil {
		cfg.Journal.Enabled = *o.JournalEnabled
	}
	if o.AdminEnabled != nil {
		cfg.Admin.Enabled = *o.AdminEnabled
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
