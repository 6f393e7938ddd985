package roster

import "fmt"

// Config defines schedule generation settings.
type Config struct {
	// LookaheadDays is the window covered by one generation run.
	LookaheadDays int `json:"lookahead_days"`
	// GenerateIntervalSeconds is how often the daemon re-runs generation.
	GenerateIntervalSeconds int `json:"generate_interval_seconds"`
	// PresenceIntervalSeconds is how often the on-call window is pushed to
	// presence storage.
	PresenceIntervalSeconds int `json:"presence_interval_seconds"`
	// PresenceDays is the length of the pushed on-call window.
	PresenceDays int `json:"presence_days"`
}

// SetDefaults fills unset fields with production defaults.
func (c *Config) SetDefaults() {
	if c.LookaheadDays == 0 {
		c.LookaheadDays = 14
	}
	if c.GenerateIntervalSeconds == 0 {
		c.GenerateIntervalSeconds = 24 * 60 * 60
	}
	if c.PresenceIntervalSeconds == 0 {
		c.PresenceIntervalSeconds = 15 * 60
	}
	if c.PresenceDays == 0 {
		c.PresenceDays = 7
	}
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	if c.LookaheadDays < 0 {
		return fmt.Errorf("schedule: lookahead_days must not be negative, got %d", c.LookaheadDays)
	}
	if c.GenerateIntervalSeconds < 0 || c.PresenceIntervalSeconds < 0 {
		return fmt.Errorf("schedule: intervals must not be negative")
	}
	if c.PresenceDays < 0 {
		return fmt.Errorf("schedule: presence_days must not be negative, got %d", c.PresenceDays)
	}
	return nil
}
