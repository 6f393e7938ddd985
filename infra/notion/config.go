// Package notion mirrors the effective schedule into a Notion database.
// The mirror is write-only and always scoped to a date range; schedule
// state never flows back from Notion.
package notion

// Config defines the Notion API connection parameters.
type Config struct {
	Token      string `json:"token"`
	DatabaseID string `json:"database_id"`
	BaseURL    string `json:"base_url"`
	MaxRetries int    `json:"max_retries"`
	BackoffMS  int    `json:"backoff_ms"`
}
