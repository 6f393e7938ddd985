// Package calendar sources out-of-office intervals from a shared Google
// Calendar. Events are matched to engineers by title; unmatched events are
// skipped because the oracle must stay fail-open.
package calendar

// Config defines the Google Calendar connection parameters.
type Config struct {
	CalendarID      string `json:"calendar_id"`
	CredentialsFile string `json:"credentials_file"`
	MaxRetries      int    `json:"max_retries"`
	BackoffMS       int    `json:"backoff_ms"`
}
