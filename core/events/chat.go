package events

import "time"

// DirectMessageSent is published after every chat delivery attempt,
// successful or not.
type DirectMessageSent struct {
	Recipient    string
	Attempts     int
	Acknowledged bool
	Latency      time.Duration
	Err          error
}

// PresencePushed is published after the on-call window is written to
// presence storage.
type PresencePushed struct {
	Dates int
	Keys  int
}
