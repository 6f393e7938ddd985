// Package chat defines the messaging ports used to notify engineers and
// publish the on-call window to the chat system's presence storage.
package chat

import (
	"context"
	"errors"

	"github.com/rotaops/rota/core/model"
)

// ErrAckTimeout is returned when a delivered message is not acknowledged
// by the chat system within the configured window.
var ErrAckTimeout = errors.New("chat: acknowledgment timeout")

// Messenger delivers a direct message to one engineer. Callers treat
// delivery as best-effort: a returned error is logged, never fatal.
type Messenger interface {
	DirectMessage(ctx context.Context, email, text string) error
}

// PresenceStore exposes the effective on-call window to the chat system.
type PresenceStore interface {
	// SetOnCall replaces the published window with the given assignments.
	SetOnCall(ctx context.Context, window []model.Assignment) error
}

// NopMessenger discards messages. Used when no chat bridge is configured.
type NopMessenger struct{}

func (NopMessenger) DirectMessage(context.Context, string, string) error { return nil }
