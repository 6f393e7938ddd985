package chat

import (
	"context"
	"fmt"
	"sync"
)

// MockMessenger is a simple messenger used in tests.
type MockMessenger struct {
	Messages map[string][]string
	FailFor  map[string]bool
	mu       sync.Mutex
}

// NewMockMessenger creates a new MockMessenger.
func NewMockMessenger() *MockMessenger {
	return &MockMessenger{
		Messages: make(map[string][]string),
		FailFor:  make(map[string]bool),
	}
}

// DirectMessage records the message or returns an error if configured to fail.
func (m *MockMessenger) DirectMessage(_ context.Context, email, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[email] {
		return fmt.Errorf("delivery failed")
	}
	m.Messages[email] = append(m.Messages[email], text)
	return nil
}

// Sent returns the messages delivered to the given recipient.
func (m *MockMessenger) Sent(email string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages[email]...)
}
