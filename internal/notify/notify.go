// Package notify delivers fire-and-forget notifications to users. Delivery failures are
// logged and never reported back to the caller.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindAssigned  Kind = "ASSIGNED"
	KindReminder  Kind = "REMINDER"
	KindGenerated Kind = "GENERATED"
)

// Notification is one event addressed to a user.
type Notification struct {
	UserID    string         `json:"userId"`
	Kind      Kind           `json:"kind"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Notifier is the capability the services depend on.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind Kind, payload map[string]any)
}

// Sink is a single delivery channel (log, NATS, Telegram).
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, string, Kind, map[string]any) {}
