package notifier

import (
	"context"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a short user-visible message (a toast).
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier delivers notifications. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
