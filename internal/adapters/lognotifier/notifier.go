// Package lognotifier writes user notifications to a slog.Logger, optionally
// forwarding them to another notifier.
package lognotifier

import (
	"context"
	"log/slog"

	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
)

type Notifier struct {
	log  *slog.Logger
	next notifier.Notifier
}

// New logs each notification and then passes it to next, if non-nil.
func New(log *slog.Logger, next notifier.Notifier) *Notifier {
	return &Notifier{log: log, next: next}
}

func (n *Notifier) Notify(ctx context.Context, note notifier.Notification) {
	lvl := slog.LevelInfo
	if note.Level == notifier.LevelError {
		lvl = slog.LevelError
	}
	n.log.Log(ctx, lvl, "notification", "level", string(note.Level), "message", note.Message)
	if n.next != nil {
		n.next.Notify(ctx, note)
	}
}
