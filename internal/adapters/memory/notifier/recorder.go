package notifier

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
)

// Recorder is an in-memory notifier.Notifier that keeps the most recent
// notifications. It is safe for concurrent use.
type Recorder struct {
	mu    sync.RWMutex
	limit int
	items []notifier.Notification
}

// NewRecorder keeps at most limit notifications; limit <= 0 keeps 50.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(ctx context.Context, n notifier.Notification) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append([]notifier.Notification(nil), r.items[over:]...)
	}
}

// All returns recorded notifications, oldest first.
func (r *Recorder) All() []notifier.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]notifier.Notification(nil), r.items...)
}

func (r *Recorder) Last() (notifier.Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return notifier.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
