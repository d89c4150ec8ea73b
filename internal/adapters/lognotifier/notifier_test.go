package lognotifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	memnotifier "github.com/Overland-East-Bay/geo-projects-view/internal/adapters/memory/notifier"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
)

func TestNotifier_LogsAndForwards(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	rec := memnotifier.NewRecorder(5)
	n := New(log, rec)

	n.Notify(context.Background(), notifier.Notification{Level: notifier.LevelError, Message: "Failed to load projects"})

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, `message="Failed to load projects"`) {
		t.Fatalf("log output=%q", out)
	}
	if last, ok := rec.Last(); !ok || last.Message != "Failed to load projects" {
		t.Fatalf("not forwarded: %+v", last)
	}
}
