package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write | fsnotify.Chmod, OpWrite | OpChmod},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{0, 0},
	}
	for _, tt := range tests {
		if got := translate(tt.in); got != tt.want {
			t.Errorf("translate(%v) = %b, want %b", tt.in, got, tt.want)
		}
	}
}

func TestRunDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	unit := filepath.Join(dir, "unit.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(unit, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{unit}, WithDelay(150*time.Millisecond))
	if err != nil {
		t.Skip("fsnotify not supported: ", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := make(chan Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ev Event) error {
			events <- ev
			return nil
		})
	}()

	go func() {
		for i := 0; i < 5; i++ {
			_ = os.WriteFile(unit, []byte("{ }"), 0o644)
			_ = os.WriteFile(other, []byte("{ }"), 0o644)
			time.Sleep(10 * time.Millisecond)
		}
	}()

	select {
	case ev := <-events:
		if ev.Path != unit {
			t.Errorf("path = %s, want %s", ev.Path, unit)
		}
		if ev.Op&OpWrite == 0 {
			t.Errorf("op = %b", ev.Op)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for a change")
	}
	select {
	case ev := <-events:
		t.Errorf("burst was delivered more than once: %+v", ev)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != context.Canceled && err != context.DeadlineExceeded {
		t.Errorf("Run = %v", err)
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "unit.json")})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}
