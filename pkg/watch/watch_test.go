package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/realtime"
)

func startWatcher(t *testing.T, debounce time.Duration) (*Watcher, <-chan realtime.ChangeEvent) {
	t.Helper()
	hub := realtime.NewHub(16)
	_, events := hub.Register()

	w, err := New(hub, debounce)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w, events
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "diary.db")
	w, events := startWatcher(t, 50*time.Millisecond)
	if err := w.AddDatabase(dbPath); err != nil {
		t.Fatalf("AddDatabase: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(dbPath+"-wal", []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ev := <-events:
		if ev.Kind != realtime.StoreChanged {
			t.Errorf("expected store change, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event")
	}

	select {
	case ev := <-events:
		t.Errorf("expected writes to be coalesced, got extra %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	w, events := startWatcher(t, 20*time.Millisecond)
	if err := w.AddDatabase(filepath.Join(dir, "diary.db")); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherSettingsFileReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	w, events := startWatcher(t, 20*time.Millisecond)
	if err := w.AddFile(path, realtime.SettingsChanged); err != nil {
		t.Fatal(err)
	}

	tmp := filepath.Join(dir, "settings.toml.tmp")
	if err := os.WriteFile(tmp, []byte(`sortMode = "date_asc"`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Kind != realtime.SettingsChanged {
			t.Errorf("expected settings change, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a settings change event")
	}
}
