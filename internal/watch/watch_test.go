package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gfxhal/chip"
	"github.com/gogpu/gfxhal/settings"
)

type result struct {
	rec *settings.Record
	err error
}

// startWatch runs Settings on a fresh loader and returns its reload results.
func startWatch(t *testing.T, path string) <-chan result {
	t.Helper()
	caps, err := chip.Default(chip.Navi23)
	if err != nil {
		t.Fatal(err)
	}
	loader := settings.NewLoader(caps)
	if _, err := loader.Resolve(settings.EmptySource{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan result, 16)
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Settings(ctx, loader, path, Options{
			Debounce: 50 * time.Millisecond,
			OnReload: func(rec *settings.Record, err error) { results <- result{rec, err} },
			ready:    func() { close(ready) },
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Settings returned %v after cancel", err)
		}
	})

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("Settings exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return results
}

func waitResult(t *testing.T, results <-chan result) result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
		return result{}
	}
}

func TestSettingsReloadsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gfxhal.yaml")
	if err := os.WriteFile(path, []byte("primGroupSize: 16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	results := startWatch(t, path)

	for _, v := range []string{"32", "48", "64"} {
		if err := os.WriteFile(path, []byte("primGroupSize: "+v+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	r := waitResult(t, results)
	if r.err != nil {
		t.Fatalf("reload error: %v", r.err)
	}
	if got := r.rec.Settings().PrimGroupSize; got != 64 {
		t.Errorf("primGroupSize = %d, want 64 from the last write", got)
	}

	select {
	case extra := <-results:
		t.Errorf("second reload for one burst: %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSettingsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	results := startWatch(t, filepath.Join(dir, "gfxhal.yaml"))

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("primGroupSize: 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-results:
		t.Errorf("reload for an unrelated file: %+v", r)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSettingsReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gfxhal.yaml")
	results := startWatch(t, path)

	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if r := waitResult(t, results); r.err == nil {
		t.Error("reload of a YAML list succeeded")
	}

	// The watcher survives and picks up the fix.
	if err := os.WriteFile(path, []byte("primGroupSize: 96\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := waitResult(t, results)
	if r.err != nil {
		t.Fatalf("reload error: %v", r.err)
	}
	if got := r.rec.Settings().PrimGroupSize; got != 96 {
		t.Errorf("primGroupSize = %d, want 96", got)
	}
}

func TestSettingsMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "gfxhal.yaml")
	err := Settings(context.Background(), nil, path, Options{})
	if err == nil {
		t.Error("Settings on a missing directory succeeded")
	}
}

func TestChanges(t *testing.T) {
	target := filepath.Join(string(filepath.Separator)+"etc", "gfxhal.yaml")
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: target + ".bak", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := changes(tt.event, target); got != tt.want {
			t.Errorf("%s: changes = %v, want %v", tt.name, got, tt.want)
		}
	}
}
