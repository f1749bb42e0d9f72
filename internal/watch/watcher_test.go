package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/rules"
	"github.com/starford/notemover/internal/storage"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func watcherTestEnv(t *testing.T) (*storage.FS, *mover.Engine) {
	t.Helper()
	vault, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := vault.CreateDir("Projects"); err != nil {
		t.Fatal(err)
	}
	m, err := rules.NewMatcher([]rules.Rule{{Folder: "Projects", Tag: "#project"}}, rules.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ex := mover.NewExecutor(vault, mover.Options{}, nil, nil)
	return vault, mover.NewEngine(vault, m, ex)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatcher_MovesNewNote(t *testing.T) {
	vault, engine := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var results []mover.Result
	go Watch(ctx, engine, vault, quietLogger(), 50*time.Millisecond, func(res mover.Result) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)
	if err := os.MkdirAll(filepath.Join(vault.Root(), "Inbox"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(vault.Root(), "Inbox", "note.md"), []byte("#project\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return storage.ExistsAs(vault, "Projects/note.md", models.KindFile)
	}, "note was not moved by the watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range results {
			if r.Outcome == mover.Moved && r.To == "Projects/note.md" {
				return true
			}
		}
		return false
	}, "expected a moved result callback")
}

func TestWatcher_IgnoresUnmatchedNote(t *testing.T) {
	vault, engine := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var outcomes []mover.Outcome
	go Watch(ctx, engine, vault, quietLogger(), 50*time.Millisecond, func(res mover.Result) {
		mu.Lock()
		outcomes = append(outcomes, res.Outcome)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(vault.Root(), "plain.md"), []byte("nothing here\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(outcomes) > 0 && outcomes[0] == mover.SkippedNoDestination
	}, "expected a skipped evaluation")

	if !storage.ExistsAs(vault, "plain.md", models.KindFile) {
		t.Error("unmatched note should stay in place")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	vault, engine := watcherTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, engine, vault, quietLogger(), 0, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestHidden(t *testing.T) {
	vault, _ := watcherTestEnv(t)
	root := vault.Root()
	cases := map[string]bool{
		filepath.Join(root, "a.md"):                      false,
		filepath.Join(root, ".obsidian", "app.json"):     true,
		filepath.Join(root, "Inbox", ".notemover-tmp-1"): true,
		filepath.Join(root, "Inbox", "b.md"):             false,
	}
	for p, want := range cases {
		if got := hidden(vault, p); got != want {
			t.Errorf("hidden(%q) = %v, want %v", p, got, want)
		}
	}
}
