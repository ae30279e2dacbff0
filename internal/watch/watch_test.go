package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/swiftaudit/swiftaudit/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		w := New()
		if w.debounce != config.DefaultWatchDebounce {
			t.Errorf("debounce = %v, want %v", w.debounce, config.DefaultWatchDebounce)
		}
		for _, dir := range config.DefaultExcludedDirs {
			if !w.excludedDirs[dir] {
				t.Errorf("default excluded dir %q not set", dir)
			}
		}
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		w := New(
			WithDebounce(2*time.Second),
			WithExcludedDirs([]string{"Generated"}),
			WithLogger(discardLogger()),
		)
		if w.debounce != 2*time.Second {
			t.Errorf("debounce = %v, want 2s", w.debounce)
		}
		if !w.excludedDirs["Generated"] {
			t.Error("WithExcludedDirs did not add Generated")
		}
		if !w.excludedDirs["DerivedData"] {
			t.Error("option wiped the default exclusions")
		}
	})

	t.Run("non positive debounce ignored", func(t *testing.T) {
		t.Parallel()

		w := New(WithDebounce(0))
		if w.debounce != config.DefaultWatchDebounce {
			t.Errorf("debounce = %v, want default", w.debounce)
		}
	})
}

func TestWatchableDir(t *testing.T) {
	t.Parallel()

	w := New(WithLogger(discardLogger()))
	dir := t.TempDir()

	sub := filepath.Join(dir, "Features")
	if err := os.Mkdir(sub, 0750); err != nil {
		t.Fatal(err)
	}
	hidden := filepath.Join(dir, ".cache")
	if err := os.Mkdir(hidden, 0750); err != nil {
		t.Fatal(err)
	}
	pods := filepath.Join(dir, "Pods")
	if err := os.Mkdir(pods, 0750); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "Main.swift")
	if err := os.WriteFile(file, []byte("import SwiftUI\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "plain directory", path: sub, want: true},
		{name: "hidden directory", path: hidden, want: false},
		{name: "excluded directory", path: pods, want: false},
		{name: "regular file", path: file, want: false},
		{name: "missing path", path: filepath.Join(dir, "gone"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := w.watchableDir(tt.path); got != tt.want {
				t.Errorf("watchableDir(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	t.Parallel()

	t.Run("returns on context cancellation", func(t *testing.T) {
		t.Parallel()

		w := New(WithLogger(discardLogger()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := w.Watch(ctx, []string{t.TempDir()}, func(context.Context) error {
			t.Error("onChange called without any file event")
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() error = %v, want context.Canceled", err)
		}
	})

	t.Run("missing root errors", func(t *testing.T) {
		t.Parallel()

		w := New(WithLogger(discardLogger()))
		err := w.Watch(context.Background(), []string{filepath.Join(t.TempDir(), "gone")}, nil)
		if err == nil {
			t.Error("Watch() expected error for missing root")
		}
	})

	t.Run("debounced callback after swift change", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := New(
			WithDebounce(50*time.Millisecond),
			WithLogger(discardLogger()),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fired := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- w.Watch(ctx, []string{dir}, func(context.Context) error {
				select {
				case fired <- struct{}{}:
				default:
				}
				return nil
			})
		}()

		// Give the watcher a moment to register before writing.
		time.Sleep(100 * time.Millisecond)
		if err := os.WriteFile(filepath.Join(dir, "HomeView.swift"),
			[]byte("import SwiftUI\n"), 0600); err != nil {
			t.Fatal(err)
		}

		select {
		case <-fired:
		case <-ctx.Done():
			t.Fatal("onChange never fired after Swift file change")
		}

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() error = %v, want context.Canceled", err)
		}
	})
}
