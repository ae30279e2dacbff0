package walker

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestWalk tests Swift file discovery and exclusion rules.
func TestWalk(t *testing.T) {
	t.Parallel()

	t.Run("discovers swift files sorted by relative path", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "Features/Profile/ProfileView.swift", "struct ProfileView {}\n")
		writeFile(t, root, "App/AppDelegate.swift", "class AppDelegate {}\n")
		writeFile(t, root, "README.md", "# notes\n")

		w := New(WithLogger(discardLogger()))
		result, err := w.Walk(context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(result.Sources))
		}
		if result.Sources[0].Path != "App/AppDelegate.swift" {
			t.Errorf("expected App/AppDelegate.swift first, got %s", result.Sources[0].Path)
		}
		if result.Sources[1].Path != "Features/Profile/ProfileView.swift" {
			t.Errorf("unexpected second source %s", result.Sources[1].Path)
		}
	})

	t.Run("skips excluded directories", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "Pods/Vendor.swift", "class Vendor {}\n")
		writeFile(t, root, "DerivedData/Gen.swift", "class Gen {}\n")
		writeFile(t, root, "Generated/Assets.swift", "enum Assets {}\n")
		writeFile(t, root, "Core/Service.swift", "class Service {}\n")

		w := New(
			WithExcludedDirs([]string{"Generated"}),
			WithLogger(discardLogger()),
		)
		result, err := w.Walk(context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Sources) != 1 || result.Sources[0].Path != "Core/Service.swift" {
			t.Errorf("expected only Core/Service.swift, got %+v", result.Sources)
		}
	})

	t.Run("skips excluded files without counting them", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "AppTheme.swift", "enum AppTheme {}\n")
		writeFile(t, root, "View.swift", "struct View {}\n")

		w := New(WithLogger(discardLogger()))
		result, err := w.Walk(context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Sources) != 1 || result.Sources[0].Path != "View.swift" {
			t.Errorf("expected only View.swift, got %+v", result.Sources)
		}
		if result.Skipped != 0 {
			t.Errorf("excluded files should not count as skipped, got %d", result.Skipped)
		}
	})

	t.Run("counts oversize files as skipped", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "Big.swift", "// this content exceeds the tiny limit\n")
		writeFile(t, root, "Small.swift", "let a = 1\n")

		w := New(WithMaxFileSize(16), WithLogger(discardLogger()))
		result, err := w.Walk(context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Sources) != 1 || result.Sources[0].Path != "Small.swift" {
			t.Errorf("expected only Small.swift, got %+v", result.Sources)
		}
		if result.Skipped != 1 {
			t.Errorf("expected 1 skipped, got %d", result.Skipped)
		}
	})

	t.Run("counts invalid UTF-8 as skipped", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := filepath.Join(root, "Binary.swift")
		if err := os.WriteFile(path, []byte{0x80, 0x81, 0x82}, 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		w := New(WithLogger(discardLogger()))
		result, err := w.Walk(context.Background(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Sources) != 0 || result.Skipped != 1 {
			t.Errorf("expected 0 sources and 1 skipped, got %d/%d", len(result.Sources), result.Skipped)
		}
	})

	t.Run("errors on missing root", func(t *testing.T) {
		t.Parallel()
		w := New(WithLogger(discardLogger()))
		if _, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing root")
		}
	})

	t.Run("errors on file root", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := writeFile(t, root, "File.swift", "let a = 1\n")

		w := New(WithLogger(discardLogger()))
		if _, err := w.Walk(context.Background(), path); err == nil {
			t.Error("expected error for non-directory root")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFile(t, root, "View.swift", "struct View {}\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := New(WithLogger(discardLogger()))
		if _, err := w.Walk(ctx, root); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

// TestDecodeText tests encoding normalization.
func TestDecodeText(t *testing.T) {
	t.Parallel()

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		t.Parallel()
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let a = 1")...)
		text, err := decodeText(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "let a = 1" {
			t.Errorf("expected BOM stripped, got %q", text)
		}
	})

	t.Run("decodes UTF-16 LE with BOM", func(t *testing.T) {
		t.Parallel()
		src := "let label = \"héllo\""
		data := []byte{0xFF, 0xFE}
		for _, u := range utf16.Encode([]rune(src)) {
			data = binary.LittleEndian.AppendUint16(data, u)
		}

		text, err := decodeText(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != src {
			t.Errorf("expected %q, got %q", src, text)
		}
	})

	t.Run("decodes UTF-16 BE with BOM", func(t *testing.T) {
		t.Parallel()
		src := "struct View {}"
		data := []byte{0xFE, 0xFF}
		for _, u := range utf16.Encode([]rune(src)) {
			data = binary.BigEndian.AppendUint16(data, u)
		}

		text, err := decodeText(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != src {
			t.Errorf("expected %q, got %q", src, text)
		}
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		t.Parallel()
		if _, err := decodeText([]byte{0xC3, 0x28}); err == nil {
			t.Error("expected error for invalid UTF-8")
		}
	})
}

// TestSource tests Source accessors.
func TestSource(t *testing.T) {
	t.Parallel()

	t.Run("splits lines", func(t *testing.T) {
		t.Parallel()
		src := NewSource("Core/A.swift", "/abs/Core/A.swift", "one\ntwo\nthree")
		if len(src.Lines) != 3 || src.Lines[1] != "two" {
			t.Errorf("unexpected lines %v", src.Lines)
		}
	})

	t.Run("stem drops directory and extension", func(t *testing.T) {
		t.Parallel()
		src := NewSource("Features/Login/LoginView.swift", "", "")
		if got := src.Stem(); got != "LoginView" {
			t.Errorf("expected LoginView, got %q", got)
		}
	})

	t.Run("layer is first path component", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			path string
			want string
		}{
			{"Core/Network/Client.swift", "Core"},
			{"App/Main.swift", "App"},
			{"Root.swift", ""},
		}
		for _, tc := range testCases {
			src := NewSource(tc.path, "", "")
			if got := src.Layer(); got != tc.want {
				t.Errorf("Layer(%q) = %q, want %q", tc.path, got, tc.want)
			}
		}
	})
}
