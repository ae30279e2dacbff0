package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSanitizeSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "let user = session.currentUser!",
			want:  "let user = session.currentUser!",
		},
		{
			name:  "newlines and tabs become spaces",
			input: "VStack {\n\tText(\"Hi\")",
			want:  "VStack {  Text(\"Hi\")",
		},
		{
			name:  "escape sequences dropped",
			input: "before\x1b[31mafter\x00",
			want:  "before[31mafter",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeSnippet(tt.input); got != tt.want {
				t.Errorf("SanitizeSnippet(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("long excerpt truncated on rune boundaries", func(t *testing.T) {
		t.Parallel()

		input := strings.Repeat("é", 200)
		got := SanitizeSnippet(input)

		runes := []rune(got)
		if len(runes) != maxSnippetLen {
			t.Errorf("truncated length = %d runes, want %d", len(runes), maxSnippetLen)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncated excerpt %q missing ellipsis", got)
		}
		if strings.ContainsRune(got[:len(got)-3], '�') {
			t.Error("truncation split a multi-byte rune")
		}
	})
}

func TestMaskLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single literal",
			input: `Text("Save Changes")`,
			want:  `Text("...")`,
		},
		{
			name:  "multiple literals",
			input: `Alert("Error", "Failed to save")`,
			want:  `Alert("...", "...")`,
		},
		{
			name:  "no literal unchanged",
			input: "let count = items.count",
			want:  "let count = items.count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MaskLiterals(tt.input); got != tt.want {
				t.Errorf("MaskLiterals(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSnippetHandler(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes snippet attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewSnippetHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("finding",
			slog.String("snippet", "bad\x1b[0mline"),
			slog.String("file", "App/Main.swift"))

		out := buf.String()
		if strings.Contains(out, "\x1b") {
			t.Errorf("output contains escape sequence: %q", out)
		}
		if !strings.Contains(out, "bad[0mline") {
			t.Errorf("output missing sanitized snippet: %q", out)
		}
		if !strings.Contains(out, "App/Main.swift") {
			t.Errorf("output missing untouched attribute: %q", out)
		}
	})

	t.Run("masks quoted literals in snippet attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewSnippetHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("finding",
			slog.String("snippet", `Text("Save Changes")`),
			slog.String("value", `Text("Save Changes")`))

		out := buf.String()
		if strings.Contains(out, `snippet="Text(\"Save Changes\")"`) {
			t.Errorf("snippet literal not masked: %q", out)
		}
		if !strings.Contains(out, `Save Changes`) {
			t.Errorf("value attribute should keep the literal: %q", out)
		}
	})

	t.Run("non snippet attributes pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewSnippetHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("scan", slog.Int("files", 42), slog.String("root", "/tmp\x00x"))

		out := buf.String()
		if !strings.Contains(out, "files=42") {
			t.Errorf("output missing int attribute: %q", out)
		}
	})

	t.Run("sanitizes inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewSnippetHandler(slog.NewTextHandler(&buf, nil)))

		logger.Info("finding", slog.Group("context",
			slog.String("excerpt", "a\x1bb")))

		if strings.Contains(buf.String(), "\x1b") {
			t.Errorf("group attribute not sanitized: %q", buf.String())
		}
	})

	t.Run("WithAttrs sanitizes persistent attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.New(NewSnippetHandler(slog.NewTextHandler(&buf, nil)))
		logger := base.With(slog.String("match", "x\x1by"))

		logger.Info("hit")

		if strings.Contains(buf.String(), "\x1b") {
			t.Errorf("WithAttrs attribute not sanitized: %q", buf.String())
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info message logged at warn level: %q", out)
		}
		if !strings.Contains(out, "shown") {
			t.Errorf("warn message missing: %q", out)
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("details")

		if !strings.Contains(buf.String(), "details") {
			t.Errorf("debug message missing: %q", buf.String())
		}
	})

	t.Run("json logger emits json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewJSONLogger(&buf, true)

		logger.Warn("scan failed", slog.String("snippet", "a\x1bb"))

		out := buf.String()
		if !strings.HasPrefix(out, "{") {
			t.Errorf("output not JSON: %q", out)
		}
		if strings.Contains(out, "\\u001b") || strings.Contains(out, "\x1b") {
			t.Errorf("escape sequence survived sanitization: %q", out)
		}
	})
}
