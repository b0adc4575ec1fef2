package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"error", slog.LevelError, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" Debug ", slog.LevelDebug, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := GetLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLogLevel) {
					t.Errorf("GetLevel(%q) err = %v, want ErrUnknownLogLevel", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("GetLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	for _, f := range AllFormats {
		if got, err := GetFormat(strings.ToUpper(f)); err != nil || string(got) != f {
			t.Errorf("GetFormat(%q) = %q, %v", f, got, err)
		}
	}
	if got, _ := GetFormat(""); got != FormatText {
		t.Errorf("GetFormat(\"\") = %q, want text", got)
	}
	if _, err := GetFormat("xml"); !errors.Is(err, ErrUnknownLogFormat) {
		t.Errorf("GetFormat(xml) err = %v, want ErrUnknownLogFormat", err)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, Options{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(h)
	logger.Info("hidden")
	logger.Warn("visible", "url", "https://example.com/a.git")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "visible" || rec["url"] != "https://example.com/a.git" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewHandler_TextNoColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, Options{Level: "debug", Format: "text", NoColor: true})
	if err != nil {
		t.Fatal(err)
	}
	slog.New(h).Debug("cloning repository", "branch", "main")

	out := buf.String()
	if !strings.Contains(out, "cloning repository") || !strings.Contains(out, "branch=main") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("output contains ANSI escapes: %q", out)
	}
}

func TestNewHandler_InvalidArgument(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(&bytes.Buffer{}, Options{Level: "loud"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewHandler(&bytes.Buffer{}, Options{Format: "yaml"}); !errors.Is(err, ErrUnknownLogFormat) {
		t.Errorf("err = %v, want ErrUnknownLogFormat", err)
	}
}
