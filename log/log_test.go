// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "warn")

	lg.Info("dropped")
	lg.Debugf("dropped %d", 1)
	lg.Warnf("kept %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record not JSON: %v", err)
	}
	if rec["msg"] != "kept 2" {
		t.Errorf("msg = %v, want %q", rec["msg"], "kept 2")
	}
	if _, ok := rec["callstack"]; !ok {
		t.Errorf("record is missing callstack: %v", rec)
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// Debug and Info on a nil logger are discarded; none of these may panic.
	lg.Debug("x")
	lg.Info("x")
	lg.Infof("%d", 1)
	if lg.With("k", "v") != nil {
		t.Errorf("With on nil logger should return nil")
	}
	if lg.Elapsed() != 0 {
		t.Errorf("Elapsed on nil logger should be 0")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "info").With(slog.String("airport", "KSEA"))
	lg.Info("loaded")

	if !strings.Contains(buf.String(), `"airport":"KSEA"`) {
		t.Errorf("expected attribute in output, got %q", buf.String())
	}
}
