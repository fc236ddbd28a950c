package logging

import (
	"log/slog"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	cases := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Setenv("TOKENVEST_LOG_LEVEL", tc.value)
		if got := levelFromEnv(); got != tc.want {
			t.Fatalf("TOKENVEST_LOG_LEVEL=%q: got %v, want %v", tc.value, got, tc.want)
		}
	}
}
