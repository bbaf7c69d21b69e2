package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{in: "", want: log.InfoLevel},
		{in: "debug", want: log.DebugLevel},
		{in: "WARN", want: log.WarnLevel},
		{in: "error", want: log.ErrorLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseLevel("chatty"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "component", "test")
	SetLogLevel(logger, log.WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=test") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestGenerators(t *testing.T) {
	if a, b := GenerateID(), GenerateID(); a == b || len(a) != 36 {
		t.Errorf("GenerateID() returned %q and %q", a, b)
	}

	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	if strings.ContainsAny(state, "+/=") {
		t.Errorf("state %q is not URL safe", state)
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(abs) = %s", got)
	}
	if got := ExpandPath("~/x"); strings.HasPrefix(got, "~") {
		t.Errorf("ExpandPath(~/x) = %s, want home expanded", got)
	}
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos string
		bin  string
	}{
		{goos: "darwin", bin: "open"},
		{goos: "linux", bin: "xdg-open"},
		{goos: "windows", bin: "rundll32"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "https://example.com")
			if err != nil {
				t.Fatalf("browserCommand() error = %v", err)
			}
			if cmd.Args[0] != tt.bin {
				t.Errorf("expected %s, got %s", tt.bin, cmd.Args[0])
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("url should be the last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := browserCommand("plan9", "https://example.com"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}
