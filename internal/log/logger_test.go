package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := New(h)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected output to contain 'key=value', got: %s", output)
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger)
		contains string
	}{
		{
			name:     "Debug",
			logFunc:  func(l Logger) { l.Debug("debug msg") },
			contains: "debug msg",
		},
		{
			name:     "Info",
			logFunc:  func(l Logger) { l.Info("info msg") },
			contains: "info msg",
		},
		{
			name:     "Warn",
			logFunc:  func(l Logger) { l.Warn("warn msg") },
			contains: "warn msg",
		},
		{
			name:     "Error",
			logFunc:  func(l Logger) { l.Error("error msg") },
			contains: "error msg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			logger := New(h)

			tt.logFunc(logger)

			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("expected output to contain %q, got: %s", tt.contains, output)
			}
			if !strings.Contains(output, strings.ToUpper(tt.name)) {
				t.Errorf("expected output to contain level %q, got: %s", tt.name, output)
			}
		})
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := New(h)

	// Create child logger with context
	childLogger := logger.With("repo", "zava/chat-app", "secret", "AZURE_CLIENT_ID")
	childLogger.Info("publishing secret")

	output := buf.String()
	if !strings.Contains(output, "repo=zava/chat-app") {
		t.Errorf("expected output to contain 'repo=zava/chat-app', got: %s", output)
	}
	if !strings.Contains(output, "secret=AZURE_CLIENT_ID") {
		t.Errorf("expected output to contain 'secret=AZURE_CLIENT_ID', got: %s", output)
	}
	if !strings.Contains(output, "publishing secret") {
		t.Errorf("expected output to contain 'publishing secret', got: %s", output)
	}
}

func TestLoggerWithChaining(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := New(h)

	// Chain multiple With calls
	childLogger := logger.With("tool", "gh").With("op", "secret-set")
	childLogger.Debug("starting")

	output := buf.String()
	if !strings.Contains(output, "tool=gh") {
		t.Errorf("expected output to contain 'tool=gh', got: %s", output)
	}
	if !strings.Contains(output, "op=secret-set") {
		t.Errorf("expected output to contain 'op=secret-set', got: %s", output)
	}
}

func TestNewNoop(t *testing.T) {
	logger := NewNoop()

	// These should not panic
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	// With should return a noop logger
	child := logger.With("key", "value")
	child.Info("should not panic")
}

func TestNoopLoggerWith(t *testing.T) {
	logger := NewNoop()

	child := logger.With("key", "value")

	_, ok := child.(noopLogger)
	if !ok {
		t.Error("expected With() on noopLogger to return noopLogger")
	}
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	// Default should work (initially noop)
	Default().Info("should not panic")

	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	customLogger := New(h)
	SetDefault(customLogger)

	Default().Info("custom logger message")

	output := buf.String()
	if !strings.Contains(output, "custom logger message") {
		t.Errorf("expected custom logger to be used, got: %s", output)
	}
}

func TestDefaultLoggerConcurrency(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				Default().Info("concurrent read")
			}
			done <- true
		}()
		go func() {
			for j := 0; j < 100; j++ {
				SetDefault(NewNoop())
			}
			done <- true
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := New(h)

	logger.Debug("filtered debug")
	logger.Info("filtered info")
	logger.Warn("visible warn")

	output := buf.String()
	if strings.Contains(output, "filtered debug") {
		t.Errorf("expected debug to be filtered at WARN level, got: %s", output)
	}
	if strings.Contains(output, "filtered info") {
		t.Errorf("expected info to be filtered at WARN level, got: %s", output)
	}
	if !strings.Contains(output, "visible warn") {
		t.Errorf("expected warn to pass the WARN level filter, got: %s", output)
	}
}
