package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Profiles(t *testing.T) {
	tests := []struct {
		env, level string
		enabled    zapcore.Level
		disabled   zapcore.Level
	}{
		{"prod", "", zapcore.InfoLevel, zapcore.DebugLevel},
		{"local", "", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"test", "", zapcore.WarnLevel, zapcore.InfoLevel},
		{"cli", "", zapcore.WarnLevel, zapcore.InfoLevel},
		{"cli", "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("expected %s enabled", tt.enabled)
			}
			if l.Core().Enabled(tt.disabled) {
				t.Errorf("expected %s disabled", tt.disabled)
			}
		})
	}
}

func TestNewLogger_Errors(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("error")
	if err != nil || l != zapcore.ErrorLevel {
		t.Fatalf("ParseLevel(error) = %v, %v", l, err)
	}
}

func TestContext_WithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))
	ctx = With(ctx, zap.String("consumer", "ab12cd34"))

	FromContext(ctx).Info("served")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["consumer"]; got != "ab12cd34" {
		t.Errorf("expected consumer field, got %v", got)
	}
}

func TestContext_MissingLogger(t *testing.T) {
	if _, ok := Lookup(context.Background()); ok {
		t.Error("expected no logger in empty context")
	}
	FromContext(context.Background()).Info("dropped")
}
