package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"info":    zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"debug":   zapcore.DebugLevel,
		"verbose": defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Fatalf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopAndWith(t *testing.T) {
	l := Nop().With("component", "test")
	if l == nil || l.SugaredLogger == nil {
		t.Fatalf("expected usable logger")
	}
	l.Infow("discarded", "k", "v")
}
