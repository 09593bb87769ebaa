package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel_MapsAllValues(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		"  DeBuG  ": zerolog.DebugLevel, // trimmed + case-folded
		"info":      zerolog.InfoLevel,
		"":          zerolog.InfoLevel,
		"warn":      zerolog.WarnLevel,
		"warning":   zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"fatal":     zerolog.FatalLevel,
		"panic":     zerolog.PanicLevel,
		"verbose":   zerolog.InfoLevel, // unknown falls back to info
	}

	for in, want := range cases {
		SetLogLevel(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", in, got, want)
		}
	}
}

func TestFirstNonEmpty_ChatIdentityChain(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want empty", got)
	}
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(blanks) = %q; want empty", got)
	}
	// The winner keeps its original spacing; trimming is the caller's call.
	if got := FirstNonEmpty("   ", "  chat123  ", "chat456"); got != "  chat123  " {
		t.Fatalf("FirstNonEmpty = %q; want %q", got, "  chat123  ")
	}
	if got := FirstNonEmpty("ctx-chat", "header-chat"); got != "ctx-chat" {
		t.Fatalf("FirstNonEmpty = %q; want first value", got)
	}
}
