package generator

import (
	"strings"
	"testing"

	"github.com/spacesedan/replyflow/internal/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		original string
		maxLen   int
		want     string
		failure  models.GenFailure
	}{
		{
			name: "clean passthrough",
			raw:  "Great point about generics.",
			want: "Great point about generics.",
		},
		{
			name: "strips boilerplate prefix",
			raw:  "Here's a reply: totally agree with this",
			want: "totally agree with this",
		},
		{
			name: "strips surrounding quotes",
			raw:  `"Nice work on the release!"`,
			want: "Nice work on the release!",
		},
		{
			name: "strips nested quotes",
			raw:  `'"well said"'`,
			want: "well said",
		},
		{
			name: "keeps interior quotes",
			raw:  `the word "idiomatic" fits here`,
			want: `the word "idiomatic" fits here`,
		},
		{
			name: "flattens markdown",
			raw:  "*bold* _italic_ `code` #golang",
			want: "bold italic code golang",
		},
		{
			name: "collapses whitespace",
			raw:  "too   many\n\nspaces\there",
			want: "too many spaces here",
		},
		{
			name:   "truncates at whitespace boundary",
			raw:    `Sure, here's a reply: "Great point!"`,
			maxLen: 10,
			want:   "Sure,",
		},
		{
			name:   "under limit untouched",
			raw:    "short reply",
			maxLen: 280,
			want:   "short reply",
		},
		{
			name:    "single long word within limit rejected",
			raw:     "supercalifragilistic",
			maxLen:  10,
			failure: models.GenFailureEmpty,
		},
		{
			name:    "empty output rejected",
			raw:     "   ",
			failure: models.GenFailureEmpty,
		},
		{
			name:    "quotes only rejected",
			raw:     `""`,
			failure: models.GenFailureEmpty,
		},
		{
			name:     "echo rejected",
			raw:      "Just shipped our new release!",
			original: "just   shipped our new RELEASE!",
			failure:  models.GenFailureEcho,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, failure := Sanitize(tt.raw, tt.original, tt.maxLen)
			if failure != tt.failure {
				t.Fatalf("Sanitize() failure = %q, want %q", failure, tt.failure)
			}
			if got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckQuality(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.GenFailure
	}{
		{"substantive response passes", "That race condition fix looks solid to me", ""},
		{"exactly at minimum length", "ten chars!", ""},
		{"too short", "ok sure", models.GenFailureTooShort},
		{"short generic one-liner", "awesome, thanks!", models.GenFailureGeneric},
		{"repetitive words", "go go go go go", models.GenFailureGeneric},
		{"generic word in a long response passes", "Great breakdown of the scheduler internals, saving this", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckQuality(tt.text); got != tt.want {
				t.Errorf("CheckQuality(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSanitizeNeverSplitsWords(t *testing.T) {
	raw := "alpha bravo charlie delta echo foxtrot golf hotel"
	for maxLen := 1; maxLen <= len(raw); maxLen++ {
		got, failure := Sanitize(raw, "", maxLen)
		if failure != "" {
			continue
		}
		if len(got) > maxLen {
			t.Fatalf("maxLen=%d: output %q exceeds limit", maxLen, got)
		}
		for _, word := range strings.Fields(got) {
			if !strings.Contains(raw, word) {
				t.Fatalf("maxLen=%d: output contains split word %q", maxLen, word)
			}
		}
	}
}
