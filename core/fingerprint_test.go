package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWhitespace(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"already clean", "OpenAI releases GPT-5", "OpenAI releases GPT-5"},
		{"tabs and newlines", "OpenAI\treleases\n\nGPT-5", "OpenAI releases GPT-5"},
		{"leading and trailing", "  OpenAI releases GPT-5  ", "OpenAI releases GPT-5"},
		{"runs of spaces", "OpenAI   releases    GPT-5", "OpenAI releases GPT-5"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeWhitespace(tc.input))
		})
	}
}

func TestNewFingerprint_Stable(t *testing.T) {
	body := "New transformer architecture beats benchmarks"

	first := NewFingerprint(body)
	second := NewFingerprint(body)

	assert.Equal(t, first, second, "repeated computation must produce identical fingerprints")
	assert.False(t, first.IsZero())
}

func TestNewFingerprint_WhitespaceInvariant(t *testing.T) {
	a := NewFingerprint("OpenAI releases GPT-5")
	b := NewFingerprint("  OpenAI\treleases\n GPT-5 ")

	assert.Equal(t, a, b, "whitespace differences must not change the fingerprint")
}

func TestNewFingerprint_CasePreserved(t *testing.T) {
	a := NewFingerprint("OpenAI releases GPT-5")
	b := NewFingerprint("openai releases gpt-5")

	assert.NotEqual(t, a, b, "case differences are real content differences")
}

func TestNewFingerprint_DifferentBodies(t *testing.T) {
	a := NewFingerprint("New transformer architecture beats benchmarks")
	b := NewFingerprint("Novel transformer design surpasses benchmark scores")

	assert.NotEqual(t, a, b)
}

func TestIDFromURL_Deterministic(t *testing.T) {
	url := "https://techcrunch.com/2025/08/01/openai-releases-gpt-5"

	require.Equal(t, IDFromURL(url), IDFromURL(url))
	require.NotEqual(t, IDFromURL(url), IDFromURL(url+"/other"))
}

func TestFingerprint_String(t *testing.T) {
	f := NewFingerprint("some body")

	s := f.String()
	assert.Len(t, s, 64, "256-bit digest renders as 64 hex chars")
}
