package redis

import (
	"strings"
	"testing"
)

func TestKeyBuilder_Environment_Prefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{
			name:           "Production environment should use prod prefix",
			environment:    "production",
			expectedPrefix: "prod",
		},
		{
			name:           "Development environment should use staging prefix",
			environment:    "development",
			expectedPrefix: "staging",
		},
		{
			name:           "Local environment should use staging prefix",
			environment:    "local",
			expectedPrefix: "staging",
		},
		{
			name:           "Test environment should use test prefix",
			environment:    "test",
			expectedPrefix: "test",
		},
		{
			name:           "Unknown environment should default to prod prefix",
			environment:    "unknown",
			expectedPrefix: "prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			got := kb.KeyVoterMarker("p1", "d1")
			if !strings.HasPrefix(got, tt.expectedPrefix+":lunchvote:") {
				t.Errorf("NewKeyBuilder(%s).KeyVoterMarker() = %s, want prefix %s",
					tt.environment, got, tt.expectedPrefix)
			}
		})
	}
}

func TestKeyBuilder_KeyGeneration(t *testing.T) {
	kb := NewKeyBuilder("production")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "Voter marker",
			got:      kb.KeyVoterMarker("p1", "device-a"),
			expected: "prod:lunchvote:poll:p1:voter:device-a",
		},
		{
			name:     "Poll voter pattern",
			got:      kb.KeyPollVoterPattern("p1"),
			expected: "prod:lunchvote:poll:p1:voter:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %s, want %s", tt.got, tt.expected)
			}
		})
	}
}

func TestKeyBuilder_PollsDoNotCollide(t *testing.T) {
	kb := NewKeyBuilder("production")

	pattern := strings.TrimSuffix(kb.KeyPollVoterPattern("p1"), "*")
	if strings.HasPrefix(kb.KeyVoterMarker("p10", "x"), pattern) {
		t.Errorf("marker for p10 matches pattern for p1: %s", pattern)
	}
	if !strings.HasPrefix(kb.KeyVoterMarker("p1", "x"), pattern) {
		t.Errorf("marker for p1 does not match its own pattern: %s", pattern)
	}
}
