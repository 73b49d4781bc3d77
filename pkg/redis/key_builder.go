package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging", "local":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// KeyVoterMarker is the marker written after a vote for (pollID, voterToken) commits
func (kb *KeyBuilder) KeyVoterMarker(pollID, voterToken string) string {
	return kb.BuildKey(fmt.Sprintf(KeyVoterMarker, pollID, voterToken))
}

// KeyPollVoterPattern matches every voter marker of a poll
func (kb *KeyBuilder) KeyPollVoterPattern(pollID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollVoterPrefix, pollID))
}
