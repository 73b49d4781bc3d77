package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a random identifier for polls, options, and votes
func NewID() string {
	return uuid.NewString()
}

// Poll is a question put to a group. At most one poll per group is active.
type Poll struct {
	ID        string    `json:"pollId"`
	GroupID   string    `json:"groupId"`
	Question  string    `json:"question"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Option is one answer of a poll. Options are fixed once the poll exists.
type Option struct {
	ID       string `json:"optionId"`
	PollID   string `json:"-"`
	Position int    `json:"-"`
	Text     string `json:"text"`
}

// Limits on poll input. The validate tags on the request types carry the same values.
const (
	MaxGroupIDLength    = 50
	MaxQuestionLength   = 200
	MaxOptionTextLength = 100
	MinOptions          = 2
	MaxOptions          = 10
)

// CreatePollRequest represents a poll creation request
type CreatePollRequest struct {
	GroupID  string   `json:"groupId" validate:"notblank,max=50"`
	Question string   `json:"question" validate:"notblank,max=200"`
	Options  []string `json:"options" validate:"min=2,max=10,dive,notblank,max=100"`
}

// CreatePollResponse is returned after a poll is created
type CreatePollResponse struct {
	PollID string `json:"pollId"`
}

// ActivePoll is the current poll of a group with its options in display order
type ActivePoll struct {
	PollID   string   `json:"pollId"`
	GroupID  string   `json:"groupId"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// NewPoll builds a poll and its options with fresh identifiers. The caller
// validates the request first.
func NewPoll(req CreatePollRequest, now time.Time) (*Poll, []Option) {
	poll := &Poll{
		ID:        NewID(),
		GroupID:   req.GroupID,
		Question:  req.Question,
		IsActive:  true,
		CreatedAt: now.UTC(),
	}

	options := make([]Option, len(req.Options))
	for i, text := range req.Options {
		options[i] = Option{
			ID:       NewID(),
			PollID:   poll.ID,
			Position: i,
			Text:     text,
		}
	}
	return poll, options
}
