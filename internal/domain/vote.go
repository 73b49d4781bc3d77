package domain

import (
	"time"
)

// MaxVoterTokenLength bounds the opaque device token
const MaxVoterTokenLength = 64

// Vote is one device's choice in one poll
type Vote struct {
	ID         string    `json:"voteId"`
	PollID     string    `json:"pollId"`
	OptionID   string    `json:"optionId"`
	VoterToken string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubmitVoteRequest represents a vote submission request
type SubmitVoteRequest struct {
	PollID     string `json:"pollId" validate:"notblank"`
	OptionID   string `json:"optionId" validate:"notblank"`
	VoterToken string `json:"voterToken" validate:"notblank,max=64"`
}

// SubmitVoteResponse represents the response after voting
type SubmitVoteResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// OptionResult is the tally of one option
type OptionResult struct {
	OptionID string `json:"optionId"`
	Text     string `json:"text"`
	Count    int    `json:"count"`
}

// PollResults is the tally of a poll. TotalVotes is the sum of the counts.
type PollResults struct {
	PollID     string         `json:"pollId"`
	Question   string         `json:"question"`
	IsActive   bool           `json:"isActive"`
	Results    []OptionResult `json:"results"`
	TotalVotes int            `json:"totalVotes"`
}
