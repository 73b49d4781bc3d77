package handler

import (
	"net/http"

	"lunchvote/internal/domain"
	"lunchvote/internal/service"
	"lunchvote/pkg/logger"
)

// VotingHandler serves vote submission
type VotingHandler struct {
	votes  service.VoteRecorder
	logger *logger.Logger
}

// NewVotingHandler creates a new voting handler
func NewVotingHandler(votes service.VoteRecorder, logger *logger.Logger) *VotingHandler {
	return &VotingHandler{
		votes:  votes,
		logger: logger,
	}
}

// SubmitVote handles POST /api/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitVoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp, err := h.votes.SubmitVote(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}
