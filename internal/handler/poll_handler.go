package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lunchvote/internal/domain"
	"lunchvote/internal/service"
	"lunchvote/pkg/logger"
)

// PollHandler serves poll creation, lookup, results, and teardown
type PollHandler struct {
	polls  service.PollLifecycle
	tally  service.TallyEngine
	logger *logger.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(polls service.PollLifecycle, tally service.TallyEngine, logger *logger.Logger) *PollHandler {
	return &PollHandler{
		polls:  polls,
		tally:  tally,
		logger: logger,
	}
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp, err := h.polls.CreatePoll(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// GetActivePoll handles GET /api/polls/active?groupId=
func (h *PollHandler) GetActivePoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.polls.GetActivePoll(r.Context(), r.URL.Query().Get("groupId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

// GetResults handles GET /api/polls/{pollId}/results. Clients poll this
// endpoint, so it answers If-None-Match with 304 while the tally is unchanged.
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.tally.GetResults(r.Context(), chi.URLParam(r, "pollId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	etag := generateETag(results)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// ListGroups handles GET /api/groups
func (h *PollHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.polls.ListActiveGroupIDs(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// DeletePoll handles DELETE /api/polls/{pollId}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.polls.DeletePoll(r.Context(), chi.URLParam(r, "pollId")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
