package handlers

import (
	"net/http"

	"github.com/beachrally/tournament-server/services"
)

type PoolMatchHandler struct {
	poolService services.PoolService
}

func NewPoolMatchHandler(poolService services.PoolService) *PoolMatchHandler {
	return &PoolMatchHandler{poolService: poolService}
}

func (h *PoolMatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.poolService.ListPoolMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolMatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "poolMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.poolService.GetPoolMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordScore writes one set's score for a pool match.
func (h *PoolMatchHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "poolMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordSetScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.poolService.RecordSetScore(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
