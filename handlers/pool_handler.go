package handlers

import (
	"net/http"

	"github.com/beachrally/tournament-server/services"
)

type PoolHandler struct {
	poolService services.PoolService
}

func NewPoolHandler(poolService services.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := services.CreatePoolsInput{}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	pools, err := h.poolService.CreatePools(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, pools, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pools, err := h.poolService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, pools, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.poolService.GetPool(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, pool, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.poolService.PoolStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) TournamentStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.poolService.TournamentStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PoolHandler) CompletePoolPlay(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.poolService.CompletePoolPlay(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
