package handlers

import (
	"net/http"

	"github.com/beachrally/tournament-server/services"
)

type LocationHandler struct {
	locationService services.LocationService
}

func NewLocationHandler(locationService services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, locations, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.locationService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, location, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLocationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.locationService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, location, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateLocationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.locationService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, location, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "locationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.locationService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
