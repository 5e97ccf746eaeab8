package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hero-trivia-engine/internal/app"
	"hero-trivia-engine/internal/domain"
)

// NewRouter mounts the game endpoints. metrics may be nil.
func NewRouter(service *app.GameService, metrics http.Handler, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()
	profiles := NewProfileHandler(service)
	ws := NewWSHandler(service, logger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}
	r.HandleFunc("/achievements", profiles.Achievements).Methods("GET")
	r.HandleFunc("/profiles/{id}", profiles.Get).Methods("GET")
	r.HandleFunc("/profiles/{id}", profiles.Delete).Methods("DELETE")
	r.HandleFunc("/ws", ws.ServeWS).Methods("GET")
	return r
}

// ProfileHandler serves stored profiles and the achievement catalog.
type ProfileHandler struct {
	service *app.GameService
}

func NewProfileHandler(service *app.GameService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Achievements handles GET /achievements
func (h *ProfileHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Catalog())
}

// Get handles GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.service.Profile(r.Context(), id)
	if errors.Is(err, domain.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.ResetProfile(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
