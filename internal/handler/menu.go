package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thetechguyfromvietnam/lolibub/internal/menu"
)

// MenuProvider defines the catalog source needed by the menu handler.
// Satisfied by *menu.Provider; narrow interface for testability.
type MenuProvider interface {
	Menu() (*menu.Menu, error)
}

// MenuHandler serves the read-only drink catalog.
type MenuHandler struct {
	provider MenuProvider
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(provider MenuProvider) *MenuHandler {
	return &MenuHandler{provider: provider}
}

// RegisterRoutes registers the menu endpoint on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// Get returns the full catalog.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.provider.Menu()
	if err != nil {
		log.Printf("ERROR: load menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Không thể tải menu"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
