package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/speaker-diarize/backend/internal/db"
)

type SettingsHandler struct {
	db *db.Database
}

func NewSettingsHandler(database *db.Database) *SettingsHandler {
	return &SettingsHandler{db: database}
}

// GetSettings returns all stored settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, settings, http.StatusOK)
}

// UpdateSettings upserts the provided key/value pairs
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	for k, v := range updates {
		if err := h.db.SetSetting(k, v); err != nil {
			jsonError(w, "failed to save setting "+k+": "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
