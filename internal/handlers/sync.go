package handlers

import (
	"errors"
	"net/http"

	"filefinder/internal/indexer"
)

// TriggerSync handles POST /api/sync: starts a run in the background.
func (h *Handlers) TriggerSync(w http.ResponseWriter, _ *http.Request) {
	if err := h.indexer.TriggerSync(); err != nil {
		if errors.Is(err, indexer.ErrSyncInProgress) {
			writeJSONError(w, "sync already in progress", http.StatusConflict)
			return
		}
		writeJSONError(w, "failed to start sync", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "sync started"})
}

// SyncStatus handles GET /api/sync: reports the current run, if any.
func (h *Handlers) SyncStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.indexer.GetHealthStatus())
}
