package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

// StatsResponse summarizes the stored tree.
type StatsResponse struct {
	Roots           []string `json:"roots"`
	TotalFiles      int      `json:"totalFiles"`
	TotalDirs       int      `json:"totalDirs"`
	TotalBytes      int64    `json:"totalBytes"`
	TotalBytesHuman string   `json:"totalBytesHuman"`
	PendingDirs     int      `json:"pendingDirs"`
}

// GetStats handles GET /api/stats.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.store.GetStats()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, StatsResponse{
		Roots:           h.roots,
		TotalFiles:      stats.TotalFiles,
		TotalDirs:       stats.TotalDirs,
		TotalBytes:      stats.TotalBytes,
		TotalBytesHuman: humanize.Bytes(uint64(stats.TotalBytes)),
		PendingDirs:     stats.PendingDirs,
	})
}
