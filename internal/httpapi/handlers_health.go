package httpapi

import "net/http"

// HandleHealth reports process liveness. It does not probe the sqlite
// file or the LLM endpoint — those degrade gracefully (fallback dialogue,
// apperr.Degraded) rather than making the whole process unhealthy.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
