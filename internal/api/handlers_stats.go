package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"parser":        s.cfg.Parser,
		"queries":       s.stats.Snapshot(),
		"cache_entries": s.docs.Len(),
	})
}
