package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/extract"
	"github.com/dgallion1/mdquery/internal/outline"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entry, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	q := r.FormValue("query")
	if strings.TrimSpace(q) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	format := r.FormValue("format")
	if format == "" {
		format = "raw"
	}
	if format != "raw" && format != "json" {
		jsonError(w, "format must be raw or json", http.StatusBadRequest)
		return
	}

	res, err := extract.Extract(entry.Doc, q, extract.Options{
		Limits: s.limits(),
		Forest: entry.Forest,
	})
	s.stats.Observe(start, err)
	if err != nil {
		s.log.Debug("query failed", zap.String("query", q), zap.Error(err))
		jsonError(w, err.Error(), queryErrorStatus(err))
		return
	}

	content := res.Bytes(entry.Doc.Source)
	if format == "json" {
		writeJSON(w, map[string]any{
			"sections": res.Sections,
			"spans":    res.Spans,
			"content":  string(content),
		})
		return
	}

	w.Header().Set("Content-Type", rawContentType(entry.Filename))
	w.Write(content)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	var opts outline.Options
	if v := r.FormValue("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "max_depth must be a non-negative integer", http.StatusBadRequest)
			return
		}
		opts.MaxDepth = n
	}

	entries := outline.Build(entry.Doc, entry.Forest, opts)
	if entries == nil {
		entries = []outline.Entry{}
	}
	writeJSON(w, map[string]any{
		"title":   entry.Doc.Title,
		"entries": entries,
	})
}

func rawContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}
