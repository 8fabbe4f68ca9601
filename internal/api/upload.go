package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/cache"
	"github.com/dgallion1/mdquery/internal/parser"
	"github.com/dgallion1/mdquery/internal/query"
)

// loadDocument reads the multipart "file" field and returns its parsed
// document, from the cache when the same content was parsed before. On
// failure it writes the error response and returns false.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*cache.Entry, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	// Form values stay readable after the temp files are removed.
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return nil, false
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	key := cache.Key(s.cfg.Parser, filename, data)
	if e, ok := s.docs.Get(key); ok {
		return e, true
	}

	p, err := parser.ForFile(filename, s.parserOptions())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("parse failed", zap.String("filename", filename), zap.Error(err))
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}
	return s.docs.Put(key, filename, doc, doc.Tree()), true
}

// queryErrorStatus maps query failures to HTTP status codes.
func queryErrorStatus(err error) int {
	var (
		syntax   *query.SyntaxError
		invalid  *query.InvalidRangeError
		limit    *query.LimitError
		notFound *query.IndexOutOfRangeError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &syntax), errors.As(err, &invalid), errors.As(err, &limit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
