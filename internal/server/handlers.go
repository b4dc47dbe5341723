package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/resume-editor/internal/types"
)

type suggestRequest struct {
	Description string `json:"description"`
}

func (s *Server) parseKind(r *http.Request) (types.Kind, error) {
	raw := r.PathValue("kind")
	kind, err := types.ParseKind(raw)
	if err != nil || !kind.Persisted() {
		return "", &ErrUnknownKind{Kind: raw}
	}
	return kind, nil
}

func parsePosition(r *http.Request) (int, error) {
	raw := r.PathValue("position")
	position, err := strconv.Atoi(raw)
	if err != nil || position < 0 {
		return 0, &ErrValidation{Field: "position", Message: "must be a non-negative integer"}
	}
	return position, nil
}

func decodeRecord(r *http.Request) (types.Record, error) {
	var rec types.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		return nil, &ErrValidation{Field: "body", Message: "must be a JSON object of strings"}
	}
	return rec, nil
}

// fail writes err with its mapped status
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Database error: " + message
	}
	s.errorResponse(w, status, message)
}

// handleList returns the whole collection as a JSON array
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := s.parseKind(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	records, err := s.store.List(r.Context(), kind)
	if err != nil {
		s.fail(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, records)
}

// handleCreate appends a record
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, err := s.parseKind(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	rec, err := decodeRecord(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := types.Validate(kind, rec); err != nil {
		s.fail(w, err)
		return
	}

	position, err := s.store.Append(r.Context(), kind, rec)
	if err != nil {
		s.fail(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"status":   "created",
		"position": position,
	})
}

// handleReplace overwrites the record at a position
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	kind, err := s.parseKind(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	position, err := parsePosition(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	rec, err := decodeRecord(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := types.Validate(kind, rec); err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.Replace(r.Context(), kind, position, rec); err != nil {
		s.fail(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleDelete removes the record at a position
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, err := s.parseKind(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	position, err := parsePosition(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.Delete(r.Context(), kind, position); err != nil {
		s.fail(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSuggest returns rewrites of the body's description, falling back to the
// stored record's description only when the body carries none.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	kind, err := s.parseKind(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var req suggestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.fail(w, &ErrValidation{Field: "body", Message: "must be a JSON object"})
			return
		}
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		if r.PathValue("position") == "" {
			s.fail(w, &ErrValidation{Field: "description", Message: "is required"})
			return
		}
		position, err := parsePosition(r)
		if err != nil {
			s.fail(w, err)
			return
		}
		stored, err := s.store.Get(r.Context(), kind, position)
		if err != nil {
			s.fail(w, err)
			return
		}
		description = strings.TrimSpace(stored[types.FieldDescription])
		if description == "" {
			s.fail(w, &ErrValidation{Field: "description", Message: "stored record has no description"})
			return
		}
	}

	suggestions, err := s.suggester.Suggest(r.Context(), kind, description)
	if err != nil {
		s.fail(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
