package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-loform"
	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

type fieldsResponse struct {
	ObjectType string        `json:"object_type"`
	Fields     []model.Field `json:"fields"`
	Warnings   []string      `json:"warnings,omitempty"`
}

type optionsResponse struct {
	ObjectType string           `json:"object_type"`
	Path       string           `json:"path"`
	Options    []options.Option `json:"options"`
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "type")
	fields, err := s.svc.Fields(r.Context(), objectType)
	if fields == nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fieldsResponse{
		ObjectType: objectType,
		Fields:     fields,
		Warnings:   warnings(err),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "type")
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_PATH", "query parameter path is required")
		return
	}

	opts, err := s.svc.Options(r.Context(), objectType, path)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, optionsResponse{
		ObjectType: objectType,
		Path:       path,
		Options:    opts,
	})
}

func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schema.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, loform.ErrUnknownField):
		s.writeError(w, http.StatusNotFound, "UNKNOWN_FIELD", err.Error())
	case errors.Is(err, loform.ErrNotReference):
		s.writeError(w, http.StatusUnprocessableEntity, "NOT_REFERENCE", err.Error())
	case schema.IsLoadError(err):
		s.writeError(w, http.StatusBadGateway, "SCHEMA_ERROR", err.Error())
	case errors.Is(err, loform.ErrNoSchemaStore):
		s.writeError(w, http.StatusServiceUnavailable, "NO_SCHEMAS", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// warnings flattens the joined load errors of a partial resolution.
func warnings(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, warnings(e)...)
	}
	return out
}
