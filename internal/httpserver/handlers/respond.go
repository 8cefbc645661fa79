package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store errors to HTTP statuses.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	var (
		validation *domain.ValidationError
		format     *domain.ImportFormatError
		storage    *domain.StorageError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field})
	case errors.As(err, &format):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: format.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "contact not found"})
	case errors.As(err, &storage):
		d.Logger.Error("storage failure", logger.String("op", storage.Op), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
	default:
		d.Logger.Error("unexpected error", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
