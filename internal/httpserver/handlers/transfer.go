package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/addressbook/internal/export"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
)

// DefaultMaxImportBytes is used when deps leave MaxImportBytes unset.
const DefaultMaxImportBytes = 5 << 20

// ImportContacts merges a JSON array of contacts posted as the request body.
func ImportContacts(d deps.Deps) http.HandlerFunc {
	limit := d.MaxImportBytes
	if limit <= 0 {
		limit = DefaultMaxImportBytes
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Contacts.ImportJSON(r.Context(), http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
					Error: fmt.Sprintf("import payload exceeds %d bytes", tooLarge.Limit),
				})
				return
			}
			writeError(w, d, err)
			return
		}

		d.Logger.Info("import request handled",
			logger.Int("imported", res.Imported),
			logger.Int("skipped", res.Skipped),
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusOK, res)
	}
}

// ExportContacts streams the collection as an attachment in ?format=.
func ExportContacts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writer, err := export.ByFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "format"})
			return
		}

		// render fully before sending headers so a failure can still be a 500
		var buf bytes.Buffer
		if err := writer.Write(&buf, d.Contacts); err != nil {
			writeError(w, d, err)
			return
		}

		attachment(w, writer.ContentType(), writer.FileName())
		_, _ = w.Write(buf.Bytes())
	}
}

// Template serves the two-contact sample file for import.
func Template(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := export.WriteTemplate(&buf, d.Now()); err != nil {
			writeError(w, d, err)
			return
		}
		attachment(w, "application/json", export.TemplateFileName)
		_, _ = w.Write(buf.Bytes())
	}
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
}
