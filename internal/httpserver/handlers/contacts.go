package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/addressbook/internal/domain"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
)

// maxContactBytes bounds a single create/update body.
const maxContactBytes = 64 << 10

type listResponse struct {
	Contacts []domain.Contact `json:"contacts"`
	Count    int              `json:"count"`
	Total    int              `json:"total"`
}

// ListContacts serves ?search= and ?bookmarked= over the collection.
func ListContacts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter, err := domain.ParseBookmarkFilter(q.Get("bookmarked"))
		if err != nil {
			writeError(w, d, err)
			return
		}

		found := d.Contacts.Search(q.Get("search"), filter)
		writeJSON(w, http.StatusOK, listResponse{
			Contacts: found,
			Count:    len(found),
			Total:    d.Contacts.Count(),
		})
	}
}

// GetContact returns one contact by id.
func GetContact(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Contacts.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// CreateContact appends a new contact.
func CreateContact(d deps.Deps) http.HandlerFunc {
	return saveContact(d, func(*http.Request) string { return "" })
}

// UpdateContact replaces the contact named in the path, or creates it when
// the id is unknown.
func UpdateContact(d deps.Deps) http.HandlerFunc {
	return saveContact(d, func(r *http.Request) string { return chi.URLParam(r, "id") })
}

func saveContact(d deps.Deps, editingID func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.ContactInput
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBytes))
		if err := dec.Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid contact payload: " + err.Error()})
			return
		}

		id := editingID(r)
		if id != "" {
			if bodyID := strings.TrimSpace(in.ID); bodyID != "" && bodyID != id {
				writeError(w, d, &domain.ValidationError{
					Field:   "id",
					Message: fmt.Sprintf("body id %q does not match path id %q", bodyID, id),
				})
				return
			}
			// PUT on an unknown id creates the contact under that id
			in.ID = id
		}

		c, created, err := d.Contacts.CreateOrUpdate(r.Context(), in, id)
		if err != nil {
			writeError(w, d, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
			w.Header().Set("Location", "/api/contacts/"+c.ID)
		}
		writeJSON(w, status, c)
	}
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteContact removes a contact. Unknown ids are not an error.
func DeleteContact(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := d.Contacts.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: removed})
	}
}

// ToggleBookmark flips the bookmark flag.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := d.Contacts.ToggleBookmark(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
