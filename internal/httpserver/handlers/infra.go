package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	Backend       string `json:"backend,omitempty"`
	ContactsCount *int   `json:"contacts_count,omitempty"`
	Path          string `json:"path,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each moving part.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Contacts.Count()

		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"contacts": {
				OK:            true,
				ContactsCount: &count,
			},
			"seed":   optionalComponent(d.SeedFile, "reload-on-demand"),
			"backup": optionalComponent(d.BackupFile, "periodic"),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Storage down means every write fails
	if storage, exists := components["storage"]; exists && !storage.OK {
		return "critical"
	}
	return "operational"
}

func optionalComponent(path, mode string) componentStatus {
	if path == "" {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Path: path, Mode: mode}
}

func checkStorage(parent context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Contacts.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.StorageBackend,
			Error:   err.Error(),
		}
	}

	return componentStatus{
		OK:      true,
		Backend: d.StorageBackend,
	}
}
