package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/mw"
)

func init() { Register(registerContacts) }

func registerContacts(r chi.Router, d deps.Deps) {
	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.CORS(d.AllowedOrigins))

		r.Get("/", handlers.ListContacts(d))
		r.Post("/", handlers.CreateContact(d))

		// static paths are matched before /{id}
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Name:       "import",
			Burst:      d.ImportLimit.Burst,
			PerMinute:  d.ImportLimit.PerMinute,
			MaxEntries: 10000,
			TrustProxy: d.TrustProxy,
			Now:        d.Now,
		})).Post("/import", handlers.ImportContacts(d))
		r.Get("/export", handlers.ExportContacts(d))
		r.Get("/template", handlers.Template(d))

		r.Get("/{id}", handlers.GetContact(d))
		r.Put("/{id}", handlers.UpdateContact(d))
		r.Delete("/{id}", handlers.DeleteContact(d))
		r.Patch("/{id}/bookmark", handlers.ToggleBookmark(d))
	})
}
