package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
)

// Registrar mounts a group of routes. Access guards depend on deps, so each
// registrar applies its own middlewares.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar; called from init() in each route file.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route group. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
