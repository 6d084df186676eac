/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package api

import (
	"log/slog"
	"net/http"

	"github.com/suparena/recipestore"
	"github.com/suparena/recipestore/datastore"
	"github.com/suparena/recipestore/storagemodels"
)

// API wires the HTTP handlers to the entity stores.
type API struct {
	recipes datastore.Store[storagemodels.Recipe]
	meals   datastore.Store[storagemodels.Meal]
	people  datastore.Store[storagemodels.Person]
	plans   datastore.Store[storagemodels.Plan]

	ready func() bool
	log   *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger used for access logs and handler warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithReadiness sets the check behind /healthz, typically Provisioner.Ready.
func WithReadiness(ready func() bool) Option {
	return func(a *API) {
		a.ready = ready
	}
}

// New resolves the four entity stores from stores. Every kind must be registered.
func New(stores *recipestore.Stores, opts ...Option) (*API, error) {
	a := &API{
		ready: func() bool { return true },
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	var err error
	if a.recipes, err = recipestore.StoreFor[storagemodels.Recipe](stores); err != nil {
		return nil, err
	}
	if a.meals, err = recipestore.StoreFor[storagemodels.Meal](stores); err != nil {
		return nil, err
	}
	if a.people, err = recipestore.StoreFor[storagemodels.Person](stores); err != nil {
		return nil, err
	}
	if a.plans, err = recipestore.StoreFor[storagemodels.Plan](stores); err != nil {
		return nil, err
	}
	return a, nil
}

// Handler returns the fully assembled http.Handler with all routes and middleware.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return chain(mux, requestID, accessLog(a.log), recoverer(a.log))
}

// RegisterRoutes registers all routes into mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	a.registerRecipeRoutes(mux)
	registerEntityRoutes[storagemodels.Meal](mux, "/api/meals", a.meals, a.log)
	registerEntityRoutes[storagemodels.Person](mux, "/api/people", a.people, a.log)
	registerEntityRoutes[storagemodels.Plan](mux, "/api/plans", a.plans, a.log)

	mux.HandleFunc("GET /healthz", a.healthz)
	mux.HandleFunc("GET /version", a.version)
}

func (a *API) healthz(w http.ResponseWriter, _ *http.Request) {
	if !a.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "provisioning"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, recipestore.GetVersionInfo())
}
