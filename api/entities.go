/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package api

import (
	"log/slog"
	"net/http"

	"github.com/suparena/recipestore/datastore"
	"github.com/suparena/recipestore/storagemodels"
)

// entityHandler serves one entity kind in its stored JSON shape. Unlike the recipe routes
// it reports store failures with specific status codes.
type entityHandler[T any, PT storagemodels.EntityPtr[T]] struct {
	store datastore.Store[T]
	log   *slog.Logger
}

func registerEntityRoutes[T any, PT storagemodels.EntityPtr[T]](mux *http.ServeMux, prefix string, store datastore.Store[T], log *slog.Logger) {
	h := &entityHandler[T, PT]{store: store, log: log}
	mux.HandleFunc("GET "+prefix+"/{userId}", h.list)
	mux.HandleFunc("GET "+prefix+"/{userId}/{id}", h.get)
	mux.HandleFunc("POST "+prefix+"/{userId}", h.create)
	mux.HandleFunc("PUT "+prefix+"/{userId}/{id}", h.update)
	mux.HandleFunc("DELETE "+prefix+"/{userId}/{id}", h.remove)
}

func (h *entityHandler[T, PT]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *entityHandler[T, PT]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	item, err := h.store.Get(r.Context(), r.PathValue("userId"), id)
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// create saves a new entity and returns it with its assigned id.
func (h *entityHandler[T, PT]) create(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decode(w, r)
	if !ok {
		return
	}
	if PT(item).PartitionKey() != r.PathValue("userId") {
		writeError(w, r, http.StatusBadRequest, "user id does not match the path")
		return
	}

	if err := h.store.Put(r.Context(), item); err != nil {
		h.fail(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *entityHandler[T, PT]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}
	item, ok := h.decode(w, r)
	if !ok {
		return
	}

	e := PT(item)
	if e.PartitionKey() != r.PathValue("userId") {
		writeError(w, r, http.StatusBadRequest, "user id does not match the path")
		return
	}
	if e.SortKey() == 0 {
		e.SetSortKey(id)
	} else if e.SortKey() != id {
		writeError(w, r, http.StatusBadRequest, "id does not match the path")
		return
	}

	if err := h.store.Put(r.Context(), item); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusAccepted, item)
}

func (h *entityHandler[T, PT]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.store.Remove(r.Context(), r.PathValue("userId"), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *entityHandler[T, PT]) decode(w http.ResponseWriter, r *http.Request) (*T, bool) {
	item := new(T)
	if err := decodeBody(w, r, item); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return item, true
}

func (h *entityHandler[T, PT]) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		writeError(w, r, status, err.Error())
		return
	}

	// Backend detail stays in the log.
	h.log.Warn("entity request failed",
		slog.String("op", op),
		slog.String("kind", PT(new(T)).TableName()),
		slog.String("error", err.Error()),
		slog.String("request_id", RequestIDFrom(r.Context())))
	writeError(w, r, status, http.StatusText(status))
}
