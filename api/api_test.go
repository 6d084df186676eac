/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recipestore"
	"github.com/suparena/recipestore/datastore/mock"
	"github.com/suparena/recipestore/ident"
	"github.com/suparena/recipestore/storagemodels"
)

type fixture struct {
	api     *API
	handler http.Handler
	recipes *mock.Store[storagemodels.Recipe, *storagemodels.Recipe]
	meals   *mock.Store[storagemodels.Meal, *storagemodels.Meal]
	people  *mock.Store[storagemodels.Person, *storagemodels.Person]
	plans   *mock.Store[storagemodels.Plan, *storagemodels.Plan]
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		recipes: mock.NewStore[storagemodels.Recipe]().WithIDAllocator(ident.NewSequence(100)),
		meals:   mock.NewStore[storagemodels.Meal]().WithIDAllocator(ident.NewSequence(200)),
		people:  mock.NewStore[storagemodels.Person]().WithIDAllocator(ident.NewSequence(300)),
		plans:   mock.NewStore[storagemodels.Plan]().WithIDAllocator(ident.NewSequence(400)),
		logs:    &bytes.Buffer{},
	}

	stores := recipestore.NewStores()
	require.NoError(t, recipestore.Register[storagemodels.Recipe](stores, storagemodels.RecipeKind, f.recipes))
	require.NoError(t, recipestore.Register[storagemodels.Meal](stores, storagemodels.MealKind, f.meals))
	require.NoError(t, recipestore.Register[storagemodels.Person](stores, storagemodels.PersonKind, f.people))
	require.NoError(t, recipestore.Register[storagemodels.Plan](stores, storagemodels.PlanKind, f.plans))

	logger := slog.New(slog.NewTextHandler(f.logs, nil))
	a, err := New(stores, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	f.api = a
	f.handler = a.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresEveryKind(t *testing.T) {
	stores := recipestore.NewStores()
	require.NoError(t, recipestore.Register[storagemodels.Recipe](stores, storagemodels.RecipeKind, mock.NewStore[storagemodels.Recipe]()))

	_, err := New(stores)
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	ready := false
	f := newFixture(t, WithReadiness(func() bool { return ready }))

	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = true
	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info recipestore.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, recipestore.Version, info.Version)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	t.Run("Generated", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/healthz", "")
		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/values/u1/abc", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
		assert.Contains(t, rec.Body.String(), `"requestId":"req-42"`)
		assert.Contains(t, f.logs.String(), "request_id=req-42")
	})
}

func TestRecoverer(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), requestID, accessLog(logger), recoverer(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "http handler panicked")
	assert.Contains(t, logs.String(), "status=500")
}
