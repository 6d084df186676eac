/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/suparena/recipestore/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseID reads a numeric path parameter.
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsValidationError(err), errors.IsUnknownKind(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConditionFailed(err), errors.IsAlreadyExists(err):
		return http.StatusConflict
	case errors.IsProvisioning(err), errors.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
