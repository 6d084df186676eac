/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when an entity fails its validity check
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrUnknownKind is returned when an entity kind is missing from the schema catalog
	ErrUnknownKind = errors.New("entity kind not in schema catalog")

	// ErrProvisioning is returned when the catalog tables could not be provisioned
	ErrProvisioning = errors.New("schema provisioning failed")

	// ErrBackend is returned for any transport or service fault from the backing store
	ErrBackend = errors.New("backing store fault")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an entity that failed its validity check
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// UnknownKindError names the kind that has no catalog entry
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("entity kind %q not in schema catalog", e.Kind)
}

func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// ProvisioningError lists the tables that could not be created
type ProvisioningError struct {
	Tables []string
	Err    error
}

func (e *ProvisioningError) Error() string {
	if len(e.Tables) == 0 {
		return fmt.Sprintf("schema provisioning failed: %v", e.Err)
	}
	return fmt.Sprintf("schema provisioning failed for tables [%s]: %v", strings.Join(e.Tables, ", "), e.Err)
}

func (e *ProvisioningError) Is(target error) bool {
	return target == ErrProvisioning
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// BackendError wraps a fault returned by the backing store for one operation
type BackendError struct {
	Operation string
	Table     string
	Retryable bool
	Err       error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s on table %s failed: %v", e.Operation, e.Table, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewUnknownKindError creates a new UnknownKindError
func NewUnknownKindError(kind string) error {
	return &UnknownKindError{Kind: kind}
}

// NewProvisioningError creates a new ProvisioningError
func NewProvisioningError(tables []string, err error) error {
	return &ProvisioningError{Tables: tables, Err: err}
}

// NewBackendError creates a new BackendError
func NewBackendError(operation, table string, retryable bool, err error) error {
	return &BackendError{Operation: operation, Table: table, Retryable: retryable, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsUnknownKind checks if an error is an unknown kind error
func IsUnknownKind(err error) bool {
	return errors.Is(err, ErrUnknownKind)
}

// IsProvisioning checks if an error is a provisioning error
func IsProvisioning(err error) bool {
	return errors.Is(err, ErrProvisioning)
}

// IsBackend checks if an error is a backing store fault
func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsRetryable reports whether err carries a backing store fault marked as transient.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}
