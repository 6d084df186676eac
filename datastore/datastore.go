/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
)

// EntityStore is the boolean-contract CRUD surface over one entity kind. Failures of any
// kind are reported as false, nil or an empty slice.
type EntityStore[T any] interface {
	Save(ctx context.Context, item *T) bool

	Retrieve(ctx context.Context, partitionKey string, sortKey int64) (*T, bool)

	Delete(ctx context.Context, partitionKey string, sortKey int64) bool

	ListForPartition(ctx context.Context, partitionKey string) []T
}

// ErrorStore is the error-returning twin of EntityStore. Errors are the semantic types of
// the errors package.
type ErrorStore[T any] interface {
	Put(ctx context.Context, item *T) error

	Get(ctx context.Context, partitionKey string, sortKey int64) (*T, error)

	Remove(ctx context.Context, partitionKey string, sortKey int64) error

	List(ctx context.Context, partitionKey string) ([]T, error)
}

// Store combines both contracts.
type Store[T any] interface {
	EntityStore[T]
	ErrorStore[T]
}
