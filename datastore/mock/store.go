/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recipestore/datastore"
	"github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/ident"
	"github.com/suparena/recipestore/storagemodels"
)

type storeKey struct {
	pk string
	sk int64
}

// Store is an in-memory implementation of datastore.Store[T] for handler tests. It follows
// the same normalize-then-validate order as the DynamoDB store. Items are kept in their
// encoded form, so callers never share memory with stored entities.
type Store[T any, PT storagemodels.EntityPtr[T]] struct {
	mu    sync.RWMutex
	data  map[storeKey]map[string]types.AttributeValue
	ids   ident.Allocator
	clock func() time.Time

	putError    error
	getError    error
	deleteError error
	listError   error
	puts        int
}

var _ datastore.Store[storagemodels.Meal] = (*Store[storagemodels.Meal, *storagemodels.Meal])(nil)

// NewStore creates an empty in-memory store.
func NewStore[T any, PT storagemodels.EntityPtr[T]]() *Store[T, PT] {
	return &Store[T, PT]{
		data:  make(map[storeKey]map[string]types.AttributeValue),
		ids:   ident.Crypto{},
		clock: time.Now,
	}
}

// WithIDAllocator sets the source of ids assigned on save.
func (m *Store[T, PT]) WithIDAllocator(a ident.Allocator) *Store[T, PT] {
	m.ids = a
	return m
}

// WithClock sets the time source used to stamp last-modified.
func (m *Store[T, PT]) WithClock(clock func() time.Time) *Store[T, PT] {
	m.clock = clock
	return m
}

// WithPutError makes Put and Save fail after normalization and validation
func (m *Store[T, PT]) WithPutError(err error) *Store[T, PT] {
	m.putError = err
	return m
}

// WithGetError makes Get and Retrieve fail
func (m *Store[T, PT]) WithGetError(err error) *Store[T, PT] {
	m.getError = err
	return m
}

// WithDeleteError makes Remove and Delete fail
func (m *Store[T, PT]) WithDeleteError(err error) *Store[T, PT] {
	m.deleteError = err
	return m
}

// WithListError makes List and ListForPartition fail
func (m *Store[T, PT]) WithListError(err error) *Store[T, PT] {
	m.listError = err
	return m
}

// Puts returns the number of writes that reached storage.
func (m *Store[T, PT]) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Len returns the number of stored entities.
func (m *Store[T, PT]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Store[T, PT]) Save(ctx context.Context, item *T) bool {
	return m.Put(ctx, item) == nil
}

func (m *Store[T, PT]) Put(ctx context.Context, item *T) error {
	if item == nil {
		return errors.NewValidationError(kindOf[T, PT](), "item must not be nil")
	}
	e := PT(item)
	e.SetLastModified(m.clock().UTC().Truncate(time.Second))
	for e.SortKey() == 0 {
		e.SetSortKey(m.ids.NextID())
	}
	if !e.IsValid() {
		return errors.NewValidationError(kindOf[T, PT](), fmt.Sprintf("invalid entity %s/%d", e.PartitionKey(), e.SortKey()))
	}
	if m.putError != nil {
		return m.putError
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.NewValidationError(kindOf[T, PT](), err.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[storeKey{e.PartitionKey(), e.SortKey()}] = av
	m.puts++
	return nil
}

func (m *Store[T, PT]) Retrieve(ctx context.Context, partitionKey string, sortKey int64) (*T, bool) {
	item, err := m.Get(ctx, partitionKey, sortKey)
	return item, err == nil
}

func (m *Store[T, PT]) Get(ctx context.Context, partitionKey string, sortKey int64) (*T, error) {
	if m.getError != nil {
		return nil, m.getError
	}

	m.mu.RLock()
	av, ok := m.data[storeKey{partitionKey, sortKey}]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError(kindOf[T, PT](), fmt.Sprintf("%s/%d", partitionKey, sortKey))
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(av, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Store[T, PT]) Delete(ctx context.Context, partitionKey string, sortKey int64) bool {
	return m.Remove(ctx, partitionKey, sortKey) == nil
}

func (m *Store[T, PT]) Remove(ctx context.Context, partitionKey string, sortKey int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, storeKey{partitionKey, sortKey})
	return nil
}

func (m *Store[T, PT]) ListForPartition(ctx context.Context, partitionKey string) []T {
	items, err := m.List(ctx, partitionKey)
	if err != nil {
		return []T{}
	}
	return items
}

// List returns the partition in ascending sort key order.
func (m *Store[T, PT]) List(ctx context.Context, partitionKey string) ([]T, error) {
	if m.listError != nil {
		return nil, m.listError
	}

	m.mu.RLock()
	var keys []storeKey
	for k := range m.data {
		if k.pk == partitionKey {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].sk < keys[j].sk })

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		var v T
		if err := attributevalue.UnmarshalMap(m.data[k], &v); err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		out = append(out, v)
	}
	m.mu.RUnlock()
	return out, nil
}

func kindOf[T any, PT storagemodels.EntityPtr[T]]() string {
	return PT(new(T)).TableName()
}
