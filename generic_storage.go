/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recipestore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/recipestore/datastore"
	"github.com/suparena/recipestore/errors"
)

// Stores holds one datastore.Store per entity type. It is safe for concurrent use.
type Stores struct {
	mu     sync.RWMutex
	stores map[reflect.Type]registration
}

type registration struct {
	kind  string
	store any
}

// NewStores creates an empty registry.
func NewStores() *Stores {
	return &Stores{
		stores: make(map[reflect.Type]registration),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register adds the store for entity type T under the given kind name.
func Register[T any](s *Stores, kind string, store datastore.Store[T]) error {
	if store == nil {
		return fmt.Errorf("store for %s must not be nil", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	typ := typeOf[T]()
	if _, exists := s.stores[typ]; exists {
		return errors.NewAlreadyExistsError("store", typ.String())
	}
	s.stores[typ] = registration{kind: kind, store: store}
	return nil
}

// StoreFor returns the store registered for entity type T.
func StoreFor[T any](s *Stores) (datastore.Store[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typ := typeOf[T]()
	reg, exists := s.stores[typ]
	if !exists {
		return nil, errors.NewNotFoundError("store", typ.String())
	}
	return reg.store.(datastore.Store[T]), nil
}

// Unregister removes the store for entity type T.
func Unregister[T any](s *Stores) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := typeOf[T]()
	if _, exists := s.stores[typ]; !exists {
		return errors.NewNotFoundError("store", typ.String())
	}
	delete(s.stores, typ)
	return nil
}

// Kinds returns the registered kind names in sorted order.
func (s *Stores) Kinds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]string, 0, len(s.stores))
	for _, reg := range s.stores {
		kinds = append(kinds, reg.kind)
	}
	sort.Strings(kinds)
	return kinds
}
