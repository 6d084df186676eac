/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"github.com/suparena/recipestore/storagemodels"
)

// Catalog maps entity kinds to their physical table schemas. It is immutable once built
// and safe for concurrent use.
type Catalog struct {
	entries []storagemodels.TableSchema
	byKind  map[string]int
}

// CatalogOptions adjusts how kind schemas are turned into catalog entries.
type CatalogOptions struct {
	TablePrefix   string
	ReadCapacity  int64
	WriteCapacity int64
}

// CatalogOption is a functional option for NewCatalog.
type CatalogOption func(*CatalogOptions)

// WithTablePrefix prefixes every physical table name, e.g. "dev_" gives "dev_Recipe".
func WithTablePrefix(prefix string) CatalogOption {
	return func(o *CatalogOptions) {
		o.TablePrefix = prefix
	}
}

// WithCapacity overrides the provisioned throughput hints of every entry. Non-positive
// values leave the kind's own hint in place.
func WithCapacity(read, write int64) CatalogOption {
	return func(o *CatalogOptions) {
		o.ReadCapacity = read
		o.WriteCapacity = write
	}
}

// NewCatalog builds a catalog from the schemas of the given kinds. When a kind appears more
// than once the first registration wins.
func NewCatalog(opts []CatalogOption, kinds ...storagemodels.Entity) *Catalog {
	var o CatalogOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{byKind: make(map[string]int, len(kinds))}
	for _, k := range kinds {
		if k == nil {
			continue
		}
		s := k.Schema()
		if s.Kind == "" {
			s.Kind = k.TableName()
		}
		if _, dup := c.byKind[s.Kind]; dup {
			continue
		}
		if s.TableName == "" {
			s.TableName = s.Kind
		}
		s.TableName = o.TablePrefix + s.TableName
		if o.ReadCapacity > 0 {
			s.ReadCapacity = o.ReadCapacity
		}
		if o.WriteCapacity > 0 {
			s.WriteCapacity = o.WriteCapacity
		}
		c.byKind[s.Kind] = len(c.entries)
		c.entries = append(c.entries, s)
	}
	return c
}

// DefaultCatalog registers Recipe, Meal, Person and Plan, in that order.
func DefaultCatalog(opts ...CatalogOption) *Catalog {
	return NewCatalog(opts,
		&storagemodels.Recipe{},
		&storagemodels.Meal{},
		&storagemodels.Person{},
		&storagemodels.Plan{},
	)
}

// Lookup returns the schema registered for kind.
func (c *Catalog) Lookup(kind string) (storagemodels.TableSchema, bool) {
	i, ok := c.byKind[kind]
	if !ok {
		return storagemodels.TableSchema{}, false
	}
	return c.entries[i], true
}

// LookupEntity returns the schema registered for e's kind.
func (c *Catalog) LookupEntity(e storagemodels.Entity) (storagemodels.TableSchema, bool) {
	if e == nil {
		return storagemodels.TableSchema{}, false
	}
	return c.Lookup(e.TableName())
}

// Entries returns a copy of all schemas in registration order.
func (c *Catalog) Entries() []storagemodels.TableSchema {
	out := make([]storagemodels.TableSchema, len(c.entries))
	copy(out, c.entries)
	return out
}

// Kinds returns the registered kind names in registration order.
func (c *Catalog) Kinds() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Kind)
	}
	return out
}

// TableNames returns the physical table names in registration order.
func (c *Catalog) TableNames() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.TableName)
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
