/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"slices"
	"time"
)

// RecipeKind is the kind name and base table name for recipes.
const RecipeKind = "Recipe"

// Recipe is the stored form of a user's recipe.
type Recipe struct {
	UserId         string    `dynamodbav:"UserId" json:"userId"`
	EntityId       int64     `dynamodbav:"EntityId" json:"entityId"`
	Name           string    `dynamodbav:"Name" json:"name"`
	LastUpdateTime time.Time `dynamodbav:"LastUpdateTime" json:"lastUpdateTime"`
	Ingredients    []string  `dynamodbav:"Ingredients" json:"ingredients"`
	Steps          []string  `dynamodbav:"Steps" json:"steps"`
	Servings       int       `dynamodbav:"Servings" json:"servings"`
	PrepTimeMins   int       `dynamodbav:"PrepTimeMins" json:"prepTimeMins"`
	CookTimeMins   int       `dynamodbav:"CookTimeMins" json:"cookTimeMins"`

	// VersionNumber is only checked when the store runs with optimistic locking.
	VersionNumber int64 `dynamodbav:"VersionNumber,omitempty" json:"versionNumber,omitempty"`
}

// NewRecipe returns a recipe with empty, non-nil ingredient and step lists.
func NewRecipe(userID, name string) *Recipe {
	return &Recipe{
		UserId:      userID,
		Name:        name,
		Ingredients: []string{},
		Steps:       []string{},
	}
}

// PartitionKey returns the owning user id.
func (r *Recipe) PartitionKey() string { return r.UserId }

// SortKey returns the recipe id; zero means unassigned.
func (r *Recipe) SortKey() int64 { return r.EntityId }

// SetSortKey sets the recipe id.
func (r *Recipe) SetSortKey(id int64) { r.EntityId = id }

// LastModified returns the stamp written by the store on save.
func (r *Recipe) LastModified() time.Time { return r.LastUpdateTime }

// SetLastModified sets the last-modified stamp.
func (r *Recipe) SetLastModified(t time.Time) { r.LastUpdateTime = t }

// TableName returns the recipe kind name.
func (r *Recipe) TableName() string { return RecipeKind }

// Schema returns the recipe table layout.
func (r *Recipe) Schema() TableSchema { return UserEntitySchema(RecipeKind) }

// Version returns the stored version used by optimistic locking.
func (r *Recipe) Version() int64 { return r.VersionNumber }

// SetVersion records the version accepted by the store.
func (r *Recipe) SetVersion(v int64) { r.VersionNumber = v }

// IsValid requires both keys, a non-blank name, and non-nil (possibly empty)
// ingredient and step lists.
func (r *Recipe) IsValid() bool {
	if !hasKeys(r.UserId, r.EntityId) {
		return false
	}
	if isBlank(r.Name) {
		return false
	}
	return r.Ingredients != nil && r.Steps != nil
}

// Equal compares identity only: owner, id and version.
func (r *Recipe) Equal(other *Recipe) bool {
	if r == nil || other == nil {
		return false
	}
	return r.UserId == other.UserId &&
		r.EntityId == other.EntityId &&
		r.VersionNumber == other.VersionNumber
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Ingredients = slices.Clone(r.Ingredients)
	c.Steps = slices.Clone(r.Steps)
	return &c
}
