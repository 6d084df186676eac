/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"slices"
	"time"

	"github.com/go-openapi/strfmt"
)

// RecipeModel is the wire shape of a recipe exposed by the web API.
type RecipeModel struct {
	UserId       string          `json:"userId"`
	RecipeId     int64           `json:"recipeId"`
	Name         string          `json:"name"`
	LastUpdated  strfmt.DateTime `json:"lastUpdated"`
	Ingredients  []string        `json:"ingredients"`
	Steps        []string        `json:"steps"`
	Servings     int             `json:"servings"`
	PrepTimeMins int             `json:"prepTimeMins"`
	CookTimeMins int             `json:"cookTimeMins"`

	// VersionNumber echoes the stored version so clients can send it back on update.
	VersionNumber int64 `json:"versionNumber,omitempty"`
}

// NewRecipeFromModel converts an API model into the stored form. Lists are copied, and a
// missing list becomes an empty one so the result can pass validation.
func NewRecipeFromModel(m *RecipeModel) *Recipe {
	if m == nil {
		return nil
	}
	return &Recipe{
		UserId:         m.UserId,
		EntityId:       m.RecipeId,
		Name:           m.Name,
		LastUpdateTime: time.Time(m.LastUpdated),
		Ingredients:    copyList(m.Ingredients),
		Steps:          copyList(m.Steps),
		Servings:       m.Servings,
		PrepTimeMins:   m.PrepTimeMins,
		CookTimeMins:   m.CookTimeMins,
		VersionNumber:  m.VersionNumber,
	}
}

// ToModel converts the stored recipe into its API model.
func (r *Recipe) ToModel() *RecipeModel {
	return &RecipeModel{
		UserId:       r.UserId,
		RecipeId:     r.EntityId,
		Name:         r.Name,
		LastUpdated:  strfmt.DateTime(r.LastUpdateTime),
		Ingredients:  copyList(r.Ingredients),
		Steps:        copyList(r.Steps),
		Servings:     r.Servings,
		PrepTimeMins: r.PrepTimeMins,
		CookTimeMins: r.CookTimeMins,

		VersionNumber: r.VersionNumber,
	}
}

func copyList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
