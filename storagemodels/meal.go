/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// MealKind is the kind name and base table name for meals.
const MealKind = "Meal"

// Meal groups recipes that are cooked together.
type Meal struct {
	UserId          string    `dynamodbav:"UserId" json:"userId"`
	EntityId        int64     `dynamodbav:"EntityId" json:"entityId"`
	MealName        string    `dynamodbav:"MealName" json:"mealName"`
	Recipes         []int64   `dynamodbav:"Recipes" json:"recipes"`
	Servings        int       `dynamodbav:"Servings" json:"servings"`
	PrepTimeMins    int       `dynamodbav:"PrepTimeMins" json:"prepTimeMins"`
	FavoriteOfUsers []int64   `dynamodbav:"FavoriteOfUsers" json:"favoriteOfUsers"`
	Allergens       []string  `dynamodbav:"Allergens" json:"allergens"`
	LastUpdateTime  time.Time `dynamodbav:"LastUpdateTime" json:"lastUpdateTime"`
}

// Entity accessors; see Recipe for the contract.
func (m *Meal) PartitionKey() string        { return m.UserId }
func (m *Meal) SortKey() int64              { return m.EntityId }
func (m *Meal) SetSortKey(id int64)         { m.EntityId = id }
func (m *Meal) LastModified() time.Time     { return m.LastUpdateTime }
func (m *Meal) SetLastModified(t time.Time) { m.LastUpdateTime = t }
func (m *Meal) TableName() string           { return MealKind }
func (m *Meal) Schema() TableSchema         { return UserEntitySchema(MealKind) }

// IsValid requires both keys and a non-blank meal name.
func (m *Meal) IsValid() bool {
	return hasKeys(m.UserId, m.EntityId) && !isBlank(m.MealName)
}
