/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// PersonKind is the kind name and base table name for people.
const PersonKind = "Person"

// Person is someone a user cooks for. ServingAdjustment scales recipe servings.
type Person struct {
	UserId            string    `dynamodbav:"UserId" json:"userId"`
	EntityId          int64     `dynamodbav:"EntityId" json:"entityId"`
	Name              string    `dynamodbav:"Name" json:"name"`
	ServingAdjustment float32   `dynamodbav:"ServingAdjustment" json:"servingAdjustment"`
	Restrictions      []string  `dynamodbav:"Restrictions" json:"restrictions"`
	LastUpdateTime    time.Time `dynamodbav:"LastUpdateTime" json:"lastUpdateTime"`
}

// NewPerson returns a person with the neutral serving adjustment of 1.0.
func NewPerson(userID, name string) *Person {
	return &Person{
		UserId:            userID,
		Name:              name,
		ServingAdjustment: 1.0,
		Restrictions:      []string{},
	}
}

// Entity accessors.
func (p *Person) PartitionKey() string        { return p.UserId }
func (p *Person) SortKey() int64              { return p.EntityId }
func (p *Person) SetSortKey(id int64)         { p.EntityId = id }
func (p *Person) LastModified() time.Time     { return p.LastUpdateTime }
func (p *Person) SetLastModified(t time.Time) { p.LastUpdateTime = t }
func (p *Person) TableName() string           { return PersonKind }
func (p *Person) Schema() TableSchema         { return UserEntitySchema(PersonKind) }

// IsValid requires both keys and a non-blank name.
func (p *Person) IsValid() bool {
	return hasKeys(p.UserId, p.EntityId) && !isBlank(p.Name)
}
