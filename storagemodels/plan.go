/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// PlanKind is the kind name and base table name for meal plans.
const PlanKind = "Plan"

// Plan is a user's meal plan. It currently carries only its keys.
type Plan struct {
	UserId         string    `dynamodbav:"UserId" json:"userId"`
	EntityId       int64     `dynamodbav:"EntityId" json:"entityId"`
	LastUpdateTime time.Time `dynamodbav:"LastUpdateTime" json:"lastUpdateTime"`
}

// Entity accessors.
func (p *Plan) PartitionKey() string        { return p.UserId }
func (p *Plan) SortKey() int64              { return p.EntityId }
func (p *Plan) SetSortKey(id int64)         { p.EntityId = id }
func (p *Plan) LastModified() time.Time     { return p.LastUpdateTime }
func (p *Plan) SetLastModified(t time.Time) { p.LastUpdateTime = t }
func (p *Plan) TableName() string           { return PlanKind }
func (p *Plan) Schema() TableSchema         { return UserEntitySchema(PlanKind) }

// IsValid requires both keys; a plan with no meals or people is valid.
func (p *Plan) IsValid() bool {
	return hasKeys(p.UserId, p.EntityId)
}
