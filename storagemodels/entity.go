/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names shared by every entity table.
const (
	PartitionKeyAttr = "UserId"
	SortKeyAttr      = "EntityId"
	LastModifiedAttr = "LastUpdateTime"
	VersionAttr      = "VersionNumber"

	// DefaultReadCapacity and DefaultWriteCapacity are the provisioned throughput hints
	// used when a kind does not ask for anything else.
	DefaultReadCapacity  int64 = 5
	DefaultWriteCapacity int64 = 5
)

// Entity is the capability set every persisted record kind provides. The store is the
// only caller of SetSortKey and SetLastModified.
type Entity interface {
	// PartitionKey returns the owning subject identifier.
	PartitionKey() string
	// SortKey returns the entity identifier within the partition; zero means unassigned.
	SortKey() int64
	SetSortKey(id int64)
	LastModified() time.Time
	SetLastModified(t time.Time)
	// IsValid reports whether the entity may be written.
	IsValid() bool
	// TableName returns the kind name, which is also the unprefixed physical table name.
	TableName() string
	// Schema describes the physical table layout for the kind.
	Schema() TableSchema
}

// EntityPtr constrains a type parameter to pointers of a struct kind that implement Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Versioned is implemented by kinds that carry an optimistic-concurrency counter. The
// counter is only enforced when the store is configured with optimistic locking.
type Versioned interface {
	Version() int64
	SetVersion(v int64)
}

// KeyAttribute names a key attribute and its scalar type.
type KeyAttribute struct {
	Name string                    `yaml:"name" json:"name"`
	Type types.ScalarAttributeType `yaml:"type" json:"type"`
}

// TableSchema is the physical schema descriptor for one entity kind.
type TableSchema struct {
	Kind          string       `yaml:"kind" json:"kind"`
	TableName     string       `yaml:"table" json:"table"`
	PartitionKey  KeyAttribute `yaml:"partitionKey" json:"partitionKey"`
	SortKey       KeyAttribute `yaml:"sortKey" json:"sortKey"`
	ReadCapacity  int64        `yaml:"readCapacity" json:"readCapacity"`
	WriteCapacity int64        `yaml:"writeCapacity" json:"writeCapacity"`
}

// UserEntitySchema returns the layout shared by all user-owned kinds: hash key UserId (S),
// range key EntityId (N) and the default throughput hints.
func UserEntitySchema(kind string) TableSchema {
	return TableSchema{
		Kind:          kind,
		TableName:     kind,
		PartitionKey:  KeyAttribute{Name: PartitionKeyAttr, Type: types.ScalarAttributeTypeS},
		SortKey:       KeyAttribute{Name: SortKeyAttr, Type: types.ScalarAttributeTypeN},
		ReadCapacity:  DefaultReadCapacity,
		WriteCapacity: DefaultWriteCapacity,
	}
}

// AttributeDefinitions returns the key attribute definitions for a CreateTable request.
func (s TableSchema) AttributeDefinitions() []types.AttributeDefinition {
	return []types.AttributeDefinition{
		{AttributeName: aws.String(s.PartitionKey.Name), AttributeType: s.PartitionKey.Type},
		{AttributeName: aws.String(s.SortKey.Name), AttributeType: s.SortKey.Type},
	}
}

// KeySchema returns the HASH and RANGE key elements for a CreateTable request.
func (s TableSchema) KeySchema() []types.KeySchemaElement {
	return []types.KeySchemaElement{
		{AttributeName: aws.String(s.PartitionKey.Name), KeyType: types.KeyTypeHash},
		{AttributeName: aws.String(s.SortKey.Name), KeyType: types.KeyTypeRange},
	}
}

// ProvisionedThroughput returns the capacity hints for a CreateTable request.
func (s TableSchema) ProvisionedThroughput() *types.ProvisionedThroughput {
	return &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(s.ReadCapacity),
		WriteCapacityUnits: aws.Int64(s.WriteCapacity),
	}
}

// hasKeys is the part of every validity check that does not depend on the kind.
func hasKeys(userID string, entityID int64) bool {
	return !isBlank(userID) && entityID != 0
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
