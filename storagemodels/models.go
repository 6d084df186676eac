/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryParams defines a single-partition Query against one entity table.
// Used for both paginated listing and streaming.
type QueryParams struct {
	// TableName is the physical (possibly prefixed) table name.
	TableName string
	// KeyConditionExpression selects the partition, e.g. "#pk = :pk".
	KeyConditionExpression string
	// FilterExpression is an optional filter applied after the key condition.
	FilterExpression *string
	// ExpressionAttributeNames maps name placeholders to attribute names.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// Limit caps the total number of items returned; nil means no cap.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward specifies the sort key order.
	// If true (default), traversal is in ascending order.
	// If false, traversal is in descending order.
	ScanIndexForward *bool
	// ConsistentRead requests strongly consistent reads.
	ConsistentRead *bool
}
