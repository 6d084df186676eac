/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	serrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/storagemodels"
)

// QueryBuilder narrows a partition query by last-modified time. Bounds are half-open:
// ModifiedAfter is inclusive, ModifiedBefore is exclusive.
type QueryBuilder[T any, PT storagemodels.EntityPtr[T]] struct {
	store        *EntityStore[T, PT]
	partitionKey string
	after        *time.Time
	before       *time.Time
	descending   bool
	limit        *int32
	err          error
}

// Query starts a builder over one partition.
func (s *EntityStore[T, PT]) Query(partitionKey string) *QueryBuilder[T, PT] {
	return &QueryBuilder[T, PT]{store: s, partitionKey: partitionKey}
}

// ModifiedAfter keeps entities modified at or after t.
func (q *QueryBuilder[T, PT]) ModifiedAfter(t time.Time) *QueryBuilder[T, PT] {
	q.after = &t
	return q
}

// ModifiedBefore keeps entities modified strictly before t.
func (q *QueryBuilder[T, PT]) ModifiedBefore(t time.Time) *QueryBuilder[T, PT] {
	q.before = &t
	return q
}

// ModifiedBetween keeps entities modified in [start, end).
func (q *QueryBuilder[T, PT]) ModifiedBetween(start, end time.Time) *QueryBuilder[T, PT] {
	if end.Before(start) {
		q.err = serrors.NewValidationError(storagemodels.LastModifiedAttr, "range end is before range start")
		return q
	}
	return q.ModifiedAfter(start).ModifiedBefore(end)
}

// InLastDays keeps entities modified within the last n days of the store's clock.
func (q *QueryBuilder[T, PT]) InLastDays(days int) *QueryBuilder[T, PT] {
	if days < 0 {
		q.err = serrors.NewValidationError("days", "must not be negative")
		return q
	}
	return q.ModifiedAfter(q.store.opts.clock().AddDate(0, 0, -days))
}

// Descending returns results in descending sort key order.
func (q *QueryBuilder[T, PT]) Descending() *QueryBuilder[T, PT] {
	q.descending = true
	return q
}

// Limit caps the number of results.
func (q *QueryBuilder[T, PT]) Limit(n int32) *QueryBuilder[T, PT] {
	if n <= 0 {
		q.err = serrors.NewValidationError("limit", "must be greater than zero")
		return q
	}
	q.limit = aws.Int32(n)
	return q
}

// Build constructs the final query parameters
func (q *QueryBuilder[T, PT]) Build() (*storagemodels.QueryParams, error) {
	if q.err != nil {
		return nil, q.err
	}
	if strings.TrimSpace(q.partitionKey) == "" {
		return nil, serrors.NewValidationError(storagemodels.PartitionKeyAttr, "partition key is required")
	}

	params := q.store.partitionQuery(q.partitionKey)
	params.Limit = q.limit
	if q.descending {
		params.ScanIndexForward = aws.Bool(false)
	}

	var clauses []string
	if q.after != nil {
		clauses = append(clauses, "#lm >= :after")
		params.ExpressionAttributeValues[":after"] = timeValue(*q.after)
	}
	if q.before != nil {
		clauses = append(clauses, "#lm < :before")
		params.ExpressionAttributeValues[":before"] = timeValue(ceilSecond(*q.before))
	}
	if len(clauses) > 0 {
		params.ExpressionAttributeNames["#lm"] = storagemodels.LastModifiedAttr
		params.FilterExpression = aws.String(strings.Join(clauses, " AND "))
	}
	return params, nil
}

// All runs the query and returns every matching entity.
func (q *QueryBuilder[T, PT]) All(ctx context.Context) ([]T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}

	ctx, cancel := q.store.withTimeout(ctx)
	defer cancel()

	if err := q.store.provisioner.Provision(ctx); err != nil {
		return nil, err
	}
	return q.store.queryAll(ctx, params)
}

// Stream runs the query as a stream. Limit does not apply to streams; use WithPageSize.
func (q *QueryBuilder[T, PT]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	params, err := q.Build()
	if err != nil {
		ch := make(chan storagemodels.StreamResult[T], 1)
		ch <- storagemodels.StreamResult[T]{Error: err}
		close(ch)
		return ch
	}
	params.Limit = nil
	return q.store.stream(ctx, params, opts...)
}

// ceilSecond rounds t up to the next whole second. Stamps carry second precision, so an
// exclusive bound inside a second must still admit items stamped at its start.
func ceilSecond(t time.Time) time.Time {
	if tr := t.Truncate(time.Second); !tr.Equal(t) {
		return tr.Add(time.Second)
	}
	return t
}

// timeValue encodes t the way stamped entities store it, so string comparison follows time
// order.
func timeValue(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Truncate(time.Second).Format(time.RFC3339Nano)}
}
