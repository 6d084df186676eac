/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	serrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/storagemodels"
)

// queryInput translates query parameters into a Query request. pageSize, when positive,
// overrides the per-page limit.
func queryInput(params *storagemodels.QueryParams, pageSize int32) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:                 &params.TableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
		ConsistentRead:            params.ConsistentRead,
	}
	if pageSize > 0 {
		input.Limit = &pageSize
	}
	return input
}

// queryAll follows LastEvaluatedKey until the partition is exhausted or params.Limit items
// have been collected. The result is never nil.
func (s *EntityStore[T, PT]) queryAll(ctx context.Context, params *storagemodels.QueryParams) ([]T, error) {
	var limit int
	if params.Limit != nil {
		limit = int(*params.Limit)
	}

	results := make([]T, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, queryInput(params, 0))
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, serrors.NewBackendError("Query", params.TableName, isRetryableError(err), err)
		}
		for _, item := range page.Items {
			var v T
			if err := attributevalue.UnmarshalMap(item, &v); err != nil {
				return nil, serrors.NewBackendError("Query", params.TableName, false, fmt.Errorf("failed to unmarshal item: %w", err))
			}
			results = append(results, v)
			if limit > 0 && len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}
