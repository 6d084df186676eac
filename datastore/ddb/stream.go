/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recipestore/storagemodels"
)

// Stream delivers every entity of a partition over a channel, one Query page at a time.
// The channel is closed when the partition is exhausted, the context is cancelled, or an
// unrecoverable error has been sent.
func (s *EntityStore[T, PT]) Stream(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	return s.stream(ctx, s.partitionQuery(partitionKey), opts...)
}

func (s *EntityStore[T, PT]) stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go s.streamWorker(ctx, params, options, resultCh)
	return resultCh
}

// streamWorker handles the actual streaming logic
func (s *EntityStore[T, PT]) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var (
		itemIndex  int64
		pageNumber int
		errs       []error
		startTime  = time.Now()
	)

	send := func(r storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}
	fail := func(err error) {
		send(storagemodels.StreamResult[T]{
			Error: err,
			Meta: storagemodels.StreamMeta{
				Index:      itemIndex,
				PageNumber: pageNumber,
				Timestamp:  time.Now(),
			},
		})
	}
	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         errs,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	if err := s.provisioner.Provision(ctx); err != nil {
		fail(err)
		return
	}

	input := queryInput(params, options.PageSize)
	for {
		if ctx.Err() != nil {
			return
		}

		out, err := s.queryWithRetry(ctx, input, options)
		if err != nil {
			if options.ErrorHandler == nil || !options.ErrorHandler(err) {
				fail(fmt.Errorf("query failed: %w", err))
				return
			}
			// The handler asked to keep going: record the failure and fetch the page again.
			errs = append(errs, err)
			continue
		}

		pageNumber++
		for _, item := range out.Items {
			result := s.processItem(item, itemIndex, pageNumber)
			itemIndex++
			if result.Error != nil {
				errs = append(errs, result.Error)
				if options.ErrorHandler != nil && !options.ErrorHandler(result.Error) {
					send(result)
					return
				}
			}
			if !send(result) {
				return
			}
		}

		reportProgress(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// Final progress report
	reportProgress(nil)
}

// queryWithRetry executes a query, retrying retryable faults with linear backoff.
func (s *EntityStore[T, PT]) queryWithRetry(
	ctx context.Context,
	input *dynamodb.QueryInput,
	options storagemodels.StreamOptions,
) (*dynamodb.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := s.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			s.log.Debug("retrying query", slog.Int("attempt", attempt+1), slog.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// processItem converts a DynamoDB item to a typed result
func (s *EntityStore[T, PT]) processItem(item map[string]types.AttributeValue, index int64, pageNumber int) storagemodels.StreamResult[T] {
	meta := storagemodels.StreamMeta{
		Index:      index,
		PageNumber: pageNumber,
		Timestamp:  time.Now(),
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(item, result); err != nil {
		return storagemodels.StreamResult[T]{
			Error: fmt.Errorf("failed to unmarshal item to %s: %w", s.schema.Kind, err),
			Raw:   item,
			Meta:  meta,
		}
	}
	return storagemodels.StreamResult[T]{
		Item: result,
		Raw:  item,
		Meta: meta,
	}
}
