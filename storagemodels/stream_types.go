/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StreamResult is one entity delivered by a partition stream.
type StreamResult[T any] struct {
	Item  *T                              // The decoded entity, nil when Error is set
	Raw   map[string]types.AttributeValue // Raw DynamoDB attributes
	Error error                           // Item or page error, if any
	Meta  StreamMeta
}

// StreamMeta contains metadata about a streamed item
type StreamMeta struct {
	Index      int64     // Item index in stream (0-based)
	PageNumber int       // DynamoDB page number (1-based)
	Timestamp  time.Time // When item was retrieved
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize      int                  // Channel buffer size (default: 100)
	MaxRetries      int                  // Retry attempts for retryable faults (default: 3)
	RetryBackoff    time.Duration        // Linear backoff step between retries (default: 1s)
	PageSize        int32                // Items per Query page (default: 100)
	ProgressHandler func(StreamProgress) // Called after every page
	ErrorHandler    func(error) bool     // Return true to refetch the failed page, false to stop
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	LastKey        map[string]types.AttributeValue // nil on the final report
	Errors         []error                         // Accumulated non-fatal errors
	StartTime      time.Time
	CurrentRate    float64 // Items per second
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
}

// NewStreamOptions applies opts over the defaults and clamps nonsensical values back to them.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	o := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&o)
	}
	def := DefaultStreamOptions()
	if o.BufferSize < 0 {
		o.BufferSize = def.BufferSize
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.PageSize <= 0 {
		o.PageSize = def.PageSize
	}
	return o
}

func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

func WithMaxRetries(retries int) StreamOption {
	return func(opts *StreamOptions) {
		opts.MaxRetries = retries
	}
}

func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(opts *StreamOptions) {
		opts.RetryBackoff = backoff
	}
}

func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a callback invoked after each page and once at the end.
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler sets an error handler that can decide whether to continue
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}
