/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// faultAttrs returns structured attributes describing a DynamoDB fault, unpacking the
// smithy operation and API error layers when present.
func faultAttrs(err error) []any {
	attrs := []any{slog.String("error", err.Error())}

	var oe *smithy.OperationError
	if errors.As(err, &oe) {
		attrs = append(attrs,
			slog.String("service", oe.Service()),
			slog.String("operation", oe.Operation()),
		)
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		attrs = append(attrs,
			slog.String("error_code", ae.ErrorCode()),
			slog.String("fault", ae.ErrorFault().String()),
		)
	}
	return attrs
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	switch {
	case errors.As(err, &throughput), errors.As(err, &limit), errors.As(err, &internal):
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorFault() == smithy.FaultServer
	}
	return false
}

func isConditionalCheckFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

func isResourceInUse(err error) bool {
	var riu *types.ResourceInUseException
	return errors.As(err, &riu)
}
