/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recipestore/datastore/mock"
	serrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/registry"
	"github.com/suparena/recipestore/storagemodels"
)

func newTestProvisioner(t *testing.T, api API, opts ...Option) *Provisioner {
	t.Helper()
	p, err := NewProvisioner(api, registry.DefaultCatalog(), opts...)
	require.NoError(t, err)
	return p
}

func TestProvisionCreatesMissingTables(t *testing.T) {
	db := mock.NewDynamoDB().WithTable(storagemodels.UserEntitySchema("Meal"))
	p := newTestProvisioner(t, db)

	require.True(t, p.EnsureProvisioned(context.Background()))
	assert.Equal(t, []string{"Meal", "Person", "Plan", "Recipe"}, db.TableNames())
	assert.Equal(t, 3, db.Calls(mock.OpCreateTable), "existing tables are not recreated")
	assert.True(t, p.Ready())
}

func TestProvisionCreateTableRequest(t *testing.T) {
	var (
		mu       sync.Mutex
		captured []*dynamodb.CreateTableInput
	)
	api := &mockAPI{
		createTableFunc: func(_ context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			mu.Lock()
			captured = append(captured, params)
			mu.Unlock()
			return &dynamodb.CreateTableOutput{}, nil
		},
	}
	p, err := NewProvisioner(api, registry.DefaultCatalog(registry.WithTablePrefix("dev_")))
	require.NoError(t, err)
	require.True(t, p.EnsureProvisioned(context.Background()))

	require.Len(t, captured, 4)
	names := map[string]bool{}
	for _, in := range captured {
		names[aws.ToString(in.TableName)] = true
		require.Len(t, in.KeySchema, 2)
		assert.Equal(t, "UserId", aws.ToString(in.KeySchema[0].AttributeName))
		assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
		assert.Equal(t, "EntityId", aws.ToString(in.KeySchema[1].AttributeName))
		assert.Equal(t, types.KeyTypeRange, in.KeySchema[1].KeyType)
		assert.Equal(t, int64(5), aws.ToInt64(in.ProvisionedThroughput.ReadCapacityUnits))
		assert.Equal(t, int64(5), aws.ToInt64(in.ProvisionedThroughput.WriteCapacityUnits))
	}
	assert.Equal(t, map[string]bool{"dev_Recipe": true, "dev_Meal": true, "dev_Person": true, "dev_Plan": true}, names)
}

func TestProvisionFastPath(t *testing.T) {
	db := mock.NewDynamoDB()
	p := newTestProvisioner(t, db)
	ctx := context.Background()

	require.True(t, p.EnsureProvisioned(ctx))
	require.True(t, p.EnsureProvisioned(ctx))
	require.True(t, p.EnsureProvisioned(ctx))
	assert.Equal(t, 1, db.Calls(mock.OpListTables))

	p.Reset()
	assert.False(t, p.Ready())
	require.True(t, p.EnsureProvisioned(ctx))
	assert.Equal(t, 2, db.Calls(mock.OpListTables))
	assert.Equal(t, 4, db.Calls(mock.OpCreateTable), "second run finds every table")
}

func TestProvisionConcurrentCallersShareOneAttempt(t *testing.T) {
	db := mock.NewDynamoDB().WithListTablesDelay(50 * time.Millisecond)
	p := newTestProvisioner(t, db)

	const callers = 50
	var (
		wg      sync.WaitGroup
		ready   atomic.Int32
		release = make(chan struct{})
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-release
			if p.EnsureProvisioned(context.Background()) {
				ready.Add(1)
			}
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(callers), ready.Load())
	assert.Equal(t, 1, db.Calls(mock.OpListTables))
	assert.Equal(t, 4, db.Calls(mock.OpCreateTable))
}

func TestProvisionPartialFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	db := mock.NewDynamoDB().WithCreateTableError("Person", errors.New("limit exceeded"))
	p := newTestProvisioner(t, db)

	assert.False(t, p.EnsureProvisioned(ctx))
	assert.False(t, p.Ready(), "failure is not cached")
	assert.Equal(t, []string{"Meal", "Plan", "Recipe"}, db.TableNames())

	err := p.Provision(ctx)
	var pe *serrors.ProvisioningError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{"Person"}, pe.Tables)

	db.WithCreateTableError("Person", nil)
	db.ResetCalls()

	assert.True(t, p.EnsureProvisioned(ctx))
	assert.Equal(t, 1, db.Calls(mock.OpCreateTable), "only the missing table is created")
	assert.Equal(t, []string{"Meal", "Person", "Plan", "Recipe"}, db.TableNames())
}

func TestProvisionListTablesFailure(t *testing.T) {
	db := mock.NewDynamoDB().WithListTablesError(errors.New("no route to host"))
	p := newTestProvisioner(t, db)

	assert.False(t, p.EnsureProvisioned(context.Background()))
	assert.Equal(t, 0, db.Calls(mock.OpCreateTable))

	err := p.Provision(context.Background())
	assert.True(t, serrors.IsProvisioning(err))
	assert.True(t, serrors.IsBackend(err))
}

func TestProvisionResourceInUseIsSuccess(t *testing.T) {
	api := &mockAPI{
		createTableFunc: func(context.Context, *dynamodb.CreateTableInput, ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			return nil, &types.ResourceInUseException{Message: aws.String("Table already exists")}
		},
	}
	p := newTestProvisioner(t, api)

	assert.True(t, p.EnsureProvisioned(context.Background()))
	assert.Equal(t, int32(4), api.createTableCalls.Load())
}

func TestProvisionPaginatesTableList(t *testing.T) {
	db := mock.NewDynamoDB().WithListTablesPageSize(1)
	for _, s := range registry.DefaultCatalog().Entries() {
		db.WithTable(s)
	}
	p := newTestProvisioner(t, db)

	require.True(t, p.EnsureProvisioned(context.Background()))
	assert.Equal(t, 4, db.Calls(mock.OpListTables))
	assert.Equal(t, 0, db.Calls(mock.OpCreateTable))
}

func TestProvisionWaitsForActive(t *testing.T) {
	db := mock.NewDynamoDB()
	p := newTestProvisioner(t, db, WithWaitForActive(5*time.Second))

	require.True(t, p.EnsureProvisioned(context.Background()))
	assert.Equal(t, 4, db.Calls(mock.OpDescribeTable))
}

func TestProvisionWaitFailure(t *testing.T) {
	db := mock.NewDynamoDB().WithError(mock.OpDescribeTable, errors.New("access denied"))
	p := newTestProvisioner(t, db, WithWaitForActive(5*time.Second))

	assert.False(t, p.EnsureProvisioned(context.Background()))
}

func TestProvisionOutlivesCancelledCaller(t *testing.T) {
	entered := make(chan struct{})
	proceed := make(chan struct{})
	api := &mockAPI{
		listTablesFunc: func(ctx context.Context, _ *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
			close(entered)
			<-proceed
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &dynamodb.ListTablesOutput{}, nil
		},
	}
	p := newTestProvisioner(t, api)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- p.Provision(first) }()
	<-entered

	joinErr := make(chan error, 1)
	go func() { joinErr <- p.Provision(context.Background()) }()

	cancel()
	err := <-firstErr
	assert.True(t, serrors.IsProvisioning(err))
	assert.ErrorIs(t, err, context.Canceled)

	close(proceed)
	require.NoError(t, <-joinErr)
	assert.True(t, p.Ready())
	assert.Equal(t, int32(1), api.listTablesCalls.Load())
}

func TestProvisionTimeout(t *testing.T) {
	api := &mockAPI{
		listTablesFunc: func(ctx context.Context, _ *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	p := newTestProvisioner(t, api, WithProvisionTimeout(20*time.Millisecond))

	err := p.Provision(context.Background())
	assert.True(t, serrors.IsProvisioning(err))
	assert.False(t, p.Ready())
}

func TestNewProvisionerValidation(t *testing.T) {
	_, err := NewProvisioner(nil, registry.DefaultCatalog())
	assert.Error(t, err)
	_, err = NewProvisioner(&mockAPI{}, nil)
	assert.Error(t, err)
	_, err = NewProvisioner(&mockAPI{}, registry.DefaultCatalog(), WithCreateConcurrency(0))
	assert.Error(t, err)
	_, err = NewProvisioner(&mockAPI{}, registry.DefaultCatalog(), WithProvisionTimeout(0))
	assert.Error(t, err)
}
