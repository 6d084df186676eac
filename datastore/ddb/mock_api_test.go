/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/suparena/recipestore/datastore/mock"
	"github.com/suparena/recipestore/ident"
	"github.com/suparena/recipestore/registry"
	"github.com/suparena/recipestore/storagemodels"
)

var _ API = (*mock.DynamoDB)(nil)

// mockAPI is a hand-written API whose methods delegate to optional funcs and count calls.
type mockAPI struct {
	listTablesFunc    func(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	createTableFunc   func(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	describeTableFunc func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	getItemFunc       func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	putItemFunc       func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	deleteItemFunc    func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	queryFunc         func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)

	listTablesCalls  atomic.Int32
	createTableCalls atomic.Int32
	putItemCalls     atomic.Int32
	getItemCalls     atomic.Int32
	queryCalls       atomic.Int32
}

// existingTables returns a listTablesFunc reporting that names already exist.
func existingTables(names ...string) func(context.Context, *dynamodb.ListTablesInput, ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return func(context.Context, *dynamodb.ListTablesInput, ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
		return &dynamodb.ListTablesOutput{TableNames: names}, nil
	}
}

func (m *mockAPI) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	m.listTablesCalls.Add(1)
	if m.listTablesFunc != nil {
		return m.listTablesFunc(ctx, params, optFns...)
	}
	return &dynamodb.ListTablesOutput{}, nil
}

func (m *mockAPI) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.createTableCalls.Add(1)
	if m.createTableFunc != nil {
		return m.createTableFunc(ctx, params, optFns...)
	}
	return &dynamodb.CreateTableOutput{}, nil
}

func (m *mockAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeTableFunc != nil {
		return m.describeTableFunc(ctx, params, optFns...)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func (m *mockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.getItemCalls.Add(1)
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putItemCalls.Add(1)
	if m.putItemFunc != nil {
		return m.putItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockAPI) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteItemFunc != nil {
		return m.deleteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queryCalls.Add(1)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

var fixedTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// newTestStore builds a store of kind T over api with the default catalog, a fixed clock and
// a deterministic id sequence.
func newTestStore[T any, PT storagemodels.EntityPtr[T]](t *testing.T, api API, opts ...Option) *EntityStore[T, PT] {
	t.Helper()
	opts = append([]Option{
		WithClock(fixedClock),
		WithIDAllocator(ident.NewSequence(1000)),
	}, opts...)
	s, err := NewEntityStore[T, PT](api, registry.DefaultCatalog(), nil, opts...)
	if err != nil {
		t.Fatalf("NewEntityStore: %v", err)
	}
	return s
}

// provisionedDB returns an in-memory DynamoDB with every default catalog table present.
func provisionedDB() *mock.DynamoDB {
	db := mock.NewDynamoDB()
	for _, s := range registry.DefaultCatalog().Entries() {
		db.WithTable(s)
	}
	return db
}
