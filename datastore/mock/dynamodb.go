/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recipestore/storagemodels"
)

// Operation names accepted by Calls.
const (
	OpListTables    = "ListTables"
	OpCreateTable   = "CreateTable"
	OpDescribeTable = "DescribeTable"
	OpGetItem       = "GetItem"
	OpPutItem       = "PutItem"
	OpDeleteItem    = "DeleteItem"
	OpQuery         = "Query"
)

// DynamoDB is an in-memory stand-in for the DynamoDB API with fault injection and call
// counting. It understands the small expression language the stores emit: comparisons
// joined by AND, plus attribute_exists and attribute_not_exists.
type DynamoDB struct {
	mu     sync.Mutex
	tables map[string]*memTable
	calls  map[string]int

	errs          map[string]error
	createErrs    map[string]error
	listDelay     time.Duration
	listPageSize  int32
	queryPageSize int32
}

type memTable struct {
	hashKey  string
	rangeKey string
	items    map[string]map[string]types.AttributeValue
}

// NewDynamoDB returns an empty fake with no tables.
func NewDynamoDB() *DynamoDB {
	return &DynamoDB{
		tables:     make(map[string]*memTable),
		calls:      make(map[string]int),
		errs:       make(map[string]error),
		createErrs: make(map[string]error),
	}
}

// WithTable creates a table up front, as if it had been provisioned earlier.
func (m *DynamoDB) WithTable(s storagemodels.TableSchema) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[s.TableName] = newMemTable(s.PartitionKey.Name, s.SortKey.Name)
	return m
}

// WithError makes every call of op fail with err. A nil err clears the fault.
func (m *DynamoDB) WithError(op string, err error) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
	} else {
		m.errs[op] = err
	}
	return m
}

// WithPutError makes PutItem operations return an error
func (m *DynamoDB) WithPutError(err error) *DynamoDB { return m.WithError(OpPutItem, err) }

// WithGetError makes GetItem operations return an error
func (m *DynamoDB) WithGetError(err error) *DynamoDB { return m.WithError(OpGetItem, err) }

// WithDeleteError makes DeleteItem operations return an error
func (m *DynamoDB) WithDeleteError(err error) *DynamoDB { return m.WithError(OpDeleteItem, err) }

// WithQueryError makes Query operations return an error
func (m *DynamoDB) WithQueryError(err error) *DynamoDB { return m.WithError(OpQuery, err) }

// WithListTablesError makes ListTables operations return an error
func (m *DynamoDB) WithListTablesError(err error) *DynamoDB { return m.WithError(OpListTables, err) }

// WithCreateTableError makes CreateTable fail for one table only. A nil err clears it.
func (m *DynamoDB) WithCreateTableError(table string, err error) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.createErrs, table)
	} else {
		m.createErrs[table] = err
	}
	return m
}

// WithListTablesDelay makes ListTables block for d, which widens race windows in tests.
func (m *DynamoDB) WithListTablesDelay(d time.Duration) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listDelay = d
	return m
}

// WithListTablesPageSize caps table names per ListTables page when the caller sets no limit.
func (m *DynamoDB) WithListTablesPageSize(n int32) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listPageSize = n
	return m
}

// WithQueryPageSize caps items evaluated per Query page when the caller sets no limit.
func (m *DynamoDB) WithQueryPageSize(n int32) *DynamoDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryPageSize = n
	return m
}

// Calls returns how many times op has been invoked, including failed calls.
func (m *DynamoDB) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// ResetCalls zeroes every call counter.
func (m *DynamoDB) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// TableNames returns the existing tables in name order.
func (m *DynamoDB) TableNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedTableNames()
}

// ItemCount returns the number of items in table, or -1 if it does not exist.
func (m *DynamoDB) ItemCount(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return -1
	}
	return len(t.items)
}

// begin counts the call and returns the injected fault, if any. The caller holds no lock.
func (m *DynamoDB) begin(ctx context.Context, op string) error {
	m.mu.Lock()
	m.calls[op]++
	err := m.errs[op]
	m.mu.Unlock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (m *DynamoDB) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	if err := m.begin(ctx, OpListTables); err != nil {
		return nil, err
	}

	m.mu.Lock()
	delay := m.listDelay
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	names := m.sortedTableNames()
	start := 0
	if params.ExclusiveStartTableName != nil {
		start = sort.SearchStrings(names, *params.ExclusiveStartTableName)
		if start < len(names) && names[start] == *params.ExclusiveStartTableName {
			start++
		}
	}
	limit := m.listPageSize
	if params.Limit != nil {
		limit = *params.Limit
	}
	end := len(names)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}

	out := &dynamodb.ListTablesOutput{TableNames: append([]string{}, names[start:end]...)}
	if end < len(names) {
		out.LastEvaluatedTableName = aws.String(names[end-1])
	}
	return out, nil
}

func (m *DynamoDB) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if err := m.begin(ctx, OpCreateTable); err != nil {
		return nil, err
	}
	name := aws.ToString(params.TableName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.createErrs[name]; ok {
		return nil, err
	}
	if _, exists := m.tables[name]; exists {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists: " + name)}
	}

	var hashKey, rangeKey string
	for _, k := range params.KeySchema {
		switch k.KeyType {
		case types.KeyTypeHash:
			hashKey = aws.ToString(k.AttributeName)
		case types.KeyTypeRange:
			rangeKey = aws.ToString(k.AttributeName)
		}
	}
	if hashKey == "" {
		return nil, fmt.Errorf("mock: table %s has no hash key", name)
	}
	m.tables[name] = newMemTable(hashKey, rangeKey)

	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   aws.String(name),
			TableStatus: types.TableStatusActive,
			KeySchema:   params.KeySchema,
		},
	}, nil
}

func (m *DynamoDB) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if err := m.begin(ctx, OpDescribeTable); err != nil {
		return nil, err
	}
	name := aws.ToString(params.TableName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + name)}
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(name),
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func (m *DynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := m.begin(ctx, OpGetItem); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[k]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (m *DynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := m.begin(ctx, OpPutItem); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil {
		current := t.items[k]
		if current == nil {
			current = map[string]types.AttributeValue{}
		}
		ok, err := evaluate(*params.ConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	t.items[k] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *DynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if err := m.begin(ctx, OpDeleteItem); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	delete(t.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query evaluates the key condition over the whole table, orders by range key, applies
// Limit to evaluated items and then the filter, the same order DynamoDB uses.
func (m *DynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := m.begin(ctx, OpQuery); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(params.TableName)
	if err != nil {
		return nil, err
	}
	if params.KeyConditionExpression == nil {
		return nil, fmt.Errorf("mock: Query requires a key condition")
	}

	var matched []map[string]types.AttributeValue
	for _, item := range t.items {
		ok, err := evaluate(*params.KeyConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues, item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return compare(matched[i][t.rangeKey], matched[j][t.rangeKey]) < 0
	})
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	start := 0
	if len(params.ExclusiveStartKey) > 0 {
		startKey, err := t.keyOf(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		for i, item := range matched {
			if k, _ := t.keyOf(item); k == startKey {
				start = i + 1
				break
			}
		}
	}

	limit := m.queryPageSize
	if params.Limit != nil {
		limit = *params.Limit
	}
	end := len(matched)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}

	out := &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{}}
	for _, item := range matched[start:end] {
		out.ScannedCount++
		if params.FilterExpression != nil {
			ok, err := evaluate(*params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues, item)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out.Items = append(out.Items, copyItem(item))
		out.Count++
	}
	if end < len(matched) {
		last := matched[end-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{t.hashKey: last[t.hashKey]}
		if t.rangeKey != "" {
			out.LastEvaluatedKey[t.rangeKey] = last[t.rangeKey]
		}
	}
	return out, nil
}

func (m *DynamoDB) table(name *string) (*memTable, error) {
	t, ok := m.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + aws.ToString(name))}
	}
	return t, nil
}

func (m *DynamoDB) sortedTableNames() []string {
	names := make([]string, 0, len(m.tables))
	for n := range m.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newMemTable(hashKey, rangeKey string) *memTable {
	return &memTable{
		hashKey:  hashKey,
		rangeKey: rangeKey,
		items:    make(map[string]map[string]types.AttributeValue),
	}
}

func (t *memTable) keyOf(item map[string]types.AttributeValue) (string, error) {
	hash, ok := scalar(item[t.hashKey])
	if !ok {
		return "", fmt.Errorf("mock: missing hash key %s", t.hashKey)
	}
	if t.rangeKey == "" {
		return hash, nil
	}
	rng, ok := scalar(item[t.rangeKey])
	if !ok {
		return "", fmt.Errorf("mock: missing range key %s", t.rangeKey)
	}
	return hash + "|" + rng, nil
}

func scalar(av types.AttributeValue) (string, bool) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value, true
	case *types.AttributeValueMemberN:
		return "N:" + v.Value, true
	default:
		return "", false
	}
}

// copyItem copies the top-level map. Attribute values are never mutated in place by the
// SDK encoders, so sharing them is safe.
func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// evaluate interprets a conjunction of clauses against item.
func evaluate(expr string, names map[string]string, values map[string]types.AttributeValue, item map[string]types.AttributeValue) (bool, error) {
	for _, clause := range strings.Split(expr, " AND ") {
		ok, err := evaluateClause(strings.TrimSpace(clause), names, values, item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evaluateClause(clause string, names map[string]string, values map[string]types.AttributeValue, item map[string]types.AttributeValue) (bool, error) {
	clause = strings.TrimSuffix(strings.TrimPrefix(clause, "("), ")")

	for _, fn := range []string{"attribute_not_exists", "attribute_exists"} {
		if strings.HasPrefix(clause, fn+"(") {
			arg := strings.TrimSuffix(strings.TrimPrefix(clause, fn+"("), ")")
			_, exists := item[resolveName(strings.TrimSpace(arg), names)]
			if fn == "attribute_exists" {
				return exists, nil
			}
			return !exists, nil
		}
	}

	fields := strings.Fields(clause)
	if len(fields) != 3 {
		return false, fmt.Errorf("mock: unsupported expression clause %q", clause)
	}
	left, ok := item[resolveName(fields[0], names)]
	if !ok {
		return false, nil
	}
	right, ok := values[fields[2]]
	if !ok {
		return false, fmt.Errorf("mock: missing expression value %s", fields[2])
	}

	c := compare(left, right)
	switch fields[1] {
	case "=":
		return c == 0, nil
	case "<>":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	default:
		return false, fmt.Errorf("mock: unsupported operator %q", fields[1])
	}
}

func resolveName(token string, names map[string]string) string {
	if strings.HasPrefix(token, "#") {
		if n, ok := names[token]; ok {
			return n
		}
	}
	return token
}

// compare orders two scalar attribute values; numbers numerically, everything else as strings.
func compare(a, b types.AttributeValue) int {
	an, aok := a.(*types.AttributeValueMemberN)
	bn, bok := b.(*types.AttributeValueMemberN)
	if aok && bok {
		ai, aerr := strconv.ParseInt(an.Value, 10, 64)
		bi, berr := strconv.ParseInt(bn.Value, 10, 64)
		if aerr == nil && berr == nil {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
		af, _ := strconv.ParseFloat(an.Value, 64)
		bf, _ := strconv.ParseFloat(bn.Value, 64)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, _ := scalar(a)
	bs, _ := scalar(b)
	return strings.Compare(as, bs)
}
