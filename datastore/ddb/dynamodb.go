/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recipestore/datastore"
	serrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/registry"
	"github.com/suparena/recipestore/storagemodels"
)

// EntityStore implements datastore.Store[T] for one entity kind, backed by the kind's own
// DynamoDB table.
type EntityStore[T any, PT storagemodels.EntityPtr[T]] struct {
	client      API
	provisioner *Provisioner
	schema      storagemodels.TableSchema
	opts        *Options
	log         *slog.Logger
}

var _ datastore.Store[storagemodels.Recipe] = (*EntityStore[storagemodels.Recipe, *storagemodels.Recipe])(nil)

// NewEntityStore constructs the store for kind T. The kind must be registered in catalog.
// Stores sharing one Provisioner share its provisioning state; a nil provisioner gets a
// private one built from the same client, catalog and options.
func NewEntityStore[T any, PT storagemodels.EntityPtr[T]](client API, catalog *registry.Catalog, provisioner *Provisioner, opts ...Option) (*EntityStore[T, PT], error) {
	if client == nil {
		return nil, errors.New("ddb: client must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("ddb: catalog must not be nil")
	}

	kind := PT(new(T)).TableName()
	schema, ok := catalog.Lookup(kind)
	if !ok {
		return nil, serrors.NewUnknownKindError(kind)
	}

	o := newOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	if provisioner == nil {
		var err error
		provisioner, err = NewProvisioner(client, catalog, opts...)
		if err != nil {
			return nil, err
		}
	}

	return &EntityStore[T, PT]{
		client:      client,
		provisioner: provisioner,
		schema:      schema,
		opts:        o,
		log:         o.logger.With(slog.String("kind", kind), slog.String("table", schema.TableName)),
	}, nil
}

// TableName returns the physical table the store reads and writes.
func (s *EntityStore[T, PT]) TableName() string {
	return s.schema.TableName
}

// Kind returns the entity kind name.
func (s *EntityStore[T, PT]) Kind() string {
	return s.schema.Kind
}

// Save writes item, stamping its last-modified time and assigning an id when its sort key
// is zero. Both mutations happen before the validity check, so an item rejected as invalid
// may still come back modified.
func (s *EntityStore[T, PT]) Save(ctx context.Context, item *T) bool {
	if err := s.Put(ctx, item); err != nil {
		s.logFailure("save", err)
		return false
	}
	return true
}

// Put is the error-returning form of Save.
func (s *EntityStore[T, PT]) Put(ctx context.Context, item *T) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.provisioner.Provision(ctx); err != nil {
		return err
	}
	if item == nil {
		return serrors.NewValidationError(s.schema.Kind, "item must not be nil")
	}

	e := PT(item)
	e.SetLastModified(s.now())
	if e.SortKey() == 0 {
		e.SetSortKey(s.nextID())
	}
	if !e.IsValid() {
		return serrors.NewValidationError(s.schema.Kind, fmt.Sprintf("invalid entity %s/%d", e.PartitionKey(), e.SortKey()))
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return serrors.NewValidationError(s.schema.Kind, fmt.Sprintf("failed to marshal entity: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.schema.TableName),
		Item:      av,
	}

	versioned, locked := s.versioned(e)
	var next int64
	if locked {
		next = versioned.Version() + 1
		s.applyVersionCondition(input, versioned.Version(), next)
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if locked && isConditionalCheckFailed(err) {
			return serrors.NewConditionFailedError("PutItem", fmt.Sprintf("%s = %d", storagemodels.VersionAttr, versioned.Version()))
		}
		return serrors.NewBackendError("PutItem", s.schema.TableName, isRetryableError(err), err)
	}
	if locked {
		versioned.SetVersion(next)
	}

	s.log.Debug("entity saved",
		slog.String("partition_key", e.PartitionKey()),
		slog.Int64("sort_key", e.SortKey()),
	)
	return nil
}

// Retrieve returns the entity stored under (partitionKey, sortKey). A missing item and a
// backend fault both yield (nil, false).
func (s *EntityStore[T, PT]) Retrieve(ctx context.Context, partitionKey string, sortKey int64) (*T, bool) {
	item, err := s.Get(ctx, partitionKey, sortKey)
	if err != nil {
		if !serrors.IsNotFound(err) {
			s.logFailure("retrieve", err, slog.String("partition_key", partitionKey), slog.Int64("sort_key", sortKey))
		}
		return nil, false
	}
	return item, true
}

// Get is the error-returning form of Retrieve. A missing item yields *errors.NotFoundError.
func (s *EntityStore[T, PT]) Get(ctx context.Context, partitionKey string, sortKey int64) (*T, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.provisioner.Provision(ctx); err != nil {
		return nil, err
	}

	key, err := s.key(partitionKey, sortKey)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.schema.TableName),
		Key:            key,
		ConsistentRead: aws.Bool(s.opts.consistentReads),
	})
	if err != nil {
		return nil, serrors.NewBackendError("GetItem", s.schema.TableName, isRetryableError(err), err)
	}
	if len(out.Item) == 0 {
		return nil, serrors.NewNotFoundError(s.schema.Kind, keyString(partitionKey, sortKey))
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, serrors.NewBackendError("GetItem", s.schema.TableName, false, fmt.Errorf("failed to unmarshal item: %w", err))
	}
	return result, nil
}

// Delete removes the entity stored under (partitionKey, sortKey). Deleting a key that was
// never written succeeds.
func (s *EntityStore[T, PT]) Delete(ctx context.Context, partitionKey string, sortKey int64) bool {
	if err := s.Remove(ctx, partitionKey, sortKey); err != nil {
		s.logFailure("delete", err, slog.String("partition_key", partitionKey), slog.Int64("sort_key", sortKey))
		return false
	}
	return true
}

// DeleteEntity deletes by the keys of item. A nil item yields false.
func (s *EntityStore[T, PT]) DeleteEntity(ctx context.Context, item *T) bool {
	if item == nil {
		return false
	}
	e := PT(item)
	return s.Delete(ctx, e.PartitionKey(), e.SortKey())
}

// Remove is the error-returning form of Delete.
func (s *EntityStore[T, PT]) Remove(ctx context.Context, partitionKey string, sortKey int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.provisioner.Provision(ctx); err != nil {
		return err
	}

	key, err := s.key(partitionKey, sortKey)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.schema.TableName),
		Key:       key,
	})
	if err != nil {
		return serrors.NewBackendError("DeleteItem", s.schema.TableName, isRetryableError(err), err)
	}
	return nil
}

// ListForPartition returns every entity in the partition in sort key order. Faults yield an
// empty, non-nil slice.
func (s *EntityStore[T, PT]) ListForPartition(ctx context.Context, partitionKey string) []T {
	items, err := s.List(ctx, partitionKey)
	if err != nil {
		s.logFailure("list", err, slog.String("partition_key", partitionKey))
		return []T{}
	}
	return items
}

// List is the error-returning form of ListForPartition.
func (s *EntityStore[T, PT]) List(ctx context.Context, partitionKey string) ([]T, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.provisioner.Provision(ctx); err != nil {
		return nil, err
	}
	return s.queryAll(ctx, s.partitionQuery(partitionKey))
}

// Provisioner returns the provisioner consulted before every operation.
func (s *EntityStore[T, PT]) Provisioner() *Provisioner {
	return s.provisioner
}

func (s *EntityStore[T, PT]) key(partitionKey string, sortKey int64) (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(partitionKey)
	if err != nil {
		return nil, serrors.NewValidationError(s.schema.PartitionKey.Name, err.Error())
	}
	sk, err := attributevalue.Marshal(sortKey)
	if err != nil {
		return nil, serrors.NewValidationError(s.schema.SortKey.Name, err.Error())
	}
	return map[string]types.AttributeValue{
		s.schema.PartitionKey.Name: pk,
		s.schema.SortKey.Name:      sk,
	}, nil
}

// partitionQuery selects every item of one partition.
func (s *EntityStore[T, PT]) partitionQuery(partitionKey string) *storagemodels.QueryParams {
	return &storagemodels.QueryParams{
		TableName:              s.schema.TableName,
		KeyConditionExpression: "#pk = :pk",
		ExpressionAttributeNames: map[string]string{
			"#pk": s.schema.PartitionKey.Name,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partitionKey},
		},
		ConsistentRead: aws.Bool(s.opts.consistentReads),
	}
}

func (s *EntityStore[T, PT]) versioned(e PT) (storagemodels.Versioned, bool) {
	if !s.opts.optimisticLocking {
		return nil, false
	}
	v, ok := any(e).(storagemodels.Versioned)
	return v, ok
}

// applyVersionCondition stores next as the item version and makes the write conditional on
// the current stored version. Version zero means the item must not carry a version yet.
func (s *EntityStore[T, PT]) applyVersionCondition(input *dynamodb.PutItemInput, current, next int64) {
	input.Item[storagemodels.VersionAttr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(next, 10)}
	input.ExpressionAttributeNames = map[string]string{"#v": storagemodels.VersionAttr}
	if current == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(#v)")
		return
	}
	input.ConditionExpression = aws.String("#v = :expected")
	input.ExpressionAttributeValues = map[string]types.AttributeValue{
		":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(current, 10)},
	}
}

// now returns the last-modified stamp. Stamps are UTC with second precision so the stored
// strings sort chronologically.
func (s *EntityStore[T, PT]) now() time.Time {
	return s.opts.clock().UTC().Truncate(time.Second)
}

// nextID draws ids until a non-zero one comes up; zero marks an unassigned sort key.
func (s *EntityStore[T, PT]) nextID() int64 {
	for {
		if id := s.opts.ids.NextID(); id != 0 {
			return id
		}
	}
}

func (s *EntityStore[T, PT]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.operationTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.operationTimeout)
	}
	return ctx, func() {}
}

func (s *EntityStore[T, PT]) logFailure(op string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("op", op))
	attrs = append(attrs, faultAttrs(err)...)
	switch {
	case serrors.IsValidationError(err), serrors.IsConditionFailed(err):
		s.log.Debug("store operation rejected", attrs...)
	default:
		s.log.Warn("store operation failed", attrs...)
	}
}

func keyString(partitionKey string, sortKey int64) string {
	return partitionKey + "/" + strconv.FormatInt(sortKey, 10)
}
