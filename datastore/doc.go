/*
Package datastore defines the persistence contracts for recipestore entities.

EntityStore[T] is the boolean contract used by request handlers:

	type EntityStore[T any] interface {
	    Save(ctx context.Context, item *T) bool
	    Retrieve(ctx context.Context, partitionKey string, sortKey int64) (*T, bool)
	    Delete(ctx context.Context, partitionKey string, sortKey int64) bool
	    ListForPartition(ctx context.Context, partitionKey string) []T
	}

ErrorStore[T] offers the same operations returning typed errors (Put, Get, Remove, List), so
callers that need to tell "not found" from "backend down" can do so.

Implementations:
  - ddb: DynamoDB implementation, one table per entity kind
  - mock: In-memory implementations for testing

Save may modify the item it is given: the store stamps LastUpdateTime and assigns a random
EntityId when the caller left it zero.
*/
package datastore
