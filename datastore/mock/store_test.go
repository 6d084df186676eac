/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeerrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/ident"
	"github.com/suparena/recipestore/storagemodels"
)

func TestStoreSaveAssignsIDAndStamps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 3, 4, 5, 6, 700, time.UTC)
	s := NewStore[storagemodels.Meal]().
		WithIDAllocator(ident.NewFixed(0, 42)).
		WithClock(func() time.Time { return now })

	m := &storagemodels.Meal{UserId: "u1", MealName: "Dinner"}
	require.True(t, s.Save(ctx, m))
	assert.Equal(t, int64(42), m.EntityId, "zero draws are skipped")
	assert.True(t, m.LastUpdateTime.Equal(now.Truncate(time.Second)))

	got, ok := s.Retrieve(ctx, "u1", 42)
	require.True(t, ok)
	assert.Equal(t, "Dinner", got.MealName)

	got.MealName = "changed"
	again, _ := s.Retrieve(ctx, "u1", 42)
	assert.Equal(t, "Dinner", again.MealName, "retrieved copies are independent")
}

func TestStoreInvalidIsNotWritten(t *testing.T) {
	s := NewStore[storagemodels.Person]()
	p := &storagemodels.Person{UserId: "u1", Name: ""}

	err := s.Put(context.Background(), p)
	assert.True(t, storeerrors.IsValidationError(err))
	assert.NotZero(t, p.EntityId, "id is assigned before validation")
	assert.Equal(t, 0, s.Puts())
	assert.False(t, s.Save(context.Background(), nil))
}

func TestStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore[storagemodels.Plan]()

	for _, id := range []int64{9, 3, 6} {
		require.True(t, s.Save(ctx, &storagemodels.Plan{UserId: "u1", EntityId: id}))
	}
	require.True(t, s.Save(ctx, &storagemodels.Plan{UserId: "u2", EntityId: 1}))

	list := s.ListForPartition(ctx, "u1")
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 6, 9}, []int64{list[0].EntityId, list[1].EntityId, list[2].EntityId})

	assert.True(t, s.Delete(ctx, "u1", 6))
	assert.True(t, s.Delete(ctx, "u1", 6), "deleting twice succeeds")
	assert.Len(t, s.ListForPartition(ctx, "u1"), 2)

	empty := s.ListForPartition(ctx, "nobody")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStoreInjectedErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	s := NewStore[storagemodels.Plan]()
	require.True(t, s.Save(ctx, &storagemodels.Plan{UserId: "u1", EntityId: 1}))

	s.WithPutError(boom).WithGetError(boom).WithDeleteError(boom).WithListError(boom)

	assert.False(t, s.Save(ctx, &storagemodels.Plan{UserId: "u1", EntityId: 2}))
	_, ok := s.Retrieve(ctx, "u1", 1)
	assert.False(t, ok)
	assert.False(t, s.Delete(ctx, "u1", 1))
	assert.NotNil(t, s.ListForPartition(ctx, "u1"))

	_, err := s.Get(ctx, "u1", 1)
	assert.ErrorIs(t, err, boom)
}

func TestStoreNotFound(t *testing.T) {
	_, err := NewStore[storagemodels.Recipe]().Get(context.Background(), "u1", 1)
	assert.True(t, storeerrors.IsNotFound(err))
}
