/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recipestore

import (
	"context"
	"sync"
	"testing"

	"github.com/suparena/recipestore/datastore/mock"
	"github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/storagemodels"
)

func TestStoresRegisterAndLookup(t *testing.T) {
	s := NewStores()
	recipes := mock.NewStore[storagemodels.Recipe]()
	meals := mock.NewStore[storagemodels.Meal]()

	if err := Register[storagemodels.Recipe](s, storagemodels.RecipeKind, recipes); err != nil {
		t.Fatalf("Register recipes: %v", err)
	}
	if err := Register[storagemodels.Meal](s, storagemodels.MealKind, meals); err != nil {
		t.Fatalf("Register meals: %v", err)
	}

	t.Run("Lookup", func(t *testing.T) {
		got, err := StoreFor[storagemodels.Recipe](s)
		if err != nil {
			t.Fatalf("StoreFor: %v", err)
		}
		r := storagemodels.NewRecipe("u1", "Dal")
		if !got.Save(context.Background(), r) {
			t.Fatal("Save through registry failed")
		}
		if recipes.Len() != 1 {
			t.Errorf("expected the registered store to hold the item, got %d", recipes.Len())
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Register[storagemodels.Recipe](s, storagemodels.RecipeKind, recipes)
		if !errors.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := StoreFor[storagemodels.Plan](s)
		if !errors.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("Kinds", func(t *testing.T) {
		kinds := s.Kinds()
		if len(kinds) != 2 || kinds[0] != "Meal" || kinds[1] != "Recipe" {
			t.Errorf("unexpected kinds %v", kinds)
		}
	})

	t.Run("Unregister", func(t *testing.T) {
		if err := Unregister[storagemodels.Meal](s); err != nil {
			t.Fatalf("Unregister: %v", err)
		}
		if err := Unregister[storagemodels.Meal](s); !errors.IsNotFound(err) {
			t.Errorf("expected NotFound on second Unregister, got %v", err)
		}
	})
}

func TestStoresNilStore(t *testing.T) {
	if err := Register[storagemodels.Plan](NewStores(), storagemodels.PlanKind, nil); err == nil {
		t.Error("expected error registering a nil store")
	}
}

func TestStoresConcurrentAccess(t *testing.T) {
	s := NewStores()
	if err := Register[storagemodels.Person](s, storagemodels.PersonKind, mock.NewStore[storagemodels.Person]()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := StoreFor[storagemodels.Person](s); err != nil {
				t.Errorf("StoreFor: %v", err)
			}
			_ = s.Kinds()
		}()
	}
	wg.Wait()
}
