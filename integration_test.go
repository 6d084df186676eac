//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recipestore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/suparena/recipestore"
	"github.com/suparena/recipestore/config"
	"github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/storagemodels"
)

// setupService connects to the DynamoDB endpoint named by DYNAMODB_ENDPOINT, typically
// DynamoDB Local, with a per-run table prefix.
func setupService(t *testing.T, mutate ...func(*config.Config)) *recipestore.Service {
	t.Helper()
	if os.Getenv(config.EnvEndpoint) == "" {
		t.Skip("DYNAMODB_ENDPOINT not set, skipping integration test")
	}
	if os.Getenv(config.EnvAccessKey) == "" {
		t.Setenv(config.EnvAccessKey, "local")
		t.Setenv(config.EnvSecretKey, "local")
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	cfg.Tables.Prefix = fmt.Sprintf("it%d_", time.Now().UnixNano())
	cfg.Tables.WaitTimeout = 30 * time.Second
	for _, m := range mutate {
		m(cfg)
	}

	svc, err := recipestore.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to open service: %v", err)
	}
	return svc
}

func TestIntegrationRecipeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	svc := setupService(t)

	if err := svc.Provisioner.Provision(ctx); err != nil {
		t.Fatalf("Failed to provision: %v", err)
	}

	r := storagemodels.NewRecipe("it-user", "Tikka Masala")
	r.Ingredients = append(r.Ingredients, "chicken", "yogurt", "garam masala")
	r.Steps = append(r.Steps, "marinate", "grill", "simmer")
	r.Servings = 4

	if !svc.Recipes.Save(ctx, r) {
		t.Fatal("Save returned false")
	}
	if r.EntityId == 0 {
		t.Fatal("expected an assigned entity id")
	}

	got, ok := svc.Recipes.Retrieve(ctx, "it-user", r.EntityId)
	if !ok {
		t.Fatal("Retrieve returned false")
	}
	if got.Name != r.Name || len(got.Ingredients) != 3 {
		t.Errorf("Retrieved recipe doesn't match: got %+v", got)
	}

	list := svc.Recipes.ListForPartition(ctx, "it-user")
	if len(list) != 1 {
		t.Errorf("expected 1 recipe, got %d", len(list))
	}

	if !svc.Recipes.Delete(ctx, "it-user", r.EntityId) {
		t.Fatal("Delete returned false")
	}
	if _, err := svc.Recipes.Get(ctx, "it-user", r.EntityId); !errors.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestIntegrationAllKinds(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	svc := setupService(t)

	if !svc.Meals.Save(ctx, &storagemodels.Meal{UserId: "it-user", MealName: "Dinner", Recipes: []int64{1, 2}}) {
		t.Error("Meal save failed")
	}
	if !svc.People.Save(ctx, storagemodels.NewPerson("it-user", "Ann")) {
		t.Error("Person save failed")
	}
	if !svc.Plans.Save(ctx, &storagemodels.Plan{UserId: "it-user"}) {
		t.Error("Plan save failed")
	}
	if svc.Meals.Save(ctx, &storagemodels.Meal{UserId: "it-user"}) {
		t.Error("expected a meal without a name to be rejected")
	}
}

func TestIntegrationTimeQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	svc := setupService(t)

	for i := 0; i < 3; i++ {
		if !svc.Plans.Save(ctx, &storagemodels.Plan{UserId: "it-query"}) {
			t.Fatalf("Plan save %d failed", i)
		}
	}

	recent, err := svc.Plans.Query("it-query").InLastDays(1).All(ctx)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("expected 3 recent plans, got %d", len(recent))
	}

	old, err := svc.Plans.Query("it-query").ModifiedBefore(time.Now().Add(-48 * time.Hour)).All(ctx)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("expected no old plans, got %d", len(old))
	}
}

func TestIntegrationOptimisticLocking(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	svc := setupService(t, func(c *config.Config) { c.Store.OptimisticLocking = true })

	r := storagemodels.NewRecipe("it-lock", "Dal")
	if err := svc.Recipes.Put(ctx, r); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	stale := r.Clone()
	if err := svc.Recipes.Put(ctx, r); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if err := svc.Recipes.Put(ctx, stale); !errors.IsConditionFailed(err) {
		t.Errorf("expected ConditionFailed for a stale write, got %v", err)
	}
}
