/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recipestore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recipestore/config"
	"github.com/suparena/recipestore/datastore/mock"
	"github.com/suparena/recipestore/storagemodels"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tables.Prefix = "test_"
	cfg.Tables.WaitForActive = false
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenWithClient(t *testing.T) {
	ctx := context.Background()
	db := mock.NewDynamoDB()

	svc, err := OpenWithClient(db, testConfig(), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"Meal", "Person", "Plan", "Recipe"}, svc.Stores.Kinds())
	assert.Equal(t, "test_Recipe", svc.Recipes.TableName())
	assert.Same(t, svc.Provisioner, svc.Meals.Provisioner(), "stores share one provisioner")
	assert.Equal(t, 0, db.Calls(mock.OpListTables), "opening does not touch the backend")

	r := storagemodels.NewRecipe("u1", "Tikka Masala")
	require.True(t, svc.Recipes.Save(ctx, r))
	assert.True(t, svc.Provisioner.Ready())
	assert.Equal(t, []string{"test_Meal", "test_Person", "test_Plan", "test_Recipe"}, db.TableNames())

	m := &storagemodels.Meal{UserId: "u1", MealName: "Dinner"}
	require.True(t, svc.Meals.Save(ctx, m))
	assert.Equal(t, 1, db.Calls(mock.OpListTables), "provisioning runs once across kinds")

	people, err := StoreFor[storagemodels.Person](svc.Stores)
	require.NoError(t, err)
	assert.Empty(t, people.ListForPartition(ctx, "u1"))
}

func TestStoreOptions(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, StoreOptions(cfg, quietLogger()), 4, "logger, timeouts and wait")

	cfg.Tables.WaitForActive = false
	cfg.Store.OptimisticLocking = true
	cfg.Store.ConsistentReads = true
	assert.Len(t, StoreOptions(cfg, quietLogger()), 5)
}

func TestClientConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AWS.Endpoint = "http://localhost:8000"
	cc := ClientConfig(cfg)
	assert.Equal(t, "us-west-2", cc.Region)
	assert.Equal(t, "http://localhost:8000", cc.Endpoint)
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
