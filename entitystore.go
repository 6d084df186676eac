/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recipestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suparena/recipestore/config"
	"github.com/suparena/recipestore/datastore/ddb"
	"github.com/suparena/recipestore/registry"
	"github.com/suparena/recipestore/storagemodels"
)

// Service is the wired storage layer: one catalog, one shared provisioner and a store per
// entity kind.
type Service struct {
	Catalog     *registry.Catalog
	Provisioner *ddb.Provisioner
	Stores      *Stores

	Recipes *ddb.EntityStore[storagemodels.Recipe, *storagemodels.Recipe]
	Meals   *ddb.EntityStore[storagemodels.Meal, *storagemodels.Meal]
	People  *ddb.EntityStore[storagemodels.Person, *storagemodels.Person]
	Plans   *ddb.EntityStore[storagemodels.Plan, *storagemodels.Plan]
}

// Open builds a DynamoDB client from cfg and wires the stores over it. Tables are not
// touched until the first store operation or an explicit Provision call.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	client, err := ddb.NewClient(ctx, ClientConfig(cfg))
	if err != nil {
		return nil, err
	}
	return OpenWithClient(client, cfg, logger)
}

// OpenWithClient wires the stores over an existing client, such as a test fake.
func OpenWithClient(client ddb.API, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := StoreOptions(cfg, logger)

	catalog := registry.DefaultCatalog(CatalogOptions(cfg)...)
	provisioner, err := ddb.NewProvisioner(client, catalog, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create provisioner: %w", err)
	}

	svc := &Service{
		Catalog:     catalog,
		Provisioner: provisioner,
		Stores:      NewStores(),
	}
	if svc.Recipes, err = openStore[storagemodels.Recipe](svc, client, opts); err != nil {
		return nil, err
	}
	if svc.Meals, err = openStore[storagemodels.Meal](svc, client, opts); err != nil {
		return nil, err
	}
	if svc.People, err = openStore[storagemodels.Person](svc, client, opts); err != nil {
		return nil, err
	}
	if svc.Plans, err = openStore[storagemodels.Plan](svc, client, opts); err != nil {
		return nil, err
	}

	logger.Info("recipestore opened",
		slog.Any("tables", catalog.TableNames()),
		slog.Bool("optimistic_locking", cfg.Store.OptimisticLocking))
	return svc, nil
}

func openStore[T any, PT storagemodels.EntityPtr[T]](svc *Service, client ddb.API, opts []ddb.Option) (*ddb.EntityStore[T, PT], error) {
	store, err := ddb.NewEntityStore[T, PT](client, svc.Catalog, svc.Provisioner, opts...)
	if err != nil {
		return nil, err
	}
	if err := Register[T](svc.Stores, store.Kind(), store); err != nil {
		return nil, err
	}
	return store, nil
}

// ClientConfig maps the aws section of cfg onto the DynamoDB client settings.
func ClientConfig(cfg *config.Config) ddb.ClientConfig {
	return ddb.ClientConfig{
		Region:    cfg.AWS.Region,
		Endpoint:  cfg.AWS.Endpoint,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
	}
}

// CatalogOptions maps the tables section of cfg onto catalog options.
func CatalogOptions(cfg *config.Config) []registry.CatalogOption {
	return []registry.CatalogOption{
		registry.WithTablePrefix(cfg.Tables.Prefix),
		registry.WithCapacity(cfg.Tables.ReadCapacity, cfg.Tables.WriteCapacity),
	}
}

// StoreOptions maps cfg onto the options shared by the provisioner and the stores.
func StoreOptions(cfg *config.Config, logger *slog.Logger) []ddb.Option {
	opts := []ddb.Option{
		ddb.WithLogger(logger),
		ddb.WithOperationTimeout(cfg.Store.OperationTimeout),
		ddb.WithProvisionTimeout(cfg.Tables.ProvisionTimeout),
	}
	if cfg.Tables.WaitForActive {
		opts = append(opts, ddb.WithWaitForActive(cfg.Tables.WaitTimeout))
	}
	if cfg.Store.OptimisticLocking {
		opts = append(opts, ddb.WithOptimisticLocking())
	}
	if cfg.Store.ConsistentReads {
		opts = append(opts, ddb.WithConsistentReads())
	}
	return opts
}
