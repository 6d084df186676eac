/*
Package recipestore persists the entities of the recipe planning application (recipes,
meals, people and plans) in DynamoDB, one table per kind, and exposes them through a
small web API.

The library is layered:
  - storagemodels: the entity kinds and their table schemas
  - registry: the catalog of kinds to physical tables
  - datastore/ddb: provisioning and the generic DynamoDB entity store
  - datastore/mock: in-memory fakes for tests
  - api: HTTP handlers over the stores

Basic Usage:

	cfg, err := config.Load("recipestore.yaml")
	if err != nil {
		return err
	}

	svc, err := recipestore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}

	recipes, _ := recipestore.StoreFor[storagemodels.Recipe](svc.Stores)
	r := storagemodels.NewRecipe("user-1", "Tikka Masala")
	if !recipes.Save(ctx, r) {
		// invalid recipe or backend failure
	}

Tables are created on first use. Every store built by Open shares one provisioner, so the
first operation on any kind provisions all four tables exactly once.
*/
package recipestore
