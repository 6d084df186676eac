/*
Package registry holds the schema catalog: the fixed set of entity kinds recipestore knows
about and the physical table each one lives in.

	catalog := registry.DefaultCatalog(registry.WithTablePrefix("dev_"))
	schema, ok := catalog.Lookup(storagemodels.RecipeKind)
	// schema.TableName == "dev_Recipe"

A Catalog is built once at startup and never changes afterwards, so it can be shared by the
provisioner and every store without locking.
*/
package registry
