/*
Package storagemodels defines the entity kinds persisted by recipestore and the data
structures shared by the storage layer.

Entity:
Every kind implements Entity. The store owns the sort key and last-modified stamp; callers
only fill in the partition key and the payload:

	r := storagemodels.NewRecipe("user-1", "Tikka Masala")
	r.Ingredients = append(r.Ingredients, "chicken", "yogurt")
	ok := recipes.Save(ctx, r) // r.EntityId is now a random non-zero id

Generic code names a kind through the EntityPtr constraint:

	func count[T any, PT storagemodels.EntityPtr[T]](items []T) int

TableSchema:
Each kind describes its physical table. All four kinds share UserEntitySchema: hash key
UserId (S), range key EntityId (N), 5 read and 5 write capacity units.

StreamResult and StreamOptions:
Results and configuration for partition streaming:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}

RecipeModel:
The external recipe shape used by the web API. NewRecipeFromModel and Recipe.ToModel
convert between the two and never share list storage.
*/
package storagemodels
