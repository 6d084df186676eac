/*
Package api serves the recipestore entities over HTTP.

Recipes keep the routes and status codes of the original values controller and speak the
external RecipeModel JSON:

	GET    /api/values/{userId}             list a user's recipes
	GET    /api/values/{userId}/{recipeId}  one recipe, 404 when absent
	POST   /api/values/{userId}             200, or 400 on a bad body or rejected save
	PUT    /api/values/{userId}/{recipeId}  202, or 400
	DELETE /api/values/{userId}/{recipeId}  200, or 400

Meals, people and plans share one generic route set under /api/meals, /api/people and
/api/plans using the stored JSON shape. GET /healthz reports 503 until the tables have been
provisioned and GET /version returns build information.

Every response carries an X-Request-Id header; an incoming id is kept.
*/
package api
