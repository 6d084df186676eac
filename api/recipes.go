/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package api

import (
	"log/slog"
	"net/http"

	"github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/storagemodels"
)

func (a *API) registerRecipeRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/values", a.recipesWithoutUser)
	mux.HandleFunc("GET /api/values/{userId}", a.listRecipes)
	mux.HandleFunc("GET /api/values/{userId}/{recipeId}", a.getRecipe)
	mux.HandleFunc("POST /api/values/{userId}", a.createRecipe)
	mux.HandleFunc("PUT /api/values/{userId}/{recipeId}", a.updateRecipe)
	mux.HandleFunc("DELETE /api/values/{userId}/{recipeId}", a.deleteRecipe)
}

// Listing every user's recipes is not supported.
func (a *API) recipesWithoutUser(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusBadRequest, "a user id is required")
}

func (a *API) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes := a.recipes.ListForPartition(r.Context(), r.PathValue("userId"))

	models := make([]*storagemodels.RecipeModel, 0, len(recipes))
	for i := range recipes {
		models = append(models, recipes[i].ToModel())
	}
	writeJSON(w, http.StatusOK, models)
}

func (a *API) getRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := parseID(r, "recipeId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "recipe id must be an integer")
		return
	}

	recipe, found := a.recipes.Retrieve(r.Context(), r.PathValue("userId"), recipeID)
	if !found {
		writeError(w, r, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe.ToModel())
}

func (a *API) createRecipe(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var body storagemodels.RecipeModel
	if err := decodeBody(w, r, &body); err != nil {
		a.log.Warn("failed to parse a recipe on post", slog.String("error", err.Error()))
		writeError(w, r, http.StatusBadRequest, "invalid recipe body")
		return
	}
	if body.UserId != userID {
		a.log.Warn("recipe posted to another user",
			slog.String("body_user_id", body.UserId),
			slog.String("path_user_id", userID))
		writeError(w, r, http.StatusBadRequest, "recipe user id does not match the path")
		return
	}

	if err := a.recipes.Put(r.Context(), storagemodels.NewRecipeFromModel(&body)); err != nil {
		a.saveFailed(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// updateRecipe fills a missing user id or recipe id from the path before saving.
func (a *API) updateRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := parseID(r, "recipeId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "recipe id must be an integer")
		return
	}

	var body storagemodels.RecipeModel
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid recipe body")
		return
	}

	recipe := storagemodels.NewRecipeFromModel(&body)
	if recipe.EntityId == 0 {
		recipe.EntityId = recipeID
	}
	if recipe.UserId == "" {
		recipe.UserId = r.PathValue("userId")
	}

	if err := a.recipes.Put(r.Context(), recipe); err != nil {
		a.saveFailed(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// saveFailed answers 409 for a stale version and 400 for every other rejected save.
func (a *API) saveFailed(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Warn("failed to save recipe",
		slog.String("partition_key", r.PathValue("userId")),
		slog.String("error", err.Error()),
		slog.String("request_id", RequestIDFrom(r.Context())))
	if errors.IsConditionFailed(err) {
		writeError(w, r, http.StatusConflict, "recipe was changed by another writer")
		return
	}
	writeError(w, r, http.StatusBadRequest, "recipe was not saved")
}

func (a *API) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := parseID(r, "recipeId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "recipe id must be an integer")
		return
	}

	if !a.recipes.Delete(r.Context(), r.PathValue("userId"), recipeID) {
		writeError(w, r, http.StatusBadRequest, "recipe was not deleted")
		return
	}
	w.WriteHeader(http.StatusOK)
}
