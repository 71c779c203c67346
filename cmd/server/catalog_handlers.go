package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/menucost/internal/store"
)

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Ingredients(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *server) handleIngredientsCreate(w http.ResponseWriter, r *http.Request) {
	var rec store.IngredientRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.CreateIngredient(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleIngredientsUpdate(w http.ResponseWriter, r *http.Request) {
	var rec store.IngredientRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.UpdateIngredient(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleIngredientsDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIngredient(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRecipesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recipes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *server) handleRecipesCreate(w http.ResponseWriter, r *http.Request) {
	var rec store.RecipeRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.CreateRecipe(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleRecipesUpdate(w http.ResponseWriter, r *http.Request) {
	var rec store.RecipeRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.UpdateRecipe(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleRecipesDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRecipe(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleEntreesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Entrees(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *server) handleEntreesCreate(w http.ResponseWriter, r *http.Request) {
	var rec store.EntreeRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.CreateEntree(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleEntreesUpdate(w http.ResponseWriter, r *http.Request) {
	var rec store.EntreeRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		badRequest(w, err.Error())
		return
	}
	saved, err := s.svc.UpdateEntree(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleEntreesDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteEntree(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
