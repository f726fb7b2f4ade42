package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/runlog/internal/middleware"
	"github.com/hitoshi/runlog/internal/model"
)

// RecipeServiceInterface はレシピハンドラーが必要とするサービスインターフェース。
type RecipeServiceInterface interface {
	Suggest(ctx context.Context, userID string) (*model.RecipeSuggestion, error)
}

// RecipeHandler はレシピ提案のHTTPハンドラー。
type RecipeHandler struct {
	service RecipeServiceInterface
}

// NewRecipeHandler はRecipeHandlerを生成する。
func NewRecipeHandler(service RecipeServiceInterface) *RecipeHandler {
	return &RecipeHandler{service: service}
}

type recipeResponse struct {
	Title    string  `json:"title"`
	Calories float64 `json:"calories"`
	Image    string  `json:"image"`
}

type recipeSuggestionResponse struct {
	CaloriesBurned float64          `json:"calories_burned"`
	Recipes        []recipeResponse `json:"recipes"`
}

// Suggest は直近のワークアウトの消費カロリーに近いレシピを返す。
// GET /recipes
func (h *RecipeHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	suggestion, err := h.service.Suggest(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	recipes := make([]recipeResponse, len(suggestion.Recipes))
	for i, rc := range suggestion.Recipes {
		recipes[i] = recipeResponse{Title: rc.Title, Calories: rc.Calories, Image: rc.Image}
	}

	writeJSON(w, http.StatusOK, recipeSuggestionResponse{
		CaloriesBurned: suggestion.CaloriesBurned,
		Recipes:        recipes,
	})
}
