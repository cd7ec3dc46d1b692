package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessCreateMenu      = "menu created successfully"
	MessageSuccessUpdateMenu      = "menu updated successfully"
	MessageSuccessDeleteMenu      = "menu deleted successfully"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedCreateMenu      = "failed to create menu"
	MessageFailedUpdateMenu      = "failed to update menu"
	MessageFailedDeleteMenu      = "failed to delete menu"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrMenuNotFound             = errors.New("menu not found")
	ErrUnauthorizedRecipeAccess = errors.New("unauthorized access to recipe")
	ErrInvalidRecipeID          = errors.New("invalid recipe id")
	ErrInvalidMenuID            = errors.New("invalid menu id")
)

type (
	CreateRecipeRequest struct {
		Title string `json:"title" validate:"required"`
	}

	UpdateRecipeTitleRequest struct {
		Title string `json:"title" validate:"required"`
	}

	CreateMenuRequest struct {
		Name        string `json:"name" validate:"required"`
		Ingredients string `json:"ingredients"`
	}

	UpdateMenuRequest struct {
		Name        string `json:"name" validate:"omitempty"`
		Ingredients string `json:"ingredients" validate:"omitempty"`
	}

	IngredientResponse struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	MenuResponse struct {
		ID          uint                 `json:"id"`
		Name        string               `json:"name"`
		Ingredients []IngredientResponse `json:"ingredients"`
	}

	RecipeResponse struct {
		ID        uint           `json:"id"`
		Title     string         `json:"title"`
		Menus     []MenuResponse `json:"menus"`
		CreatedAt time.Time      `json:"created_at"`
	}

	RecipesResponse struct {
		Recipes []RecipeResponse `json:"recipes"`
		Total   int              `json:"total"`
	}
)
