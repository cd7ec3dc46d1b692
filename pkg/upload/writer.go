package upload

import (
	"RecipeCards-Backend/domain"
	"RecipeCards-Backend/entities"
	"RecipeCards-Backend/pkg/recipe"
	"context"
	"strings"
)

// PersistedMenu is one stored menu of a batch, annotated with its
// assigned id.
type PersistedMenu struct {
	ID          uint
	Name        string
	Ingredients []string
}

// BatchWriter persists one progress event's menus. Batches must be
// written strictly in arrival order: menu page ordering in the app
// depends on creation order, so the relay never overlaps two batches.
type BatchWriter struct {
	recipeRepository recipe.RecipeRepository
}

func NewBatchWriter(recipeRepository recipe.RecipeRepository) *BatchWriter {
	return &BatchWriter{recipeRepository: recipeRepository}
}

// WriteBatch creates the batch's menu rows one by one, capturing assigned
// ids, then bulk-inserts all ingredient rows in a single call. Menus go
// first because ingredient rows reference menu ids.
func (w *BatchWriter) WriteBatch(ctx context.Context, recipeID uint, menus []domain.StreamMenu) ([]PersistedMenu, error) {
	persisted := make([]PersistedMenu, 0, len(menus))

	for _, m := range menus {
		menu := &entities.Menu{
			RecipeID: recipeID,
			Name:     strings.TrimSpace(m.Name),
		}
		if err := w.recipeRepository.CreateMenu(ctx, menu); err != nil {
			return nil, err
		}
		persisted = append(persisted, PersistedMenu{
			ID:          menu.ID,
			Name:        menu.Name,
			Ingredients: recipe.ParseIngredients(m.Ingredients),
		})
	}

	var ingredients []*entities.Ingredient
	for _, m := range persisted {
		for _, name := range m.Ingredients {
			ingredients = append(ingredients, &entities.Ingredient{
				MenuID: m.ID,
				Name:   name,
			})
		}
	}

	if err := w.recipeRepository.CreateIngredients(ctx, ingredients); err != nil {
		return nil, err
	}

	return persisted, nil
}
