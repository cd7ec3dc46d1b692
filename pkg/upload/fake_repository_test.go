package upload

import (
	"RecipeCards-Backend/entities"
	"RecipeCards-Backend/pkg/recipe"
	"context"

	"gorm.io/gorm"
)

// fakeRecipeRepository records writes in memory and assigns monotonic
// ids, so tests can probe creation order.
type fakeRecipeRepository struct {
	recipes     []*entities.Recipe
	menus       []*entities.Menu
	ingredients []*entities.Ingredient

	nextRecipeID uint
	nextMenuID   uint
	nextIngID    uint

	createRecipeErr error
	createMenuErr   map[string]error
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{createMenuErr: map[string]error{}}
}

func (f *fakeRecipeRepository) CreateRecipe(_ context.Context, r *entities.Recipe) error {
	if f.createRecipeErr != nil {
		return f.createRecipeErr
	}
	f.nextRecipeID++
	r.ID = f.nextRecipeID
	f.recipes = append(f.recipes, r)
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(_ context.Context, id uint) (*entities.Recipe, error) {
	for _, r := range f.recipes {
		if r.ID == id {
			out := *r
			out.Menus = nil
			for _, m := range f.menus {
				if m.RecipeID != id {
					continue
				}
				menu := *m
				menu.Ingredients = nil
				for _, ing := range f.ingredients {
					if ing.MenuID == m.ID {
						menu.Ingredients = append(menu.Ingredients, ing)
					}
				}
				out.Menus = append(out.Menus, &menu)
			}
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipeRepository) GetRecipes(_ context.Context, userID uint) ([]*entities.Recipe, error) {
	var out []*entities.Recipe
	for _, r := range f.recipes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepository) UpdateRecipe(_ context.Context, _ *entities.Recipe) error {
	return nil
}

func (f *fakeRecipeRepository) DeleteRecipe(_ context.Context, _ uint) error {
	return nil
}

func (f *fakeRecipeRepository) CreateMenu(_ context.Context, m *entities.Menu) error {
	if err, ok := f.createMenuErr[m.Name]; ok {
		return err
	}
	f.nextMenuID++
	m.ID = f.nextMenuID
	f.menus = append(f.menus, m)
	return nil
}

func (f *fakeRecipeRepository) GetMenuByID(_ context.Context, id uint) (*entities.Menu, error) {
	for _, m := range f.menus {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipeRepository) UpdateMenu(_ context.Context, _ *entities.Menu) error {
	return nil
}

func (f *fakeRecipeRepository) DeleteMenu(_ context.Context, _ uint) error {
	return nil
}

// CreateIngredients mirrors the conflict-skip semantics of the real
// bulk insert: duplicate (menu_id, name) pairs are silently dropped.
func (f *fakeRecipeRepository) CreateIngredients(_ context.Context, ingredients []*entities.Ingredient) error {
	for _, ing := range ingredients {
		if f.hasIngredient(ing.MenuID, ing.Name) {
			continue
		}
		f.nextIngID++
		ing.ID = f.nextIngID
		f.ingredients = append(f.ingredients, ing)
	}
	return nil
}

func (f *fakeRecipeRepository) DeleteIngredientsByMenu(_ context.Context, menuID uint) error {
	var kept []*entities.Ingredient
	for _, ing := range f.ingredients {
		if ing.MenuID != menuID {
			kept = append(kept, ing)
		}
	}
	f.ingredients = kept
	return nil
}

func (f *fakeRecipeRepository) hasIngredient(menuID uint, name string) bool {
	for _, ing := range f.ingredients {
		if ing.MenuID == menuID && ing.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeRecipeRepository) Transaction(_ context.Context, fn func(txRepo recipe.RecipeRepository) error) error {
	return fn(f)
}

func (f *fakeRecipeRepository) menusForRecipe(recipeID uint) []*entities.Menu {
	var out []*entities.Menu
	for _, m := range f.menus {
		if m.RecipeID == recipeID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeRecipeRepository) ingredientsForMenu(menuID uint) []string {
	var out []string
	for _, ing := range f.ingredients {
		if ing.MenuID == menuID {
			out = append(out, ing.Name)
		}
	}
	return out
}
