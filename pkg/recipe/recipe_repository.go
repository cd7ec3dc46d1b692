package recipe

import (
	"RecipeCards-Backend/entities"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
		GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, userID uint) ([]*entities.Recipe, error)
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error
		DeleteRecipe(ctx context.Context, id uint) error

		CreateMenu(ctx context.Context, menu *entities.Menu) error
		GetMenuByID(ctx context.Context, id uint) (*entities.Menu, error)
		UpdateMenu(ctx context.Context, menu *entities.Menu) error
		DeleteMenu(ctx context.Context, id uint) error

		CreateIngredients(ctx context.Context, ingredients []*entities.Ingredient) error
		DeleteIngredientsByMenu(ctx context.Context, menuID uint) error

		Transaction(ctx context.Context, fn func(txRepo RecipeRepository) error) error
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Menus", func(db *gorm.DB) *gorm.DB {
			return db.Order("menus.id asc")
		}).
		Preload("Menus.Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredients.id asc")
		}).
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipes(ctx context.Context, userID uint) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Menus", func(db *gorm.DB) *gorm.DB {
			return db.Order("menus.id asc")
		}).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.db.WithContext(ctx).Save(recipe).Error
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(&entities.Recipe{ID: id}).Error
}

func (r *recipeRepository) CreateMenu(ctx context.Context, menu *entities.Menu) error {
	return r.db.WithContext(ctx).Create(menu).Error
}

func (r *recipeRepository) GetMenuByID(ctx context.Context, id uint) (*entities.Menu, error) {
	var menu entities.Menu
	if err := r.db.WithContext(ctx).
		Preload("Recipe").
		Where("id = ?", id).
		First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *recipeRepository) UpdateMenu(ctx context.Context, menu *entities.Menu) error {
	return r.db.WithContext(ctx).Save(menu).Error
}

func (r *recipeRepository) DeleteMenu(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(&entities.Menu{ID: id}).Error
}

// CreateIngredients bulk-inserts one batch of ingredient rows. Rows that
// collide on (menu_id, name) are skipped instead of failing the batch,
// because the AI stream may repeat ingredient tokens.
func (r *recipeRepository) CreateIngredients(ctx context.Context, ingredients []*entities.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ingredients).Error
}

func (r *recipeRepository) DeleteIngredientsByMenu(ctx context.Context, menuID uint) error {
	return r.db.WithContext(ctx).Where("menu_id = ?", menuID).Delete(&entities.Ingredient{}).Error
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(txRepo RecipeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx})
	})
}
