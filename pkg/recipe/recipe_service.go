package recipe

import (
	"RecipeCards-Backend/domain"
	"RecipeCards-Backend/entities"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, userID uint) (domain.RecipesResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID, userID uint) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID uint) (domain.RecipeResponse, error)
		UpdateRecipeTitle(ctx context.Context, recipeID uint, req domain.UpdateRecipeTitleRequest, userID uint) error
		DeleteRecipe(ctx context.Context, recipeID, userID uint) error

		AddMenu(ctx context.Context, recipeID uint, req domain.CreateMenuRequest, userID uint) (domain.MenuResponse, error)
		UpdateMenu(ctx context.Context, menuID uint, req domain.UpdateMenuRequest, userID uint) error
		DeleteMenu(ctx context.Context, menuID, userID uint) error
	}

	recipeService struct {
		recipeRepository RecipeRepository
	}
)

func NewRecipeService(recipeRepository RecipeRepository) RecipeService {
	return &recipeService{recipeRepository: recipeRepository}
}

func (s *recipeService) GetRecipes(ctx context.Context, userID uint) (domain.RecipesResponse, error) {
	recipes, err := s.recipeRepository.GetRecipes(ctx, userID)
	if err != nil {
		return domain.RecipesResponse{}, err
	}

	response := domain.RecipesResponse{Recipes: []domain.RecipeResponse{}}
	for _, r := range recipes {
		response.Recipes = append(response.Recipes, ToRecipeResponse(r))
	}
	response.Total = len(response.Recipes)
	return response, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, userID uint) (domain.RecipeResponse, error) {
	recipe, err := s.ownedRecipe(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return ToRecipeResponse(recipe), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID uint) (domain.RecipeResponse, error) {
	recipe := &entities.Recipe{
		UserID: userID,
		Title:  req.Title,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		return domain.RecipeResponse{}, err
	}
	return ToRecipeResponse(recipe), nil
}

func (s *recipeService) UpdateRecipeTitle(ctx context.Context, recipeID uint, req domain.UpdateRecipeTitleRequest, userID uint) error {
	recipe, err := s.ownedRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}

	recipe.Title = req.Title
	return s.recipeRepository.UpdateRecipe(ctx, recipe)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.ownedRecipe(ctx, recipeID, userID); err != nil {
		return err
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) AddMenu(ctx context.Context, recipeID uint, req domain.CreateMenuRequest, userID uint) (domain.MenuResponse, error) {
	if _, err := s.ownedRecipe(ctx, recipeID, userID); err != nil {
		return domain.MenuResponse{}, err
	}

	menu := &entities.Menu{
		RecipeID: recipeID,
		Name:     req.Name,
	}
	if err := s.recipeRepository.CreateMenu(ctx, menu); err != nil {
		return domain.MenuResponse{}, err
	}

	var ingredients []*entities.Ingredient
	for _, name := range ParseIngredients(req.Ingredients) {
		ingredients = append(ingredients, &entities.Ingredient{
			MenuID: menu.ID,
			Name:   name,
		})
	}
	if err := s.recipeRepository.CreateIngredients(ctx, ingredients); err != nil {
		return domain.MenuResponse{}, err
	}

	created, err := s.recipeRepository.GetMenuByID(ctx, menu.ID)
	if err != nil {
		return domain.MenuResponse{}, err
	}
	return ToMenuResponse(created), nil
}

func (s *recipeService) UpdateMenu(ctx context.Context, menuID uint, req domain.UpdateMenuRequest, userID uint) error {
	menu, err := s.ownedMenu(ctx, menuID, userID)
	if err != nil {
		return err
	}

	if req.Name != "" {
		menu.Name = req.Name
	}
	if err := s.recipeRepository.UpdateMenu(ctx, menu); err != nil {
		return err
	}

	// A non-empty ingredients string replaces the menu's ingredient rows
	// wholesale; an omitted one leaves them untouched.
	if req.Ingredients == "" {
		return nil
	}
	if err := s.recipeRepository.DeleteIngredientsByMenu(ctx, menuID); err != nil {
		return err
	}

	var ingredients []*entities.Ingredient
	for _, name := range ParseIngredients(req.Ingredients) {
		ingredients = append(ingredients, &entities.Ingredient{
			MenuID: menuID,
			Name:   name,
		})
	}
	return s.recipeRepository.CreateIngredients(ctx, ingredients)
}

func (s *recipeService) DeleteMenu(ctx context.Context, menuID, userID uint) error {
	if _, err := s.ownedMenu(ctx, menuID, userID); err != nil {
		return err
	}
	return s.recipeRepository.DeleteMenu(ctx, menuID)
}

func (s *recipeService) ownedRecipe(ctx context.Context, recipeID, userID uint) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.UserID != userID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}
	return recipe, nil
}

func (s *recipeService) ownedMenu(ctx context.Context, menuID, userID uint) (*entities.Menu, error) {
	menu, err := s.recipeRepository.GetMenuByID(ctx, menuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMenuNotFound
		}
		return nil, err
	}
	if menu.Recipe == nil || menu.Recipe.UserID != userID {
		return nil, domain.ErrUnauthorizedRecipeAccess
	}
	return menu, nil
}

func ToRecipeResponse(recipe *entities.Recipe) domain.RecipeResponse {
	response := domain.RecipeResponse{
		ID:        recipe.ID,
		Title:     recipe.Title,
		Menus:     []domain.MenuResponse{},
		CreatedAt: recipe.CreatedAt,
	}
	for _, m := range recipe.Menus {
		response.Menus = append(response.Menus, ToMenuResponse(m))
	}
	return response
}

func ToMenuResponse(menu *entities.Menu) domain.MenuResponse {
	response := domain.MenuResponse{
		ID:          menu.ID,
		Name:        menu.Name,
		Ingredients: []domain.IngredientResponse{},
	}
	for _, ing := range menu.Ingredients {
		response.Ingredients = append(response.Ingredients, domain.IngredientResponse{
			ID:   ing.ID,
			Name: ing.Name,
		})
	}
	return response
}
