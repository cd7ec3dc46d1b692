package routes

import (
	"RecipeCards-Backend/internal/api/handlers"
	"RecipeCards-Backend/internal/middleware"
	"RecipeCards-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App           *fiber.App
	UserHandler   handlers.UserHandler
	RecipeHandler handlers.RecipeHandler
	UploadHandler handlers.UploadHandler
	Middleware    middleware.Middleware
	JWTService    jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Recipes()
	c.Upload()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
	}
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/v1/recipes", c.Middleware.AuthMiddleware(c.JWTService))
	{
		recipes.Get("", c.RecipeHandler.GetRecipes)
		recipes.Post("", c.RecipeHandler.CreateRecipe)
		recipes.Get("/:id", c.RecipeHandler.GetRecipeDetail)
		recipes.Patch("/:id", c.RecipeHandler.UpdateRecipeTitle)
		recipes.Delete("/:id", c.RecipeHandler.DeleteRecipe)
		recipes.Post("/:id/menus", c.RecipeHandler.AddMenu)
	}

	menus := c.App.Group("/api/v1/menus", c.Middleware.AuthMiddleware(c.JWTService))
	{
		menus.Patch("/:id", c.RecipeHandler.UpdateMenu)
		menus.Delete("/:id", c.RecipeHandler.DeleteMenu)
	}
}

func (c *Config) Upload() {
	uploads := c.App.Group("/api/v1/upload", c.Middleware.AuthMiddleware(c.JWTService))
	{
		uploads.Post("/recipe", c.UploadHandler.UploadRecipe)
		uploads.Post("/recipe/stream", c.UploadHandler.UploadRecipeStream)
		uploads.Post("/recipe/stream-parallel", c.UploadHandler.UploadRecipeStreamParallel)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works"})
	})
}
