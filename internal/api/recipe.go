package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-creator/backend/internal/middleware"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/types"
)

const defaultSimilarLimit = 5

type RecipeHandler struct {
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	limiter   *middleware.RateLimiter
	log       *slog.Logger
}

// RecipeDetail is a recipe as seen by one viewer.
type RecipeDetail struct {
	models.Recipe
	IsFavorite bool `json:"is_favorite"`
}

// NewRecipeHandler builds the handler. limiter may be nil, which leaves
// generation unlimited.
func NewRecipeHandler(recipes *service.RecipeService, favorites *service.FavoriteService, limiter *middleware.RateLimiter, log *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, favorites: favorites, limiter: limiter, log: log}
}

// RegisterRoutes expects router to be behind the auth middleware.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	generate := []gin.HandlerFunc{h.GenerateRecipe}
	if h.limiter != nil {
		generate = append([]gin.HandlerFunc{h.limiter.RateLimitMiddleware()}, generate...)
	}

	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", generate...)
		recipes.GET("", h.ListRecipes)
		recipes.GET("/mine", h.ListMyRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	recipe, err := h.recipes.Generate(c.Request.Context(), userID, service.GenerateRequest{
		Ingredients: req.Ingredients,
		Members:     req.Members,
		Cuisine:     req.Cuisine,
		Language:    req.Language,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	var q types.ListRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "page and limit must be numbers")
		return
	}

	page, err := h.recipes.List(c.Request.Context(), userID, service.ListQuery{
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) ListMyRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	recipes, err := h.recipes.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}
	id, ok := recipeIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	favorite, err := h.favorites.IsFavorite(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, RecipeDetail{Recipe: *recipe, IsFavorite: favorite})
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, ok := recipeIDParam(c, "id")
	if !ok {
		return
	}
	q := types.SimilarRecipesQuery{Limit: defaultSimilarLimit}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "limit must be a number")
		return
	}

	recipes, err := h.recipes.Similar(c.Request.Context(), id, q.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}
	id, ok := recipeIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id,
	})
}

func recipeIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid recipe id")
		return uuid.Nil, false
	}
	return id, true
}
