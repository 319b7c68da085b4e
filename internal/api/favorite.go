package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-creator/backend/internal/middleware"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/types"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
	log       *slog.Logger
}

func NewFavoriteHandler(favorites *service.FavoriteService, log *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, log: log}
}

// RegisterRoutes expects router to be behind the auth middleware.
func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("/:recipeId", h.RemoveFavorite)
	}
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// AddFavorite answers 201 for a new favorite and 200 when it already existed.
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	var req types.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == uuid.Nil {
		badRequest(c, "recipeId is required")
		return
	}

	favorite, created, err := h.favorites.Add(c.Request.Context(), userID, req.RecipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, favorite)
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}
	recipeID, ok := recipeIDParam(c, "recipeId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}
