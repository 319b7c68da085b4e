package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/database"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"gorm.io/gorm"
)

// FavoriteService manages the (user, recipe) favorite links.
type FavoriteService struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewFavoriteService(db *gorm.DB, log *slog.Logger) *FavoriteService {
	return &FavoriteService{db: db, log: log}
}

// Add favorites a recipe. Adding an existing favorite returns it with
// created=false; the unique index decides which request wins a race.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uuid.UUID) (*models.Favorite, bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load recipe: %w", err)
	}
	if count == 0 {
		return nil, false, ErrRecipeNotFound
	}

	fav := &models.Favorite{UserID: userID, RecipeID: recipeID}
	err := s.db.WithContext(ctx).Create(fav).Error
	if err == nil {
		return fav, true, nil
	}
	if !database.IsUniqueViolation(err) {
		return nil, false, fmt.Errorf("failed to add favorite: %w", err)
	}

	existing := &models.Favorite{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(existing).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load favorite: %w", err)
	}
	return existing, false, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// List returns the user's favorites with their recipes, most recent first.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	err := s.db.WithContext(ctx).
		Preload("Recipe").
		Preload("Recipe.Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// IsFavorite reports whether the user has favorited the recipe.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
