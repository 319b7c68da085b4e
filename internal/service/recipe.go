package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	maxMembers      = 100

	// Column widths of recipes.title and recipes.cuisine.
	maxTitleLength   = 255
	maxCuisineLength = 100
)

// ListQuery selects a page of recipes.
type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Recipes    []models.Recipe `json:"recipes"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// RecipeService generates, lists and deletes recipes.
type RecipeService struct {
	db        *gorm.DB
	generator RecipeGenerator
	sanitizer *TextSanitizer
	metrics   metrics.Recorder
	log       *slog.Logger
}

func NewRecipeService(db *gorm.DB, generator RecipeGenerator, sanitizer *TextSanitizer, rec metrics.Recorder, log *slog.Logger) *RecipeService {
	return &RecipeService{
		db:        db,
		generator: generator,
		sanitizer: sanitizer,
		metrics:   rec,
		log:       log,
	}
}

// Generate asks the generator for a recipe and saves it for userID. The call
// is detached from client cancellation once accepted.
func (s *RecipeService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*models.Recipe, error) {
	var ingredients []string
	for _, ing := range req.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) == 0 {
		return nil, invalid("ingredients", "at least one ingredient is required")
	}
	if req.Members < 1 || req.Members > maxMembers {
		return nil, invalid("members", fmt.Sprintf("must be between 1 and %d", maxMembers))
	}
	req.Ingredients = ingredients
	req.Cuisine = strings.TrimSpace(req.Cuisine)
	req.Language = strings.TrimSpace(req.Language)

	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	generated, err := s.generator.Generate(ctx, req)
	s.metrics.RecordGeneration(err == nil, time.Since(start))
	if err != nil {
		s.log.Error("recipe generation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGenerationFailed, err)
	}

	recipe := s.buildRecipe(userID, req, generated)
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	s.log.Info("recipe generated", "user_id", userID, "recipe_id", recipe.ID, "duration", time.Since(start))
	return s.Get(ctx, recipe.ID)
}

func (s *RecipeService) buildRecipe(userID uuid.UUID, req GenerateRequest, g *GeneratedRecipe) *models.Recipe {
	clean := s.sanitizer.Clean

	cuisine := clean(g.Cuisine)
	if cuisine == "" {
		cuisine = req.Cuisine
	}
	if cuisine != "" {
		cuisine = truncateRunes(cases.Title(language.English).String(cuisine), maxCuisineLength)
	}

	serves := g.Serves
	if serves <= 0 {
		serves = req.Members
	}

	recipe := &models.Recipe{
		Title:    truncateRunes(clean(g.Title), maxTitleLength),
		Cuisine:  cuisine,
		Serves:   serves,
		Language: req.Language,
		UserID:   userID,
	}
	for _, ing := range g.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.Ingredient{
			Item:     clean(ing.Item),
			Quantity: clean(ing.Quantity),
			Unit:     clean(ing.Unit),
			Notes:    clean(ing.Notes),
		})
	}
	for _, ins := range g.Instructions {
		recipe.Instructions = append(recipe.Instructions, models.Instruction{
			Step:        ins.Step,
			Description: clean(ins.Description),
		})
	}
	for _, sug := range g.ServingSuggestions {
		if sug = clean(sug); sug != "" {
			recipe.ServingSuggestions = append(recipe.ServingSuggestions, sug)
		}
	}
	recipe.Embedding = RecipeEmbedding(recipe)
	return recipe
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	})
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Scopes(withOwner).First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// ListForUser returns the user's own recipes, newest first.
func (s *RecipeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).Scopes(withOwner).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// List pages through all recipes. The viewer's own recipes come first, then
// everything else newest first. Search matches titles case-insensitively.
func (s *RecipeService) List(ctx context.Context, viewerID uuid.UUID, q ListQuery) (*RecipePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	search := func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(q.Search); term != "" {
			return db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).Scopes(search, withOwner).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN user_id = ? THEN 0 ELSE 1 END",
			Vars:               []interface{}{viewerID},
			WithoutParentheses: true,
		}}).
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return &RecipePage{
		Recipes:    recipes,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
	}, nil
}

// Similar returns up to limit recipes closest to id by embedding distance.
func (s *RecipeService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recipes := []models.Recipe{}
	db := s.db.WithContext(ctx).Scopes(withOwner).Where("id <> ?", id)

	if s.db.Dialector.Name() == "postgres" {
		err := db.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <-> ?",
			Vars:               []interface{}{target.Embedding},
			WithoutParentheses: true,
		}}).Limit(limit).Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to find similar recipes: %w", err)
		}
		return recipes, nil
	}

	// Other dialects have no vector operator; rank in memory.
	if err := db.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to find similar recipes: %w", err)
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		return distance(recipes[i].Embedding, target.Embedding) < distance(recipes[j].Embedding, target.Embedding)
	})
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

// Delete removes a recipe owned by userID together with every favorite that
// references it, in one transaction.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id", "user_id").First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if recipe.UserID != userID {
			return ErrRecipeNotOwned
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("recipe deleted", "user_id", userID, "recipe_id", recipeID)
	return nil
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
