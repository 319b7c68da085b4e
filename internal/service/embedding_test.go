package service_test

import (
	"testing"

	"github.com/pageza/recipe-creator/backend/internal/models"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmbedding(t *testing.T) {
	v := service.GenerateEmbedding("Egg Nog").Slice()
	require.Len(t, v, service.EmbeddingDimensions)
	assert.Equal(t, []float32{7, 2, 4}, v)
}

func TestRecipeEmbeddingUsesTitleCuisineAndIngredients(t *testing.T) {
	r := &models.Recipe{
		Title:       "Soup",
		Cuisine:     "Thai",
		Ingredients: models.JSONList[models.Ingredient]{{Item: "rice"}},
	}
	assert.Equal(t, service.GenerateEmbedding("Soup Thai rice").Slice(), service.RecipeEmbedding(r).Slice())
	assert.Len(t, service.RecipeEmbedding(&models.Recipe{}).Slice(), service.EmbeddingDimensions)
}
