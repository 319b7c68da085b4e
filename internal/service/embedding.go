package service

import (
	"math"
	"strings"

	"github.com/pageza/recipe-creator/backend/internal/models"
	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches the vector(3) column.
const EmbeddingDimensions = 3

// GenerateEmbedding returns a simple deterministic embedding for the given text:
// total length, vowels and consonants.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	v := make([]float32, EmbeddingDimensions)
	v[0], v[1], v[2] = float32(len(text)), vowels, consonants
	return pgvector.NewVector(v)
}

// RecipeEmbedding embeds the parts of a recipe a search would match on.
func RecipeEmbedding(r *models.Recipe) pgvector.Vector {
	parts := []string{r.Title, r.Cuisine}
	for _, ing := range r.Ingredients {
		parts = append(parts, ing.Item)
	}
	return GenerateEmbedding(strings.Join(parts, " "))
}

// distance is the L2 distance used by pgvector's <-> operator.
func distance(a, b pgvector.Vector) float64 {
	av, bv := a.Slice(), b.Slice()
	if len(av) != len(bv) {
		return math.Inf(1)
	}
	var sum float64
	for i := range av {
		d := float64(av[i] - bv[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
