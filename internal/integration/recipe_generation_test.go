package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-creator/backend/internal/models"
	"github.com/pageza/recipe-creator/backend/internal/service"
)

// fakeLLM answers chat completions with a fenced recipe whose title carries a
// running number.
func fakeLLM(t *testing.T) *httptest.Server {
	t.Helper()
	var n int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt32(&n, 1)
		content := fmt.Sprintf("```json\n"+`{"title":"Chicken Rice Bowl %d","cuisine":"japanese","serves":2,
"ingredients":[{"item":"chicken","quantity":"200","unit":"g"},{"item":"rice","quantity":"1","unit":"cup"}],
"instructions":[{"step":1,"description":"Cook the rice."},{"step":2,"description":"Grill the chicken."}],
"serving_suggestions":["Top with <b>scallions</b>"]}`+"\n```", i)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRecipeGenerationFlow(t *testing.T) {
	s := newStack(t, stackOptions{llmURL: fakeLLM(t).URL})
	annToken := s.signUp(t, "Ann", "ann@example.com")
	bobToken := s.signUp(t, "Bob", "bob@example.com")

	generate := func(token string) models.Recipe {
		w := s.do(t, http.MethodPost, "/api/v1/recipes/generate", gin.H{
			"ingredients": []string{"chicken", "rice"},
			"members":     2,
			"cuisine":     "Japanese",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var r models.Recipe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
		return r
	}

	first := generate(annToken)
	assert.Equal(t, "Japanese", first.Cuisine)
	assert.Equal(t, models.JSONList[string]{"Top with scallions"}, first.ServingSuggestions)
	second := generate(annToken)
	bobs := generate(bobToken)

	// Bob sees his own recipe first.
	w := s.do(t, http.MethodGet, "/api/v1/recipes", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.RecipePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Recipes, 3)
	assert.Equal(t, bobs.ID, page.Recipes[0].ID)
	assert.Equal(t, second.ID, page.Recipes[1].ID)

	w = s.do(t, http.MethodGet, "/api/v1/recipes/"+first.ID.String()+"/similar?limit=2", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	var similar struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &similar))
	assert.Len(t, similar.Recipes, 2)

	w = s.do(t, http.MethodPost, "/api/v1/favorites", gin.H{"recipeId": first.ID}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/recipes/"+first.ID.String(), nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/recipes/"+first.ID.String(), nil, annToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/favorites", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
}

func TestGenerationRateLimit(t *testing.T) {
	s := newStack(t, stackOptions{llmURL: fakeLLM(t).URL, rateLimit: 1})
	token := s.signUp(t, "Ann", "ann@example.com")

	body := gin.H{"ingredients": []string{"egg"}, "members": 1}
	w := s.do(t, http.MethodPost, "/api/v1/recipes/generate", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = s.do(t, http.MethodPost, "/api/v1/recipes/generate", body, token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestUpstreamFailureIsOpaque(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key sk-live-123"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(upstream.Close)

	s := newStack(t, stackOptions{llmURL: upstream.URL})
	token := s.signUp(t, "Ann", "ann@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/recipes/generate", gin.H{"ingredients": []string{"egg"}, "members": 1}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-live-123")

	var count int64
	require.NoError(t, s.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}
