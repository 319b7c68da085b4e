package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// GenerateRecipeRequest is the body of POST /recipes/generate.
type GenerateRecipeRequest struct {
	Ingredients []string `json:"ingredients"`
	Members     int      `json:"members"`
	Cuisine     string   `json:"cuisine"`
	Language    string   `json:"language"`
}

type FavoriteRequest struct {
	RecipeID uuid.UUID `json:"recipeId"`
}

// ListRecipesQuery binds the query string of GET /recipes.
type ListRecipesQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// SimilarRecipesQuery binds the query string of GET /recipes/:id/similar.
type SimilarRecipesQuery struct {
	Limit int `form:"limit"`
}
