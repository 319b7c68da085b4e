package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-creator/backend/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
	{service.ErrAccountNotVerified, http.StatusForbidden, "account_not_verified"},
	{service.ErrOTPInvalidOrExpired, http.StatusBadRequest, "otp_invalid_or_expired"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{service.ErrTokenInvalid, http.StatusUnauthorized, "token_invalid"},
	{service.ErrOTPDeliveryFailed, http.StatusInternalServerError, "otp_delivery_failed"},
	{service.ErrUpstreamGenerationFailed, http.StatusInternalServerError, "upstream_generation_failed"},
	{service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
	{service.ErrRecipeNotFound, http.StatusNotFound, "recipe_not_found"},
	{service.ErrRecipeNotOwned, http.StatusForbidden, "recipe_not_owned"},
	{service.ErrFavoriteNotFound, http.StatusNotFound, "favorite_not_found"},
	{service.ErrImageStoreUnavailable, http.StatusServiceUnavailable, "image_store_unavailable"},
}

// respondError writes the client-facing form of err. Wrapped causes are
// logged, never returned.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: verr.Error()})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error("request failed", "route", c.FullPath(), "code", m.code, "error", err)
			}
			c.JSON(m.status, ErrorResponse{Error: m.code, Message: m.err.Error()})
			return
		}
	}

	log.Error("unexpected error", "route", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal Server Error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message})
}
