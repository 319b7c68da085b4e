package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-creator/backend/internal/models"
)

// RequireVerifiedAccount rejects tokens whose account no longer exists or is
// not verified. Tokens stay valid until expiry, so a deleted account would
// otherwise keep access.
func RequireVerifiedAccount(db *gorm.DB, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "token_invalid", "authentication required")
			return
		}

		var user models.User
		err := db.WithContext(c.Request.Context()).Select("id", "is_verified").First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortJSON(c, http.StatusUnauthorized, "token_invalid", "invalid or expired token")
			return
		}
		if err != nil {
			log.Error("failed to load account", "user_id", userID, "error", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Internal Server Error")
			return
		}
		if !user.IsVerified {
			abortJSON(c, http.StatusForbidden, "account_not_verified", "Please verify your email address to access this feature")
			return
		}

		c.Next()
	}
}
