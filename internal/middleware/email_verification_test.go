package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"github.com/pageza/recipe-creator/backend/internal/testhelpers"
)

func TestRequireVerifiedAccount(t *testing.T) {
	db := testhelpers.SetupSQLite(t)

	verified := models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "x", IsVerified: true}
	pending := models.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&verified).Error)
	require.NoError(t, db.Create(&pending).Error)

	tests := []struct {
		name     string
		userID   uuid.UUID
		wantCode int
		wantErr  string
	}{
		{"verified", verified.ID, http.StatusOK, ""},
		{"not verified", pending.ID, http.StatusForbidden, "account_not_verified"},
		{"deleted account", uuid.New(), http.StatusUnauthorized, "token_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me",
				func(c *gin.Context) { c.Set(userIDKey, tt.userID) },
				RequireVerifiedAccount(db, logger.Discard()),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w))
			}
		})
	}
}
