package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-creator/backend/internal/middleware"
	"github.com/pageza/recipe-creator/backend/internal/service"
)

const maxImageBytes = 5 << 20

// UserHandler serves the signed-in user's profile and account.
type UserHandler struct {
	profiles *service.ProfileService
	cookies  CookieConfig
	log      *slog.Logger
}

func NewUserHandler(profiles *service.ProfileService, cookies CookieConfig, log *slog.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, cookies: cookies, log: log}
}

// RegisterRoutes expects router to be behind the auth middleware.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile/image", h.UploadImage)
		users.DELETE("", h.DeleteAccount)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "An image file of at most 5MB is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	profile, err := h.profiles.UploadImage(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteAccount removes the user with their recipes and favorites and ends
// the browser session.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrTokenInvalid)
		return
	}

	if err := h.profiles.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
