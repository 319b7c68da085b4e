package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/types"
)

// AuthHandler serves the registration, login and OTP endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies CookieConfig
	log     *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, cookies CookieConfig, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, log: log}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/send-otp", h.SendOtp)
		auth.POST("/verify-otp", h.VerifyOtp)
		auth.POST("/verify-account", h.VerifyOtp)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/logout", h.Logout)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Log in to receive a verification code.",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if result.OTPRequired {
		c.JSON(http.StatusOK, gin.H{
			"otpRequired": true,
			"message":     "A verification code has been sent to your email.",
		})
		return
	}

	h.cookies.set(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": result.User})
}

// SendOtp issues a fresh code to an existing account.
func (h *AuthHandler) SendOtp(c *gin.Context) {
	var req types.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.ResendOtp(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email."})
}

// VerifyOtp completes both account verification and OTP login.
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req types.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	session, err := h.auth.VerifyOtp(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.cookies.set(c, session.Token)
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "user": session.User})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req types.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A password reset code has been sent to your email."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset. Please log in."})
}

// Logout only clears the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
