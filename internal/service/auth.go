package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageza/recipe-creator/backend/internal/database"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes and newer versions reject it.
	maxPasswordBytes = 72
)

// LoginResult is either a session token or a pending OTP challenge.
type LoginResult struct {
	Token       string
	OTPRequired bool
	User        *models.User
}

// Session is returned after a successful OTP verification.
type Session struct {
	Token string
	User  *models.User
}

// AuthService runs the registration, login, verification and reset workflow.
type AuthService struct {
	db      *gorm.DB
	hasher  PasswordHasher
	tokens  *TokenService
	otp     *OTPIssuer
	metrics metrics.Recorder
	log     *slog.Logger
}

func NewAuthService(db *gorm.DB, hasher PasswordHasher, tokens *TokenService, otp *OTPIssuer, rec metrics.Recorder, log *slog.Logger) *AuthService {
	return &AuthService{
		db:      db,
		hasher:  hasher,
		tokens:  tokens,
		otp:     otp,
		metrics: rec,
		log:     log,
	}
}

// Register creates an unverified user. Duplicate detection relies on the
// unique index on email.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "":
		return nil, invalid("name", "is required")
	case email == "":
		return nil, invalid("email", "is required")
	case password == "":
		return nil, invalid("password", "is required")
	case !strings.Contains(email, "@"):
		return nil, invalid("email", "must be a valid email address")
	case len(password) > maxPasswordBytes:
		return nil, invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			s.metrics.RecordAuthEvent("register", "duplicate")
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordAuthEvent("register", "success")
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login returns a token for verified users and issues an OTP challenge for
// unverified ones. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		s.log.Info("login failed", "reason", "unknown email")
		s.metrics.RecordAuthEvent("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Info("login failed", "reason", "password mismatch", "user_id", user.ID)
		s.metrics.RecordAuthEvent("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.otp.Issue(ctx, user); err != nil {
			return nil, err
		}
		s.metrics.RecordAuthEvent("login", "otp_required")
		return &LoginResult{OTPRequired: true, User: user}, nil
	}

	token, err := s.tokens.Issue(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.metrics.RecordAuthEvent("login", "success")
	return &LoginResult{Token: token, User: user}, nil
}

// VerifyOtp completes account verification and OTP login alike.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (*Session, error) {
	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if err := s.otp.Check(user, code); err != nil {
		if isExpired(err) {
			if clearErr := s.otp.Clear(ctx, s.db, user.ID); clearErr != nil {
				s.log.Error("failed to clear expired otp", "user_id", user.ID, "error", clearErr)
			}
		}
		s.log.Info("otp verification failed", "user_id", user.ID, "reason", err.Error())
		s.metrics.RecordAuthEvent("verify_otp", "invalid")
		return nil, ErrOTPInvalidOrExpired
	}

	consumed, err := s.otp.Consume(ctx, s.db, user.ID, code, map[string]interface{}{"is_verified": true})
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if !consumed {
		s.log.Info("otp verification failed", "user_id", user.ID, "reason", "code already consumed")
		s.metrics.RecordAuthEvent("verify_otp", "invalid")
		return nil, ErrOTPInvalidOrExpired
	}
	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiry = nil

	token, err := s.tokens.Issue(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.metrics.RecordAuthEvent("verify_otp", "success")
	return &Session{Token: token, User: user}, nil
}

// ResendOtp issues a new code to an existing account.
func (s *AuthService) ResendOtp(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	return s.otp.Issue(ctx, user)
}

// ForgotPassword issues a reset code. Only verified accounts may reset.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if !user.IsVerified {
		s.metrics.RecordAuthEvent("forgot_password", "not_verified")
		return ErrAccountNotVerified
	}
	if err := s.otp.Issue(ctx, user); err != nil {
		return err
	}
	s.metrics.RecordAuthEvent("forgot_password", "success")
	return nil
}

// ResetPassword sets a new password after checking the code. Any failed check
// discards the pending code. No session is issued.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(newPassword) > maxPasswordBytes {
		return invalid("newPassword", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	user, err := s.findByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return ErrAccountNotVerified
	}

	if err := s.otp.Check(user, code); err != nil {
		if user.HasPendingOTP() {
			if clearErr := s.otp.Clear(ctx, s.db, user.ID); clearErr != nil {
				s.log.Error("failed to clear otp", "user_id", user.ID, "error", clearErr)
			}
		}
		s.log.Info("password reset rejected", "user_id", user.ID, "reason", err.Error())
		s.metrics.RecordAuthEvent("reset_password", "invalid")
		return ErrOTPInvalidOrExpired
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	consumed, err := s.otp.Consume(ctx, s.db, user.ID, code, map[string]interface{}{"password_hash": hash})
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if !consumed {
		s.metrics.RecordAuthEvent("reset_password", "invalid")
		return ErrOTPInvalidOrExpired
	}

	s.metrics.RecordAuthEvent("reset_password", "success")
	s.log.Info("password reset", "user_id", user.ID)
	return nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
