package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	otpDigits  = 6
	otpSubject = "Your OTP Code for Recipe Creator Verification"
)

// Internal OTP failure causes. Callers only ever see ErrOTPInvalidOrExpired.
var (
	errOTPUnset    = fmt.Errorf("%w: no pending code", ErrOTPInvalidOrExpired)
	errOTPMismatch = fmt.Errorf("%w: code mismatch", ErrOTPInvalidOrExpired)
	errOTPExpired  = fmt.Errorf("%w: code expired", ErrOTPInvalidOrExpired)
)

// OTPIssuer generates, stores, delivers and checks one-time codes.
type OTPIssuer struct {
	db       *gorm.DB
	mailer   Mailer
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	metrics  metrics.Recorder
	log      *slog.Logger
}

type OTPOption func(*OTPIssuer)

// WithOTPClock replaces the time source.
func WithOTPClock(now func() time.Time) OTPOption {
	return func(o *OTPIssuer) { o.now = now }
}

// WithOTPGenerator replaces the code generator.
func WithOTPGenerator(gen func() (string, error)) OTPOption {
	return func(o *OTPIssuer) { o.generate = gen }
}

func NewOTPIssuer(db *gorm.DB, mailer Mailer, ttl time.Duration, rec metrics.Recorder, log *slog.Logger, opts ...OTPOption) *OTPIssuer {
	o := &OTPIssuer{
		db:       db,
		mailer:   mailer,
		ttl:      ttl,
		now:      time.Now,
		generate: GenerateOTP,
		metrics:  rec,
		log:      log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateOTP returns a uniformly random zero-padded 6 digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// Issue stores a fresh code on the user and then mails it. The stored code
// survives a delivery failure so the user can ask for a resend.
func (o *OTPIssuer) Issue(ctx context.Context, user *models.User) error {
	code, err := o.generate()
	if err != nil {
		return err
	}
	expiry := o.now().Add(o.ttl).UTC()

	res := o.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"otp_code": code, "otp_expiry": expiry})
	if res.Error != nil {
		return fmt.Errorf("failed to store otp: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	user.OTPCode = &code
	user.OTPExpiry = &expiry

	text, htmlBody := otpEmail(user.Name, code, o.ttl)
	if err := o.mailer.Send(ctx, user.Email, otpSubject, text, htmlBody); err != nil {
		o.metrics.RecordOTPDispatch(false)
		o.log.Error("otp delivery failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrOTPDeliveryFailed, err)
	}

	o.metrics.RecordOTPDispatch(true)
	o.log.Info("otp issued", "user_id", user.ID, "expires_at", expiry)
	return nil
}

// Check compares code against the user's pending code. The returned error
// wraps ErrOTPInvalidOrExpired and names the internal cause.
func (o *OTPIssuer) Check(user *models.User, code string) error {
	if !user.HasPendingOTP() {
		return errOTPUnset
	}
	// An elapsed code is expired whatever was submitted.
	if o.now().After(*user.OTPExpiry) {
		return errOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTPCode), []byte(code)) != 1 {
		return errOTPMismatch
	}
	return nil
}

// Clear removes any pending code from the user.
func (o *OTPIssuer) Clear(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	return db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"otp_code": nil, "otp_expiry": nil}).Error
}

// Consume clears the code only if it is still the stored one and applies
// extra column updates in the same statement. It returns false when another
// request consumed or replaced the code first.
func (o *OTPIssuer) Consume(ctx context.Context, db *gorm.DB, userID uuid.UUID, code string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"otp_code": nil, "otp_expiry": nil}
	for k, v := range updates {
		values[k] = v
	}
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp_code = ?", userID, code).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func isExpired(err error) bool {
	return errors.Is(err, errOTPExpired)
}

func otpEmail(name, code string, ttl time.Duration) (string, string) {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + cases.Title(language.English).String(name)
	}
	minutes := int(ttl.Minutes())

	text := fmt.Sprintf("%s,\n\nYour OTP code is: %s\nIt is valid for %d minutes.\n\nIf you did not request this code, you can ignore this email.\n",
		greeting, code, minutes)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<p>%s,</p>
	<p>Your OTP code is:</p>
	<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
	<p>It is valid for %d minutes.</p>
	<p style="color: #666; font-size: 12px;">If you did not request this code, you can ignore this email.</p>
</body>
</html>`, html.EscapeString(greeting), code, minutes)
	return text, htmlBody
}
