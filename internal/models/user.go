package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	ImageKey   string    `gorm:"size:255" json:"-"`

	PasswordHash string `gorm:"not null" json:"-"`

	// OTPCode and OTPExpiry are always written and cleared together.
	OTPCode   *string    `gorm:"size:6" json:"-"`
	OTPExpiry *time.Time `json:"-"`

	Recipes   []Recipe   `gorm:"foreignKey:UserID" json:"recipes,omitempty"`
	Favorites []Favorite `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPendingOTP reports whether a code is stored, regardless of expiry.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiry != nil
}
