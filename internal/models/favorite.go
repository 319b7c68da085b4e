package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite links a user to a recipe. (user_id, recipe_id) is unique.
type Favorite struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipe_id"`
	AddedAt  time.Time `gorm:"not null" json:"added_at"`
	Recipe   *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now().UTC()
	}
	return nil
}
