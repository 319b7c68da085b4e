package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Ingredient struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Instruction struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
}

// Recipe is immutable once created; only deletion changes it.
type Recipe struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time             `gorm:"index" json:"created_at"`
	Title              string                `gorm:"size:255;not null;index" json:"title"`
	Cuisine            string                `gorm:"size:100" json:"cuisine"`
	Serves             int                   `gorm:"not null" json:"serves"`
	Language           string                `gorm:"size:50" json:"language"`
	Ingredients        JSONList[Ingredient]  `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions       JSONList[Instruction] `gorm:"type:jsonb;not null" json:"instructions"`
	ServingSuggestions JSONList[string]      `gorm:"type:jsonb;not null" json:"serving_suggestions"`
	Embedding          pgvector.Vector       `gorm:"type:vector(3)" json:"-"`
	UserID             uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	Owner              *User                 `gorm:"foreignKey:UserID" json:"owner,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
