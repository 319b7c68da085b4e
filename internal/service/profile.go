package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"gorm.io/gorm"
)

// Profile is the public view of a user.
type Profile struct {
	User     *models.User `json:"user"`
	ImageURL string       `json:"image_url,omitempty"`
}

// ProfileService reads profiles, stores profile images and deletes accounts.
type ProfileService struct {
	db     *gorm.DB
	images ImageStore
	log    *slog.Logger
}

// NewProfileService builds the service. images may be nil when no bucket is configured.
func NewProfileService(db *gorm.DB, images ImageStore, log *slog.Logger) *ProfileService {
	return &ProfileService{db: db, images: images, log: log}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	profile := &Profile{User: &user}
	if user.ImageKey != "" && s.images != nil {
		url, err := s.images.URL(ctx, user.ImageKey)
		if err != nil {
			s.log.Warn("failed to presign profile image", "user_id", userID, "error", err)
		} else {
			profile.ImageURL = url
		}
	}
	return profile, nil
}

// UploadImage stores a new profile image and records its key on the user.
func (s *ProfileService) UploadImage(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (*Profile, error) {
	if s.images == nil {
		return nil, ErrImageStoreUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("image", "must be an image")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	key := fmt.Sprintf("profile-images/%s/%s%s", userID, uuid.New(), strings.ToLower(path.Ext(filename)))
	if err := s.images.Put(ctx, key, contentType, body); err != nil {
		return nil, err
	}

	previous := user.ImageKey
	if err := s.db.WithContext(ctx).Model(&user).Update("image_key", key).Error; err != nil {
		return nil, fmt.Errorf("failed to save image key: %w", err)
	}
	if previous != "" {
		if err := s.images.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to delete previous profile image", "key", previous, "error", err)
		}
	}

	return s.Get(ctx, userID)
}

// DeleteAccount removes the user together with their recipes and every
// favorite that points at the user or at one of their recipes.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	var imageKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		imageKey = user.ImageKey

		ownRecipes := tx.Model(&models.Recipe{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("user_id = ? OR recipe_id IN (?)", userID, ownRecipes).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Recipe{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipes: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if imageKey != "" && s.images != nil {
		if err := s.images.Delete(ctx, imageKey); err != nil {
			s.log.Warn("failed to delete profile image", "key", imageKey, "error", err)
		}
	}
	s.log.Info("account deleted", "user_id", userID)
	return nil
}
