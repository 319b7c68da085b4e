package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileGet(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := &testhelpers.MockImageStore{}
	svc := service.NewProfileService(db, images, logger.Discard())
	ann := seedUser(t, db, "ann")
	ctx := context.Background()

	profile, err := svc.Get(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.Email, profile.User.Email)
	assert.Empty(t, profile.ImageURL)
	images.AssertNotCalled(t, "URL", mock.Anything, mock.Anything)

	require.NoError(t, db.Model(&ann).Update("image_key", "profile-images/a.png").Error)
	images.On("URL", mock.Anything, "profile-images/a.png").Return("https://signed.example/a.png", nil)

	profile, err = svc.Get(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/a.png", profile.ImageURL)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := &testhelpers.MockImageStore{}
	svc := service.NewProfileService(db, images, logger.Discard())
	ann := seedUser(t, db, "ann")
	require.NoError(t, db.Model(&ann).Update("image_key", "profile-images/old.png").Error)

	prefix := "profile-images/" + ann.ID.String() + "/"
	isNewKey := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".jpg")
	})
	images.On("Put", mock.Anything, isNewKey, "image/jpeg", mock.Anything).Return(nil)
	images.On("Delete", mock.Anything, "profile-images/old.png").Return(nil)
	images.On("URL", mock.Anything, isNewKey).Return("https://signed.example/new.jpg", nil)

	profile, err := svc.UploadImage(context.Background(), ann.ID, "Me.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	images.AssertExpectations(t)
	assert.Equal(t, "https://signed.example/new.jpg", profile.ImageURL)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", ann.ID).Error)
	assert.True(t, strings.HasPrefix(stored.ImageKey, prefix))
}

func TestUploadImageRejections(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ann := seedUser(t, db, "ann")
	ctx := context.Background()

	t.Run("no store", func(t *testing.T) {
		svc := service.NewProfileService(db, nil, logger.Discard())
		_, err := svc.UploadImage(ctx, ann.ID, "a.png", "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, service.ErrImageStoreUnavailable)
	})

	t.Run("not an image", func(t *testing.T) {
		images := &testhelpers.MockImageStore{}
		svc := service.NewProfileService(db, images, logger.Discard())
		_, err := svc.UploadImage(ctx, ann.ID, "a.pdf", "application/pdf", strings.NewReader("x"))
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
		images.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upload failure keeps old key", func(t *testing.T) {
		images := &testhelpers.MockImageStore{}
		images.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("s3 down"))
		svc := service.NewProfileService(db, images, logger.Discard())
		_, err := svc.UploadImage(ctx, ann.ID, "a.png", "image/png", strings.NewReader("x"))
		assert.Error(t, err)

		var stored models.User
		require.NoError(t, db.First(&stored, "id = ?", ann.ID).Error)
		assert.Empty(t, stored.ImageKey)
	})
}

func TestDeleteAccountCascades(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	images := &testhelpers.MockImageStore{}
	svc := service.NewProfileService(db, images, logger.Discard())
	favorites := service.NewFavoriteService(db, logger.Discard())
	ctx := context.Background()

	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")
	require.NoError(t, db.Model(&ann).Update("image_key", "profile-images/ann.png").Error)
	annRecipe := seedRecipe(t, db, ann.ID, "Ann Soup", time.Now())
	bobRecipe := seedRecipe(t, db, bob.ID, "Bob Stew", time.Now())

	_, _, err := favorites.Add(ctx, bob.ID, annRecipe.ID)
	require.NoError(t, err)
	_, _, err = favorites.Add(ctx, ann.ID, bobRecipe.ID)
	require.NoError(t, err)
	_, _, err = favorites.Add(ctx, bob.ID, bobRecipe.ID)
	require.NoError(t, err)

	images.On("Delete", mock.Anything, "profile-images/ann.png").Return(nil)

	require.NoError(t, svc.DeleteAccount(ctx, ann.ID))
	images.AssertExpectations(t)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", ann.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Recipe{}).Where("user_id = ?", ann.ID).Count(&count).Error)
	assert.Zero(t, count)

	remaining, err := favorites.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bobRecipe.ID, remaining[0].RecipeID)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, ann.ID), service.ErrUserNotFound)
}
