package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLifecycle(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewFavoriteService(db, logger.Discard())
	ctx := context.Background()

	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")
	soup := seedRecipe(t, db, bob.ID, "Soup", time.Now())
	stew := seedRecipe(t, db, bob.ID, "Stew", time.Now())

	fav, created, err := svc.Add(ctx, ann.ID, soup.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, soup.ID, fav.RecipeID)

	again, created, err := svc.Add(ctx, ann.ID, soup.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, fav.ID, again.ID)

	_, _, err = svc.Add(ctx, ann.ID, stew.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, f := range list {
		require.NotNil(t, f.Recipe)
		require.NotNil(t, f.Recipe.Owner)
		assert.Equal(t, "bob", f.Recipe.Owner.Name)
	}

	ok, err := svc.IsFavorite(ctx, ann.ID, soup.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, ann.ID, soup.ID))
	assert.ErrorIs(t, svc.Remove(ctx, ann.ID, soup.ID), service.ErrFavoriteNotFound)

	ok, err = svc.IsFavorite(ctx, ann.ID, soup.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err = svc.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddFavoriteUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewFavoriteService(db, logger.Discard())
	ann := seedUser(t, db, "ann")

	_, _, err := svc.Add(context.Background(), ann.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}
