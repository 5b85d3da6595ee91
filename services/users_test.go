package services

import (
	"testing"

	"fit-quest-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUser_CreatesWithDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	pic := "https://profile.line-scdn.net/abc"
	user, err := svc.InitUser(InitUserRequest{
		LineUserID:  "U100",
		DisplayName: "Mika",
		PictureURL:  &pic,
	})
	require.NoError(t, err)

	assert.Equal(t, "U100", user.LineUserID)
	assert.Equal(t, "Mika", user.DisplayName)
	assert.Equal(t, 20, user.Age)
	assert.Equal(t, "unspecified", user.Gender)
	assert.Equal(t, 170, user.Height)
	assert.Equal(t, 60, user.Weight)
	assert.Equal(t, 10, user.Health)
	assert.Equal(t, 10, user.Energy)
	assert.Equal(t, 0, user.Exp)
	assert.Equal(t, 1, user.Rank)
	assert.Equal(t, 100, user.NextLevelExp)
}

func TestInitUser_FindOrCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	first, err := svc.InitUser(InitUserRequest{
		LineUserID:  "U100",
		DisplayName: "Mika",
		Age:         31,
		Height:      180,
		Weight:      75,
	})
	require.NoError(t, err)

	// Repeat login with a changed display name returns the existing record
	// unchanged.
	second, err := svc.InitUser(InitUserRequest{
		LineUserID:  "U100",
		DisplayName: "Mika Renamed",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Mika", second.DisplayName)
	assert.Equal(t, 31, second.Age)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInitUser_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.InitUser(InitUserRequest{DisplayName: "NoID"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	_, err = svc.InitUser(InitUserRequest{LineUserID: "U1"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.GetUser("missing")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestGetLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	createTestUser(t, db, "U1", 10, 100, 1)
	createTestUser(t, db, "U2", 90, 150, 2)
	createTestUser(t, db, "U3", 20, 150, 2)

	users, err := svc.GetLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "U2", users[0].LineUserID)
	assert.Equal(t, "U3", users[1].LineUserID)
	assert.Equal(t, "U1", users[2].LineUserID)
}
