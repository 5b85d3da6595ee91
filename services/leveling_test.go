package services

import (
	"testing"

	"fit-quest-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.Battle{},
		&models.BattleParticipant{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, lineUserID string, exp, nextLevelExp, rank int) *models.User {
	user := &models.User{
		ID:           uuid.NewString(),
		LineUserID:   lineUserID,
		DisplayName:  "Tester " + lineUserID,
		Age:          25,
		Gender:       "unspecified",
		Height:       170,
		Weight:       60,
		Health:       10,
		Energy:       10,
		Exp:          exp,
		Rank:         rank,
		NextLevelExp: nextLevelExp,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestQuest(t *testing.T, db *gorm.DB, userID string, health, energy, exp int) *models.Quest {
	quest := &models.Quest{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        "Walk 3000 steps",
		Slug:         "walk-3000-steps",
		Description:  "Take a brisk walk around the block",
		HealthPoints: health,
		EnergyPoints: energy,
		ExpPoints:    exp,
		Goal:         3,
	}
	require.NoError(t, db.Create(quest).Error)
	return quest
}

func TestCompleteQuest_RewardExample(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	user := createTestUser(t, db, "U1", 95, 100, 1)
	quest := createTestQuest(t, db, user.ID, 2, 3, 10)

	completed, err := svc.CompleteQuest(quest.ID)
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.NotNil(t, completed.CompletedAt)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 5, got.Exp)
	assert.Equal(t, 150, got.NextLevelExp)
	assert.Equal(t, 2, got.Rank)
	assert.Equal(t, 12, got.Health)
	assert.Equal(t, 13, got.Energy)
}

func TestCompleteQuest_NoRankUp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	user := createTestUser(t, db, "U1", 40, 100, 1)
	quest := createTestQuest(t, db, user.ID, 2, 3, 10)

	_, err := svc.CompleteQuest(quest.ID)
	require.NoError(t, err)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 50, got.Exp)
	assert.Equal(t, 100, got.NextLevelExp)
	assert.Equal(t, 1, got.Rank)
	assert.Equal(t, 12, got.Health)
	assert.Equal(t, 13, got.Energy)
	assert.Less(t, got.Exp, got.NextLevelExp)
}

// A reward crossing two thresholds applies exactly one rank-up step; the
// leftover experience may exceed the new threshold until the next completion.
func TestCompleteQuest_SingleStepRankUp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	user := createTestUser(t, db, "U1", 0, 100, 1)
	quest := createTestQuest(t, db, user.ID, 0, 0, 300)

	_, err := svc.CompleteQuest(quest.ID)
	require.NoError(t, err)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 2, got.Rank, "only one rank-up per completion")
	assert.Equal(t, 200, got.Exp)
	assert.Equal(t, 150, got.NextLevelExp)
}

func TestCompleteQuest_InvariantHolds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	user := createTestUser(t, db, "U1", 60, 100, 1)

	// Rewards within a single threshold step keep exp below the threshold
	for _, reward := range []int{0, 10, 39, 40, 99} {
		quest := createTestQuest(t, db, user.ID, 1, 1, reward)
		_, err := svc.CompleteQuest(quest.ID)
		require.NoError(t, err)

		var got models.User
		require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
		assert.Less(t, got.Exp, got.NextLevelExp, "reward %d broke the invariant", reward)
	}
}

func TestCompleteQuest_AlreadyCompleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	user := createTestUser(t, db, "U1", 0, 100, 1)
	quest := createTestQuest(t, db, user.ID, 2, 3, 10)

	_, err := svc.CompleteQuest(quest.ID)
	require.NoError(t, err)

	_, err = svc.CompleteQuest(quest.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)

	// Rewards were not applied twice
	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 10, got.Exp)
	assert.Equal(t, 12, got.Health)
}

func TestCompleteQuest_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLevelingService(db)

	_, err := svc.CompleteQuest(uuid.NewString())
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestNextLevelThreshold_Sequence(t *testing.T) {
	assert.Equal(t, 150, nextLevelThreshold(100))
	assert.Equal(t, 225, nextLevelThreshold(150))
	assert.Equal(t, 337, nextLevelThreshold(225))
	assert.Equal(t, 505, nextLevelThreshold(337))
}
