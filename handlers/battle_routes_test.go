package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"fit-quest-system/middleware"
	"fit-quest-system/models"
	"fit-quest-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.Battle{},
		&models.BattleParticipant{},
	))
	return db
}

func setupBattleApp(t *testing.T, db *gorm.DB) *fiber.App {
	middleware.InitAuth("test-secret-key")
	app := fiber.New()
	SetupBattleRoutes(app, services.NewBattleService(db))
	return app
}

func seedUser(t *testing.T, db *gorm.DB, lineUserID string, exp int) *models.User {
	user := &models.User{
		ID:           uuid.NewString(),
		LineUserID:   lineUserID,
		DisplayName:  "Tester " + lineUserID,
		Exp:          exp,
		Rank:         1,
		NextLevelExp: 100,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func bearerToken(t *testing.T, lineUserID string) string {
	token, err := middleware.IssueSessionToken(lineUserID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestBattleRoutes_RequireSession(t *testing.T) {
	db := setupTestDB(t)
	app := setupBattleApp(t, db)

	req := httptest.NewRequest("POST", "/battles/create/U1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBattleRoutes_FullFlow(t *testing.T) {
	db := setupTestDB(t)
	app := setupBattleApp(t, db)

	seedUser(t, db, "U1", 40)
	seedUser(t, db, "U2", 10)

	// U1 creates a battle
	req := httptest.NewRequest("POST", "/battles/create/U1", nil)
	req.Header.Set("Authorization", bearerToken(t, "U1"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created struct {
		Battle models.Battle `json:"battle"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.Battle.InviteCode)

	// U2 joins by invite code
	req = httptest.NewRequest("POST", "/battles/join/"+created.Battle.InviteCode,
		jsonBody(t, fiber.Map{"lineUserId": "U2"}))
	req.Header.Set("Authorization", bearerToken(t, "U2"))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Simulate exp gain for U2
	require.NoError(t, db.Model(&models.User{}).
		Where("line_user_id = ?", "U2").Update("exp", 35).Error)

	// Rankings order by gain: U2 gained 25, U1 gained 0
	req = httptest.NewRequest("GET", "/battles/rankings/"+created.Battle.ID, nil)
	req.Header.Set("Authorization", bearerToken(t, "U1"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rankingsResp struct {
		Rankings []models.BattleRanking `json:"rankings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rankingsResp))
	require.Len(t, rankingsResp.Rankings, 2)
	assert.Equal(t, "U2", rankingsResp.Rankings[0].LineUserID)
	assert.Equal(t, 25, rankingsResp.Rankings[0].ExpGained)
	assert.Equal(t, "U1", rankingsResp.Rankings[1].LineUserID)

	// Active battle lookup
	req = httptest.NewRequest("GET", "/battles/active/U2", nil)
	req.Header.Set("Authorization", bearerToken(t, "U2"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var activeResp struct {
		Battle *models.Battle `json:"battle"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&activeResp))
	require.NotNil(t, activeResp.Battle)
	assert.Equal(t, created.Battle.ID, activeResp.Battle.ID)

	// Both leave; battle disappears with the last participant
	for _, u := range []string{"U2", "U1"} {
		req = httptest.NewRequest("POST", "/battles/leave/"+u+"/"+created.Battle.ID, nil)
		req.Header.Set("Authorization", bearerToken(t, u))
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	var battleCount int64
	require.NoError(t, db.Model(&models.Battle{}).Count(&battleCount).Error)
	assert.EqualValues(t, 0, battleCount)
}

func TestBattleRoutes_JoinUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	app := setupBattleApp(t, db)

	seedUser(t, db, "U1", 0)

	req := httptest.NewRequest("POST", "/battles/join/000000000000",
		jsonBody(t, fiber.Map{"lineUserId": "U1"}))
	req.Header.Set("Authorization", bearerToken(t, "U1"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.CodeNotFound, body.Code)
}
