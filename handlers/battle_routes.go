// handlers/battle_routes.go
package handlers

import (
	"fit-quest-system/middleware"
	"fit-quest-system/models"
	"fit-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(app *fiber.App, battleService *services.BattleService) {
	secured := app.Group("/battles", middleware.SessionMiddleware())

	secured.Post("/create/:lineUserId", func(c *fiber.Ctx) error {
		battle, err := battleService.CreateBattle(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"battle": battle})
	})

	secured.Post("/join/:inviteCode", func(c *fiber.Ctx) error {
		var req struct {
			LineUserID string `json:"lineUserId"`
		}
		if err := c.BodyParser(&req); err != nil || req.LineUserID == "" {
			return models.RespondWithError(c, models.NewValidationError("lineUserId is required"))
		}

		battle, err := battleService.JoinBattle(c.Params("inviteCode"), req.LineUserID)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"battle": battle})
	})

	secured.Get("/active/:lineUserId", func(c *fiber.Ctx) error {
		battle, err := battleService.GetUserActiveBattle(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"battle": battle})
	})

	secured.Get("/rankings/:battleId", func(c *fiber.Ctx) error {
		rankings, err := battleService.GetBattleRankings(c.Params("battleId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"rankings": rankings})
	})

	secured.Post("/leave/:lineUserId/:battleId", func(c *fiber.Ctx) error {
		if err := battleService.LeaveBattle(c.Params("lineUserId"), c.Params("battleId")); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}
