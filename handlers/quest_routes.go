// handlers/quest_routes.go
package handlers

import (
	"time"

	"fit-quest-system/middleware"
	"fit-quest-system/models"
	"fit-quest-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService, levelingService *services.LevelingService, rdb *redis.Client) {
	secured := app.Group("/quests", middleware.SessionMiddleware())

	// Generation hits the LLM, so it is rate limited per user.
	secured.Post("/:lineUserId",
		middleware.RateLimit(rdb, 5, time.Minute, "quest_generation"),
		func(c *fiber.Ctx) error {
			var req struct {
				Purpose string `json:"purpose"`
			}
			_ = c.BodyParser(&req) // purpose is optional

			quest, err := questService.GenerateQuest(c.Params("lineUserId"), req.Purpose)
			if err != nil {
				return models.RespondWithError(c, err)
			}
			return c.JSON(fiber.Map{"quest": quest})
		})

	secured.Get("/today/:lineUserId", func(c *fiber.Ctx) error {
		stats, err := questService.GetTodayQuestStats(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(stats)
	})

	secured.Get("/:lineUserId", func(c *fiber.Ctx) error {
		quests, err := questService.GetUserQuests(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"quests": quests})
	})

	secured.Put("/update/:questId", func(c *fiber.Ctx) error {
		var req struct {
			Progress int `json:"progress"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("invalid request body"))
		}

		quest, err := questService.UpdateQuestProgress(c.Params("questId"), req.Progress)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"quest": quest})
	})

	secured.Post("/complete/:questId", func(c *fiber.Ctx) error {
		quest, err := levelingService.CompleteQuest(c.Params("questId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"quest": quest})
	})
}
