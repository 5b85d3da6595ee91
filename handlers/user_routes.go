// handlers/user_routes.go
package handlers

import (
	"strconv"

	"fit-quest-system/middleware"
	"fit-quest-system/models"
	"fit-quest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, lineClient *services.LineAuthClient, avatarService *services.AvatarService) {
	// 🔓 Public: exchange a LINE access token for a session token.
	// Verifies the token with LINE, fetches the profile and finds-or-creates
	// the user in one step.
	app.Post("/auth/line", func(c *fiber.Ctx) error {
		var req struct {
			AccessToken string `json:"accessToken"`
		}
		if err := c.BodyParser(&req); err != nil || req.AccessToken == "" {
			return models.RespondWithError(c, models.NewValidationError("accessToken is required"))
		}

		profile, err := lineClient.ResolveIdentity(req.AccessToken)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		user, err := userService.InitUser(services.InitUserRequest{
			LineUserID:  profile.UserID,
			DisplayName: profile.DisplayName,
			PictureURL:  profile.PictureURL,
		})
		if err != nil {
			return models.RespondWithError(c, err)
		}

		token, err := middleware.IssueSessionToken(user.LineUserID)
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	})

	// 🔐 Session-secured routes
	secured := app.Group("/", middleware.SessionMiddleware())

	secured.Post("/users/init", func(c *fiber.Ctx) error {
		var req services.InitUserRequest
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("invalid request body"))
		}

		user, err := userService.InitUser(req)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"user": user})
	})

	secured.Get("/users/:lineUserId", func(c *fiber.Ctx) error {
		user, err := userService.GetUser(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"user": user})
	})

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		users, err := userService.GetLeaderboard(limit)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"leaderboard": users})
	})

	secured.Post("/avatar/:lineUserId", func(c *fiber.Ctx) error {
		url, err := avatarService.GenerateAvatar(c.Params("lineUserId"))
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(fiber.Map{"imageUrl": url})
	})
}
