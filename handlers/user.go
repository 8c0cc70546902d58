package handlers

import (
	"game-rooms-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Get("/api/users/:id/stats", userService.GetStats)
}
