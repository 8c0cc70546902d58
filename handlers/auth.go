package handlers

import (
	"game-rooms-system/middleware"
	"game-rooms-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, jwtSecret string) {
	app.Post("/api/auth/register", authService.Register)
	app.Post("/api/auth/login", authService.Login)

	secured := app.Group("/api/auth", middleware.RequireAuth(jwtSecret))
	secured.Get("/me", authService.Me)
}
