package handlers

import (
	"game-rooms-system/middleware"
	"game-rooms-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, settlementService *services.SettlementService, jwtSecret string) {
	secured := app.Group("/api/matches", middleware.RequireAuth(jwtSecret))
	secured.Post("/", settlementService.CreateMatchHandler)
}
