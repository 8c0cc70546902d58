package handlers

import (
	"game-rooms-system/middleware"
	"game-rooms-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRoomRoutes(app *fiber.App, roomService *services.RoomService, jwtSecret string) {
	// room reads are public; everything that mutates needs identity
	app.Get("/api/rooms/:code", roomService.GetRoom)

	secured := app.Group("/api/rooms", middleware.RequireAuth(jwtSecret))
	secured.Post("/", roomService.CreateRoom)
	secured.Post("/join", roomService.JoinRoom)
	secured.Post("/:code/start", roomService.StartRoom)
	secured.Post("/:code/stake", roomService.SetStake)
	secured.Post("/:code/team", roomService.SetPlayerTeam)
	secured.Post("/:code/team-leader", roomService.SetTeamLeader)
}
