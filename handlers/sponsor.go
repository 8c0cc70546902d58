package handlers

import (
	"game-rooms-system/middleware"
	"game-rooms-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSponsorRoutes(app *fiber.App, sponsorService *services.SponsorService, walletService *services.WalletService, jwtSecret string) {
	app.Get("/api/sponsors", sponsorService.ListSponsors)
	app.Get("/api/sponsors/:code", sponsorService.GetSponsor)
	app.Get("/api/sponsors/:code/games/:gameId/leaderboard", walletService.GetLeaderboard)

	secured := app.Group("/api", middleware.RequireAuth(jwtSecret))
	secured.Post("/sponsors/:code/join", sponsorService.JoinSponsor)
	secured.Get("/sponsors/:code/wallets", walletService.GetUserWallets)
	secured.Post("/sponsors/:code/games/:gameId/wallet", walletService.EnsureWalletHandler)
	secured.Get("/wallets", walletService.GetAllUserWallets)
}
