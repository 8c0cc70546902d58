package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game-rooms-system/handlers"
	"game-rooms-system/models"
	"game-rooms-system/services"
	"game-rooms-system/utils"
	"game-rooms-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Room{},
		&models.RoomPlayer{},
		&models.RoomStake{},
		&models.Sponsor{},
		&models.SponsorGame{},
		&models.UserSponsor{},
		&models.SponsorGameWallet{},
		&models.Match{},
		&models.MatchParticipant{},
		&models.TimelineEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	cfg := services.LoadEconomyConfig()

	authService := services.NewAuthService(db, jwtSecret)
	roomService := services.NewRoomService(db, cfg)
	settlementService := services.NewSettlementService(db, cfg)
	walletService := services.NewWalletService(db, cfg)
	sponsorService := services.NewSponsorService(db, cfg)
	userService := services.NewUserService(db)

	app := fiber.New()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.SetupAuthRoutes(app, authService, jwtSecret)
	handlers.SetupRoomRoutes(app, roomService, jwtSecret)
	handlers.SetupMatchRoutes(app, settlementService, jwtSecret)
	handlers.SetupSponsorRoutes(app, sponsorService, walletService, jwtSecret)
	handlers.SetupUserRoutes(app, userService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	roomService.StartRoomCloseScheduler()

	store, err := utils.NewObjectStoreFromEnv()
	if err != nil {
		log.Fatal("failed to initialize archive store:", err)
	}
	if store != nil {
		archiver := workers.NewTimelineArchiver(db, store)
		go workers.PollTimeline(ctx, archiver, 1*time.Minute)
		log.Println("✅ Timeline archiving running (every 1m)")
	} else {
		log.Println("⚠️  ARCHIVE_BUCKET_NAME not set, timeline archiving disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Room close scheduler running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
