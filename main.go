package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fit-quest-system/handlers"
	"fit-quest-system/middleware"
	"fit-quest-system/models"
	"fit-quest-system/services"
	"fit-quest-system/utils"
	"fit-quest-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "fit-quest-system",
	})

	// Optional: only accept requests carrying the shared gateway token
	if serviceToken := os.Getenv("FIT_SERVICE_TOKEN"); serviceToken != "" {
		app.Use(middleware.ServiceAuthMiddleware(serviceToken))
		log.Println("✅ Service token auth enforced, all requests must present X-Service-Token")
	}

	// CORS for the LIFF web client
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.Battle{},
		&models.BattleParticipant{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Avatar storage is optional; without R2 credentials the avatar route
	// responds with a generation error and everything else still works.
	if os.Getenv("R2_ACCESS_KEY_ID") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		log.Println("✅ R2 avatar storage configured")
	} else {
		log.Println("⚠️  R2 credentials not set, avatar generation disabled")
	}

	middleware.InitAuth(os.Getenv("JWT_SECRET"))

	// Redis backs the quest-generation rate limiter; run without it if absent
	var rdb *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		if rdb = middleware.NewRedisClient(redisURL); rdb != nil {
			log.Println("✅ Redis connected")
		}
	}

	geminiKey := os.Getenv("GOOGLE_API_KEY")
	if geminiKey == "" {
		log.Fatal("GOOGLE_API_KEY environment variable not set")
	}
	gemini := services.NewGeminiClient(os.Getenv("GEMINI_BASE_URL"), geminiKey)
	lineClient := services.NewLineAuthClient(os.Getenv("LINE_API_BASE_URL"))

	userService := services.NewUserService(db)
	questService := services.NewQuestService(db, gemini)
	levelingService := services.NewLevelingService(db)
	battleService := services.NewBattleService(db)
	avatarService := services.NewAvatarService(db, gemini)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	battleService.StartExpiryScheduler()

	cleanupWorker := workers.NewBattleCleanupWorker(db, 30*24*time.Hour)
	cleanupWorker.Start(ctx)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	handlers.SetupUserRoutes(app, userService, lineClient, avatarService)
	handlers.SetupQuestRoutes(app, questService, levelingService, rdb)
	handlers.SetupBattleRoutes(app, battleService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Battle expiry scheduler running (every 1m)")
	log.Println("✅ Battle cleanup worker running (every 1h)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = app.Shutdown()
}
