package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"collecthub-backend/internal/config"
	"collecthub-backend/internal/controllers"
	"collecthub-backend/internal/mail"
	"collecthub-backend/internal/realtime"
	"collecthub-backend/internal/repository"
	"collecthub-backend/internal/routes"
	"collecthub-backend/internal/storage"
	"collecthub-backend/utils"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	repository.Connect(cfg)
	storage.InitMinio(cfg)

	emailSender := mail.NewGmailSender(cfg.SMTPSenderName, cfg.SMTPAddress, cfg.SMTPPassword)

	hub := realtime.NewHub()
	controllers.Init(cfg.AuthSecret, cfg.FrontendOrigin, emailSender, hub, logger)

	utils.StartCleanupTask(logger)

	app := fiber.New(fiber.Config{
		BodyLimit: 500 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigin,
		AllowCredentials: true,
	}))

	routes.Setup(app, hub)

	logger.Infow("listening", "addr", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatalw("server", "error", err)
	}
}
