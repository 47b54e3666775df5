package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/tillpoint/internal/config"
	"github.com/example/tillpoint/internal/database"
	"github.com/example/tillpoint/internal/handlers"
	"github.com/example/tillpoint/internal/routes"
)

func main() {
	cfg := config.Load()

	conn := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "tillpoint",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	routes.Register(app, conn, cfg)

	log.Printf("listening on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
