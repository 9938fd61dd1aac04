package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/rulechess-backend/internal/config"
	"github.com/benbeisheim/rulechess-backend/internal/controller"
	"github.com/benbeisheim/rulechess-backend/internal/engineapi"
	"github.com/benbeisheim/rulechess-backend/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	// Initialize the application
	app := fiber.New(fiber.Config{
		AppName: "rulechess",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize services
	var engine engineapi.Suggester
	switch cfg.EngineKind {
	case config.EngineWS:
		engine = engineapi.NewWSClient(cfg.EngineURL, cfg.EngineTimeout)
	default:
		engine = engineapi.NewHTTPClient(cfg.EngineURL, cfg.EngineTimeout)
	}
	gameManager := service.NewGameManager(cfg.RepetitionMode)
	gameService := service.NewGameService(gameManager, engine, cfg.EngineTimeout)

	controller.SetupRoutes(app, gameService, cfg.EngineDepth, cfg.AllowOrigins)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infow("starting server", "addr", cfg.Addr, "engine", cfg.EngineKind, "engineURL", cfg.EngineURL)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
	gameService.Wait()
}
