package restapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/pixvault/image-search/config"
	_ "github.com/pixvault/image-search/docs"
	v1 "github.com/pixvault/image-search/internal/controller/restapi/v1"
	"github.com/pixvault/image-search/internal/usecase"
	"github.com/pixvault/image-search/pkg/logger"
)

// @title Image search backend
// @version 1.0.0
// @host localhost:8080
// @BasePath /api
func NewRouter(app *fiber.App, cfg *config.Config, img usecase.ImageUseCase, l logger.Interface) {
	// CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Health
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	// Routers
	apiGroup := app.Group("/api")
	{
		v1.NewImageRoutes(apiGroup, img, l)
	}

	// Unmatched routes get the uniform envelope
	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
			"error":  "Not found",
			"status": http.StatusNotFound,
		})
	})
}
