package server

import (
	"time"

	"github.com/fathima-sithara/music-share/internal/handlers"
	"github.com/fathima-sithara/music-share/internal/middleware"
	utils "github.com/fathima-sithara/music-share/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Options struct {
	BodyLimit int
	Metrics   *middleware.Metrics
	Limiter   *middleware.RateLimiter // nil when Redis is not configured
	AccessLog bool
}

// New wires the API routes onto a fresh fiber app.
func New(h *handlers.Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "music-share-api",
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return utils.JSONError(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", opts.Metrics.Handler())
	}

	app.Get("/", h.Health)

	api := app.Group("/api")
	if opts.Limiter != nil {
		api.Post("/upload", opts.Limiter.ByIP(), h.Upload)
	} else {
		api.Post("/upload", h.Upload)
	}
	api.Get("/file/:id", h.GetFile)
	api.Get("/download/:id", h.Download)

	return app
}
