package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-schedule/internal/config"
)

// NewApp builds the fiber app. Error responses are rendered by the error
// middleware, so the default handler only sees errors raised before it.
func NewApp(cfg config.AppConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: cfg.Env == "production",
		ReadTimeout:           cfg.RequestTimeout(),
		WriteTimeout:          cfg.RequestTimeout(),
	})
}
