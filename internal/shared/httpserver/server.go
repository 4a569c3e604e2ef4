package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Server struct {
	app *fiber.App
}

var log = logger.GetLogger()

func NewServer() *Server {
	app := fiber.New(fiber.Config{
		AppName:               "sneakerbid",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())

	// request logging
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	return &Server{app: app}
}

// errorHandler renders errors returned by handlers as {"error": "..."}
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// App exposes the fiber app, mainly for app.Test in handler tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Router returns a group running handlers (auth) before every route mounted on it
func (s *Server) Router(handlers ...fiber.Handler) fiber.Router {
	return s.app.Group("", handlers...)
}

// Start blocks serving addr until Shutdown is called
func (s *Server) Start(addr string) error {
	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}
