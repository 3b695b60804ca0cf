package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/playforge/login/pkg/logx"
)

func main() {
	logx.Info("starting login service")

	container := NewContainer()
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "login",
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Get("/health", healthHandler(container))
	container.Handlers.RegisterRoutes(app)

	// Deletion events from the rest of the platform
	eventsCtx, stopEvents := context.WithCancel(context.Background())
	go func() {
		if err := container.Events.Run(eventsCtx); err != nil && err != context.Canceled {
			logx.Errorf("deletion subscriber stopped: %v", err)
		}
	}()

	go func() {
		address := container.Config.Server.Address()
		logx.Infof("listening on %s", address)
		if err := app.Listen(address); err != nil {
			logx.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logx.Infof("received signal %v, shutting down", sig)

	stopEvents()
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("forced shutdown: %v", err)
	}
	logx.Info("server exited")
}

func healthHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "login",
		}

		if err := container.DB.PingContext(c.Context()); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		if err := container.Redis.Ping(c.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}
