package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/nimbus/cmd/internal/appcontainer"
	"github.com/Abraxas-365/nimbus/pkg/config"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

func main() {
	// 1. Initialize Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	logx.Info("🚀 Starting Nimbus account API server...")

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Initialize Dependency Container
	container, err := appcontainer.New(context.Background(), cfg)
	if err != nil {
		logx.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Cleanup()

	// 4. Build the Fiber app
	app := newApp(serverDeps{
		Router:   container.IAM.Router,
		Pool:     iamcontainer.PoolParams(cfg),
		Gatherer: container.Registry,
		Server:   cfg.Server,
	})

	// 5. Start Server with Graceful Shutdown
	startServer(app, cfg.Server.Port)
}

// startServer starts the server and blocks until a shutdown signal arrives.
func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
