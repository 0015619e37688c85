package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/datavault/catalog/cmd/catalog/container"
	"github.com/datavault/catalog/cmd/catalog/handlers"
	"github.com/datavault/catalog/cmd/catalog/routes"
	"github.com/datavault/catalog/common/bootstrap"
	"github.com/datavault/catalog/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (DB, logger, redis, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "catalog")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap catalog: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, components)
	registerRoutes(e, serviceContainer)

	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"service": "catalog",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	api := e.Group("/api/v1")

	ocflObjectHandler := handlers.NewOcflObjectHandler(
		serviceContainer.Components,
		serviceContainer.OcflObjectVersionService,
	)
	tarHandler := handlers.NewTarHandler(
		serviceContainer.Components,
		serviceContainer.TarService,
	)

	routes.RegisterOcflObjectRoutes(api, ocflObjectHandler)
	routes.RegisterTarRoutes(api, tarHandler)
}

// startServer runs the Echo handler behind the graceful-shutdown server
// until an error or a termination signal
func startServer(e *echo.Echo, components *bootstrap.Components) {
	srv := server.New("catalog", components.Config.Service.Port, e, components.Logger)

	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
