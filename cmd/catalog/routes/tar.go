package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/datavault/catalog/cmd/catalog/handlers"
)

// RegisterTarRoutes registers tar routes
func RegisterTarRoutes(g *echo.Group, handler *handlers.TarHandler) {
	// POST /api/v1/tars - Register a new tar
	g.POST("/tars", handler.Create)

	// GET /api/v1/tars/:id - Get a tar with parts and member versions
	g.GET("/tars/:id", handler.Get)

	// PUT /api/v1/tars/:id - Replace a tar's attributes and members
	g.PUT("/tars/:id", handler.Update)
}
