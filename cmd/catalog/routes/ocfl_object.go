package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/datavault/catalog/cmd/catalog/handlers"
)

// RegisterOcflObjectRoutes registers OCFL object version routes
func RegisterOcflObjectRoutes(g *echo.Group, handler *handlers.OcflObjectHandler) {
	// POST /api/v1/ocfl-objects/bag-id/:bagId/version/:version - Register a new object version
	g.POST("/ocfl-objects/bag-id/:bagId/version/:version", handler.CreateVersion)

	// GET /api/v1/ocfl-objects/bag-id/:bagId/version/:version - Get one object version
	g.GET("/ocfl-objects/bag-id/:bagId/version/:version", handler.GetVersion)

	// GET /api/v1/ocfl-objects/bag-id/:bagId - List all versions of a bag
	g.GET("/ocfl-objects/bag-id/:bagId", handler.ListVersionsByBagID)

	// GET /api/v1/ocfl-objects/nbn/:nbn - Resolve an NBN to its versions
	g.GET("/ocfl-objects/nbn/:nbn", handler.ListVersionsByNbn)

	// GET /api/v1/ocfl-objects/sword-token/:token - List versions by sword token
	g.GET("/ocfl-objects/sword-token/:token", handler.ListVersionsBySwordToken)
}
