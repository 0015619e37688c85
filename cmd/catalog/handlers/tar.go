package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/cmd/catalog/service"
	"github.com/datavault/catalog/common/bootstrap"
)

// TarHandler handles tar container requests
type TarHandler struct {
	components *bootstrap.Components
	tars       *service.TarService
}

// NewTarHandler creates a new tar handler
func NewTarHandler(components *bootstrap.Components, tars *service.TarService) *TarHandler {
	return &TarHandler{
		components: components,
		tars:       tars,
	}
}

type tarRequest struct {
	TarUUID            string                       `json:"tar_uuid"`
	VaultPath          string                       `json:"vault_path"`
	ArchivalDate       *time.Time                   `json:"archival_timestamp"`
	TarParts           []tarPartRequest             `json:"tar_parts"`
	OcflObjectVersions []ocflObjectVersionReference `json:"ocfl_object_versions"`
}

type tarPartRequest struct {
	PartName          string `json:"part_name"`
	ChecksumAlgorithm string `json:"checksum_algorithm"`
	ChecksumValue     string `json:"checksum_value"`
}

type ocflObjectVersionReference struct {
	BagID         string `json:"bag_id"`
	ObjectVersion int    `json:"object_version"`
}

// Create registers a new tar
// POST /api/v1/tars
func (h *TarHandler) Create(c echo.Context) error {
	var req tarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if _, err := uuid.Parse(req.TarUUID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tar uuid")
	}

	h.components.Logger.Info("creating tar", "tar_id", req.TarUUID)

	tar, err := h.tars.Create(c.Request().Context(), req.TarUUID, tarParameters(req))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, tar)
}

// Get retrieves a tar with its parts and member versions
// GET /api/v1/tars/:id
func (h *TarHandler) Get(c echo.Context) error {
	tar, err := h.tars.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if tar == nil {
		return echo.NewHTTPError(http.StatusNotFound, "tar not found")
	}

	return c.JSON(http.StatusOK, tar)
}

// Update replaces a tar's attributes, parts and member versions
// PUT /api/v1/tars/:id
func (h *TarHandler) Update(c echo.Context) error {
	tarUUID := c.Param("id")
	if _, err := uuid.Parse(tarUUID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tar uuid")
	}

	var req tarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.components.Logger.Info("updating tar", "tar_id", tarUUID)

	tar, err := h.tars.Update(c.Request().Context(), tarUUID, tarParameters(req))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, tar)
}

func tarParameters(req tarRequest) service.TarParameters {
	parts := make([]service.TarPartParameters, 0, len(req.TarParts))
	for _, p := range req.TarParts {
		parts = append(parts, service.TarPartParameters{
			PartName:          p.PartName,
			ChecksumAlgorithm: p.ChecksumAlgorithm,
			ChecksumValue:     p.ChecksumValue,
		})
	}

	ids := make([]models.OcflObjectVersionID, 0, len(req.OcflObjectVersions))
	for _, ref := range req.OcflObjectVersions {
		ids = append(ids, models.OcflObjectVersionID{
			BagID:         ref.BagID,
			ObjectVersion: ref.ObjectVersion,
		})
	}

	return service.TarParameters{
		VaultPath:          req.VaultPath,
		ArchivalDate:       req.ArchivalDate,
		TarParts:           parts,
		OcflObjectVersions: ids,
	}
}
