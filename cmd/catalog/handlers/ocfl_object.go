package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/cmd/catalog/service"
	"github.com/datavault/catalog/common/bootstrap"
)

// OcflObjectHandler handles OCFL object version requests
type OcflObjectHandler struct {
	components *bootstrap.Components
	versions   *service.OcflObjectVersionService
}

// NewOcflObjectHandler creates a new OCFL object handler
func NewOcflObjectHandler(components *bootstrap.Components, versions *service.OcflObjectVersionService) *OcflObjectHandler {
	return &OcflObjectHandler{
		components: components,
		versions:   versions,
	}
}

type ocflObjectVersionRequest struct {
	Nbn                 string          `json:"nbn"`
	SwordToken          *string         `json:"sword_token"`
	DataSupplier        *string         `json:"data_supplier"`
	DataversePid        *string         `json:"dataverse_pid"`
	DataversePidVersion *string         `json:"dataverse_pid_version"`
	OtherID             *string         `json:"other_id"`
	OtherIDVersion      *string         `json:"other_id_version"`
	OcflObjectPath      *string         `json:"ocfl_object_path"`
	FilePidToLocalPath  *string         `json:"filepid_to_local_path"`
	ExportTimestamp     *time.Time      `json:"export_timestamp"`
	SkeletonRecord      bool            `json:"skeleton_record"`
	Metadata            json.RawMessage `json:"metadata"`
}

// CreateVersion stores a new object version under its key
// POST /api/v1/ocfl-objects/bag-id/:bagId/version/:version
func (h *OcflObjectHandler) CreateVersion(c echo.Context) error {
	id, err := versionID(c)
	if err != nil {
		return err
	}

	var req ocflObjectVersionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Nbn == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nbn is required")
	}

	h.components.Logger.Info("creating OCFL object version",
		"bag_id", id.BagID, "object_version", id.ObjectVersion)

	version, err := h.versions.Create(c.Request().Context(), id, service.OcflObjectVersionParameters{
		Nbn:                 req.Nbn,
		SwordToken:          req.SwordToken,
		DataSupplier:        req.DataSupplier,
		DataversePid:        req.DataversePid,
		DataversePidVersion: req.DataversePidVersion,
		OtherID:             req.OtherID,
		OtherIDVersion:      req.OtherIDVersion,
		OcflObjectPath:      req.OcflObjectPath,
		FilePidToLocalPath:  req.FilePidToLocalPath,
		ExportTimestamp:     req.ExportTimestamp,
		SkeletonRecord:      req.SkeletonRecord,
		Metadata:            string(req.Metadata),
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, version)
}

// GetVersion retrieves one object version by its key
// GET /api/v1/ocfl-objects/bag-id/:bagId/version/:version
func (h *OcflObjectHandler) GetVersion(c echo.Context) error {
	id, err := versionID(c)
	if err != nil {
		return err
	}

	version, err := h.versions.FindByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if version == nil {
		return echo.NewHTTPError(http.StatusNotFound, "OCFL object version not found")
	}

	return c.JSON(http.StatusOK, version)
}

// ListVersionsByBagID retrieves all versions of a bag, most recent first
// GET /api/v1/ocfl-objects/bag-id/:bagId
func (h *OcflObjectHandler) ListVersionsByBagID(c echo.Context) error {
	versions, err := h.versions.FindAllByBagID(c.Request().Context(), c.Param("bagId"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, versions)
}

// ListVersionsByNbn resolves an NBN to its versions; 404 when unknown
// GET /api/v1/ocfl-objects/nbn/:nbn
func (h *OcflObjectHandler) ListVersionsByNbn(c echo.Context) error {
	versions, err := h.versions.FindAllByNbn(c.Request().Context(), c.Param("nbn"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, versions)
}

// ListVersionsBySwordToken retrieves all versions deposited under a token
// GET /api/v1/ocfl-objects/sword-token/:token
func (h *OcflObjectHandler) ListVersionsBySwordToken(c echo.Context) error {
	versions, err := h.versions.FindAllBySwordToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, versions)
}

func versionID(c echo.Context) (models.OcflObjectVersionID, error) {
	bagID := c.Param("bagId")
	if bagID == "" {
		return models.OcflObjectVersionID{}, echo.NewHTTPError(http.StatusBadRequest, "bag id is required")
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		return models.OcflObjectVersionID{}, echo.NewHTTPError(http.StatusBadRequest, "invalid object version")
	}

	return models.OcflObjectVersionID{BagID: bagID, ObjectVersion: version}, nil
}
