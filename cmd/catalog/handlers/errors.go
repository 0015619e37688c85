package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datavault/catalog/cmd/catalog/service"
)

// httpError maps the engine's error kinds onto HTTP statuses. Conflicts
// (duplicate keys, ownership clashes) become 409, missing records 404;
// anything else is an internal error.
func httpError(err error) error {
	var versionExists *service.OcflObjectVersionAlreadyExistsError
	if errors.As(err, &versionExists) {
		return echo.NewHTTPError(http.StatusConflict, versionExists.Error())
	}

	var tarExists *service.TarAlreadyExistsError
	if errors.As(err, &tarExists) {
		return echo.NewHTTPError(http.StatusConflict, tarExists.Error())
	}

	var inTar *service.OcflObjectVersionAlreadyInTarError
	if errors.As(err, &inTar) {
		return echo.NewHTTPError(http.StatusConflict, inTar.Error())
	}

	var tarNotFound *service.TarNotFoundError
	if errors.As(err, &tarNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, tarNotFound.Error())
	}

	var versionNotFound *service.OcflObjectVersionNotFoundError
	if errors.As(err, &versionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, versionNotFound.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
