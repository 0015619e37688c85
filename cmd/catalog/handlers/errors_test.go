package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/cmd/catalog/service"
)

func TestHttpError(t *testing.T) {
	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}

	cases := []struct {
		err    error
		status int
	}{
		{&service.OcflObjectVersionAlreadyExistsError{ID: id}, http.StatusConflict},
		{&service.TarAlreadyExistsError{TarUUID: "1cd9cc04"}, http.StatusConflict},
		{&service.OcflObjectVersionAlreadyInTarError{ID: id, TarUUID: "1cd9cc04"}, http.StatusConflict},
		{&service.TarNotFoundError{TarUUID: "1cd9cc04"}, http.StatusNotFound},
		{&service.OcflObjectVersionNotFoundError{IDs: []models.OcflObjectVersionID{id}}, http.StatusNotFound},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		var httpErr *echo.HTTPError
		require.ErrorAs(t, httpError(c.err), &httpErr, c.err.Error())
		assert.Equal(t, c.status, httpErr.Code, c.err.Error())
	}
}

func TestHttpError_WrappedErrorsStillMap(t *testing.T) {
	wrapped := fmt.Errorf("create failed: %w", &service.TarNotFoundError{TarUUID: "1cd9cc04"})

	var httpErr *echo.HTTPError
	require.ErrorAs(t, httpError(wrapped), &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
