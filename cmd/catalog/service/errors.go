package service

import (
	"fmt"
	"strings"

	"github.com/datavault/catalog/cmd/catalog/models"
)

// OcflObjectVersionAlreadyExistsError is returned when a create collides
// with an existing (bagId, objectVersion) key.
type OcflObjectVersionAlreadyExistsError struct {
	ID models.OcflObjectVersionID
}

func (e *OcflObjectVersionAlreadyExistsError) Error() string {
	return fmt.Sprintf("OCFL object version with bag id %s and version %d already exists",
		e.ID.BagID, e.ID.ObjectVersion)
}

// TarAlreadyExistsError is returned when a tar create collides with an
// existing tar uuid.
type TarAlreadyExistsError struct {
	TarUUID string
}

func (e *TarAlreadyExistsError) Error() string {
	return fmt.Sprintf("tar with id %s already exists", e.TarUUID)
}

// TarNotFoundError is returned when an update targets a missing tar
type TarNotFoundError struct {
	TarUUID string
}

func (e *TarNotFoundError) Error() string {
	return fmt.Sprintf("tar with id %s not found", e.TarUUID)
}

// OcflObjectVersionNotFoundError is returned when referenced version keys
// cannot be resolved, or when a strict lookup finds nothing.
type OcflObjectVersionNotFoundError struct {
	IDs []models.OcflObjectVersionID
	Nbn string
}

func (e *OcflObjectVersionNotFoundError) Error() string {
	if e.Nbn != "" {
		return fmt.Sprintf("no OCFL object versions found for NBN %s", e.Nbn)
	}

	keys := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		keys = append(keys, id.String())
	}
	return fmt.Sprintf("OCFL object versions not found: %s", strings.Join(keys, ", "))
}

// OcflObjectVersionAlreadyInTarError is returned when a tar create or
// update tries to claim a version owned by another tar.
type OcflObjectVersionAlreadyInTarError struct {
	ID      models.OcflObjectVersionID
	TarUUID string
}

func (e *OcflObjectVersionAlreadyInTarError) Error() string {
	return fmt.Sprintf("OCFL object version with bag id %s and version %d is already in tar %s",
		e.ID.BagID, e.ID.ObjectVersion, e.TarUUID)
}
