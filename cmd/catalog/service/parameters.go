package service

import (
	"time"

	"github.com/datavault/catalog/cmd/catalog/models"
)

// OcflObjectVersionParameters carries the caller-supplied attributes for
// an object version create. The key travels separately.
type OcflObjectVersionParameters struct {
	Nbn                 string
	SwordToken          *string
	DataSupplier        *string
	DataversePid        *string
	DataversePidVersion *string
	OtherID             *string
	OtherIDVersion      *string
	OcflObjectPath      *string
	FilePidToLocalPath  *string
	ExportTimestamp     *time.Time
	SkeletonRecord      bool
	Metadata            string
}

// TarParameters carries the caller-supplied state for a tar create or
// update. Parts and version references replace the existing collections
// wholesale.
type TarParameters struct {
	VaultPath          string
	ArchivalDate       *time.Time
	TarParts           []TarPartParameters
	OcflObjectVersions []models.OcflObjectVersionID
}

// TarPartParameters describes one physical part of a tar
type TarPartParameters struct {
	PartName          string
	ChecksumAlgorithm string
	ChecksumValue     string
}
