package models

import (
	"fmt"
	"time"
)

// OcflObjectVersionID is the natural key of an OCFL object version
type OcflObjectVersionID struct {
	BagID         string `json:"bag_id"`
	ObjectVersion int    `json:"object_version"`
}

// String renders the key in the bagId/version form used as search document id
func (id OcflObjectVersionID) String() string {
	return fmt.Sprintf("%s/%d", id.BagID, id.ObjectVersion)
}

// OcflObjectVersion represents one versioned state of a logical archival
// object. The tar reference is a nullable foreign-key field: ownership by
// reference, not containment. The version's lifecycle is independent of
// any tar's lifecycle.
// Maps to: ocfl_object_versions table
type OcflObjectVersion struct {
	BagID         string `db:"bag_id" json:"bag_id"`
	ObjectVersion int    `db:"object_version" json:"object_version"`

	// UUID of the owning tar, nil while unassigned. At most one tar may
	// reference a given (bag_id, object_version) at any time.
	TarUUID *string `db:"tar_uuid" json:"tar_uuid,omitempty"`

	Nbn                 string     `db:"nbn" json:"nbn"`
	SwordToken          *string    `db:"sword_token" json:"sword_token,omitempty"`
	DataSupplier        *string    `db:"data_supplier" json:"data_supplier,omitempty"`
	DataversePid        *string    `db:"dataverse_pid" json:"dataverse_pid,omitempty"`
	DataversePidVersion *string    `db:"dataverse_pid_version" json:"dataverse_pid_version,omitempty"`
	OtherID             *string    `db:"other_id" json:"other_id,omitempty"`
	OtherIDVersion      *string    `db:"other_id_version" json:"other_id_version,omitempty"`
	OcflObjectPath      *string    `db:"ocfl_object_path" json:"ocfl_object_path,omitempty"`
	FilePidToLocalPath  *string    `db:"filepid_to_local_path" json:"filepid_to_local_path,omitempty"`
	ExportTimestamp     *time.Time `db:"export_timestamp" json:"export_timestamp,omitempty"`

	// SkeletonRecord marks a placeholder created before full metadata is known
	SkeletonRecord bool `db:"skeleton_record" json:"skeleton_record"`

	// Metadata is the raw linked-data document, may be empty
	Metadata string `db:"metadata" json:"metadata"`

	// Audit fields, system-managed
	Created time.Time `db:"created" json:"created"`
	Updated time.Time `db:"updated" json:"updated"`
}

// NewOcflObjectVersion constructs a version with its mandatory key
func NewOcflObjectVersion(bagID string, objectVersion int) (*OcflObjectVersion, error) {
	if bagID == "" {
		return nil, fmt.Errorf("bag id is required")
	}
	if objectVersion < 1 {
		return nil, fmt.Errorf("object version must be positive, got %d", objectVersion)
	}

	return &OcflObjectVersion{
		BagID:         bagID,
		ObjectVersion: objectVersion,
	}, nil
}

// ID returns the natural key
func (v *OcflObjectVersion) ID() OcflObjectVersionID {
	return OcflObjectVersionID{BagID: v.BagID, ObjectVersion: v.ObjectVersion}
}

// SameIdentity compares by natural key, ignoring attribute values
func (v *OcflObjectVersion) SameIdentity(other *OcflObjectVersion) bool {
	return other != nil && v.BagID == other.BagID && v.ObjectVersion == other.ObjectVersion
}

// InTar reports whether the version is currently owned by a tar
func (v *OcflObjectVersion) InTar() bool {
	return v.TarUUID != nil
}
