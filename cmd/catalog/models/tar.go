package models

import (
	"fmt"
	"time"
)

// Tar represents one physical archive package. It owns its parts
// (replaced wholesale on every update) and holds non-owning references to
// the OCFL object versions packaged inside it.
// Maps to: tars table
type Tar struct {
	TarUUID      string     `db:"tar_uuid" json:"tar_uuid"`
	VaultPath    string     `db:"vault_path" json:"vault_path"`
	ArchivalDate *time.Time `db:"archival_date" json:"archival_date,omitempty"`

	// Owned parts, existence-dependent on the tar
	TarParts []TarPart `json:"tar_parts"`

	// Referenced versions; each back-references this tar via TarUUID
	OcflObjectVersions []*OcflObjectVersion `json:"ocfl_object_versions"`
}

// NewTar constructs a tar with its mandatory identity
func NewTar(tarUUID string) (*Tar, error) {
	if tarUUID == "" {
		return nil, fmt.Errorf("tar uuid is required")
	}

	return &Tar{TarUUID: tarUUID}, nil
}

// SameIdentity compares by natural key, ignoring attribute values. Two
// loaded copies of the same tar compare equal regardless of in-flight
// mutation.
func (t *Tar) SameIdentity(other *Tar) bool {
	return other != nil && t.TarUUID == other.TarUUID
}

// SetTarParts replaces the part collection and wires each part's owning
// tar back-reference.
func (t *Tar) SetTarParts(parts []TarPart) {
	for i := range parts {
		parts[i].TarUUID = t.TarUUID
	}
	t.TarParts = parts
}

// SetOcflObjectVersions replaces the referenced version collection. Every
// version previously referenced but absent from the new list is released
// (its tar reference cleared, never deleted); every version in the new
// list gets its tar reference pointed at this tar.
func (t *Tar) SetOcflObjectVersions(versions []*OcflObjectVersion) {
	retained := make(map[OcflObjectVersionID]bool, len(versions))
	for _, v := range versions {
		retained[v.ID()] = true
	}

	for _, v := range t.OcflObjectVersions {
		if !retained[v.ID()] {
			v.TarUUID = nil
		}
	}

	uuid := t.TarUUID
	for _, v := range versions {
		v.TarUUID = &uuid
	}

	t.OcflObjectVersions = versions
}

// VersionIDs returns the natural keys of all referenced versions
func (t *Tar) VersionIDs() []OcflObjectVersionID {
	ids := make([]OcflObjectVersionID, 0, len(t.OcflObjectVersions))
	for _, v := range t.OcflObjectVersions {
		ids = append(ids, v.ID())
	}
	return ids
}
