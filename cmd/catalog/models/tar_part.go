package models

// TarPart is one physical piece of a tar's packaging, e.g. a volume.
// Parts exist only as members of their owning tar: they are created and
// replaced through the tar and deleted with it. The database surrogate id
// stays inside the repository layer and is never exposed here.
// Maps to: tar_parts table
type TarPart struct {
	TarUUID           string `db:"tar_uuid" json:"-"`
	PartName          string `db:"part_name" json:"part_name"`
	ChecksumAlgorithm string `db:"checksum_algorithm" json:"checksum_algorithm"`
	ChecksumValue     string `db:"checksum_value" json:"checksum_value"`
}
