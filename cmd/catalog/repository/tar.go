package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/cmd/catalog/service"
	"github.com/datavault/catalog/common/db"
)

// TarRepository handles database operations for tars and their parts.
// Part rows cascade with their tar; version rows are only ever attached
// and detached, never deleted from here.
type TarRepository struct {
	q db.Querier
}

// NewTarRepository creates a new tar repository
func NewTarRepository(q db.Querier) *TarRepository {
	return &TarRepository{q: q}
}

// FindByID retrieves a tar with its parts and referenced versions, nil if
// absent
func (r *TarRepository) FindByID(ctx context.Context, tarUUID string) (*models.Tar, error) {
	query := `
		SELECT tar_uuid, vault_path, archival_date
		FROM tars
		WHERE tar_uuid = $1
	`

	tar := &models.Tar{}
	err := r.q.QueryRow(ctx, query, tarUUID).Scan(&tar.TarUUID, &tar.VaultPath, &tar.ArchivalDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tar: %w", err)
	}

	if tar.TarParts, err = r.findParts(ctx, tarUUID); err != nil {
		return nil, err
	}

	versions := NewOcflObjectVersionRepository(r.q)
	if tar.OcflObjectVersions, err = versions.findAll(ctx, `
		SELECT `+ocflObjectVersionColumns+`
		FROM ocfl_object_versions
		WHERE tar_uuid = $1
		ORDER BY bag_id ASC, object_version DESC
	`, tarUUID); err != nil {
		return nil, err
	}

	return tar, nil
}

// FindAll retrieves every tar, fully loaded, ordered by uuid
func (r *TarRepository) FindAll(ctx context.Context) ([]*models.Tar, error) {
	rows, err := r.q.Query(ctx, `SELECT tar_uuid FROM tars ORDER BY tar_uuid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tars: %w", err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, fmt.Errorf("failed to scan tar uuid: %w", err)
		}
		uuids = append(uuids, uuid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tars: %w", err)
	}

	tars := make([]*models.Tar, 0, len(uuids))
	for _, uuid := range uuids {
		tar, err := r.FindByID(ctx, uuid)
		if err != nil {
			return nil, err
		}
		if tar != nil {
			tars = append(tars, tar)
		}
	}

	return tars, nil
}

// Insert stores a new tar with its parts and claims its version
// references. A uuid collision raced in by a concurrent transaction
// surfaces as *service.TarAlreadyExistsError.
func (r *TarRepository) Insert(ctx context.Context, tar *models.Tar) error {
	query := `
		INSERT INTO tars (tar_uuid, vault_path, archival_date)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.Exec(ctx, query, tar.TarUUID, tar.VaultPath, tar.ArchivalDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &service.TarAlreadyExistsError{TarUUID: tar.TarUUID}
		}
		return fmt.Errorf("failed to create tar: %w", err)
	}

	if err := r.replaceParts(ctx, tar); err != nil {
		return err
	}

	return r.reconcileVersionReferences(ctx, tar)
}

// Update replaces an existing tar's attributes, parts and version
// references
func (r *TarRepository) Update(ctx context.Context, tar *models.Tar) error {
	query := `
		UPDATE tars
		SET vault_path = $2, archival_date = $3
		WHERE tar_uuid = $1
	`

	result, err := r.q.Exec(ctx, query, tar.TarUUID, tar.VaultPath, tar.ArchivalDate)
	if err != nil {
		return fmt.Errorf("failed to update tar: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &service.TarNotFoundError{TarUUID: tar.TarUUID}
	}

	if err := r.replaceParts(ctx, tar); err != nil {
		return err
	}

	return r.reconcileVersionReferences(ctx, tar)
}

// replaceParts swaps the tar's owned part collection wholesale. Parts are
// existence-dependent on the tar, so the old rows are simply deleted.
func (r *TarRepository) replaceParts(ctx context.Context, tar *models.Tar) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tar_parts WHERE tar_uuid = $1`, tar.TarUUID); err != nil {
		return fmt.Errorf("failed to delete tar parts: %w", err)
	}

	for _, part := range tar.TarParts {
		_, err := r.q.Exec(ctx, `
			INSERT INTO tar_parts (tar_uuid, part_name, checksum_algorithm, checksum_value)
			VALUES ($1, $2, $3, $4)
		`, tar.TarUUID, part.PartName, part.ChecksumAlgorithm, part.ChecksumValue)
		if err != nil {
			return fmt.Errorf("failed to insert tar part: %w", err)
		}
	}

	return nil
}

// reconcileVersionReferences makes the database's ownership references
// match the tar's member list: versions the tar no longer holds are
// detached (never deleted), members are claimed. The claim is
// conditional on the version being unowned or already ours, so a
// concurrent transaction that won the version makes this one fail with
// *service.OcflObjectVersionAlreadyInTarError instead of silently
// stealing it.
func (r *TarRepository) reconcileVersionReferences(ctx context.Context, tar *models.Tar) error {
	if err := r.detachRemovedVersions(ctx, tar); err != nil {
		return err
	}

	for _, version := range tar.OcflObjectVersions {
		result, err := r.q.Exec(ctx, `
			UPDATE ocfl_object_versions
			SET tar_uuid = $1, updated = now()
			WHERE bag_id = $2 AND object_version = $3
			  AND (tar_uuid IS NULL OR tar_uuid = $1)
		`, tar.TarUUID, version.BagID, version.ObjectVersion)
		if err != nil {
			return fmt.Errorf("failed to attach OCFL object version: %w", err)
		}

		if result.RowsAffected() == 0 {
			owner, err := r.currentOwner(ctx, version.ID())
			if err != nil {
				return err
			}
			return &service.OcflObjectVersionAlreadyInTarError{
				ID:      version.ID(),
				TarUUID: owner,
			}
		}
	}

	return nil
}

// detachRemovedVersions releases every version currently referencing the
// tar that is absent from its member list.
func (r *TarRepository) detachRemovedVersions(ctx context.Context, tar *models.Tar) error {
	args := []any{tar.TarUUID}
	condition := ""

	if len(tar.OcflObjectVersions) > 0 {
		placeholders := make([]string, 0, len(tar.OcflObjectVersions))
		for i, version := range tar.OcflObjectVersions {
			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+2, i*2+3))
			args = append(args, version.BagID, version.ObjectVersion)
		}
		condition = ` AND (bag_id, object_version) NOT IN (` + strings.Join(placeholders, ", ") + `)`
	}

	_, err := r.q.Exec(ctx, `
		UPDATE ocfl_object_versions
		SET tar_uuid = NULL, updated = now()
		WHERE tar_uuid = $1`+condition, args...)
	if err != nil {
		return fmt.Errorf("failed to detach OCFL object versions: %w", err)
	}

	return nil
}

func (r *TarRepository) currentOwner(ctx context.Context, id models.OcflObjectVersionID) (string, error) {
	var owner *string
	err := r.q.QueryRow(ctx, `
		SELECT tar_uuid FROM ocfl_object_versions
		WHERE bag_id = $1 AND object_version = $2
	`, id.BagID, id.ObjectVersion).Scan(&owner)
	if err != nil {
		return "", fmt.Errorf("failed to resolve owning tar: %w", err)
	}
	if owner == nil {
		return "", nil
	}
	return *owner, nil
}

func (r *TarRepository) findParts(ctx context.Context, tarUUID string) ([]models.TarPart, error) {
	rows, err := r.q.Query(ctx, `
		SELECT tar_uuid, part_name, checksum_algorithm, checksum_value
		FROM tar_parts
		WHERE tar_uuid = $1
		ORDER BY id ASC
	`, tarUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tar parts: %w", err)
	}
	defer rows.Close()

	parts := []models.TarPart{}
	for rows.Next() {
		part := models.TarPart{}
		if err := rows.Scan(&part.TarUUID, &part.PartName, &part.ChecksumAlgorithm, &part.ChecksumValue); err != nil {
			return nil, fmt.Errorf("failed to scan tar part: %w", err)
		}
		parts = append(parts, part)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tar parts: %w", err)
	}

	return parts, nil
}
