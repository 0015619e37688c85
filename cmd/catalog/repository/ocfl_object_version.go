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

const ocflObjectVersionColumns = `
	bag_id, object_version, tar_uuid, nbn, sword_token, data_supplier,
	dataverse_pid, dataverse_pid_version, other_id, other_id_version,
	ocfl_object_path, filepid_to_local_path, export_timestamp,
	skeleton_record, metadata, created, updated`

// OcflObjectVersionRepository handles database operations for OCFL object versions
type OcflObjectVersionRepository struct {
	q db.Querier
}

// NewOcflObjectVersionRepository creates a new object version repository
func NewOcflObjectVersionRepository(q db.Querier) *OcflObjectVersionRepository {
	return &OcflObjectVersionRepository{q: q}
}

// FindByID retrieves a version by its natural key, nil if absent
func (r *OcflObjectVersionRepository) FindByID(ctx context.Context, id models.OcflObjectVersionID) (*models.OcflObjectVersion, error) {
	query := `
		SELECT ` + ocflObjectVersionColumns + `
		FROM ocfl_object_versions
		WHERE bag_id = $1 AND object_version = $2
	`

	version, err := scanOcflObjectVersion(r.q.QueryRow(ctx, query, id.BagID, id.ObjectVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get OCFL object version: %w", err)
	}

	return version, nil
}

// FindAllByBagID retrieves all versions of a bag, most recent first
func (r *OcflObjectVersionRepository) FindAllByBagID(ctx context.Context, bagID string) ([]*models.OcflObjectVersion, error) {
	query := `
		SELECT ` + ocflObjectVersionColumns + `
		FROM ocfl_object_versions
		WHERE bag_id = $1
		ORDER BY object_version DESC
	`

	return r.findAll(ctx, query, bagID)
}

// FindAllBySwordToken retrieves all versions deposited under a sword
// token, most recent first
func (r *OcflObjectVersionRepository) FindAllBySwordToken(ctx context.Context, swordToken string) ([]*models.OcflObjectVersion, error) {
	query := `
		SELECT ` + ocflObjectVersionColumns + `
		FROM ocfl_object_versions
		WHERE sword_token = $1
		ORDER BY object_version DESC
	`

	return r.findAll(ctx, query, swordToken)
}

// FindAllByNbn retrieves all versions registered under an NBN, most
// recent first
func (r *OcflObjectVersionRepository) FindAllByNbn(ctx context.Context, nbn string) ([]*models.OcflObjectVersion, error) {
	query := `
		SELECT ` + ocflObjectVersionColumns + `
		FROM ocfl_object_versions
		WHERE nbn = $1
		ORDER BY object_version DESC
	`

	return r.findAll(ctx, query, nbn)
}

// FindAllByIDs resolves every key or fails with
// *service.OcflObjectVersionNotFoundError listing the missing ones.
// Partial resolution is not allowed.
func (r *OcflObjectVersionRepository) FindAllByIDs(ctx context.Context, ids []models.OcflObjectVersionID) ([]*models.OcflObjectVersion, error) {
	if len(ids) == 0 {
		return []*models.OcflObjectVersion{}, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, id.BagID, id.ObjectVersion)
	}

	query := `
		SELECT ` + ocflObjectVersionColumns + `
		FROM ocfl_object_versions
		WHERE (bag_id, object_version) IN (` + strings.Join(placeholders, ", ") + `)
	`

	versions, err := r.findAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	found := make(map[models.OcflObjectVersionID]bool, len(versions))
	for _, version := range versions {
		found[version.ID()] = true
	}

	var missing []models.OcflObjectVersionID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return nil, &service.OcflObjectVersionNotFoundError{IDs: missing}
	}

	return versions, nil
}

// Insert stores a new version. A key collision, including one raced in by
// a concurrent transaction after the caller's existence check, surfaces
// as *service.OcflObjectVersionAlreadyExistsError.
func (r *OcflObjectVersionRepository) Insert(ctx context.Context, version *models.OcflObjectVersion) error {
	query := `
		INSERT INTO ocfl_object_versions (` + ocflObjectVersionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.Exec(ctx, query, versionArgs(version)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &service.OcflObjectVersionAlreadyExistsError{ID: version.ID()}
		}
		return fmt.Errorf("failed to create OCFL object version: %w", err)
	}

	return nil
}

// Update replaces an existing version's attributes under its key
func (r *OcflObjectVersionRepository) Update(ctx context.Context, version *models.OcflObjectVersion) error {
	query := `
		UPDATE ocfl_object_versions
		SET tar_uuid = $3, nbn = $4, sword_token = $5, data_supplier = $6,
		    dataverse_pid = $7, dataverse_pid_version = $8, other_id = $9,
		    other_id_version = $10, ocfl_object_path = $11,
		    filepid_to_local_path = $12, export_timestamp = $13,
		    skeleton_record = $14, metadata = $15, created = $16, updated = $17
		WHERE bag_id = $1 AND object_version = $2
	`

	result, err := r.q.Exec(ctx, query, versionArgs(version)...)
	if err != nil {
		return fmt.Errorf("failed to update OCFL object version: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &service.OcflObjectVersionNotFoundError{IDs: []models.OcflObjectVersionID{version.ID()}}
	}

	return nil
}

func (r *OcflObjectVersionRepository) findAll(ctx context.Context, query string, args ...any) ([]*models.OcflObjectVersion, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list OCFL object versions: %w", err)
	}
	defer rows.Close()

	versions := []*models.OcflObjectVersion{}
	for rows.Next() {
		version, err := scanOcflObjectVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan OCFL object version: %w", err)
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating OCFL object versions: %w", err)
	}

	return versions, nil
}

func scanOcflObjectVersion(row pgx.Row) (*models.OcflObjectVersion, error) {
	version := &models.OcflObjectVersion{}
	err := row.Scan(
		&version.BagID,
		&version.ObjectVersion,
		&version.TarUUID,
		&version.Nbn,
		&version.SwordToken,
		&version.DataSupplier,
		&version.DataversePid,
		&version.DataversePidVersion,
		&version.OtherID,
		&version.OtherIDVersion,
		&version.OcflObjectPath,
		&version.FilePidToLocalPath,
		&version.ExportTimestamp,
		&version.SkeletonRecord,
		&version.Metadata,
		&version.Created,
		&version.Updated,
	)
	if err != nil {
		return nil, err
	}
	return version, nil
}

func versionArgs(version *models.OcflObjectVersion) []any {
	return []any{
		version.BagID,
		version.ObjectVersion,
		version.TarUUID,
		version.Nbn,
		version.SwordToken,
		version.DataSupplier,
		version.DataversePid,
		version.DataversePidVersion,
		version.OtherID,
		version.OtherIDVersion,
		version.OcflObjectPath,
		version.FilePidToLocalPath,
		version.ExportTimestamp,
		version.SkeletonRecord,
		version.Metadata,
		version.Created,
		version.Updated,
	}
}
