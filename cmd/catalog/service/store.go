package service

import (
	"context"

	"github.com/datavault/catalog/cmd/catalog/models"
)

// OcflObjectVersionRepository is the persistence contract for OCFL object
// versions. Lookups returning a single record yield nil without error
// when nothing matches; multi-record lookups return versions ordered by
// object version descending, most recent first.
type OcflObjectVersionRepository interface {
	FindByID(ctx context.Context, id models.OcflObjectVersionID) (*models.OcflObjectVersion, error)
	FindAllByBagID(ctx context.Context, bagID string) ([]*models.OcflObjectVersion, error)
	FindAllBySwordToken(ctx context.Context, swordToken string) ([]*models.OcflObjectVersion, error)
	FindAllByNbn(ctx context.Context, nbn string) ([]*models.OcflObjectVersion, error)

	// FindAllByIDs resolves every key or fails with
	// *OcflObjectVersionNotFoundError listing the missing ones.
	FindAllByIDs(ctx context.Context, ids []models.OcflObjectVersionID) ([]*models.OcflObjectVersion, error)

	// Insert stores a new version, failing with
	// *OcflObjectVersionAlreadyExistsError on a key collision even when
	// the collision was raced in after the caller's existence check.
	Insert(ctx context.Context, version *models.OcflObjectVersion) error

	// Update replaces an existing version's attributes under its key
	Update(ctx context.Context, version *models.OcflObjectVersion) error
}

// TarRepository is the persistence contract for tars. Both writes
// replace parts wholesale (delete then insert) and reconcile version
// references two-sidedly: versions the tar no longer holds are released,
// never deleted, and claiming a version owned elsewhere fails with
// *OcflObjectVersionAlreadyInTarError.
type TarRepository interface {
	FindByID(ctx context.Context, tarUUID string) (*models.Tar, error)
	FindAll(ctx context.Context) ([]*models.Tar, error)

	// Insert stores a new tar, failing with *TarAlreadyExistsError on a
	// uuid collision even when raced in after the caller's check.
	Insert(ctx context.Context, tar *models.Tar) error

	// Update replaces an existing tar's attributes, parts and references
	Update(ctx context.Context, tar *models.Tar) error
}

// Store bundles the repositories with a transactional unit of work. Every
// use case that writes runs its invariant checks and writes inside one
// InTransaction call, so two racing writers cannot both claim the same
// object version: the database's isolation makes the later committer fail.
type Store interface {
	OcflObjectVersions() OcflObjectVersionRepository
	Tars() TarRepository
	InTransaction(ctx context.Context, fn func(tx Store) error) error
}

// SearchIndex is the projection contract. Implementations log and absorb
// their own infrastructure failures where possible; any error returned is
// logged by the caller and never propagated, since the repository remains
// the source of truth and a reindex run is the recovery path.
type SearchIndex interface {
	IndexOcflObjectVersion(ctx context.Context, version *models.OcflObjectVersion, tar *models.Tar) error
	IndexTar(ctx context.Context, tar *models.Tar) error
}
