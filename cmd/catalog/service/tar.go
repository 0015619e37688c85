package service

import (
	"context"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/common/logger"
)

// TarService handles tar use cases
type TarService struct {
	store  Store
	search SearchIndex
	log    *logger.Logger
}

// NewTarService creates a new tar service
func NewTarService(store Store, search SearchIndex, log *logger.Logger) *TarService {
	return &TarService{
		store:  store,
		search: search,
		log:    log,
	}
}

// Create stores a new tar under the caller-supplied uuid. All referenced
// object version keys must resolve, and none of the resolved versions may
// be in any tar already; the whole operation fails before any write
// otherwise. On success the tar is projected to the search index.
func (s *TarService) Create(ctx context.Context, tarUUID string, params TarParameters) (*models.Tar, error) {
	var tar *models.Tar

	err := s.store.InTransaction(ctx, func(tx Store) error {
		existing, err := tx.Tars().FindByID(ctx, tarUUID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &TarAlreadyExistsError{TarUUID: tarUUID}
		}

		versions, err := tx.OcflObjectVersions().FindAllByIDs(ctx, params.OcflObjectVersions)
		if err != nil {
			return err
		}

		// The tar being created is brand new, so any existing ownership
		// is a conflict.
		for _, version := range versions {
			if version.InTar() {
				return &OcflObjectVersionAlreadyInTarError{
					ID:      version.ID(),
					TarUUID: *version.TarUUID,
				}
			}
		}

		created, err := models.NewTar(tarUUID)
		if err != nil {
			return err
		}

		created.VaultPath = params.VaultPath
		created.ArchivalDate = params.ArchivalDate
		created.SetTarParts(partsFromParameters(params.TarParts))
		created.SetOcflObjectVersions(versions)

		tar = created
		return tx.Tars().Insert(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("created tar",
		"tar_id", tarUUID,
		"versions", len(tar.OcflObjectVersions),
		"parts", len(tar.TarParts),
	)

	s.project(ctx, tar)

	return tar, nil
}

// GetByID returns the tar with the given uuid, nil if absent
func (s *TarService) GetByID(ctx context.Context, tarUUID string) (*models.Tar, error) {
	return s.store.Tars().FindByID(ctx, tarUUID)
}

// Update replaces a tar's attributes, parts and version references
// wholesale. A resolved version owned by a different tar fails with
// *OcflObjectVersionAlreadyInTarError; being owned by this tar, or by
// none, is acceptable. Versions dropped from the member list are released
// back to unassigned, never deleted.
func (s *TarService) Update(ctx context.Context, tarUUID string, params TarParameters) (*models.Tar, error) {
	var tar *models.Tar

	err := s.store.InTransaction(ctx, func(tx Store) error {
		existing, err := tx.Tars().FindByID(ctx, tarUUID)
		if err != nil {
			return err
		}
		if existing == nil {
			return &TarNotFoundError{TarUUID: tarUUID}
		}

		versions, err := tx.OcflObjectVersions().FindAllByIDs(ctx, params.OcflObjectVersions)
		if err != nil {
			return err
		}

		for _, version := range versions {
			if version.InTar() && *version.TarUUID != tarUUID {
				return &OcflObjectVersionAlreadyInTarError{
					ID:      version.ID(),
					TarUUID: *version.TarUUID,
				}
			}
		}

		existing.VaultPath = params.VaultPath
		existing.ArchivalDate = params.ArchivalDate
		existing.SetTarParts(partsFromParameters(params.TarParts))
		existing.SetOcflObjectVersions(versions)

		tar = existing
		return tx.Tars().Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("updated tar",
		"tar_id", tarUUID,
		"versions", len(tar.OcflObjectVersions),
		"parts", len(tar.TarParts),
	)

	s.project(ctx, tar)

	return tar, nil
}

// ReindexAll re-projects every tar to the search index. Individual
// projection failures are logged and skipped so one broken tar cannot
// abort the rest of the batch.
func (s *TarService) ReindexAll(ctx context.Context) error {
	tars, err := s.store.Tars().FindAll(ctx)
	if err != nil {
		return err
	}

	s.log.Info("reindexing tars", "count", len(tars))

	for _, tar := range tars {
		s.log.Info("reindexing tar", "tar_id", tar.TarUUID)
		if err := s.search.IndexTar(ctx, tar); err != nil {
			s.log.Error("failed to reindex tar", "tar_id", tar.TarUUID, "error", err)
		}
	}

	return nil
}

func (s *TarService) project(ctx context.Context, tar *models.Tar) {
	if err := s.search.IndexTar(ctx, tar); err != nil {
		s.log.Error("failed to index tar", "tar_id", tar.TarUUID, "error", err)
	}
}

func partsFromParameters(params []TarPartParameters) []models.TarPart {
	parts := make([]models.TarPart, 0, len(params))
	for _, p := range params {
		parts = append(parts, models.TarPart{
			PartName:          p.PartName,
			ChecksumAlgorithm: p.ChecksumAlgorithm,
			ChecksumValue:     p.ChecksumValue,
		})
	}
	return parts
}
