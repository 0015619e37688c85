package service

import (
	"context"
	"time"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/common/logger"
)

// OcflObjectVersionService handles object version use cases
type OcflObjectVersionService struct {
	store             Store
	search            SearchIndex
	skeletonOverwrite bool
	log               *logger.Logger
}

// NewOcflObjectVersionService creates a new object version service.
// skeletonOverwrite selects the duplicate-key policy: when true, a create
// over an existing skeleton record overwrites it in place instead of
// failing with a conflict.
func NewOcflObjectVersionService(store Store, search SearchIndex, skeletonOverwrite bool, log *logger.Logger) *OcflObjectVersionService {
	return &OcflObjectVersionService{
		store:             store,
		search:            search,
		skeletonOverwrite: skeletonOverwrite,
		log:               log,
	}
}

// Create stores a new object version under its key. Fails with
// *OcflObjectVersionAlreadyExistsError if the key is taken, unless the
// existing record is a skeleton and the overwrite policy is enabled. The
// new version starts with no tar reference; a skeleton overwrite keeps
// the reference the record already had.
func (s *OcflObjectVersionService) Create(ctx context.Context, id models.OcflObjectVersionID, params OcflObjectVersionParameters) (*models.OcflObjectVersion, error) {
	var version *models.OcflObjectVersion

	err := s.store.InTransaction(ctx, func(tx Store) error {
		existing, err := tx.OcflObjectVersions().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if existing != nil {
			if !s.skeletonOverwrite || !existing.SkeletonRecord {
				return &OcflObjectVersionAlreadyExistsError{ID: id}
			}

			s.log.Info("overwriting skeleton record", "bag_id", id.BagID, "object_version", id.ObjectVersion)
			applyParameters(existing, params)
			existing.Updated = time.Now()
			version = existing
			return tx.OcflObjectVersions().Update(ctx, existing)
		}

		created, err := models.NewOcflObjectVersion(id.BagID, id.ObjectVersion)
		if err != nil {
			return err
		}

		applyParameters(created, params)
		now := time.Now()
		created.Created = now
		created.Updated = now

		version = created
		return tx.OcflObjectVersions().Insert(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("created OCFL object version",
		"bag_id", id.BagID,
		"object_version", id.ObjectVersion,
		"nbn", version.Nbn,
	)

	s.project(ctx, version)

	return version, nil
}

// FindByID returns the version under the given key, nil if absent
func (s *OcflObjectVersionService) FindByID(ctx context.Context, id models.OcflObjectVersionID) (*models.OcflObjectVersion, error) {
	return s.store.OcflObjectVersions().FindByID(ctx, id)
}

// FindAllByBagID returns all versions of a bag, most recent first
func (s *OcflObjectVersionService) FindAllByBagID(ctx context.Context, bagID string) ([]*models.OcflObjectVersion, error) {
	return s.store.OcflObjectVersions().FindAllByBagID(ctx, bagID)
}

// FindAllBySwordToken returns all versions deposited under a sword token,
// most recent first
func (s *OcflObjectVersionService) FindAllBySwordToken(ctx context.Context, swordToken string) ([]*models.OcflObjectVersion, error) {
	return s.store.OcflObjectVersions().FindAllBySwordToken(ctx, swordToken)
}

// FindAllByNbn resolves a public NBN identifier to its versions. Unlike
// the other reads this one is strict: callers use it to resolve an
// identifier to a required record, so zero matches fail with
// *OcflObjectVersionNotFoundError.
func (s *OcflObjectVersionService) FindAllByNbn(ctx context.Context, nbn string) ([]*models.OcflObjectVersion, error) {
	versions, err := s.store.OcflObjectVersions().FindAllByNbn(ctx, nbn)
	if err != nil {
		return nil, err
	}

	s.log.Info("resolved NBN", "nbn", nbn, "versions", len(versions))

	if len(versions) == 0 {
		return nil, &OcflObjectVersionNotFoundError{Nbn: nbn}
	}

	return versions, nil
}

// project runs the best-effort search projection after the domain write
// has committed. Failures are logged, never surfaced to the caller.
func (s *OcflObjectVersionService) project(ctx context.Context, version *models.OcflObjectVersion) {
	var tar *models.Tar
	if version.TarUUID != nil {
		loaded, err := s.store.Tars().FindByID(ctx, *version.TarUUID)
		if err != nil {
			s.log.Warn("could not load tar for projection",
				"tar_id", *version.TarUUID, "error", err)
		} else {
			tar = loaded
		}
	}

	if err := s.search.IndexOcflObjectVersion(ctx, version, tar); err != nil {
		s.log.Error("failed to index OCFL object version",
			"bag_id", version.BagID,
			"object_version", version.ObjectVersion,
			"error", err,
		)
	}
}

func applyParameters(version *models.OcflObjectVersion, params OcflObjectVersionParameters) {
	version.Nbn = params.Nbn
	version.SwordToken = params.SwordToken
	version.DataSupplier = params.DataSupplier
	version.DataversePid = params.DataversePid
	version.DataversePidVersion = params.DataversePidVersion
	version.OtherID = params.OtherID
	version.OtherIDVersion = params.OtherIDVersion
	version.OcflObjectPath = params.OcflObjectPath
	version.FilePidToLocalPath = params.FilePidToLocalPath
	version.ExportTimestamp = params.ExportTimestamp
	version.SkeletonRecord = params.SkeletonRecord
	version.Metadata = params.Metadata
}
