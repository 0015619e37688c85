package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/common/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

// fakeStore is an in-memory Store. The fakes hand out the stored pointers
// directly, mirroring how entities loaded in one transaction stay live
// while the use case mutates them.
type fakeStore struct {
	versions map[models.OcflObjectVersionID]*models.OcflObjectVersion
	tars     map[string]*models.Tar
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		versions: map[models.OcflObjectVersionID]*models.OcflObjectVersion{},
		tars:     map[string]*models.Tar{},
	}
}

func (s *fakeStore) OcflObjectVersions() OcflObjectVersionRepository {
	return &fakeVersionRepo{store: s}
}

func (s *fakeStore) Tars() TarRepository {
	return &fakeTarRepo{store: s}
}

func (s *fakeStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

type fakeVersionRepo struct {
	store *fakeStore
}

func (r *fakeVersionRepo) FindByID(ctx context.Context, id models.OcflObjectVersionID) (*models.OcflObjectVersion, error) {
	return r.store.versions[id], nil
}

func (r *fakeVersionRepo) FindAllByBagID(ctx context.Context, bagID string) ([]*models.OcflObjectVersion, error) {
	return r.filter(func(v *models.OcflObjectVersion) bool { return v.BagID == bagID }), nil
}

func (r *fakeVersionRepo) FindAllBySwordToken(ctx context.Context, swordToken string) ([]*models.OcflObjectVersion, error) {
	return r.filter(func(v *models.OcflObjectVersion) bool {
		return v.SwordToken != nil && *v.SwordToken == swordToken
	}), nil
}

func (r *fakeVersionRepo) FindAllByNbn(ctx context.Context, nbn string) ([]*models.OcflObjectVersion, error) {
	return r.filter(func(v *models.OcflObjectVersion) bool { return v.Nbn == nbn }), nil
}

func (r *fakeVersionRepo) FindAllByIDs(ctx context.Context, ids []models.OcflObjectVersionID) ([]*models.OcflObjectVersion, error) {
	versions := make([]*models.OcflObjectVersion, 0, len(ids))
	var missing []models.OcflObjectVersionID

	for _, id := range ids {
		if version, ok := r.store.versions[id]; ok {
			versions = append(versions, version)
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return nil, &OcflObjectVersionNotFoundError{IDs: missing}
	}

	return versions, nil
}

func (r *fakeVersionRepo) Insert(ctx context.Context, version *models.OcflObjectVersion) error {
	if _, ok := r.store.versions[version.ID()]; ok {
		return &OcflObjectVersionAlreadyExistsError{ID: version.ID()}
	}
	r.store.versions[version.ID()] = version
	return nil
}

func (r *fakeVersionRepo) Update(ctx context.Context, version *models.OcflObjectVersion) error {
	if _, ok := r.store.versions[version.ID()]; !ok {
		return &OcflObjectVersionNotFoundError{IDs: []models.OcflObjectVersionID{version.ID()}}
	}
	r.store.versions[version.ID()] = version
	return nil
}

func (r *fakeVersionRepo) filter(keep func(*models.OcflObjectVersion) bool) []*models.OcflObjectVersion {
	matched := []*models.OcflObjectVersion{}
	for _, version := range r.store.versions {
		if keep(version) {
			matched = append(matched, version)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].BagID != matched[j].BagID {
			return matched[i].BagID < matched[j].BagID
		}
		return matched[i].ObjectVersion > matched[j].ObjectVersion
	})

	return matched
}

type fakeTarRepo struct {
	store *fakeStore
}

func (r *fakeTarRepo) FindByID(ctx context.Context, tarUUID string) (*models.Tar, error) {
	return r.store.tars[tarUUID], nil
}

func (r *fakeTarRepo) FindAll(ctx context.Context) ([]*models.Tar, error) {
	uuids := make([]string, 0, len(r.store.tars))
	for uuid := range r.store.tars {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)

	tars := make([]*models.Tar, 0, len(uuids))
	for _, uuid := range uuids {
		tars = append(tars, r.store.tars[uuid])
	}
	return tars, nil
}

func (r *fakeTarRepo) Insert(ctx context.Context, tar *models.Tar) error {
	if _, ok := r.store.tars[tar.TarUUID]; ok {
		return &TarAlreadyExistsError{TarUUID: tar.TarUUID}
	}
	r.store.tars[tar.TarUUID] = tar
	return nil
}

func (r *fakeTarRepo) Update(ctx context.Context, tar *models.Tar) error {
	if _, ok := r.store.tars[tar.TarUUID]; !ok {
		return &TarNotFoundError{TarUUID: tar.TarUUID}
	}
	r.store.tars[tar.TarUUID] = tar
	return nil
}

// fakeSearchIndex records projection calls and optionally fails them
type fakeSearchIndex struct {
	indexedVersions []string
	indexedTars     []string
	fail            bool
}

func (f *fakeSearchIndex) IndexOcflObjectVersion(ctx context.Context, version *models.OcflObjectVersion, tar *models.Tar) error {
	if f.fail {
		return fmt.Errorf("search index unavailable")
	}
	f.indexedVersions = append(f.indexedVersions, version.ID().String())
	return nil
}

func (f *fakeSearchIndex) IndexTar(ctx context.Context, tar *models.Tar) error {
	if f.fail {
		return fmt.Errorf("search index unavailable")
	}
	f.indexedTars = append(f.indexedTars, tar.TarUUID)
	return nil
}
