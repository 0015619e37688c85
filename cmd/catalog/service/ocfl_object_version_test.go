package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavault/catalog/cmd/catalog/models"
)

func newVersionService(store Store, search SearchIndex, skeletonOverwrite bool) *OcflObjectVersionService {
	return NewOcflObjectVersionService(store, search, skeletonOverwrite, testLogger())
}

func TestOcflObjectVersionService_Create(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearchIndex{}
	svc := newVersionService(store, search, false)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	version, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{
		Nbn:      "urn:nbn:nl:ui:13-abc-def",
		Metadata: "{}",
	})
	require.NoError(t, err)

	assert.Equal(t, "urn:uuid:aaa", version.BagID)
	assert.Equal(t, 1, version.ObjectVersion)
	assert.Equal(t, "urn:nbn:nl:ui:13-abc-def", version.Nbn)
	assert.False(t, version.InTar())
	assert.False(t, version.Created.IsZero())
	assert.Equal(t, version.Created, version.Updated)

	stored := store.versions[id]
	require.NotNil(t, stored)
	assert.Equal(t, version, stored)

	assert.Equal(t, []string{"urn:uuid:aaa/1"}, search.indexedVersions)
}

func TestOcflObjectVersionService_Create_DuplicateKey(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, false)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	_, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-other"})

	var exists *OcflObjectVersionAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, id, exists.ID)

	// the first record is untouched
	assert.Equal(t, "urn:nbn:nl:ui:13-abc", store.versions[id].Nbn)
}

func TestOcflObjectVersionService_Create_SkeletonNotOverwrittenByDefault(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, false)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	_, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{
		Nbn:            "urn:nbn:nl:ui:13-abc",
		SkeletonRecord: true,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})

	var exists *OcflObjectVersionAlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestOcflObjectVersionService_Create_SkeletonOverwrite(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, true)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	skeleton, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{
		Nbn:            "urn:nbn:nl:ui:13-abc",
		SkeletonRecord: true,
	})
	require.NoError(t, err)

	// the skeleton has meanwhile been packaged into a tar
	tarUUID := "1cd9cc04-d712-4f02-82fa-7e812dc2c6de"
	skeleton.TarUUID = &tarUUID
	store.tars[tarUUID] = &models.Tar{TarUUID: tarUUID}

	full, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{
		Nbn:      "urn:nbn:nl:ui:13-abc",
		Metadata: `{"@id": "urn:example"}`,
	})
	require.NoError(t, err)

	assert.False(t, full.SkeletonRecord)
	assert.Equal(t, `{"@id": "urn:example"}`, full.Metadata)

	// overwrite keeps the tar reference the record already had
	require.NotNil(t, full.TarUUID)
	assert.Equal(t, tarUUID, *full.TarUUID)

	// overwritten in place, not duplicated
	assert.Len(t, store.versions, 1)
}

func TestOcflObjectVersionService_Create_FullRecordNeverOverwritten(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, true)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	_, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})

	var exists *OcflObjectVersionAlreadyExistsError
	assert.ErrorAs(t, err, &exists)
}

func TestOcflObjectVersionService_Create_SurvivesProjectionFailure(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{fail: true}, false)

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	version, err := svc.Create(context.Background(), id, OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})

	require.NoError(t, err)
	assert.NotNil(t, version)
	assert.NotNil(t, store.versions[id])
}

func TestOcflObjectVersionService_FindAllByBagID_MostRecentFirst(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, false)
	ctx := context.Background()

	for _, v := range []int{1, 3, 2} {
		_, err := svc.Create(ctx, models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: v},
			OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})
		require.NoError(t, err)
	}

	versions, err := svc.FindAllByBagID(ctx, "urn:uuid:aaa")
	require.NoError(t, err)

	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].ObjectVersion)
	assert.Equal(t, 2, versions[1].ObjectVersion)
	assert.Equal(t, 1, versions[2].ObjectVersion)
}

func TestOcflObjectVersionService_FindAllByNbn_Strict(t *testing.T) {
	store := newFakeStore()
	svc := newVersionService(store, &fakeSearchIndex{}, false)
	ctx := context.Background()

	_, err := svc.FindAllByNbn(ctx, "urn:nbn:nl:ui:13-missing")

	var notFound *OcflObjectVersionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "urn:nbn:nl:ui:13-missing", notFound.Nbn)

	_, err = svc.Create(ctx, models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1},
		OcflObjectVersionParameters{Nbn: "urn:nbn:nl:ui:13-abc"})
	require.NoError(t, err)

	versions, err := svc.FindAllByNbn(ctx, "urn:nbn:nl:ui:13-abc")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestOcflObjectVersionService_FindByID_AbsentIsNil(t *testing.T) {
	svc := newVersionService(newFakeStore(), &fakeSearchIndex{}, false)

	version, err := svc.FindByID(context.Background(),
		models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1})

	require.NoError(t, err)
	assert.Nil(t, version)
}
