package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavault/catalog/cmd/catalog/models"
)

const (
	tarA = "1cd9cc04-d712-4f02-82fa-7e812dc2c6de"
	tarB = "9e702bb5-cdab-4c9c-b1a7-c69893a3fbcd"
)

func seedVersions(t *testing.T, store *fakeStore, keys ...models.OcflObjectVersionID) {
	t.Helper()
	for _, key := range keys {
		version, err := models.NewOcflObjectVersion(key.BagID, key.ObjectVersion)
		require.NoError(t, err)
		version.Nbn = "urn:nbn:nl:ui:13-seed"
		store.versions[key] = version
	}
}

func TestTarService_Create(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearchIndex{}
	svc := NewTarService(store, search, testLogger())

	idA := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	idB := models.OcflObjectVersionID{BagID: "urn:uuid:bbb", ObjectVersion: 2}
	seedVersions(t, store, idA, idB)

	archived := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tar, err := svc.Create(context.Background(), tarA, TarParameters{
		VaultPath:    "/vault/" + tarA,
		ArchivalDate: &archived,
		TarParts: []TarPartParameters{
			{PartName: "0000", ChecksumAlgorithm: "SHA-256", ChecksumValue: "aa"},
		},
		OcflObjectVersions: []models.OcflObjectVersionID{idA, idB},
	})
	require.NoError(t, err)

	assert.Equal(t, tarA, tar.TarUUID)
	assert.Equal(t, "/vault/"+tarA, tar.VaultPath)
	require.Len(t, tar.TarParts, 1)
	assert.Equal(t, tarA, tar.TarParts[0].TarUUID)

	// both versions are now owned by the tar
	for _, id := range []models.OcflObjectVersionID{idA, idB} {
		version := store.versions[id]
		require.NotNil(t, version.TarUUID)
		assert.Equal(t, tarA, *version.TarUUID)
	}

	assert.Equal(t, []string{tarA}, search.indexedTars)
}

func TestTarService_Create_DuplicateUUID(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())

	_, err := svc.Create(context.Background(), tarA, TarParameters{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tarA, TarParameters{})

	var exists *TarAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, tarA, exists.TarUUID)
}

func TestTarService_Create_UnresolvableVersionFailsBeforeWrite(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())

	idA := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	missing := models.OcflObjectVersionID{BagID: "urn:uuid:bbb", ObjectVersion: 1}
	seedVersions(t, store, idA)

	_, err := svc.Create(context.Background(), tarA, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{idA, missing},
	})

	var notFound *OcflObjectVersionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []models.OcflObjectVersionID{missing}, notFound.IDs)

	// nothing written, nothing claimed
	assert.Empty(t, store.tars)
	assert.Nil(t, store.versions[idA].TarUUID)
}

func TestTarService_Create_VersionOwnedElsewhere(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())
	ctx := context.Background()

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	seedVersions(t, store, id)

	_, err := svc.Create(ctx, tarA, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{id},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tarB, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{id},
	})

	var inTar *OcflObjectVersionAlreadyInTarError
	require.ErrorAs(t, err, &inTar)
	assert.Equal(t, id, inTar.ID)
	assert.Equal(t, tarA, inTar.TarUUID)

	// ownership is unchanged
	assert.Equal(t, tarA, *store.versions[id].TarUUID)
	assert.NotContains(t, store.tars, tarB)
}

func TestTarService_Update_ReaffirmingOwnMemberSucceeds(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())
	ctx := context.Background()

	id := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	seedVersions(t, store, id)

	_, err := svc.Create(ctx, tarA, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{id},
	})
	require.NoError(t, err)

	tar, err := svc.Update(ctx, tarA, TarParameters{
		VaultPath:          "/vault/moved",
		OcflObjectVersions: []models.OcflObjectVersionID{id},
	})
	require.NoError(t, err)

	assert.Equal(t, "/vault/moved", tar.VaultPath)
	assert.Equal(t, tarA, *store.versions[id].TarUUID)
}

func TestTarService_Update_RemovedVersionIsReleasedNotDeleted(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())
	ctx := context.Background()

	kept := models.OcflObjectVersionID{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	dropped := models.OcflObjectVersionID{BagID: "urn:uuid:bbb", ObjectVersion: 1}
	seedVersions(t, store, kept, dropped)

	_, err := svc.Create(ctx, tarA, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{kept, dropped},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, tarA, TarParameters{
		OcflObjectVersions: []models.OcflObjectVersionID{kept},
	})
	require.NoError(t, err)

	// the dropped version still exists, back in the unassigned state
	require.Contains(t, store.versions, dropped)
	assert.Nil(t, store.versions[dropped].TarUUID)
	assert.Equal(t, tarA, *store.versions[kept].TarUUID)
}

func TestTarService_Update_MissingTar(t *testing.T) {
	svc := NewTarService(newFakeStore(), &fakeSearchIndex{}, testLogger())

	_, err := svc.Update(context.Background(), tarA, TarParameters{})

	var notFound *TarNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, tarA, notFound.TarUUID)
}

func TestTarService_GetByID_AbsentIsNil(t *testing.T) {
	svc := NewTarService(newFakeStore(), &fakeSearchIndex{}, testLogger())

	tar, err := svc.GetByID(context.Background(), tarA)

	require.NoError(t, err)
	assert.Nil(t, tar)
}

func TestTarService_ReindexAll(t *testing.T) {
	store := newFakeStore()
	search := &fakeSearchIndex{}
	svc := NewTarService(store, search, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, tarA, TarParameters{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, tarB, TarParameters{})
	require.NoError(t, err)

	search.indexedTars = nil

	require.NoError(t, svc.ReindexAll(ctx))
	assert.Equal(t, []string{tarA, tarB}, search.indexedTars)
}

func TestTarService_ReindexAll_ToleratesIndexFailures(t *testing.T) {
	store := newFakeStore()
	svc := NewTarService(store, &fakeSearchIndex{}, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, tarA, TarParameters{})
	require.NoError(t, err)

	failing := NewTarService(store, &fakeSearchIndex{fail: true}, testLogger())
	assert.NoError(t, failing.ReindexAll(ctx))
}
