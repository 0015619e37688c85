package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavault/catalog/cmd/catalog/models"
)

func newDisabledSearchIndex() *SolrSearchIndex {
	return NewSolrSearchIndex(nil, "vault-catalog", nil, 0, nil, testLogger())
}

func str(s string) *string { return &s }

func TestSolrSearchIndex_MapOcflObjectVersion(t *testing.T) {
	s := newDisabledSearchIndex()

	exported := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	version := &models.OcflObjectVersion{
		BagID:               "urn:uuid:aaa-bbb",
		ObjectVersion:       2,
		Nbn:                 "urn:nbn:nl:ui:13-abc-def",
		DataSupplier:        str("DANS"),
		SwordToken:          str("sword:token-1"),
		DataversePid:        str("doi:10.17026/dans-xyz"),
		DataversePidVersion: str("1.0"),
		ExportTimestamp:     &exported,
		Metadata: `{
			"@id": "doi:10.17026/dans-xyz",
			"@type": "http://www.openarchives.org/ore/terms/Aggregation",
			"http://purl.org/dc/terms/title": "Cause of Death Data"
		}`,
	}

	archived := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	tar := &models.Tar{
		TarUUID:      "1cd9cc04-d712-4f02-82fa-7e812dc2c6de",
		VaultPath:    "/vault/1cd9cc04",
		ArchivalDate: &archived,
		TarParts: []models.TarPart{
			{PartName: "0000", ChecksumAlgorithm: "SHA-256", ChecksumValue: "aa"},
			{PartName: "0001", ChecksumAlgorithm: "SHA-256", ChecksumValue: "bb"},
		},
	}

	doc := s.mapOcflObjectVersion(version, tar)

	assert.Equal(t, "urn:uuid:aaa-bbb/2", doc["id"])
	assert.Equal(t, "urn:uuid:aaa-bbb", doc["bag_id"])
	assert.Equal(t, 2, doc["object_version"])
	assert.Equal(t, "urn:nbn:nl:ui:13-abc-def", doc["nbn"])

	// the supplier is published under both names
	assert.Equal(t, "DANS", doc["data_supplier"])
	assert.Equal(t, "DANS", doc["datastation"])

	assert.Equal(t, "sword:token-1", doc["sword_token"])
	assert.Equal(t, "2026-02-01T09:30:00Z", doc["export_timestamp"])

	// identifiers are searchable without their URI prefixes
	assert.Equal(t, []any{"aaa-bbb", "13-abc-def"}, doc["_text_"])

	assert.Equal(t, "1cd9cc04-d712-4f02-82fa-7e812dc2c6de", doc["tar_id"])
	assert.Equal(t, "/vault/1cd9cc04", doc["tar_vault_path"])
	assert.Equal(t, "2026-02-02T10:00:00Z", doc["tar_archival_date"])
	assert.Equal(t, []any{"0000", "0001"}, doc["tar_part_name"])
	assert.Equal(t, []any{"aa", "bb"}, doc["tar_part_checksum_value"])

	// extracted fields carry the _txt suffix, title is verbatim
	assert.Equal(t, []any{"Cause of Death Data"}, doc["purl_org_dc_terms_title_txt"])
	assert.Equal(t, "Cause of Death Data", doc["title"])

	// absent optionals never appear as nulls
	assert.NotContains(t, doc, "other_id")
	assert.NotContains(t, doc, "ocfl_object_path")
	assert.NotContains(t, doc, "description")
}

func TestSolrSearchIndex_MapOcflObjectVersion_NoTar(t *testing.T) {
	s := newDisabledSearchIndex()

	version := &models.OcflObjectVersion{
		BagID:         "urn:uuid:aaa",
		ObjectVersion: 1,
		Nbn:           "urn:nbn:nl:ui:13-abc",
	}

	doc := s.mapOcflObjectVersion(version, nil)

	assert.Equal(t, "urn:uuid:aaa/1", doc["id"])
	assert.NotContains(t, doc, "tar_id")
	assert.NotContains(t, doc, "tar_vault_path")
	assert.NotContains(t, doc, "tar_part_name")
}

func TestSolrSearchIndex_DisabledIsNoOp(t *testing.T) {
	s := newDisabledSearchIndex()
	ctx := context.Background()

	version := &models.OcflObjectVersion{BagID: "urn:uuid:aaa", ObjectVersion: 1}
	require.NoError(t, s.IndexOcflObjectVersion(ctx, version, nil))

	tar := &models.Tar{
		TarUUID:            "1cd9cc04-d712-4f02-82fa-7e812dc2c6de",
		OcflObjectVersions: []*models.OcflObjectVersion{version},
	}
	require.NoError(t, s.IndexTar(ctx, tar))
}
