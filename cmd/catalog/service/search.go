package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/datavault/catalog/cmd/catalog/metadata"
	"github.com/datavault/catalog/cmd/catalog/models"
	"github.com/datavault/catalog/common/cache"
	"github.com/datavault/catalog/common/logger"
	"github.com/datavault/catalog/common/redis"
	"github.com/datavault/catalog/common/solr"
)

// DeadLetterKey is the Redis list holding ids of failed projections, so
// operators can see what the next reindex run must repair.
const DeadLetterKey = "catalog:projection:failed"

// SolrSearchIndex projects catalog entities into a Solr collection. A nil
// client means Solr is not configured: every call is a logged no-op.
// Projection never participates in the caller's transaction; a failure
// here is logged (and recorded in Redis when available) but the committed
// domain write stands.
type SolrSearchIndex struct {
	client     *solr.Client
	collection string
	cache      cache.Cache
	cacheTTL   time.Duration
	deadLetter *redis.Client
	log        *logger.Logger
}

// NewSolrSearchIndex creates the search projection component. client,
// extractionCache and deadLetter may each be nil.
func NewSolrSearchIndex(client *solr.Client, collection string, extractionCache cache.Cache, cacheTTL time.Duration, deadLetter *redis.Client, log *logger.Logger) *SolrSearchIndex {
	return &SolrSearchIndex{
		client:     client,
		collection: collection,
		cache:      extractionCache,
		cacheTTL:   cacheTTL,
		deadLetter: deadLetter,
		log:        log,
	}
}

// IndexOcflObjectVersion writes one version's document as a single
// write+commit pair. tar may be nil when the version is unassigned.
func (s *SolrSearchIndex) IndexOcflObjectVersion(ctx context.Context, version *models.OcflObjectVersion, tar *models.Tar) error {
	if s.client == nil {
		s.log.Warn("solr is not configured, skipping indexing of OCFL object version",
			"bag_id", version.BagID, "object_version", version.ObjectVersion)
		return nil
	}

	doc := s.mapOcflObjectVersion(version, tar)

	s.log.Debug("indexing document", "id", doc["id"])

	if err := s.write(ctx, []solr.Document{doc}); err != nil {
		s.recordFailure(ctx, version.ID().String())
		return err
	}

	return nil
}

// IndexTar writes one document per contained version, then commits once.
// The search index is keyed at object-version granularity even when
// reached through a tar.
func (s *SolrSearchIndex) IndexTar(ctx context.Context, tar *models.Tar) error {
	if s.client == nil {
		s.log.Warn("solr is not configured, skipping indexing of tar", "tar_id", tar.TarUUID)
		return nil
	}

	docs := make([]solr.Document, 0, len(tar.OcflObjectVersions))
	for _, version := range tar.OcflObjectVersions {
		docs = append(docs, s.mapOcflObjectVersion(version, tar))
	}

	s.log.Debug("indexing documents for tar", "tar_id", tar.TarUUID, "documents", len(docs))

	if err := s.write(ctx, docs); err != nil {
		s.recordFailure(ctx, tar.TarUUID)
		return err
	}

	return nil
}

func (s *SolrSearchIndex) write(ctx context.Context, docs []solr.Document) error {
	if err := s.client.Add(ctx, s.collection, docs); err != nil {
		return err
	}
	return s.client.Commit(ctx, s.collection)
}

// recordFailure pushes the failed id onto the dead-letter list. Redis
// being unavailable only logs; projection failure handling must not fail.
func (s *SolrSearchIndex) recordFailure(ctx context.Context, id string) {
	if s.deadLetter == nil {
		return
	}
	if err := s.deadLetter.PushToList(ctx, DeadLetterKey, id); err != nil {
		s.log.Warn("could not record projection failure", "id", id, "error", err)
	}
}

// mapOcflObjectVersion flattens a version, its owning tar and its
// extracted metadata into one search document.
func (s *SolrSearchIndex) mapOcflObjectVersion(version *models.OcflObjectVersion, tar *models.Tar) solr.Document {
	doc := solr.NewDocument()

	doc.SetField("id", version.ID().String())
	doc.SetField("bag_id", version.BagID)
	doc.SetField("object_version", version.ObjectVersion)
	doc.SetField("nbn", version.Nbn)
	doc.SetField("dataverse_pid", version.DataversePid)
	doc.SetField("dataverse_pid_version", version.DataversePidVersion)
	doc.SetField("datastation", version.DataSupplier)
	doc.SetField("data_supplier", version.DataSupplier)
	doc.SetField("sword_token", version.SwordToken)
	doc.SetField("other_id", version.OtherID)
	doc.SetField("other_id_version", version.OtherIDVersion)
	doc.SetField("filepid_to_local_path", version.FilePidToLocalPath)
	doc.SetField("ocfl_object_path", version.OcflObjectPath)
	if version.ExportTimestamp != nil {
		doc.SetField("export_timestamp", version.ExportTimestamp.Format(time.RFC3339))
	}

	// make the identifiers searchable without their URI prefixes
	doc.AddField("_text_", strings.TrimPrefix(version.BagID, "urn:uuid:"))
	doc.AddField("_text_", strings.TrimPrefix(version.Nbn, "urn:nbn:nl:ui:"))

	if tar != nil {
		doc.SetField("tar_id", tar.TarUUID)
		doc.SetField("tar_vault_path", tar.VaultPath)
		if tar.ArchivalDate != nil {
			doc.SetField("tar_archival_date", tar.ArchivalDate.Format(time.RFC3339))
		}

		for _, part := range tar.TarParts {
			doc.AddField("tar_part_name", part.PartName)
			doc.AddField("tar_part_checksum_algorithm", part.ChecksumAlgorithm)
			doc.AddField("tar_part_checksum_value", part.ChecksumValue)
		}
	}

	extracted := s.extract(version.Metadata)

	names := make([]string, 0, len(extracted.Fields))
	for name := range extracted.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range extracted.Fields[name] {
			doc.AddField(name+"_txt", value)
		}
	}

	doc.SetField("title", extracted.Title)
	doc.SetField("description", extracted.Description)

	return doc
}

// extract memoizes metadata extraction by document content. Extraction is
// pure, so a content-hashed entry can never go stale.
func (s *SolrSearchIndex) extract(document string) metadata.ExtractedMetadata {
	if s.cache == nil {
		return metadata.Extract(document)
	}

	sum := sha256.Sum256([]byte(document))
	key := "metadata:" + hex.EncodeToString(sum[:])

	if cached, ok := s.cache.Get(key); ok {
		if extracted, ok := cached.(metadata.ExtractedMetadata); ok {
			return extracted
		}
	}

	extracted := metadata.Extract(document)
	s.cache.Set(key, extracted, s.cacheTTL)
	return extracted
}
