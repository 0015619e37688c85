package container

import (
	"github.com/datavault/catalog/cmd/catalog/repository"
	"github.com/datavault/catalog/cmd/catalog/service"
	"github.com/datavault/catalog/common/bootstrap"
	"github.com/datavault/catalog/common/solr"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	Store *repository.Store

	// Services
	SearchIndex              *service.SolrSearchIndex
	OcflObjectVersionService *service.OcflObjectVersionService
	TarService               *service.TarService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	store := repository.NewStore(components.DB)

	// Solr is optional. Without a configured URL the projection becomes a
	// logged no-op and the catalog runs on the repository alone.
	var solrClient *solr.Client
	if cfg.SolrEnabled() {
		solrClient = solr.NewClient(cfg.Solr.URL, cfg.Solr.Timeout, components.Logger)
	}

	searchIndex := service.NewSolrSearchIndex(
		solrClient,
		cfg.Solr.Collection,
		components.Cache,
		cfg.Cache.DefaultTTL,
		components.Redis,
		components.Logger,
	)

	versionService := service.NewOcflObjectVersionService(
		store,
		searchIndex,
		cfg.Features.SkeletonOverwrite,
		components.Logger,
	)

	tarService := service.NewTarService(store, searchIndex, components.Logger)

	return &Container{
		Components:               components,
		Store:                    store,
		SearchIndex:              searchIndex,
		OcflObjectVersionService: versionService,
		TarService:               tarService,
	}, nil
}
