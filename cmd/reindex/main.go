package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datavault/catalog/cmd/catalog/container"
	"github.com/datavault/catalog/common/bootstrap"
)

// reindex rebuilds the search index from the catalog database. Run it
// after a Solr outage, a schema change or a dead-letter backlog.
func main() {
	ctx := context.Background()

	components, err := bootstrap.Setup(ctx, "reindex", bootstrap.WithoutTelemetry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap reindex: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	if !components.Config.SolrEnabled() {
		components.Logger.Error("solr is not configured, nothing to reindex")
		os.Exit(1)
	}

	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	if err := serviceContainer.TarService.ReindexAll(ctx); err != nil {
		components.Logger.Error("reindex failed", "error", err)
		os.Exit(1)
	}

	components.Logger.Info("reindex complete")
}
