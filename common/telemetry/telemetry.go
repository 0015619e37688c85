package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/datavault/catalog/common/logger"
)

// Telemetry exposes a pprof listener on a side port
type Telemetry struct {
	pprofPort int
	log       *logger.Logger
}

// New creates a telemetry component
func New(pprofPort int, log *logger.Logger) *Telemetry {
	return &Telemetry{
		pprofPort: pprofPort,
		log:       log,
	}
}

// Start launches the pprof listener in the background
func (t *Telemetry) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	addr := fmt.Sprintf(":%d", t.pprofPort)

	go func() {
		t.log.Info("pprof listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			t.log.Warn("pprof listener stopped", "error", err)
		}
	}()

	return nil
}
