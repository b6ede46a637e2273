package workers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"webrelay/contract"
	"webrelay/web"
)

const shutdownTimeout = 5 * time.Second

// Ensure *HTTPFrontWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*HTTPFrontWorker)(nil)

// HTTPFrontWorker runs the page-serving HTTP server as a supervised unit.
// net/http already handles each inbound connection on its own goroutine;
// the handler carries read-only configuration only, so no locking is needed.
type HTTPFrontWorker struct {
	addr    string
	handler *web.Handler
	log     *slog.Logger
}

func NewHTTPFrontWorker(addr string, handler *web.Handler, log *slog.Logger) *HTTPFrontWorker {
	return &HTTPFrontWorker{addr: addr, handler: handler, log: log}
}

// Run serves HTTP until the context is canceled, then shuts the server down
// and drains in-flight requests.
func (w *HTTPFrontWorker) Run(ctx context.Context) error {
	server := &http.Server{Addr: w.addr, Handler: w.handler.Router()}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		w.log.Info("HTTP front listening", "address", w.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}
