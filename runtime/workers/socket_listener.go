package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"webrelay/contract"
	"webrelay/domain"
	"webrelay/errors"
)

// pingTimeout bounds the startup health check against the storage sink.
const pingTimeout = 5 * time.Second

// Ensure *SocketListenerWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*SocketListenerWorker)(nil)

// SocketListenerWorker accepts message deliveries from the HTTP front and
// persists them through the sink. Each accepted connection is handled on
// its own goroutine so one slow or malformed peer never blocks the others.
// Nothing is ever written back to the peer: the protocol is send-only.
type SocketListenerWorker struct {
	addr       string
	bufferSize int
	sink       contract.MessageSink
	log        *slog.Logger
}

func NewSocketListenerWorker(addr string, bufferSize int, sink contract.MessageSink, log *slog.Logger) *SocketListenerWorker {
	return &SocketListenerWorker{
		addr:       addr,
		bufferSize: bufferSize,
		sink:       sink,
		log:        log,
	}
}

// Run verifies the sink is reachable, then accepts connections until the
// context is canceled. An unreachable sink is fatal to this unit only: the
// accept loop is never entered and the HTTP front keeps serving.
func (w *SocketListenerWorker) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := w.sink.Ping(pingCtx); err != nil {
		w.log.Error("Storage unreachable, socket listener will not start", "error", err)
		return fmt.Errorf("%w: %v", errors.ErrStorageUnreachable, err)
	}
	w.log.Info("Storage connection established")

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", w.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.addr, err)
	}

	// Closing the listener is what unblocks Accept on cancellation.
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	w.log.Info("Socket listener started", "address", w.addr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go w.handle(ctx, conn)
	}
}

// handle reads a single payload from the connection, stamps the receipt
// time and attempts exactly one insert. The protocol assumes the whole
// message fits in one receive and the sender closes after one payload.
// The connection is always closed, whatever happened before.
func (w *SocketListenerWorker) handle(ctx context.Context, conn net.Conn) {
	connID := uuid.New()
	defer func() { _ = conn.Close() }()

	buffer := make([]byte, w.bufferSize)
	n, err := conn.Read(buffer)
	if n == 0 {
		// A sender that connected and closed without writing is not an error.
		if err != nil && err != io.EOF {
			w.log.Error("Reading from connection failed",
				"conn", connID, "peer", conn.RemoteAddr().String(), "error", err)
		}
		return
	}

	var message domain.Message
	if err = json.Unmarshal(buffer[:n], &message); err != nil {
		w.log.Error("Discarding malformed payload",
			"conn", connID, "peer", conn.RemoteAddr().String(), "error", err)
		return
	}

	// Receipt time, not send time: any date supplied by the sender is ignored.
	message.Date = time.Now().UTC()

	if err = w.sink.InsertMessage(ctx, message); err != nil {
		w.log.Error("Error inserting message", "conn", connID, "error", err)
		return
	}
	w.log.Info("Stored message", "conn", connID, "username", message.Username)
}
