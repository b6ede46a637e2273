package workers

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"webrelay/domain"
	"webrelay/errors"
	"webrelay/mocks"
)

// freePort reserves a loopback address and releases it right away, so a
// worker under test can bind it a moment later.
func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// dialWithRetry waits for the worker's accept loop to come up.
func dialWithRetry(t *testing.T, addr string) net.Conn {
	t.Helper()
	var conn net.Conn
	var err error
	for i := 0; i < 100; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("listener at %s never came up: %v", addr, err)
	return nil
}

func TestSocketListener_StoresTimestampedMessage(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inserted := make(chan domain.Message, 1)
	sink := mocks.NewMockMessageSink(ctrl)
	sink.EXPECT().Ping(gomock.Any()).Return(nil)
	sink.EXPECT().
		InsertMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message domain.Message) error {
			inserted <- message
			return nil
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := freePort(t)
	worker := NewSocketListenerWorker(addr, 1024, sink, log)
	go func() { _ = worker.Run(ctx) }()

	before := time.Now().UTC()
	conn := dialWithRetry(t, addr)
	// The payload carries a date on purpose: the listener must ignore it
	// and stamp its own receipt time.
	_, err := conn.Write([]byte(`{"username":"alice","message":"hello","date":"1999-01-01T00:00:00Z"}`))
	req.NoError(err)
	req.NoError(conn.Close())

	select {
	case message := <-inserted:
		req.Equal("alice", message.Username)
		req.Equal("hello", message.Message)
		req.False(message.Date.IsZero())
		req.WithinRange(message.Date, before, time.Now().UTC().Add(time.Second))
	case <-time.After(2 * time.Second):
		req.Fail("listener should have inserted exactly one message")
	}
}

func TestSocketListener_DropsMalformedPayload(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockMessageSink(ctrl)
	sink.EXPECT().Ping(gomock.Any()).Return(nil)
	// No InsertMessage expectation: a malformed payload is logged and dropped.

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := freePort(t)
	worker := NewSocketListenerWorker(addr, 1024, sink, log)
	go func() { _ = worker.Run(ctx) }()

	conn := dialWithRetry(t, addr)
	_, err := conn.Write([]byte("definitely not json"))
	req.NoError(err)
	req.NoError(conn.Close())

	// The listener must survive the bad payload and keep accepting.
	second := dialWithRetry(t, addr)
	req.NoError(second.Close())
	time.Sleep(100 * time.Millisecond)
}

func TestSocketListener_LogsInsertErrorAndKeepsServing(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failed := make(chan struct{}, 1)
	sink := mocks.NewMockMessageSink(ctrl)
	sink.EXPECT().Ping(gomock.Any()).Return(nil)
	sink.EXPECT().
		InsertMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.Message) error {
			failed <- struct{}{}
			return errors.ErrStorageUnreachable
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := freePort(t)
	worker := NewSocketListenerWorker(addr, 1024, sink, log)
	go func() { _ = worker.Run(ctx) }()

	conn := dialWithRetry(t, addr)
	_, err := conn.Write([]byte(`{"username":"bob","message":"dropped"}`))
	req.NoError(err)
	req.NoError(conn.Close())

	select {
	case <-failed:
		// Message dropped, no retry: the next peer must still be served.
	case <-time.After(2 * time.Second):
		req.Fail("insert should have been attempted once")
	}
	next := dialWithRetry(t, addr)
	req.NoError(next.Close())
}

func TestSocketListener_AbortsWhenStorageUnreachable(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockMessageSink(ctrl)
	sink.EXPECT().Ping(gomock.Any()).Return(errors.ErrStorageUnreachable)

	addr := freePort(t)
	worker := NewSocketListenerWorker(addr, 1024, sink, log)

	err := worker.Run(context.Background())
	req.ErrorIs(err, errors.ErrStorageUnreachable)

	// The accept loop was never entered.
	_, dialErr := net.Dial("tcp", addr)
	req.Error(dialErr)
}
