package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webrelay/repositories"
	"webrelay/runtime/workers"
	"webrelay/web"
)

const disconnectTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the lifecycle of the two relay
// units, and centralizes error reporting. This pattern is preferred over
// calling os.Exit or panic directly because it ensures all 'defer'
// statements (like the storage disconnect) are executed before the program
// exits, and it decouples the initialization logic from the main entry point.
func run() error {
	// 1. Configuration & Logger
	// The logger is process-wide state: configured once here, injected
	// everywhere, never reconfigured at runtime.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage client
	// Connect does not dial eagerly: reachability is only verified by the
	// socket listener's startup ping, so a down store never blocks the
	// HTTP front from starting.
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo client error: %w", err)
	}
	defer func() {
		log.Info("Disconnecting from MongoDB...")
		disconnectCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	repository := repositories.NewMessageRepository(client, config.DBName, config.CollectionName, log)

	// 4. The two relay units
	handler := web.NewHandler(config.WebRoot, config.SocketAddr(), log)
	httpFront := workers.NewHTTPFrontWorker(config.HTTPAddr(), handler, log)
	socketListener := workers.NewSocketListenerWorker(config.SocketAddr(), config.ReadBufferSize, repository, log)

	// 5. Supervision: both units run until they finish or the context is
	// canceled. A crash in one leaves the other serving.
	sup := workers.NewSupervisor(log)
	sup.Add(httpFront, socketListener).Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
