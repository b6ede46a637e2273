package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"webrelay/contract"
	"webrelay/domain"
)

// Ensure MessageRepository satisfies the sink boundary at compile time.
var _ contract.MessageSink = MessageRepository{}

// MessageRepository persists relayed messages as documents in a MongoDB
// collection. Concurrency safety across handler goroutines is delegated to
// the driver; there is no retry and no dead-letter, a failed insert drops
// the message.
type MessageRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *slog.Logger
}

func NewMessageRepository(client *mongo.Client, database, collection string, log *slog.Logger) MessageRepository {
	return MessageRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
		log:        log,
	}
}

// Ping checks that the server is reachable. The socket listener calls this
// once, with a bounded context, before entering its accept loop.
func (m MessageRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// InsertMessage stores one message as a single document shaped by the bson
// tags on domain.Message: {username, message, date}.
func (m MessageRepository) InsertMessage(ctx context.Context, message domain.Message) error {
	if _, err := m.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	m.log.Debug("Inserted message document", "username", message.Username)
	return nil
}
