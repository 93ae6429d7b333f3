package repository

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink configures the client; the server is first contacted by
// EnsureSchema.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoSink) Name() string { return "mongo" }

func (s *MongoSink) EnsureSchema(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("mongodb ping: %w", err)
	}

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sku", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb create index: %w", err)
	}
	return nil
}

func (s *MongoSink) Load(ctx context.Context, rows []ProductRow, opts LoadOptions) (int64, error) {
	if opts.Truncate {
		res, err := s.collection.DeleteMany(ctx, bson.D{})
		if err != nil {
			return 0, fmt.Errorf("mongodb truncate: %w", err)
		}
		log.Infof("🧹 Removed %d documents from %s", res.DeletedCount, s.collection.Name())
	}

	var total int64
	for i, chunk := range chunks(rows, opts.ChunkSize) {
		docs := make([]any, len(chunk))
		for j, row := range chunk {
			docs[j] = row
		}
		res, err := s.collection.InsertMany(ctx, docs)
		if err != nil {
			return total, fmt.Errorf("mongodb insert chunk %d: %w", i+1, err)
		}
		total += int64(len(res.InsertedIDs))
	}
	return total, nil
}

func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
