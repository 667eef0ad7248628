package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const mongoCollection = "pages"

// MongoSink upserts one document per page, keyed by url and crawl_id.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoSink connects to MongoDB and verifies the connection.
func NewMongoSink(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
		logger:     logger.With("component", "mongo_sink"),
	}, nil
}

func (s *MongoSink) Name() string { return "mongo" }

func (s *MongoSink) Store(ctx context.Context, rec *types.PageRecord) error {
	doc, err := recordDocument(rec)
	if err != nil {
		return &types.StorageError{Backend: "mongo", Op: "encode", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{"url": rec.URL, "crawl_id": rec.CrawlID}
	_, err = s.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: "mongo", Op: "upsert", Err: err}
	}

	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.logger.Debug("page stored in mongodb", "url", rec.URL)
	return nil
}

func (s *MongoSink) Close() error {
	s.mu.Lock()
	s.logger.Info("mongodb sink closing", "pages", s.count)
	s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// recordDocument converts a record to a BSON document that keeps the JSON
// field names of the page files.
func recordDocument(rec *types.PageRecord) (bson.M, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
