package session

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a MongoDB-backed session store for service deployments.
// A TTL index on expires_at lets the server reap expired sessions.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string // defaults to "fiberlat"
	Collection string // defaults to "sessions"
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "fiberlat"
	}
	if cfg.Collection == "" {
		cfg.Collection = "sessions"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	// Expired documents are removed server-side shortly after expires_at.
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("create ttl index: %w", err)
	}

	return &MongoStore{client: client, collection: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	// The TTL monitor runs periodically, so a stale document can still be read.
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return &sess, nil
}

func (s *MongoStore) Set(ctx context.Context, sess *Session) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": sess.ID},
		sess,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions eagerly instead of waiting for the
// server-side TTL monitor.
func (s *MongoStore) Cleanup(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
