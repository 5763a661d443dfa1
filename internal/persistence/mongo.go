// Package persistence provides the durable evaluation store.
package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"okrlens/internal/core"
)

// EvaluationStore persists one document per pipeline run and supports the
// dashboard's read-all query. Insertion is append-only.
type EvaluationStore interface {
	Insert(ctx context.Context, record core.EvaluationRecord) error
	ListAll(ctx context.Context) ([]StoredEvaluation, error)
	Close(ctx context.Context) error
}

// StoredEvaluation is a persisted evaluation with its database identity.
// The embedded record's fields are promoted, so it serializes flat with an
// "_id" field alongside the evaluation data.
type StoredEvaluation struct {
	ID                    string `json:"_id" bson:"-"`
	core.EvaluationRecord `bson:",inline"`
}

// MongoStore implements EvaluationStore over a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and returns a store over the given
// database and collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Insert appends one evaluation document.
func (s *MongoStore) Insert(ctx context.Context, record core.EvaluationRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return nil
}

// ListAll returns every persisted evaluation with ObjectIDs rendered as hex
// strings for JSON consumers.
func (s *MongoStore) ListAll(ctx context.Context) ([]StoredEvaluation, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer cursor.Close(ctx)

	var results []StoredEvaluation
	for cursor.Next(ctx) {
		var doc struct {
			ID                    primitive.ObjectID `bson:"_id"`
			core.EvaluationRecord `bson:",inline"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode evaluation: %w", err)
		}
		results = append(results, StoredEvaluation{
			ID:               doc.ID.Hex(),
			EvaluationRecord: doc.EvaluationRecord,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while listing evaluations: %w", err)
	}

	return results, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
