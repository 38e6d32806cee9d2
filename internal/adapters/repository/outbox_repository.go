package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type MongoOutboxRepository struct {
	col *mongo.Collection
}

// Ensure MongoOutboxRepository implements ports.OutboxRepository
var _ ports.OutboxRepository = (*MongoOutboxRepository)(nil)

func NewMongoOutboxRepository(db *mongo.Database) *MongoOutboxRepository {
	return &MongoOutboxRepository{col: db.Collection(outboxCollection)}
}

type outboxDoc struct {
	ID          string     `bson:"_id"`
	EventType   string     `bson:"event_type"`
	Payload     []byte     `bson:"payload"`
	CreatedAt   time.Time  `bson:"created_at"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty"`
}

func (r *MongoOutboxRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "processed_at", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

func (r *MongoOutboxRepository) Append(ctx context.Context, evt ports.OutboxEvent) error {
	_, err := r.col.InsertOne(ctx, outboxDoc{
		ID:        evt.ID,
		EventType: evt.EventType,
		Payload:   evt.Payload,
		CreatedAt: evt.CreatedAt,
	})
	return err
}

func (r *MongoOutboxRepository) FetchUnprocessed(ctx context.Context, limit int64) ([]ports.OutboxEvent, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"processed_at": nil},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]ports.OutboxEvent, 0)
	for cursor.Next(ctx) {
		var doc outboxDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, ports.OutboxEvent{
			ID:          doc.ID,
			EventType:   doc.EventType,
			Payload:     doc.Payload,
			CreatedAt:   doc.CreatedAt,
			ProcessedAt: doc.ProcessedAt,
		})
	}
	return events, cursor.Err()
}

func (r *MongoOutboxRepository) MarkProcessed(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"processed_at": now}})
	return err
}
