// Package results persists processing results to MongoDB for auditability
// and for the stats endpoint. Persistence sits outside the pipeline: a
// write failure never changes or delays a routing decision.
package results

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"herald/pkg/metrics"
	"herald/pkg/models"
)

const collectionName = "processing_results"

// Repository stores and queries processing results.
type Repository interface {
	Save(ctx context.Context, result *models.ProcessingResult) error
	GetByMessageID(ctx context.Context, tenantID, messageID string) (*models.ProcessingResult, error)
	DecisionCounts(ctx context.Context, tenantID string, since time.Time) (map[string]int64, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection(collectionName),
	}
}

// Save upserts by tenant and message id so reprocessing a message is
// idempotent.
func (r *mongoRepository) Save(ctx context.Context, result *models.ProcessingResult) error {
	filter := bson.M{
		"tenant_id":  result.TenantID,
		"message_id": result.MessageID,
	}
	update := bson.M{"$set": result}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		metrics.ResultsPersistedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to persist processing result: %w", err)
	}

	metrics.ResultsPersistedTotal.WithLabelValues("success").Inc()
	return nil
}

func (r *mongoRepository) GetByMessageID(ctx context.Context, tenantID, messageID string) (*models.ProcessingResult, error) {
	filter := bson.M{
		"tenant_id":  tenantID,
		"message_id": messageID,
	}

	var result models.ProcessingResult
	err := r.collection.FindOne(ctx, filter).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processing result: %w", err)
	}

	return &result, nil
}

// DecisionCounts aggregates how many messages landed on each routing
// decision for a tenant since the given time.
func (r *mongoRepository) DecisionCounts(ctx context.Context, tenantID string, since time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"tenant_id":    tenantID,
			"processed_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$decision",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate decision counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Decision string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode decision counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Decision] = row.Count
	}
	return counts, nil
}
