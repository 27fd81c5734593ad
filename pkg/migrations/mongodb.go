package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoCollection creates the indexes the results store relies on.
// The unique tenant/message index is what makes result persistence
// idempotent under reprocessing.
func EnsureMongoCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("processing_results")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "message_id", Value: 1}},
			Options: options.Index().SetName("idx_results_tenant_message").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "processed_at", Value: -1}},
			Options: options.Index().SetName("idx_results_tenant_processed_at"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "decision", Value: 1}, {Key: "processed_at", Value: -1}},
			Options: options.Index().SetName("idx_results_tenant_decision_processed_at"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
