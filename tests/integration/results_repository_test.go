package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/results"
	"herald/pkg/migrations"
	"herald/pkg/models"
)

func TestResultsRepository_SaveAndGet(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureMongoCollection(ctx, infra.MongoDB))
	repo := results.NewRepository(infra.MongoDB)

	now := time.Now().UTC().Truncate(time.Millisecond)
	result := createTestResult("msg-1", "tenant-1", models.RouteImmediate, now)

	require.NoError(t, repo.Save(ctx, result))

	stored, err := repo.GetByMessageID(ctx, "tenant-1", "msg-1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, models.RouteImmediate, stored.Decision)
	assert.Equal(t, "financial", stored.Category)
	assert.Equal(t, "financial_content", stored.RuleName)
	assert.Len(t, stored.AuditTrail, 2)
	assert.Equal(t, "rule_engine", stored.AuditTrail[0].Step)
}

func TestResultsRepository_SaveIsIdempotent(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureMongoCollection(ctx, infra.MongoDB))
	repo := results.NewRepository(infra.MongoDB)

	now := time.Now().UTC()
	first := createTestResult("msg-1", "tenant-1", models.RouteDigest, now)
	require.NoError(t, repo.Save(ctx, first))

	// Reprocessing overwrites the stored decision instead of duplicating it.
	second := createTestResult("msg-1", "tenant-1", models.RouteImmediate, now.Add(time.Second))
	require.NoError(t, repo.Save(ctx, second))

	stored, err := repo.GetByMessageID(ctx, "tenant-1", "msg-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.RouteImmediate, stored.Decision)

	count, err := infra.MongoDB.Collection("processing_results").CountDocuments(ctx, map[string]interface{}{
		"tenant_id": "tenant-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestResultsRepository_GetMissingReturnsNil(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	repo := results.NewRepository(infra.MongoDB)

	stored, err := repo.GetByMessageID(context.Background(), "tenant-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestResultsRepository_DecisionCounts(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	ctx := context.Background()

	require.NoError(t, migrations.EnsureMongoCollection(ctx, infra.MongoDB))
	repo := results.NewRepository(infra.MongoDB)

	now := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, createTestResult("msg-1", "tenant-1", models.RouteImmediate, now)))
	require.NoError(t, repo.Save(ctx, createTestResult("msg-2", "tenant-1", models.RouteDigest, now)))
	require.NoError(t, repo.Save(ctx, createTestResult("msg-3", "tenant-1", models.RouteDigest, now)))
	require.NoError(t, repo.Save(ctx, createTestResult("msg-old", "tenant-1", models.RouteSpam, now.Add(-48*time.Hour))))
	require.NoError(t, repo.Save(ctx, createTestResult("msg-other", "tenant-2", models.RouteImmediate, now)))

	counts, err := repo.DecisionCounts(ctx, "tenant-1", now.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts["immediate"])
	assert.Equal(t, int64(2), counts["digest"])
	assert.NotContains(t, counts, "spam")
}
