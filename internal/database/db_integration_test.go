//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Alias1177/GoldPredictor/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("goldpredictor"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestJournal_SaveAndRecent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := models.Prediction{
		ID:        "a",
		Features:  models.DefaultFeatures,
		PriceUSD:  1900,
		PriceINR:  160550,
		Rate:      models.RateQuote{Rate: 84.5, Source: models.RateSourceStatic, Warning: "fallback"},
		CreatedAt: base,
	}
	second := models.Prediction{
		ID:        "b",
		Features:  models.Features{SPX: 4300, USO: 70, EURUSD: 1.1, SLV: 23},
		PriceUSD:  2000,
		PriceINR:  166000,
		Rate:      models.RateQuote{Rate: 83, Source: models.RateSourcePrimary},
		CreatedAt: base.Add(time.Minute),
	}

	require.NoError(t, db.SavePrediction(ctx, first))
	require.NoError(t, db.SavePrediction(ctx, second))

	got, err := db.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID, "newest first")
	assert.Equal(t, second.Features, got[0].Features)
	assert.Empty(t, got[0].Rate.Warning)

	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "fallback", got[1].Rate.Warning)
	assert.Equal(t, models.RateSourceStatic, got[1].Rate.Source)
	assert.InDelta(t, 160550.0, got[1].PriceINR, 1e-9)
	assert.True(t, base.Equal(got[1].CreatedAt))

	limited, err := db.RecentPredictions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.NoError(t, db.Ping(ctx))
}

func TestJournal_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := models.Prediction{ID: "dup", Rate: models.RateQuote{Rate: 84.5, Source: models.RateSourcePrimary}, CreatedAt: time.Now()}
	require.NoError(t, db.SavePrediction(ctx, p))
	assert.Error(t, db.SavePrediction(ctx, p))
}
