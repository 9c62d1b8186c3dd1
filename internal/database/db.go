package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/models"
)

// connectTimeout bounds how long startup keeps retrying an unreachable server
const connectTimeout = 30 * time.Second

// DB represents a database connection
type DB struct {
	*sql.DB
}

var _ models.PredictionJournal = (*DB)(nil)

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string
	Name     string `default:"goldpredictor"`
	SSLMode  string `split_words:"true" default:"disable"`
}

// Enabled reports whether a database host is configured.
func (p ConnectionParams) Enabled() bool {
	return p.Host != ""
}

// DSN returns the lib/pq key/value connection string with every value quoted.
func (p ConnectionParams) DSN() string {
	pairs := []struct{ key, value string }{
		{"host", p.Host},
		{"port", p.Port},
		{"user", p.User},
		{"password", p.Password},
		{"dbname", p.Name},
		{"sslmode", p.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv.key+"="+quoteValue(kv.value))
	}
	return strings.Join(parts, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	return NewFromDSN(ctx, params.DSN())
}

// NewFromDSN opens dsn, waits for the server to answer and creates the schema.
func NewFromDSN(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// the server may still be starting next to us
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = connectTimeout
	err = backoff.Retry(func() error {
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("Database not ready, retrying")
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			features JSONB NOT NULL,
			price_usd DOUBLE PRECISION NOT NULL,
			price_inr DOUBLE PRECISION NOT NULL,
			rate DOUBLE PRECISION NOT NULL,
			rate_source TEXT NOT NULL,
			rate_warning TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS predictions_created_at_idx ON predictions (created_at DESC)
	`)
	return err
}

// SavePrediction appends one prediction to the journal
func (db *DB) SavePrediction(ctx context.Context, p models.Prediction) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}

	var warning sql.NullString
	if p.Rate.Warning != "" {
		warning = sql.NullString{String: p.Rate.Warning, Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO predictions (
			id, features, price_usd, price_inr, rate, rate_source, rate_warning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID, features, p.PriceUSD, p.PriceINR, p.Rate.Rate, p.Rate.Source, warning, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting prediction %s: %w", p.ID, err)
	}
	return nil
}

// RecentPredictions returns up to limit predictions, newest first
func (db *DB) RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, features, price_usd, price_inr, rate, rate_source, rate_warning, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		var (
			p        models.Prediction
			features []byte
			warning  sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &features, &p.PriceUSD, &p.PriceINR,
			&p.Rate.Rate, &p.Rate.Source, &warning, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decoding features of %s: %w", p.ID, err)
		}
		if warning.Valid {
			p.Rate.Warning = warning.String
		}
		p.Rate.FetchedAt = p.CreatedAt
		out = append(out, p)
	}

	return out, rows.Err()
}

// Ping checks the connection
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
