package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/internal/types"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("extraction not found")

type StoreConfig struct {
	ConnString  string
	TableName   string
	BatchSize   int
	SearchLimit int
}

// ResultStore keeps extraction results in Postgres with each document's lab
// values as a pgvector column, so reports with similar lab profiles can be
// looked up by distance.
type ResultStore struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

var _ types.ResultStore = (*ResultStore)(nil)

func NewWithConfig(config StoreConfig) (*ResultStore, error) {
	if config.TableName == "" {
		config.TableName = "extractions"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 50
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rs := &ResultStore{
		config: config,
		pool:   pool,
	}

	if err := rs.initialize(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return rs, nil
}

func (rs *ResultStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := rs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			result JSONB NOT NULL,
			lab_vector vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, rs.config.TableName, len(models.LabKeys))

	_, err = rs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_lab_vector_idx
		ON %s
		USING ivfflat (lab_vector vector_l2_ops)
		WITH (lists = 100)`,
		rs.config.TableName, rs.config.TableName)

	_, err = rs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Save writes every document in one transaction and returns their ids in
// input order. Documents whose ID is a UUID keep it; others get a new one.
func (rs *ResultStore) Save(ctx context.Context, docs []models.ProcessedDocument) ([]string, error) {
	tx, err := rs.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, success, result, lab_vector)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			success = EXCLUDED.success,
			result = EXCLUDED.result,
			lab_vector = EXCLUDED.lab_vector`,
		rs.config.TableName)

	ids := make([]string, 0, len(docs))
	for _, chunk := range batches(docs, rs.config.BatchSize) {
		batch := &pgx.Batch{}
		for _, doc := range chunk {
			id := recordID(doc.ID)
			payload, err := encodeResult(doc.Result)
			if err != nil {
				return nil, fmt.Errorf("failed to encode result for %s: %w", doc.Source, err)
			}
			batch.Queue(stmt,
				id,
				cleanText(doc.Source),
				doc.Result.Success,
				payload,
				pgvector.NewVector(doc.Result.LabValues.Vector()),
			)
			ids = append(ids, id)
		}

		br := tx.SendBatch(ctx, batch)
		for range chunk {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return nil, fmt.Errorf("failed to insert extraction: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return nil, fmt.Errorf("failed to insert extraction: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ids, nil
}

func (rs *ResultStore) Get(ctx context.Context, id string) (*types.StoredResult, error) {
	query := fmt.Sprintf(`
		SELECT id::text, source, result, created_at, 0::float8
		FROM %s
		WHERE id = $1`,
		rs.config.TableName)

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rec, err := scanResult(rs.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return rec, nil
}

// Similar returns successful extractions nearest to labs by L2 distance over
// the canonical lab key order. Missing values count as zero.
func (rs *ResultStore) Similar(ctx context.Context, labs models.LabValues, limit int) ([]types.StoredResult, error) {
	if limit <= 0 {
		limit = rs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id::text, source, result, created_at, lab_vector <-> $1 AS distance
		FROM %s
		WHERE success
		ORDER BY lab_vector <-> $1
		LIMIT $2`,
		rs.config.TableName)

	rows, err := rs.pool.Query(ctx, query, pgvector.NewVector(labs.Vector()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	var results []types.StoredResult
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

func (rs *ResultStore) Close() {
	if rs.pool != nil {
		rs.pool.Close()
	}
}

func scanResult(row pgx.Row) (*types.StoredResult, error) {
	var (
		rec     types.StoredResult
		payload []byte
		created time.Time
	)
	if err := row.Scan(&rec.ID, &rec.Source, &payload, &created, &rec.Distance); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	rec.CreatedAt = created
	return &rec, nil
}

func recordID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewString()
}

// encodeResult marshals r for a JSONB column. Postgres rejects NUL in both
// text and JSONB, and OCR output occasionally carries one.
func encodeResult(r models.ExtractionResult) ([]byte, error) {
	r.RawTextPreview = cleanText(r.RawTextPreview)
	r.Allergies = cleanText(r.Allergies)
	return json.Marshal(r)
}

func cleanText(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\x00", "")
}

func batches(docs []models.ProcessedDocument, size int) [][]models.ProcessedDocument {
	if size < 1 {
		size = 1
	}
	var out [][]models.ProcessedDocument
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		out = append(out, docs[start:end])
	}
	return out
}
