package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
)

// CacheRepository is the postgres variant of the classification cache.
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db, now: time.Now}
}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// Get returns the live entry or nil on miss (lazy expiry).
func (r *CacheRepository) Get(ctx context.Context, fingerprint string, typ domain.AnalysisType) (*domain.CacheEntry, error) {
	const q = `
SELECT content_hash, analysis_type, input_data, output_data, model_used, confidence_score, created_at, expires_at
FROM analysis_cache
WHERE content_hash=$1 AND analysis_type=$2 AND expires_at > $3
LIMIT 1;`

	row := r.db.QueryRowContext(ctx, q, fingerprint, typ, r.now())

	var e domain.CacheEntry
	if err := row.Scan(&e.Fingerprint, &e.AnalysisType, &e.InputData, &e.OutputData,
		&e.ModelVersion, &e.Confidence, &e.CreatedAt, &e.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.CacheError{Op: "get", Err: err}
	}
	return &e, nil
}

// Put upserts via ON CONFLICT so concurrent identical requests collapse to
// one live row.
func (r *CacheRepository) Put(ctx context.Context, e *domain.CacheEntry) error {
	const q = `
INSERT INTO analysis_cache
  (content_hash, analysis_type, input_data, output_data, model_used, confidence_score, created_at, expires_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (content_hash, analysis_type) DO UPDATE SET
  input_data = EXCLUDED.input_data,
  output_data = EXCLUDED.output_data,
  model_used = EXCLUDED.model_used,
  confidence_score = EXCLUDED.confidence_score,
  created_at = EXCLUDED.created_at,
  expires_at = EXCLUDED.expires_at;`

	created := e.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.Fingerprint, e.AnalysisType, e.InputData, e.OutputData,
		e.ModelVersion, e.Confidence, created, e.ExpiresAt,
	)
	if err != nil {
		return &domain.CacheError{Op: "put", Err: err}
	}
	return nil
}
