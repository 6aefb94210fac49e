package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables when they do not exist yet. The composite
// primary key on analysis_cache is what makes Put an upsert instead of an
// insert.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_cache (
  content_hash     VARCHAR(64)  NOT NULL,
  analysis_type    VARCHAR(16)  NOT NULL,
  input_data       MEDIUMTEXT,
  output_data      MEDIUMBLOB   NOT NULL,
  model_used       VARCHAR(64)  NOT NULL,
  confidence_score DOUBLE       NOT NULL DEFAULT 0,
  created_at       DATETIME     NOT NULL,
  expires_at       DATETIME     NOT NULL,
  PRIMARY KEY (content_hash, analysis_type)
);`,
		`CREATE TABLE IF NOT EXISTS interactions (
  id               VARCHAR(64)  NOT NULL PRIMARY KEY,
  subject_id       VARCHAR(64)  NOT NULL,
  analysis_type    VARCHAR(16)  NOT NULL,
  primary_emotion  VARCHAR(32)  NOT NULL DEFAULT '',
  mood_score       INT          NOT NULL DEFAULT 0,
  cached           TINYINT(1)   NOT NULL DEFAULT 0,
  degraded         TINYINT(1)   NOT NULL DEFAULT 0,
  safety_tripped   TINYINT(1)   NOT NULL DEFAULT 0,
  matched_category VARCHAR(128) NOT NULL DEFAULT '',
  media_url        VARCHAR(512) NOT NULL DEFAULT '',
  processing_ms    BIGINT       NOT NULL DEFAULT 0,
  created_at       DATETIME     NOT NULL,
  KEY idx_interactions_subject (subject_id, created_at)
);`,
		`CREATE TABLE IF NOT EXISTS analysis_failures (
  id             BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  subject_id     VARCHAR(64)  NOT NULL,
  interaction_id VARCHAR(64)  NOT NULL DEFAULT '',
  phase          VARCHAR(32)  NOT NULL,
  message        TEXT         NOT NULL,
  created_at     DATETIME     NOT NULL,
  KEY idx_failures_subject (subject_id, created_at)
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
