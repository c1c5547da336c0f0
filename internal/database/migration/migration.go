package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.document_version"

var steps = []migrationStep{
	{
		Name: "create_table_client",
		SQL: `CREATE TABLE IF NOT EXISTS client (
  id              TEXT        PRIMARY KEY,
  name            TEXT        NOT NULL,
  email           TEXT        NOT NULL UNIQUE,
  access_key_hash TEXT        NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_apps",
		SQL: `CREATE TABLE IF NOT EXISTS apps (
  id         TEXT        PRIMARY KEY,
  name       TEXT        NOT NULL,
  client_id  TEXT        NOT NULL REFERENCES client (id) ON DELETE CASCADE,
  data_keys  JSONB       NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (client_id, name)
);`,
	},
	{
		Name: "create_table_document",
		SQL: `CREATE TABLE IF NOT EXISTS document (
  id         TEXT        PRIMARY KEY,
  app_id     TEXT        NOT NULL REFERENCES apps (id) ON DELETE CASCADE,
  doc_title  TEXT        NOT NULL,
  doc_type   TEXT        NOT NULL,
  doc_path   TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (app_id, doc_title, doc_type)
);`,
	},
	{
		Name: "create_index_document_app_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_app_id ON document (app_id);`,
	},
	{
		Name: "create_table_document_version",
		SQL: `CREATE TABLE IF NOT EXISTS document_version (
  doc_id      TEXT        NOT NULL REFERENCES document (id),
  version_num INTEGER     NOT NULL CHECK (version_num > 0),
  meta_data   TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (doc_id, version_num)
);`,
	},
}

// EnsureMigrated creates the schema unless the sentinel table already exists.
// Every step is idempotent, so a partially applied schema is completed on the next run.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("reason", "schema already exists"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
