package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"

	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(cfg.DSN) == "" && dialect != DialectDuckDB {
		return nil, "", fmt.Errorf("store dsn is empty")
	}

	db, err := sql.Open(string(dialect), cfg.DSN)
	if err != nil {
		return nil, "", errx.WrapStore(fmt.Errorf("open %s: %w", dialect, err))
	}
	// every connection to an in-memory sqlite database is a different database
	if dialect == DialectSQLite && strings.Contains(cfg.DSN, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", errx.WrapStore(fmt.Errorf("ping %s: %w", dialect, err))
	}

	logx.Debug().Str("driver", string(dialect)).Msg("Connected to store")
	return db, dialect, nil
}
