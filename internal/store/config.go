package store

import (
	"fmt"
	"strings"
	"time"
)

// Config describes the relational store the agent queries and ingestion writes to.
type Config struct {
	Driver         string        `envconfig:"STORE_DRIVER" default:"sqlite3"`
	DSN            string        `envconfig:"STORE_DSN" default:"sheets.db"`
	QueryTimeout   time.Duration `envconfig:"STORE_QUERY_TIMEOUT" default:"30s"`
	MaxResultRows  int           `envconfig:"STORE_MAX_RESULT_ROWS" default:"50"`
	SampleRows     int           `envconfig:"STORE_SAMPLE_ROWS" default:"3"`
	SchemaCacheTTL time.Duration `envconfig:"STORE_SCHEMA_CACHE_TTL" default:"30s"`
}

// Dialect identifies a supported database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
	DialectDuckDB   Dialect = "duckdb"
)

// ParseDialect accepts the driver name and a few common aliases.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite3", "sqlite":
		return DialectSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	case "duckdb":
		return DialectDuckDB, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

// DisplayName is the dialect name used in generation prompts.
func (d Dialect) DisplayName() string {
	switch d {
	case DialectPostgres:
		return "PostgreSQL"
	case DialectDuckDB:
		return "DuckDB"
	default:
		return "SQLite"
	}
}

// Placeholder returns the bind parameter for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// informationSchema is the schema holding user tables for
// information_schema based dialects.
func (d Dialect) informationSchema() string {
	if d == DialectDuckDB {
		return "main"
	}
	return "public"
}

// QuoteIdent wraps an identifier in double quotes, escaping embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
