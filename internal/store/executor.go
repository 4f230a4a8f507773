package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// QueryExecutor runs SQL candidates. Implementations never return a Go
// error: every failure becomes a failed model.QueryResult.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) model.QueryResult
}

// Executor runs queries through database/sql.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	maxRows int
}

// NewExecutor creates an executor. A zero timeout disables the per-query deadline.
func NewExecutor(db *sql.DB, timeout time.Duration, maxRows int) *Executor {
	return &Executor{db: db, timeout: timeout, maxRows: maxRows}
}

// Execute runs a single statement and serializes its rows.
func (e *Executor) Execute(ctx context.Context, query string) (result model.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "executor").Msgf("panic recovered: %v", r)
			result = model.Failure(fmt.Sprintf("query execution panicked: %v", r))
		}
	}()

	if strings.TrimSpace(query) == "" {
		return model.Failure("empty query")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return model.Failure(describeError(ctx, err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return model.Failure(describeError(ctx, err))
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return model.Failure(describeError(ctx, err))
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return model.Failure(describeError(ctx, err))
	}

	logx.Debug().Int("rows", len(data)).Int("columns", len(columns)).Msg("Query executed")
	return model.Success(FormatRows(columns, data, e.maxRows))
}

func describeError(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("query timed out: %v", err)
	}
	return err.Error()
}

var _ QueryExecutor = (*Executor)(nil)
