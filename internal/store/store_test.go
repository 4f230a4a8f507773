package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTasksDB returns an in-memory sqlite database with a small task sheet.
func newTasksDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE "Tasks" ("Task Description" TEXT, "Status" TEXT, "Priority" TEXT, "Hours" REAL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO "Tasks" VALUES
		('Write report', 'Completed', 'High', 2.5),
		('Review', 'Yes', 'H', 1),
		('Deploy', 'Pending', 'Low', NULL),
		('Docs', 'Done', 'L', 3)`)
	require.NoError(t, err)
	return db
}
