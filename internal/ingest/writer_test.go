package ingest

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
)

func newMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriterCreatesTypedTables(t *testing.T) {
	db := newMemoryDB(t)
	sheets, err := DecodeSheets([]byte(tasksExport))
	require.NoError(t, err)

	report, err := NewWriter(db, store.DialectSQLite).Write(context.Background(), sheets)

	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, "Tasks2026", report.Tables[0].Table)
	assert.Equal(t, []ColumnType{ColumnText, ColumnText, ColumnReal, ColumnText}, report.Tables[0].Types)
	assert.Equal(t, []string{"Archive"}, report.Skipped)
	assert.Equal(t, 2, report.TotalRows())

	var hours float64
	var owner sql.NullString
	err = db.QueryRow(`SELECT "Hours", "Owner" FROM Tasks2026 WHERE "Task Description" = 'Write report'`).Scan(&hours, &owner)
	require.NoError(t, err)
	assert.Equal(t, 2.5, hours)
	assert.False(t, owner.Valid)

	var typ string
	require.NoError(t, db.QueryRow(`SELECT type FROM pragma_table_info('Tasks2026') WHERE name = 'Hours'`).Scan(&typ))
	assert.Equal(t, "REAL", typ)
}

func TestWriterReplacesExistingTable(t *testing.T) {
	db := newMemoryDB(t)
	w := NewWriter(db, store.DialectSQLite)

	_, err := w.Write(context.Background(), []Sheet{{Name: "T", Rows: []Row{NewRow("a", "x"), NewRow("a", "y")}}})
	require.NoError(t, err)
	_, err = w.Write(context.Background(), []Sheet{{Name: "T", Rows: []Row{NewRow("b", "1")}}})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM T`).Scan(&n))
	assert.Equal(t, 1, n)
	var b int64
	require.NoError(t, db.QueryRow(`SELECT "b" FROM T`).Scan(&b))
	assert.Equal(t, int64(1), b)
}

func TestWriterSkipsUnusableSheets(t *testing.T) {
	db := newMemoryDB(t)

	report, err := NewWriter(db, store.DialectSQLite).Write(context.Background(), []Sheet{
		{Name: "Empty"},
		{Name: "NoHeaders", Rows: []Row{NewRow("", "x")}},
		{Name: "!!!", Rows: []Row{NewRow("a", "1")}},
	})

	require.NoError(t, err)
	assert.Empty(t, report.Tables)
	assert.Equal(t, []string{"Empty", "NoHeaders", "!!!"}, report.Skipped)
}

func TestWriterUsesDialectPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "Scores"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "Scores" ("name" TEXT, "points" BIGINT)`).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(`INSERT INTO "Scores" ("name", "points") VALUES ($1, $2)`)
	prep.ExpectExec().WithArgs("ana", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("bo", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err = NewWriter(db, store.DialectPostgres).Write(context.Background(), []Sheet{{
		Name: "Scores",
		Rows: []Row{NewRow("name", "ana", "points", "3"), NewRow("name", "bo", "points", "")},
	}})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = NewWriter(db, store.DialectSQLite).Write(context.Background(), []Sheet{{Name: "T", Rows: []Row{NewRow("a", "1")}}})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSanitizeTableName(t *testing.T) {
	assert.Equal(t, "Tasks2026", SanitizeTableName("Tasks 2026!"))
	assert.Equal(t, "Ventes", SanitizeTableName("Ventes_"))
	assert.Equal(t, "", SanitizeTableName("-- ;"))
}
