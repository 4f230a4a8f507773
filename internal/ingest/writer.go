package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// Writer replaces store tables with the contents of fetched sheets.
type Writer struct {
	db      *sql.DB
	dialect store.Dialect
}

func NewWriter(db *sql.DB, dialect store.Dialect) *Writer {
	return &Writer{db: db, dialect: dialect}
}

// TableReport describes one rewritten table.
type TableReport struct {
	Sheet   string
	Table   string
	Columns []string
	Types   []ColumnType
	Rows    int
}

// Report summarises a write.
type Report struct {
	Tables  []TableReport
	Skipped []string
}

// TotalRows counts rows across every written table.
func (r Report) TotalRows() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Write drops and recreates one table per sheet inside a single
// transaction. Sheets with no rows, no usable headers or a name without
// letters or digits are skipped.
func (w *Writer) Write(ctx context.Context, sheets []Sheet) (Report, error) {
	var report Report

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return report, errx.WrapStore(fmt.Errorf("begin sync transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	for _, sheet := range sheets {
		table := SanitizeTableName(sheet.Name)
		columns := sheet.Columns()
		switch {
		case len(sheet.Rows) == 0:
			logx.Warn().Str("sheet", sheet.Name).Msg("Skipping empty sheet")
			report.Skipped = append(report.Skipped, sheet.Name)
			continue
		case len(columns) == 0:
			logx.Warn().Str("sheet", sheet.Name).Msg("Skipping sheet without column headers")
			report.Skipped = append(report.Skipped, sheet.Name)
			continue
		case table == "":
			logx.Warn().Str("sheet", sheet.Name).Msg("Skipping sheet with unusable name")
			report.Skipped = append(report.Skipped, sheet.Name)
			continue
		}

		types := InferColumnTypes(sheet.Rows, columns)
		if err := w.writeTable(ctx, tx, table, columns, types, sheet.Rows); err != nil {
			return Report{}, errx.WrapStore(fmt.Errorf("write table %s: %w", table, err))
		}

		logx.Info().
			Str("sheet", sheet.Name).
			Str("table", table).
			Int("rows", len(sheet.Rows)).
			Msg("Table written")
		report.Tables = append(report.Tables, TableReport{
			Sheet:   sheet.Name,
			Table:   table,
			Columns: columns,
			Types:   types,
			Rows:    len(sheet.Rows),
		})
	}

	if err := tx.Commit(); err != nil {
		return Report{}, errx.WrapStore(fmt.Errorf("commit sync transaction: %w", err))
	}
	return report, nil
}

func (w *Writer) writeTable(ctx context.Context, tx *sql.Tx, table string, columns []string, types []ColumnType, rows []Row) error {
	quotedTable := store.QuoteIdent(table)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quotedTable); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(w.dialect, table, columns, types)); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(w.dialect, table, columns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			v, _ := row.Get(col)
			args[j] = types[j].convert(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return nil
}

func createTableSQL(d store.Dialect, table string, columns []string, types []ColumnType) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = store.QuoteIdent(col) + " " + types[i].sqlType(d)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", store.QuoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(d store.Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = store.QuoteIdent(col)
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		store.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// SanitizeTableName keeps only letters and digits.
func SanitizeTableName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
}
