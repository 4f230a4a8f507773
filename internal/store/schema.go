package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

const noTables = "No tables found in the database."

// SchemaProvider exposes table/column metadata as text for generation prompts.
type SchemaProvider interface {
	DescribeSchema(ctx context.Context) (string, error)
}

// SQLSchemaProvider introspects the store through database/sql.
type SQLSchemaProvider struct {
	db         *sql.DB
	dialect    Dialect
	sampleRows int
}

// NewSchemaProvider creates a provider that lists every user table with its
// columns and up to sampleRows example rows.
func NewSchemaProvider(db *sql.DB, dialect Dialect, sampleRows int) *SQLSchemaProvider {
	return &SQLSchemaProvider{db: db, dialect: dialect, sampleRows: sampleRows}
}

type tableInfo struct {
	Name    string
	Columns []columnInfo
}

type columnInfo struct {
	Name string
	Type string
}

// DescribeSchema renders one CREATE TABLE statement per table, each followed
// by a comment block of sample rows.
func (p *SQLSchemaProvider) DescribeSchema(ctx context.Context) (string, error) {
	tables, err := p.listTables(ctx)
	if err != nil {
		return "", errx.WrapStore(fmt.Errorf("describe schema: %w", err))
	}
	if len(tables) == 0 {
		return noTables, nil
	}

	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(formatCreateTable(t))
		if p.sampleRows > 0 {
			// best effort: a table we cannot sample is still described
			sample, err := p.sampleTable(ctx, t)
			if err != nil {
				logx.Warn().Err(err).Str("table", t.Name).Msg("Failed to sample table rows")
				continue
			}
			sb.WriteString(sample)
		}
	}
	return sb.String(), nil
}

func (p *SQLSchemaProvider) listTables(ctx context.Context) ([]tableInfo, error) {
	if p.dialect == DialectSQLite {
		return p.listSQLiteTables(ctx)
	}
	return p.listInformationSchemaTables(ctx)
}

func (p *SQLSchemaProvider) listSQLiteTables(ctx context.Context) ([]tableInfo, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list tables: %w", err)
	}
	rows.Close()

	tables := make([]tableInfo, 0, len(names))
	for _, name := range names {
		cols, err := p.sqliteColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tableInfo{Name: name, Columns: cols})
	}
	return tables, nil
}

func (p *SQLSchemaProvider) sqliteColumns(ctx context.Context, table string) ([]columnInfo, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var c columnInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (p *SQLSchemaProvider) listInformationSchemaTables(ctx context.Context) ([]tableInfo, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position`, p.dialect.informationSchema())
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	var tables []tableInfo
	for rows.Next() {
		var table string
		var c columnInfo
		if err := rows.Scan(&table, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if n := len(tables); n == 0 || tables[n-1].Name != table {
			tables = append(tables, tableInfo{Name: table})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, c)
	}
	return tables, rows.Err()
}

func (p *SQLSchemaProvider) sampleTable(ctx context.Context, t tableInfo) (string, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", QuoteIdent(t.Name), p.sampleRows))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var lines []string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatValue(v)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("\n/*\n")
	sb.WriteString(fmt.Sprintf("%d rows from %s table:\n", len(lines), t.Name))
	sb.WriteString(strings.Join(columns, "\t") + "\n")
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}
	sb.WriteString("*/\n")
	return sb.String(), nil
}

func formatCreateTable(t tableInfo) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = "\t" + strings.TrimSpace(QuoteIdent(c.Name)+" "+c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)\n", QuoteIdent(t.Name), strings.Join(defs, ",\n"))
}

var _ SchemaProvider = (*SQLSchemaProvider)(nil)
