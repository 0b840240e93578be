package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/peter-kozarec/rollstat/pkg/datasource"
)

// Reader streams one column of a DuckDB table (or parquet/csv path DuckDB can scan) as raw
// observations. column and table are inserted into the query verbatim.
type Reader struct {
	dataSourceName string
	db             *sql.DB
	rows           *sql.Rows

	table   string
	column  string
	orderBy string
}

type ReaderOption func(*Reader)

func WithOrderBy(expr string) ReaderOption {
	return func(r *Reader) {
		r.orderBy = expr
	}
}

func NewReader(dataSourceName, table, column string, options ...ReaderOption) *Reader {
	r := &Reader{
		dataSourceName: dataSourceName,
		table:          table,
		column:         column,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	if r.rows != nil {
		_ = r.rows.Close()
	}
	if r.db != nil {
		_ = r.db.Close()
	}
}

func (r *Reader) query() string {
	q := fmt.Sprintf(`SELECT %s FROM %s`, r.column, r.table)
	if r.orderBy != "" {
		q += " ORDER BY " + r.orderBy
	}
	return q
}

// Next yields the scanned column value as returned by the driver: float64, int32, int64,
// string or nil for NULL.
func (r *Reader) Next(ctx context.Context) (any, error) {
	if r.rows == nil {
		rows, err := r.db.QueryContext(ctx, r.query())
		if err != nil {
			return nil, fmt.Errorf("error preparing query: %w", err)
		}
		r.rows = rows
	}

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("error scanning rows: %w", err)
		}
		return nil, datasource.ErrEof
	}

	var value any
	if err := r.rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	return value, nil
}
