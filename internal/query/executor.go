// Package query exposes the canonical table to the ad-hoc SQL collaborator.
// The table is loaded into an in-memory SQLite database under the fixed
// logical name "transactions" and served read-only; the package validates
// nothing beyond that, and SQL errors surface with their underlying message.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"fairsquare/internal/dataset"
	"fairsquare/internal/errors"
)

// TableName is the fixed logical name the canonical table is exposed under.
const TableName = "transactions"

// ResultSet is the structured outcome of an ad-hoc query.
type ResultSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Executor runs read-only SQL against one session's canonical table.
type Executor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutor loads the canonical table into a fresh in-memory database and
// switches it to query-only mode. The executor owns the database; callers
// must Close it.
func NewExecutor(ctx context.Context, table *dataset.CanonicalTable, logger *slog.Logger) (*Executor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errors.NewStorageError("failed to open in-memory database", err)
	}
	// A single connection keeps the in-memory database alive and visible.
	db.SetMaxOpenConns(1)

	if err := loadTable(ctx, db, table); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to set read-only mode", err)
	}

	logger.InfoContext(ctx, "query executor ready",
		slog.String("table", TableName),
		slog.Int("rows", table.Len()))

	return &Executor{db: db, logger: logger}, nil
}

// loadTable creates and fills the transactions table.
func loadTable(ctx context.Context, db *sql.DB, table *dataset.CanonicalTable) error {
	schema := fmt.Sprintf(`CREATE TABLE %s (
		date TEXT NOT NULL,
		sales REAL NOT NULL,
		product TEXT NOT NULL,
		channel TEXT NOT NULL,
		customer_type TEXT NOT NULL,
		city TEXT NOT NULL
	)`, TableName)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.NewStorageError("failed to create transactions table", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin load transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (date, sales, product, channel, customer_type, city) VALUES (?, ?, ?, ?, ?, ?)", TableName))
	if err != nil {
		return errors.NewStorageError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, r := range table.Records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Format("2006-01-02"), r.Sales, r.Product, r.Channel, r.CustomerType, r.City); err != nil {
			return errors.NewStorageError("failed to insert record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit load transaction", err)
	}
	return nil
}

// Query executes an arbitrary read-only statement and returns all rows as
// strings. Failures carry the database's own message; they are never hidden.
func (e *Executor) Query(ctx context.Context, sqlText string) (*ResultSet, error) {
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, errors.NewQueryError("query failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.NewQueryError("failed to read result columns", err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.NewQueryError("failed to scan result row", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryError("query iteration failed", err)
	}

	return result, nil
}

// Close releases the in-memory database.
func (e *Executor) Close() error {
	return e.db.Close()
}
