//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// postgres.go - PostgreSQL warehouse store
package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

// PostgresError wraps PostgreSQL store errors with context about the
// operation and table.
type PostgresError struct {
	Op    string
	Table string
	Err   error
}

func (e *PostgresError) Error() string {
	return fmt.Sprintf("postgres store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PostgresError) Unwrap() error {
	return e.Err
}

// PostgresStore implements Store on a PostgreSQL analytical database.
// Tables are replaced transactionally: drop, recreate with a schema
// inferred from the data, batch insert, commit.
type PostgresStore struct {
	db     *sql.DB
	schema string
}

// NewPostgresStore opens a connection pool against the configured DSN.
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, &PostgresError{Op: "connect", Err: err}
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return &PostgresStore{db: db, schema: schema}, nil
}

// SaveTable implements Store.
func (s *PostgresStore) SaveTable(ctx context.Context, name string, table core.Table) error {
	cols := table.Columns()
	if len(cols) == 0 {
		return &PostgresError{Op: "save", Table: name, Err: fmt.Errorf("table has no columns")}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PostgresError{Op: "begin", Table: name, Err: err}
	}
	defer tx.Rollback()

	qualified := s.qualify(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qualified); err != nil {
		return &PostgresError{Op: "drop", Table: name, Err: err}
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(qualified, cols, table)); err != nil {
		return &PostgresError{Op: "create", Table: name, Err: err}
	}

	insert := insertSQL(qualified, cols)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return &PostgresError{Op: "prepare", Table: name, Err: err}
	}
	defer stmt.Close()

	for _, rec := range table {
		args := make([]interface{}, len(cols))
		for i, col := range cols {
			args[i] = bindValue(rec[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &PostgresError{Op: "insert", Table: name, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PostgresError{Op: "commit", Table: name, Err: err}
	}
	return nil
}

// GetTable implements Store.
func (s *PostgresStore) GetTable(ctx context.Context, name string) (core.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.qualify(name))
	if err != nil {
		return nil, &PostgresError{Op: "query", Table: name, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &PostgresError{Op: "columns", Table: name, Err: err}
	}

	var table core.Table
	values := make([]interface{}, len(cols))
	scan := make([]interface{}, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, &PostgresError{Op: "scan", Table: name, Err: err}
		}
		rec := make(core.Record, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		table = append(table, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &PostgresError{Op: "read", Table: name, Err: err}
	}
	return table, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) qualify(name string) string {
	return quoteIdent(s.schema) + "." + quoteIdent(name)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL infers a column type from the first non-nil value seen in
// each column: double precision for numbers, boolean for bools, text for
// everything else.
func createTableSQL(qualified string, cols []string, table core.Table) string {
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col) + " " + columnType(col, table)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(defs, ", "))
}

func columnType(col string, table core.Table) string {
	for _, rec := range table {
		switch rec[col].(type) {
		case nil:
			continue
		case float64, float32, int, int64:
			return "double precision"
		case bool:
			return "boolean"
		default:
			return "text"
		}
	}
	return "text"
}

// bindValue flattens values the driver cannot bind directly. Nested
// structures from raw API payloads are stored as JSON text.
func bindValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, bool, int, int64, float32, float64, string, []byte:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func insertSQL(qualified string, cols []string) string {
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(quoted, ", "), strings.Join(params, ", "))
}
