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

// csv.go - Local CSV directory store
package warehouse

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/stormworks/drainpipe/core"
)

// CSVError wraps CSV store errors with context.
type CSVError struct {
	Op    string
	Table string
	Err   error
}

func (e *CSVError) Error() string {
	return fmt.Sprintf("csv store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *CSVError) Unwrap() error {
	return e.Err
}

// CSVStore implements Store as one CSV file per table under a directory.
// It is the default destination for local development and for the office
// machines without warehouse access. All values round-trip as strings.
type CSVStore struct {
	dir string
}

// NewCSVStore creates a store rooted at dir. The directory is created on
// first save.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// SaveTable implements Store.
func (s *CSVStore) SaveTable(ctx context.Context, name string, table core.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &CSVError{Op: "mkdir", Table: name, Err: err}
	}

	cols := table.Columns()
	sort.Strings(cols)

	f, err := os.Create(s.path(name))
	if err != nil {
		return &CSVError{Op: "create", Table: name, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return &CSVError{Op: "write_header", Table: name, Err: err}
	}
	row := make([]string, len(cols))
	for _, rec := range table {
		for i, col := range cols {
			if v, ok := rec[col]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			} else {
				row[i] = ""
			}
		}
		if err := w.Write(row); err != nil {
			return &CSVError{Op: "write", Table: name, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &CSVError{Op: "flush", Table: name, Err: err}
	}
	return f.Close()
}

// GetTable implements Store. Values come back as strings; transforms that
// re-read staged tables must coerce types themselves.
func (s *CSVStore) GetTable(ctx context.Context, name string) (core.Table, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, &CSVError{Op: "open", Table: name, Err: err}
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, &CSVError{Op: "read", Table: name, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	table := make(core.Table, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(core.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		table = append(table, rec)
	}
	return table, nil
}

// Close implements Store.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}
