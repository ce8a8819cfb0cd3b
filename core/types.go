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

// Package core defines the data types shared by every stage of the Drainpipe
// ELT system: raw records extracted from source systems and the tables
// built from them.
package core

import (
	"strconv"
	"strings"
)

// Record represents a single data record moving through the pipeline.
// Each record is a map from field names to values, supporting heterogeneous data.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of a field as a string, or "" when the field is
// absent or not a string.
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Float returns the value of a field as a float64. Integer values are
// widened and numeric strings parsed (spreadsheet cells arrive as text);
// anything else yields 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// Table is an ordered collection of records sharing (loosely) one schema.
// It is the universal currency between extraction, transform, and load
// stages; the orchestration engine never inspects its contents.
type Table []Record

// Columns returns the union of field names across all records, ordered by
// first appearance.
func (t Table) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range t {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

