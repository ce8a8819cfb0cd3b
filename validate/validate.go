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

// Package validate performs data-quality checks on analytics tables before
// they are loaded. The pipeline runs it when the config validation toggle
// is on; a failing check fails the load task rather than writing a bad
// table over a good one.
package validate

import (
	"context"
	"fmt"

	"github.com/stormworks/drainpipe/core"
)

// TableRules describes the quality contract for one table.
type TableRules struct {
	MinRecords     int      // Minimum number of records required
	RequiredFields []string // Fields that must be present and non-nil in all records
	// MaxNullRate caps the fraction of nil values allowed per column
	// across non-required fields (0 disables the check).
	MaxNullRate float64
}

// ValidationError reports which table and rule failed.
type ValidationError struct {
	Table  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: table %q: %s", e.Table, e.Reason)
}

// Check validates a table against its rules using the given error
// strategy. With core.FailFast the first violation is returned; with
// core.CollectErrors every violation is gathered and reported together.
func Check(ctx context.Context, name string, table core.Table, rules TableRules, strategy core.ErrorStrategy) error {
	var violations []string
	report := func(reason string) error {
		if strategy == core.FailFast {
			return &ValidationError{Table: name, Reason: reason}
		}
		violations = append(violations, reason)
		return nil
	}

	if len(table) < rules.MinRecords {
		if err := report(fmt.Sprintf("insufficient records: got %d, need at least %d", len(table), rules.MinRecords)); err != nil {
			return err
		}
	}

	for _, field := range rules.RequiredFields {
		missing := 0
		for _, rec := range table {
			if v, ok := rec[field]; !ok || v == nil {
				missing++
			}
		}
		if missing > 0 {
			if err := report(fmt.Sprintf("required field %q missing or nil in %d of %d records", field, missing, len(table))); err != nil {
				return err
			}
		}
	}

	if rules.MaxNullRate > 0 && len(table) > 0 {
		nulls := make(map[string]int)
		for _, rec := range table {
			for k, v := range rec {
				if v == nil {
					nulls[k]++
				}
			}
		}
		for _, col := range table.Columns() {
			rate := float64(nulls[col]) / float64(len(table))
			if rate > rules.MaxNullRate {
				if err := report(fmt.Sprintf("column %q null rate %.2f exceeds %.2f", col, rate, rules.MaxNullRate)); err != nil {
					return err
				}
			}
		}
	}

	if len(violations) > 0 {
		reason := violations[0]
		if len(violations) > 1 {
			reason = fmt.Sprintf("%s (and %d more violations)", reason, len(violations)-1)
		}
		return &ValidationError{Table: name, Reason: reason}
	}
	return nil
}
