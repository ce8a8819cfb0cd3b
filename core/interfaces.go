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

package core

import (
	"context"
	"errors"
	"io"
)

// Source defines the interface for data extraction.
// Implementations stream records from a source system (e.g., Trello, Float,
// Xero, a warehouse table).
type Source interface {
	// Read returns the next record or io.EOF when no more records are available.
	Read(ctx context.Context) (Record, error)
	// Close releases any resources held by the data source.
	Close() error
}

// ReadAll drains a Source into a Table and closes it. The source's Close
// error is reported only when reading itself succeeded.
func ReadAll(ctx context.Context, src Source) (Table, error) {
	var table Table
	for {
		rec, err := src.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			src.Close()
			return nil, err
		}
		table = append(table, rec)
	}
	if err := src.Close(); err != nil {
		return nil, err
	}
	return table, nil
}
