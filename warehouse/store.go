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

// Package warehouse persists pipeline tables. The orchestrator treats a
// Store as an opaque sink/source of named tables; which backend is used is
// a configuration choice, not a pipeline concern.
package warehouse

import (
	"context"
	"fmt"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

// Store reads and writes named tables. SaveTable replaces the table
// wholesale: pipeline loads are full refreshes, not appends.
type Store interface {
	SaveTable(ctx context.Context, name string, table core.Table) error
	GetTable(ctx context.Context, name string) (core.Table, error)
	Close() error
}

// Open returns the store selected by the configuration's destination.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Destination {
	case config.DestinationPostgres:
		return NewPostgresStore(cfg.Postgres)
	case config.DestinationCSV:
		return NewCSVStore(cfg.CSV.Dir), nil
	case config.DestinationS3:
		return NewS3Store(ctx, cfg.S3)
	case config.DestinationMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("warehouse: unknown destination %q", cfg.Destination)
	}
}
