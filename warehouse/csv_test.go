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

package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

func TestCSVStoreRoundTrip(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	table := core.Table{
		{"job_ref": "DR-1042", "title": "Clear culvert", "agreed_price": 4200.0},
		{"job_ref": "DR-1043", "title": "Relining"},
	}
	require.NoError(t, store.SaveTable(ctx, "jobs", table))

	got, err := store.GetTable(ctx, "jobs")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "DR-1042", got[0].String("job_ref"))
	assert.Equal(t, "Clear culvert", got[0].String("title"))
	// CSV round-trips everything as strings.
	assert.Equal(t, 4200.0, got[0].Float("agreed_price"))
	assert.Equal(t, "", got[1].String("agreed_price"))
}

func TestCSVStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	store := NewCSVStore(dir)

	require.NoError(t, store.SaveTable(context.Background(), "quotes", core.Table{{"a": "1"}}))

	_, err := os.Stat(filepath.Join(dir, "quotes.csv"))
	assert.NoError(t, err)
}

func TestCSVStoreOverwrites(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveTable(ctx, "jobs", core.Table{{"a": "old"}, {"a": "old"}}))
	require.NoError(t, store.SaveTable(ctx, "jobs", core.Table{{"a": "new"}}))

	got, err := store.GetTable(ctx, "jobs")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].String("a"))
}

func TestCSVStoreMissingTable(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	_, err := store.GetTable(context.Background(), "ghost")

	var cerr *CSVError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "open", cerr.Op)
}

func TestCSVStoreEmptyTable(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.SaveTable(ctx, "labour", core.Table{}))
	got, err := store.GetTable(ctx, "labour")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenSelectsDestination(t *testing.T) {
	cfg := config.Default()
	cfg.CSV.Dir = t.TempDir()

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*CSVStore)
	assert.True(t, ok)
}

func TestOpenRejectsUnknownDestination(t *testing.T) {
	cfg := &config.Config{Destination: "tape"}
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
