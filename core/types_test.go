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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordString(t *testing.T) {
	rec := Record{"name": "DR-1042", "hours": 8.0}
	assert.Equal(t, "DR-1042", rec.String("name"))
	assert.Equal(t, "", rec.String("hours"), "non-string yields empty")
	assert.Equal(t, "", rec.String("missing"))
}

func TestRecordFloat(t *testing.T) {
	rec := Record{
		"f":     4200.5,
		"i":     8,
		"i64":   int64(3),
		"s":     "4200",
		"s_pad": " 12.5 ",
		"junk":  "n/a",
		"b":     true,
	}
	assert.Equal(t, 4200.5, rec.Float("f"))
	assert.Equal(t, 8.0, rec.Float("i"))
	assert.Equal(t, 3.0, rec.Float("i64"))
	assert.Equal(t, 4200.0, rec.Float("s"))
	assert.Equal(t, 12.5, rec.Float("s_pad"))
	assert.Zero(t, rec.Float("junk"))
	assert.Zero(t, rec.Float("b"))
	assert.Zero(t, rec.Float("missing"))
}

func TestRecordClone(t *testing.T) {
	rec := Record{"a": 1}
	clone := rec.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, rec["a"])
}

func TestTableColumnsFirstAppearanceOrder(t *testing.T) {
	table := Table{
		{"b": 1},
		{"a": 1, "b": 2},
		{"c": 3},
	}
	assert.Equal(t, []string{"b", "a", "c"}, table.Columns())
}

type sliceSource struct {
	records []Record
	index   int
	readErr error
	closed  bool
}

func (s *sliceSource) Read(ctx context.Context) (Record, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.index >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.index]
	s.index++
	return rec, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func TestReadAll(t *testing.T) {
	src := &sliceSource{records: []Record{{"a": 1}, {"a": 2}}}
	table, err := ReadAll(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.True(t, src.closed)
}

func TestReadAllPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	src := &sliceSource{readErr: boom}
	_, err := ReadAll(context.Background(), src)
	assert.ErrorIs(t, err, boom)
	assert.True(t, src.closed)
}
