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

// parquet.go - Parquet export of pipeline tables
package warehouse

import (
	"fmt"
	"os"
	"sort"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/stormworks/drainpipe/core"
)

// ParquetError wraps parquet export errors with context.
type ParquetError struct {
	Op  string
	Err error
}

func (e *ParquetError) Error() string {
	return fmt.Sprintf("parquet export %s: %v", e.Op, e.Err)
}

func (e *ParquetError) Unwrap() error {
	return e.Err
}

// ExportParquet writes a table to a Snappy-compressed parquet file for
// hand-off to external analysis tools. The schema is inferred per column
// from the first non-nil value: bool, float64 for any numeric, string for
// everything else.
func ExportParquet(path string, table core.Table) error {
	if len(table) == 0 {
		return &ParquetError{Op: "schema", Err: fmt.Errorf("empty table")}
	}

	cols := table.Columns()
	sort.Strings(cols)

	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col, Type: inferArrowType(col, table), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	alloc := memory.NewGoAllocator()
	builders := make([]array.Builder, len(fields))
	for i, field := range fields {
		builders[i] = array.NewBuilder(alloc, field.Type)
		defer builders[i].Release()
	}

	for _, rec := range table {
		for i, col := range cols {
			appendValue(builders[i], rec[col])
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
		defer arrays[i].Release()
	}
	record := array.NewRecord(schema, arrays, int64(len(table)))
	defer record.Release()
	arrowTable := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer arrowTable.Release()

	f, err := os.Create(path)
	if err != nil {
		return &ParquetError{Op: "create", Err: err}
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(arrowTable, f, int64(len(table)), props, pqarrow.DefaultWriterProps()); err != nil {
		return &ParquetError{Op: "write", Err: err}
	}
	return f.Close()
}

func inferArrowType(col string, table core.Table) arrow.DataType {
	for _, rec := range table {
		switch rec[col].(type) {
		case nil:
			continue
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case float64, float32, int, int64:
			return arrow.PrimitiveTypes.Float64
		default:
			return arrow.BinaryTypes.String
		}
	}
	return arrow.BinaryTypes.String
}

func appendValue(builder array.Builder, value interface{}) {
	if value == nil {
		builder.AppendNull()
		return
	}
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Float64Builder:
		switch v := value.(type) {
		case float64:
			b.Append(v)
		case float32:
			b.Append(float64(v))
		case int:
			b.Append(float64(v))
		case int64:
			b.Append(float64(v))
		default:
			b.AppendNull()
		}
	case *array.StringBuilder:
		b.Append(fmt.Sprint(value))
	default:
		builder.AppendNull()
	}
}
