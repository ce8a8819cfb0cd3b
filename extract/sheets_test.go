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

package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormworks/drainpipe/config"
)

func TestSheetJobsHeaderRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/spreadsheets/sheet1/values/")
		assert.Equal(t, "api-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{
			"range": "Jobs!A1:D3",
			"values": [
				["Job Ref", "Crew", "Site Address", "Agreed Price"],
				["DR-1042", "Alpha", "12 Mill Rd", "4200"],
				["DR-1043", "Bravo", "8 Weir Ln"]
			]
		}`)
	}))
	defer server.Close()

	table, err := FetchSheetJobs(context.Background(), config.SheetsConfig{
		APIKey:        "api-key",
		SpreadsheetID: "sheet1",
		Range:         "Jobs!A1:D100",
		BaseURL:       server.URL,
	})
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "DR-1042", table[0].String("job_ref"))
	assert.Equal(t, "Alpha", table[0].String("crew"))
	assert.Equal(t, "12 Mill Rd", table[0].String("site_address"))

	// Short row: trailing columns are simply absent.
	assert.Equal(t, "DR-1043", table[1].String("job_ref"))
	assert.NotContains(t, table[1], "agreed_price")
}

func TestSheetJobsEmptySheet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"range": "Jobs!A1:D1", "values": []}`)
	}))
	defer server.Close()

	table, err := FetchSheetJobs(context.Background(), config.SheetsConfig{
		SpreadsheetID: "sheet1",
		Range:         "Jobs!A1:D100",
		BaseURL:       server.URL,
	})
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestSheetJobsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := FetchSheetJobs(context.Background(), config.SheetsConfig{
		SpreadsheetID: "sheet1",
		Range:         "Jobs!A1:D100",
		BaseURL:       server.URL,
	})
	var restErr *RESTError
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusForbidden, restErr.StatusCode)
}

func TestNormaliseHeader(t *testing.T) {
	tests := map[string]string{
		"Job Ref":       "job_ref",
		"  Crew ":       "crew",
		"Site Address":  "site_address",
		"AGREED PRICE":  "agreed_price",
		"already_snake": "already_snake",
	}
	for in, want := range tests {
		assert.Equal(t, want, normaliseHeader(in), "header %q", in)
	}
}
