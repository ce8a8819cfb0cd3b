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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

const sheetsDefaultBaseURL = "https://sheets.googleapis.com/v4"

// SheetsSource implements core.Source over the Google Sheets values API.
// Sheets responses are row arrays rather than objects: the first row is
// treated as the header and subsequent rows become records keyed by it,
// mirroring how a CSV file is read.
type SheetsSource struct {
	cfg    config.SheetsConfig
	client *http.Client

	rows    []core.Record
	index   int
	fetched bool
}

// NewSheetJobs returns a source for the manually maintained jobs sheet.
func NewSheetJobs(cfg config.SheetsConfig) *SheetsSource {
	return &SheetsSource{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Read implements core.Source.
func (s *SheetsSource) Read(ctx context.Context) (core.Record, error) {
	if !s.fetched {
		if err := s.fetch(ctx); err != nil {
			return nil, err
		}
		s.fetched = true
	}
	if s.index >= len(s.rows) {
		return nil, io.EOF
	}
	rec := s.rows[s.index]
	s.index++
	return rec, nil
}

// Close implements core.Source.
func (s *SheetsSource) Close() error { return nil }

func (s *SheetsSource) fetch(ctx context.Context) error {
	base := s.cfg.BaseURL
	if base == "" {
		base = sheetsDefaultBaseURL
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?key=%s",
		base, s.cfg.SpreadsheetID, url.PathEscape(s.cfg.Range), url.QueryEscape(s.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RESTError{Op: "request", URL: endpoint, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &RESTError{Op: "request", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &RESTError{Op: "status", StatusCode: resp.StatusCode, URL: endpoint,
			Err: fmt.Errorf("unexpected response")}
	}

	var payload struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &RESTError{Op: "parse", URL: endpoint, Err: err}
	}
	s.rows = rowsToRecords(payload.Values)
	return nil
}

// rowsToRecords converts a header row plus data rows into records. Header
// names are normalised to snake_case; short rows leave trailing fields
// unset.
func rowsToRecords(values [][]interface{}) []core.Record {
	if len(values) < 2 {
		return nil
	}
	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = normaliseHeader(fmt.Sprint(cell))
	}

	records := make([]core.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(core.Record, len(header))
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}
	return records
}

func normaliseHeader(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, " ", "_")
}

// FetchSheetJobs extracts the raw jobs table maintained in Google Sheets.
func FetchSheetJobs(ctx context.Context, cfg config.SheetsConfig) (core.Table, error) {
	return core.ReadAll(ctx, NewSheetJobs(cfg))
}
