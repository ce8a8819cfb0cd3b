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

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

// NewSimproQuotes returns a source streaming quotes from Simpro for the
// configured company.
func NewSimproQuotes(cfg config.SimproConfig, opts ...RESTOption) *RESTSource {
	options := []RESTOption{
		WithAuth(&AuthConfig{Type: "bearer", Token: cfg.Token}),
		WithPagination(&PaginationConfig{
			Type:       "page",
			PageParam:  "page",
			LimitParam: "pageSize",
			PageSize:   250,
		}),
	}
	options = append(options, opts...)
	return NewRESTSource(
		fmt.Sprintf("%s/api/v1.0/companies/%s/quotes/", cfg.BaseURL, cfg.CompanyID),
		options...,
	)
}

// FetchSimproQuotes extracts the raw Simpro quote table.
func FetchSimproQuotes(ctx context.Context, cfg config.SimproConfig) (core.Table, error) {
	return core.ReadAll(ctx, NewSimproQuotes(cfg))
}
