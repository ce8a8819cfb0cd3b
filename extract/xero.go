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

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

const xeroDefaultBaseURL = "https://api.xero.com/api.xro/2.0"

// NewXeroQuotes returns a source streaming quotes from Xero. Responses nest
// the quote array under "Quotes" and paginate by page number.
func NewXeroQuotes(cfg config.XeroConfig, opts ...RESTOption) *RESTSource {
	base := cfg.BaseURL
	if base == "" {
		base = xeroDefaultBaseURL
	}
	options := []RESTOption{
		WithAuth(&AuthConfig{
			Type:    "bearer",
			Token:   cfg.Token,
			Headers: map[string]string{"Xero-Tenant-Id": cfg.TenantID},
		}),
		WithPagination(&PaginationConfig{
			Type:      "page",
			PageParam: "page",
			PageSize:  100,
		}),
		WithDataPath("Quotes"),
	}
	options = append(options, opts...)
	return NewRESTSource(base+"/Quotes", options...)
}

// FetchXeroQuotes extracts the raw Xero quote table.
func FetchXeroQuotes(ctx context.Context, cfg config.XeroConfig) (core.Table, error) {
	return core.ReadAll(ctx, NewXeroQuotes(cfg))
}
