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
	"time"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/core"
)

const floatDefaultBaseURL = "https://api.float.com/v3"

// NewFloatTasks returns a source streaming scheduled tasks from Float.
// Float uses bearer auth and page-numbered pagination, and rate-limits
// aggressively, so requests are spaced out.
func NewFloatTasks(cfg config.FloatConfig, opts ...RESTOption) *RESTSource {
	base := cfg.BaseURL
	if base == "" {
		base = floatDefaultBaseURL
	}
	options := []RESTOption{
		WithAuth(&AuthConfig{Type: "bearer", Token: cfg.Token}),
		WithPagination(&PaginationConfig{
			Type:       "page",
			PageParam:  "page",
			LimitParam: "per-page",
			PageSize:   200,
		}),
		WithRateLimit(300 * time.Millisecond),
	}
	options = append(options, opts...)
	return NewRESTSource(base+"/tasks", options...)
}

// FetchFloatTasks extracts the raw Float scheduled-task table.
func FetchFloatTasks(ctx context.Context, cfg config.FloatConfig) (core.Table, error) {
	return core.ReadAll(ctx, NewFloatTasks(cfg))
}
