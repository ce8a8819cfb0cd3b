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

const trelloDefaultBaseURL = "https://api.trello.com/1"

// NewTrelloCards returns a source streaming every card on the configured
// board. Trello authenticates with key/token query parameters and returns
// the full card list in one response.
func NewTrelloCards(cfg config.TrelloConfig, opts ...RESTOption) *RESTSource {
	base := cfg.BaseURL
	if base == "" {
		base = trelloDefaultBaseURL
	}
	options := []RESTOption{
		WithAuth(&AuthConfig{
			Type:   "query",
			Params: map[string]string{"key": cfg.Key, "token": cfg.Token},
		}),
		WithQueryParams(map[string]string{
			"fields": "name,desc,due,dateLastActivity,idList,labels,closed",
		}),
	}
	options = append(options, opts...)
	return NewRESTSource(fmt.Sprintf("%s/boards/%s/cards", base, cfg.BoardID), options...)
}

// FetchTrelloCards extracts the raw Trello card table for the jobs board.
func FetchTrelloCards(ctx context.Context, cfg config.TrelloConfig) (core.Table, error) {
	return core.ReadAll(ctx, NewTrelloCards(cfg))
}
