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

package transform

import (
	"sort"
	"strings"

	"github.com/stormworks/drainpipe/core"
)

// BuildCustomers derives the customer dimension from the merged quote
// table: one row per distinct customer with quote counts and won value.
func BuildCustomers(quotes core.Table) core.Table {
	type agg struct {
		name     string
		quotes   int
		accepted int
		wonValue float64
	}
	byID := make(map[string]*agg)

	for _, q := range quotes {
		name := strings.TrimSpace(q.String("customer"))
		if name == "" {
			continue
		}
		id := customerID(name)
		a, ok := byID[id]
		if !ok {
			a = &agg{name: name}
			byID[id] = a
		}
		a.quotes++
		if q.String("status") == QuoteStatusAccepted {
			a.accepted++
			a.wonValue += q.Float("total")
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(core.Table, 0, len(ids))
	for _, id := range ids {
		a := byID[id]
		out = append(out, core.Record{
			"customer_id":     id,
			"name":            a.name,
			"quote_count":     a.quotes,
			"accepted_count":  a.accepted,
			"won_quote_value": a.wonValue,
		})
	}
	return out
}

// customerID slugs a customer name so the same customer spelled with
// different casing or spacing collapses to one row.
func customerID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '&':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
