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

// Package transform maps raw source tables into the analytics tables the
// dashboard consumes: jobs, projects, quotes, customers, and labour. Each
// function is pure: tables in, table out, no I/O.
package transform

import (
	"sort"
	"strings"

	"github.com/stormworks/drainpipe/core"
)

// Quote statuses normalised across Xero and Simpro.
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusDeclined = "declined"
)

// MergeQuotes combines Xero and Simpro quotes into one table with a common
// schema, de-duplicated by quote number. When both systems carry the same
// quote number the Xero record wins: Xero is the system quotes are invoiced
// from, so it holds the commercially authoritative state.
func MergeQuotes(xero, simpro core.Table) core.Table {
	byNumber := make(map[string]core.Record)
	var numbers []string

	add := func(rec core.Record, overwrite bool) {
		number := rec.String("quote_number")
		if number == "" {
			return
		}
		if _, seen := byNumber[number]; !seen {
			numbers = append(numbers, number)
		} else if !overwrite {
			return
		}
		byNumber[number] = rec
	}

	for _, rec := range xero {
		add(normaliseXeroQuote(rec), true)
	}
	for _, rec := range simpro {
		add(normaliseSimproQuote(rec), false)
	}

	sort.Strings(numbers)
	out := make(core.Table, 0, len(numbers))
	for _, number := range numbers {
		out = append(out, byNumber[number])
	}
	return out
}

func normaliseXeroQuote(rec core.Record) core.Record {
	customer := ""
	if contact, ok := rec["Contact"].(map[string]interface{}); ok {
		if name, ok := contact["Name"].(string); ok {
			customer = name
		}
	}
	return core.Record{
		"quote_number": rec.String("QuoteNumber"),
		"customer":     customer,
		"status":       NormaliseQuoteStatus(rec.String("Status")),
		"total":        rec.Float("Total"),
		"issued_date":  rec.String("Date"),
		"reference":    rec.String("Reference"),
		"source":       "xero",
	}
}

func normaliseSimproQuote(rec core.Record) core.Record {
	customer := ""
	if c, ok := rec["Customer"].(map[string]interface{}); ok {
		if name, ok := c["CompanyName"].(string); ok {
			customer = name
		}
	}
	return core.Record{
		"quote_number": rec.String("Name"),
		"customer":     customer,
		"status":       NormaliseQuoteStatus(rec.String("Status")),
		"total":        rec.Float("Total"),
		"issued_date":  rec.String("DateIssued"),
		"reference":    rec.String("Reference"),
		"source":       "simpro",
	}
}

// NormaliseQuoteStatus folds the two systems' status vocabularies into the
// four dashboard states. Unknown statuses are treated as sent: a quote we
// can see but cannot classify has at least left the building.
func NormaliseQuoteStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "draft", "in progress":
		return QuoteStatusDraft
	case "sent", "delivered", "quote: to be scheduled":
		return QuoteStatusSent
	case "accepted", "approved", "won", "converted":
		return QuoteStatusAccepted
	case "declined", "rejected", "lost", "archived":
		return QuoteStatusDeclined
	default:
		return QuoteStatusSent
	}
}
