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

// ErrorStrategy defines how table and record validation reacts to
// violations.
type ErrorStrategy int

const (
	// FailFast stops on the first violation encountered.
	FailFast ErrorStrategy = iota
	// SkipErrors continues, dropping the offending records.
	SkipErrors
	// CollectErrors continues, gathering every violation for one combined
	// report.
	CollectErrors
)
