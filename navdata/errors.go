// navdata/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import "errors"

var (
	ErrMalformedRow     = errors.New("malformed row")
	ErrInvalidCacheSize = errors.New("procedure cache size must be positive")
	ErrUnknownAirway    = errors.New("Unknown airway")
	ErrNotOnAirway      = errors.New("Fix is not on the airway")
	ErrNoAirwayPath     = errors.New("No path along the airway")
)
