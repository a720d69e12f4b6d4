// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrDatabase      = errors.New("Invalid navigation data")
	ErrFieldCount    = errors.New("Wrong number of fields in procedure record")
	ErrFileNotFound  = errors.New("Procedure file not found")
	ErrLegStoreFull  = errors.New("Procedure leg store is full")
	ErrPartialLoad   = errors.New("Some procedure records could not be loaded")
	ErrUnknownRecord = errors.New("Unknown procedure record type")
)
