// util/text.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strconv"
	"strings"
)

// Atof parses a floating point value after trimming surrounding blanks.
func Atof(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Atoi parses an integer value after trimming surrounding blanks.
func Atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func IsAllNumbers(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// FirstByte returns the first byte of s, or a blank if s is empty.
// Single-character columns in fixed-layout records are often empty.
func FirstByte(s string) byte {
	if len(s) == 0 {
		return ' '
	}
	return s[0]
}

// SplitFields splits s on whitespace into at most n fields; the last field
// holds the remainder of the line, with its interior blanks preserved.
// This matches the layout of X-Plane data files, where trailing
// free-text names may contain spaces.
func SplitFields(s string, n int) []string {
	var fields []string
	s = strings.TrimSpace(s)
	for s != "" && (n <= 0 || len(fields) < n-1) {
		i := strings.IndexAny(s, " \t")
		if i == -1 {
			break
		}
		fields = append(fields, s[:i])
		s = strings.TrimLeft(s[i:], " \t")
	}
	if s != "" {
		fields = append(fields, s)
	}
	return fields
}
