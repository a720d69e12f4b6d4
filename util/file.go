// util/file.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// The zstd Decoder's Close() method doesn't return an error and doesn't
// close the underlying file, so wrap the two together.
type zstdFileReader struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFileReader) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// OpenFile opens the specified file for reading; if it's zstd compressed
// (as indicated by a ".zst" extension), the returned reader handles
// decompression transparently.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderConcurrency(0))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &zstdFileReader{Decoder: zr, f: f}, nil
	}

	return f, nil
}

// ForEachLine calls fn for each line of the reader with its 1-based line
// number. Trailing carriage returns are removed. Iteration stops early if
// fn returns false.
func ForEachLine(r io.Reader, fn func(lineno int, line string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if l := len(line); l > 0 && line[l-1] == '\r' {
			line = line[:l-1]
		}
		if !fn(n, line) {
			break
		}
	}
	return sc.Err()
}
