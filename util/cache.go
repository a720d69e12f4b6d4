// util/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// CachePath returns the path for the named cache object. If dir is empty,
// objects are stored in a navdb directory in the user's cache directory.
func CachePath(dir, name string) (string, error) {
	if dir == "" {
		cd, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(cd, "navdb")
	}
	return filepath.Join(dir, name), nil
}

// CacheStoreObject msgpack-encodes obj and writes it, zstd compressed, to
// the named cache file. The file is written to a temporary and then
// renamed, so concurrent readers never see a partial object.
func CacheStoreObject(dir, name string, obj any) error {
	path, err := CachePath(dir, name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// CacheRetrieveObject decodes the named cache object into obj, returning
// the modification time of the cache file.
func CacheRetrieveObject(dir, name string, obj any) (time.Time, error) {
	path, err := CachePath(dir, name)
	if err != nil {
		return time.Time{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return time.Time{}, err
	}
	defer zr.Close()

	return fi.ModTime(), msgpack.NewDecoder(zr).Decode(obj)
}
