// navdata/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdata

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultProcedureCacheSize = 32

type ProcedureCacheOptions struct {
	// Size is the number of airports kept; defaults to
	// DefaultProcedureCacheSize.
	Size    int
	Airport aviation.AirportOptions
}

// ProcedureCache loads airports' procedures on demand and keeps the most
// recently used ones. It may be used concurrently; concurrent requests
// for the same airport share a single load.
type ProcedureCache struct {
	db    *Database
	opts  ProcedureCacheOptions
	cache *lru.Cache[string, *aviation.Airport]
	sf    singleflight.Group
	lg    *log.Logger
}

func NewProcedureCache(db *Database, opts ProcedureCacheOptions, lg *log.Logger) (*ProcedureCache, error) {
	if opts.Size == 0 {
		opts.Size = DefaultProcedureCacheSize
	}
	if opts.Size < 0 {
		return nil, ErrInvalidCacheSize
	}

	c, err := lru.New[string, *aviation.Airport](opts.Size)
	if err != nil {
		return nil, err
	}
	return &ProcedureCache{db: db, opts: opts, cache: c, lg: lg}, nil
}

// Airport returns the procedures of the given airport. As with
// aviation.LoadAirport, a non-nil *Airport is always returned and the
// error reports an unsuccessful load. Airports whose loads failed
// outright are not cached.
func (pc *ProcedureCache) Airport(icao string) (*aviation.Airport, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))

	if ap, ok := pc.cache.Get(icao); ok {
		return ap, statusError(ap)
	}

	v, err, shared := pc.sf.Do(icao, func() (any, error) {
		// Another load may have finished since the check above.
		if ap, ok := pc.cache.Get(icao); ok {
			return ap, statusError(ap)
		}

		ap, err := pc.db.LoadAirport(icao, pc.opts.Airport, pc.lg)
		if !ap.Status().Fatal() {
			if evicted := pc.cache.Add(icao, ap); evicted {
				pc.lg.Debug("Evicted airport from procedure cache", slog.String("added", icao))
			}
		}
		return ap, err
	})
	if shared {
		pc.lg.Debug("Shared procedure load", slog.String("airport", icao))
	}

	return v.(*aviation.Airport), err
}

func statusError(ap *aviation.Airport) error {
	if err := ap.Status().Err(); err != nil {
		return fmt.Errorf("%s: %w", ap.ICAO(), err)
	}
	return nil
}

// Cached returns the ICAO codes of the cached airports, least recently
// used first.
func (pc *ProcedureCache) Cached() []string { return pc.cache.Keys() }

func (pc *ProcedureCache) Len() int { return pc.cache.Len() }

func (pc *ProcedureCache) Purge() { pc.cache.Purge() }
