// cmd/navshell/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/navdata"
	"github.com/mmp/navdb/util"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("Invalid configuration")

// Config holds the shell's settings. It's read from a JSON or TOML file and
// command-line flags override individual values.
type Config struct {
	// XPlaneDir, if set, is the root of an X-Plane installation; the
	// data file paths that aren't given explicitly are found under it.
	XPlaneDir string `json:"xplane_dir" toml:"xplane_dir"`

	AptDat     string `json:"apt_dat" toml:"apt_dat"`
	EarthFix   string `json:"earth_fix" toml:"earth_fix"`
	EarthNav   string `json:"earth_nav" toml:"earth_nav"`
	// EarthAwy and EarthHold are optional.
	EarthAwy   string `json:"earth_awy" toml:"earth_awy"`
	EarthHold  string `json:"earth_hold" toml:"earth_hold"`
	CIFPDir    string `json:"cifp_dir" toml:"cifp_dir"`
	CIFPSuffix string `json:"cifp_suffix" toml:"cifp_suffix"`

	CacheDir     string `json:"cache_dir" toml:"cache_dir"`
	DisableCache bool   `json:"disable_cache" toml:"disable_cache"`

	LegCapacity        int `json:"leg_capacity" toml:"leg_capacity"`
	ProcedureCacheSize int `json:"procedure_cache_size" toml:"procedure_cache_size"`

	LogLevel string `json:"log_level" toml:"log_level"`
	LogDir   string `json:"log_dir" toml:"log_dir"`
}

func DefaultConfig() Config {
	return Config{
		CIFPSuffix:         aviation.DefaultCIFPSuffix,
		LegCapacity:        aviation.DefaultLegCapacity,
		ProcedureCacheSize: navdata.DefaultProcedureCacheSize,
		LogLevel:           "info",
	}
}

// LoadConfig reads the configuration file at path, which is TOML if it
// has a .toml extension and JSON otherwise. Settings that it doesn't
// include keep their default values.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.DecodeFile(path, &c)
		if err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return c, fmt.Errorf("%s: %w: unknown settings %v", path, ErrInvalidConfig, undec)
		}
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	if err := util.UnmarshalJSON(f, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Resolve fills in the data file paths that weren't given from XPlaneDir.
func (c *Config) Resolve() {
	if c.XPlaneDir == "" {
		return
	}

	// X-Plane 12 keeps the global airports under Global Scenery; custom
	// data overrides the default data.
	set := func(p *string, candidates ...string) {
		if *p != "" {
			return
		}
		for _, cand := range candidates {
			path := filepath.Join(c.XPlaneDir, filepath.FromSlash(cand))
			if _, err := os.Stat(path); err == nil {
				*p = path
				return
			}
		}
		*p = filepath.Join(c.XPlaneDir, filepath.FromSlash(candidates[len(candidates)-1]))
	}
	set(&c.AptDat, "Global Scenery/Global Airports/Earth nav data/apt.dat",
		"Resources/default scenery/default apt dat/Earth nav data/apt.dat")
	set(&c.EarthFix, "Custom Data/earth_fix.dat", "Resources/default data/earth_fix.dat")
	set(&c.EarthNav, "Custom Data/earth_nav.dat", "Resources/default data/earth_nav.dat")
	set(&c.CIFPDir, "Custom Data/CIFP", "Resources/default data/CIFP")

	// Airways and holds are only used if they're present.
	optional := func(p *string, candidates ...string) {
		for _, cand := range candidates {
			path := filepath.Join(c.XPlaneDir, filepath.FromSlash(cand))
			if _, err := os.Stat(path); *p == "" && err == nil {
				*p = path
			}
		}
	}
	optional(&c.EarthAwy, "Custom Data/earth_awy.dat", "Resources/default data/earth_awy.dat")
	optional(&c.EarthHold, "Custom Data/earth_hold.dat", "Resources/default data/earth_hold.dat")
}

// Validate checks that the configuration is usable; all of the problems
// found are reported together.
func (c Config) Validate() error {
	var e util.ErrorLogger
	e.Push("config")

	for _, f := range []struct{ name, path string }{
		{"apt_dat", c.AptDat},
		{"earth_fix", c.EarthFix},
		{"earth_nav", c.EarthNav},
		{"cifp_dir", c.CIFPDir},
	} {
		if f.path == "" {
			e.ErrorString("%s: must be specified", f.name)
		}
	}
	if c.LegCapacity <= 0 {
		e.ErrorString("leg_capacity: %d: must be positive", c.LegCapacity)
	}
	if c.ProcedureCacheSize <= 0 {
		e.ErrorString("procedure_cache_size: %d: must be positive", c.ProcedureCacheSize)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		e.ErrorString("log_level: %q: unknown level", c.LogLevel)
	}

	if e.HaveErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, e.String())
	}
	return nil
}

func (c Config) Paths() navdata.Paths {
	return navdata.Paths{
		AptDat:       c.AptDat,
		EarthFix:     c.EarthFix,
		EarthNav:     c.EarthNav,
		EarthAwy:     c.EarthAwy,
		EarthHold:    c.EarthHold,
		CacheDir:     c.CacheDir,
		DisableCache: c.DisableCache,
	}
}

func (c Config) ProcedureCacheOptions() navdata.ProcedureCacheOptions {
	return navdata.ProcedureCacheOptions{
		Size: c.ProcedureCacheSize,
		Airport: aviation.AirportOptions{
			Dir:         c.CIFPDir,
			Suffix:      c.CIFPSuffix,
			LegCapacity: c.LegCapacity,
		},
	}
}
