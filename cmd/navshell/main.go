// cmd/navshell/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// navshell loads the X-Plane navigation data and CIFP procedures and
// answers queries about them, either interactively or from a script
// given on the command line.

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/navdata"
	"github.com/mmp/navdb/util"
)

var (
	configFile  = flag.String("config", "", "JSON or TOML configuration file")
	xplaneDir   = flag.String("xplane", "", "X-Plane installation directory to find data files under")
	aptDat      = flag.String("aptdat", "", "path to apt.dat")
	earthFix    = flag.String("earthfix", "", "path to earth_fix.dat")
	earthNav    = flag.String("earthnav", "", "path to earth_nav.dat")
	earthAwy    = flag.String("earthawy", "", "path to earth_awy.dat (optional)")
	earthHold   = flag.String("earthhold", "", "path to earth_hold.dat (optional)")
	cifpDir     = flag.String("cifp", "", "directory of per-airport CIFP procedure files")
	cifpSuffix  = flag.String("suffix", "", "CIFP file name suffix (e.g., .dat or .dat.zst)")
	cacheDir    = flag.String("cachedir", "", "directory for the parsed apt.dat cache")
	noCache     = flag.Bool("nocache", false, "always parse apt.dat")
	legCapacity = flag.Int("legcap", 0, "maximum number of procedure legs per airport")
	cacheSize   = flag.Int("cachesize", 0, "number of airports' procedures to keep loaded")
	logLevel    = flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	script      = flag.String("c", "", "';'-separated commands to run instead of reading from stdin")
	cpuProfile  = flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to this file")
	printErrors = flag.Bool("errors", false, "print the navigation data rows that couldn't be loaded")
)

// loadConfig starts from the configuration file, if any, and then
// applies the flags that were given explicitly.
func loadConfig() (Config, error) {
	c := DefaultConfig()
	if *configFile != "" {
		var err error
		if c, err = LoadConfig(*configFile); err != nil {
			return c, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "xplane":
			c.XPlaneDir = *xplaneDir
		case "aptdat":
			c.AptDat = *aptDat
		case "earthfix":
			c.EarthFix = *earthFix
		case "earthnav":
			c.EarthNav = *earthNav
		case "earthawy":
			c.EarthAwy = *earthAwy
		case "earthhold":
			c.EarthHold = *earthHold
		case "cifp":
			c.CIFPDir = *cifpDir
		case "suffix":
			c.CIFPSuffix = *cifpSuffix
		case "cachedir":
			c.CacheDir = *cacheDir
		case "nocache":
			c.DisableCache = *noCache
		case "legcap":
			c.LegCapacity = *legCapacity
		case "cachesize":
			c.ProcedureCacheSize = *cacheSize
		case "loglevel":
			c.LogLevel = *logLevel
		case "logdir":
			c.LogDir = *logDir
		}
	})

	c.Resolve()
	return c, c.Validate()
}

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lg := log.New(config.LogLevel, config.LogDir)

	profiler, err := util.StartProfiler(*cpuProfile, *memProfile)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Write out the profiles if we're interrupted.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		profiler.Stop()
		os.Exit(0)
	}()

	code := run(config, lg)
	if err := profiler.Stop(); err != nil {
		lg.Errorf("%v", err)
	}
	os.Exit(code)
}

func run(config Config, lg *log.Logger) int {
	lg.Info("Loading navigation data", slog.Any("paths", config.Paths()))
	db, err := navdata.StartLoad(config.Paths(), lg).Wait()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load navigation data: %v\n", err)
		return 1
	}
	if errs := db.LoadErrors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "%d navigation data rows couldn't be loaded; see %s\n", len(errs), lg.LogFile)
		if *printErrors {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
		}
	}

	procs, err := navdata.NewProcedureCache(db, config.ProcedureCacheOptions(), lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sh := NewShell(db, procs, os.Stdout, lg)
	if *script != "" {
		if err := sh.Script(*script); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := sh.Run(os.Stdin, "> "); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
