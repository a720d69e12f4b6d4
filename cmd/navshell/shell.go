// cmd/navshell/shell.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmp/navdb/aviation"
	"github.com/mmp/navdb/log"
	"github.com/mmp/navdb/math"
	"github.com/mmp/navdb/navdata"

	"github.com/iancoleman/orderedmap"
)

var (
	ErrUnknownCommand  = errors.New("Unknown command")
	ErrArgumentCount   = errors.New("Wrong number of arguments")
	ErrInvalidVariable = errors.New("Invalid variable value")
)

// Variables that the shell always has; poinfo sorts its results by
// distance from the aircraft position they give.
const (
	varAircraftLat = "ac_lat"
	varAircraftLon = "ac_lon"
)

// Shell interprets the commands that query the navigation database.
type Shell struct {
	db       *navdata.Database
	procs    *navdata.ProcedureCache
	commands map[string]Command
	vars     *orderedmap.OrderedMap
	w        io.Writer
	lg       *log.Logger
	quit     bool
}

func NewShell(db *navdata.Database, procs *navdata.ProcedureCache, w io.Writer, lg *log.Logger) *Shell {
	sh := &Shell{
		db:       db,
		procs:    procs,
		commands: makeCommands(),
		vars:     orderedmap.New(),
		w:        w,
		lg:       lg,
	}
	sh.vars.Set(varAircraftLat, "0")
	sh.vars.Set(varAircraftLon, "0")
	return sh
}

// Execute runs a single command line. Errors from the command are
// returned; the shell itself keeps running after them.
func (sh *Shell) Execute(line string) error {
	f := strings.Fields(line)
	if len(f) == 0 || strings.HasPrefix(f[0], "#") {
		return nil
	}

	name, args := strings.ToLower(f[0]), f[1:]
	cmd, ok := sh.commands[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	if !argsOk(cmd.Args(), args) {
		return fmt.Errorf("%s: %w; usage: %s", name, ErrArgumentCount, usage(name, cmd))
	}

	sh.lg.Debug("Executing command", slog.String("command", name), slog.Any("args", args))
	return cmd.Run(sh, args)
}

// Script executes each of the ';'-separated commands in s.
func (sh *Shell) Script(s string) error {
	for _, line := range strings.Split(s, ";") {
		if err := sh.Execute(line); err != nil {
			return err
		}
		if sh.quit {
			break
		}
	}
	return nil
}

// Run reads commands from r until it is exhausted or the quit command is
// given. Command errors are reported to the shell's writer.
func (sh *Shell) Run(r io.Reader, prompt string) error {
	scan := bufio.NewScanner(r)
	for !sh.quit {
		fmt.Fprint(sh.w, prompt)
		if !scan.Scan() {
			break
		}
		if err := sh.Execute(scan.Text()); err != nil {
			fmt.Fprintln(sh.w, err)
		}
	}
	return scan.Err()
}

func (sh *Shell) Set(name, value string) error {
	if name == varAircraftLat || name == varAircraftLon {
		if _, err := strconv.ParseFloat(value, 32); err != nil {
			return fmt.Errorf("%s: %q: %w", name, value, ErrInvalidVariable)
		}
	}
	sh.vars.Set(name, value)
	return nil
}

func (sh *Shell) Var(name string) (string, bool) {
	v, ok := sh.vars.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (sh *Shell) aircraftPosition() math.Point2LL {
	coord := func(name string) float32 {
		v, _ := sh.Var(name)
		f, _ := strconv.ParseFloat(v, 32)
		return float32(f)
	}
	return math.Point2LL{coord(varAircraftLon), coord(varAircraftLat)}
}

// airport returns the airport's procedures. Partially loaded airports
// are usable, so that case is only logged.
func (sh *Shell) airport(icao string) (*aviation.Airport, error) {
	ap, err := sh.procs.Airport(icao)
	if ap.Status().Fatal() {
		return nil, err
	}
	if err != nil {
		sh.lg.Warn("Partially loaded airport", slog.String("airport", ap.ICAO()),
			slog.Int("errors", len(ap.LoadErrors())))
	}
	return ap, nil
}

// argsOk checks the number of arguments against the argument names of a
// command, where optional arguments are given in brackets.
func argsOk(names, args []string) bool {
	required := 0
	for _, n := range names {
		if !strings.HasPrefix(n, "[") {
			required++
		}
	}
	return len(args) >= required && len(args) <= len(names)
}

func usage(name string, cmd Command) string {
	return strings.Join(append([]string{name}, cmd.Args()...), " ")
}
