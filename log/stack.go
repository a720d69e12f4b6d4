// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const (
	modulePrefix = "github.com/mmp/navdb/"
	maxFrames    = 12
)

// Frame is a function in this module on the way to a log call.
type Frame struct {
	File     string
	Line     int
	Function string
}

func (f Frame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

// Callstack holds the frames that led to a log call, innermost first. It
// ends at the first frame outside the module, so records from the
// loaders' goroutines don't carry errgroup and runtime frames.
type Callstack []Frame

// LogValue logs the stack as a list of "file:line:function" strings.
func (cs Callstack) LogValue() slog.Value {
	s := make([]string, len(cs))
	for i, f := range cs {
		s[i] = f.String()
	}
	return slog.AnyValue(s)
}

// callers returns the stack starting skip frames above its caller.
func callers(skip int) Callstack {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var cs Callstack
	for {
		frame, more := frames.Next()
		fn, ok := strings.CutPrefix(frame.Function, modulePrefix)
		if !ok {
			if fn, ok = strings.CutPrefix(frame.Function, "main."); !ok {
				break
			}
		}

		cs = append(cs, Frame{File: filepath.Base(frame.File), Line: frame.Line, Function: fn})
		if !more || frame.Function == "main.main" {
			break
		}
	}
	return cs
}
