/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

// Package cli implements the command line shared by the hachi executables.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Options holds the parsed command line.
type Options struct {
	Input  string
	Driver string

	Strict   bool
	Trace    bool
	Debug    bool
	Quiet    bool
	Headless bool

	CyclesPerTick int
	MaxCycles     uint64
	TimerHz       int
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage text and the flag defaults to stdout.
func (e *UsageError) ShowUsage(name string) {
	fmt.Printf("usage: %s [options] <program.ch8>\n\n", name)
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// ParseFlags parses args, where args[0] is the program name. defaultDriver is
// the driver used when -driver is not given.
func ParseFlags(args []string, defaultDriver string) (Options, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	opts := Options{}
	drivers := strings.Join(runner.Drivers(), ", ")
	flags.StringVar(&opts.Driver, "driver", defaultDriver, "driver to run the program with ("+drivers+")")
	flags.BoolVar(&opts.Headless, "headless", false, "run without any user interface, same as -driver null")
	flags.BoolVar(&opts.Strict, "strict", false, "stop on stack overflows and out of range memory accesses instead of wrapping")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.IntVar(&opts.CyclesPerTick, "cycles", runner.DefaultSettings.CyclesPerTick, "instructions executed per tick")
	flags.Uint64Var(&opts.MaxCycles, "max-cycles", 0, "stop after this many instructions, 0 means no limit")
	flags.IntVar(&opts.TimerHz, "timer-hz", 60, "frequency of the delay and sound timers")

	err := flags.Parse(args[1:])
	rest := flags.Args()
	if err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if len(rest) != 1 {
		return opts, &UsageError{flags: flags, msg: "Expected exactly one program file."}
	}
	opts.Input = rest[0]

	if opts.Headless {
		opts.Driver = "null"
	}
	if opts.Trace {
		opts.Debug = true
	}
	if opts.TimerHz < 1 {
		return opts, fmt.Errorf("Invalid timer frequency %d.", opts.TimerHz)
	}

	for _, name := range runner.Drivers() {
		if name == opts.Driver {
			return opts, nil
		}
	}
	return opts, fmt.Errorf("Unknown driver '%s'. Valid drivers: %s", opts.Driver, drivers)
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner logs the program name and version unless running quietly.
func PrintBanner(logger *log.Logger, opts Options, name, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}

func (o Options) chipSettings(logger *log.Logger) *hachi.Settings {
	return &hachi.Settings{
		Strict: o.Strict,
		Trace:  o.Trace,
		Logger: logger,
	}
}

func (o Options) runnerSettings() *runner.Settings {
	return &runner.Settings{
		TimerInterval: time.Second / time.Duration(o.TimerHz),
		CyclesPerTick: o.CyclesPerTick,
		MaxCycles:     o.MaxCycles,
	}
}

// Run loads and runs the program described by opts until ctx is cancelled,
// the driver quits or the cycle limit is reached. When the machine stops
// with an error, its state is dumped to state.
func Run(ctx context.Context, logger *log.Logger, opts Options, state io.Writer) error {
	c, err := hachi.New(opts.chipSettings(logger))
	if err != nil {
		return err
	}

	size, err := c.Load(opts.Input)
	if err != nil {
		var oom *hachi.OutOfMemoryErr
		if errors.As(err, &oom) {
			logger.Error("Program does not fit in memory",
				log.Int("size", oom.ProgramSize), log.Int("max", hachi.MaxProgramSize))
		}
		return fmt.Errorf("loading program: %w", err)
	}
	logger.Info("Program loaded", log.String("file", opts.Input), log.Int("bytes", size))

	r, err := runner.New(c, opts.Driver, logger, opts.runnerSettings())
	if err != nil {
		return err
	}

	err = r.Run(ctx)
	cycles := log.String("cycles", strconv.FormatUint(r.Cycles(), 10))
	switch {
	case err == nil:
		logger.Info("Stopped", cycles)
		return nil

	case errors.Is(err, context.Canceled):
		logger.Info("Operation cancelled", cycles)
		return nil

	case errors.Is(err, runner.ErrCycleLimit):
		logger.Info("Cycle limit reached", cycles)
		return nil
	}

	fmt.Fprintln(state, c)
	return err
}

// Main is the entry point of the hachi executables. It parses os.Args, runs
// the program with defaultDriver unless told otherwise and exits with a non
// zero status on failure.
func Main(name, defaultDriver, version, commit, date string) {
	ctx := app.Context()

	opts, err := ParseFlags(os.Args, defaultDriver)
	if err != nil {
		logger := CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			PrintBanner(logger, opts, name, version, commit, date)
			usageErr.ShowUsage(name)
		} else {
			logger.Error("Invalid arguments", log.Err(err))
		}
		os.Exit(1)
	}

	logger := CreateLogger(opts.Debug, opts.Quiet)
	PrintBanner(logger, opts, name, version, commit, date)

	if err := Run(ctx, logger, opts, os.Stderr); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}
