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

// Package runner drives a hachi.Chip8 in real time through a Driver.
//
// The runner is the host side of the interpreter: it polls the driver for
// input, executes instructions, pushes the screen to the driver when it
// changes, decrements the timers at 60hz of wall-clock time and turns key
// presses into ResumeWithKey calls while the program waits for a key.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/retroenv/retrogolib/log"
)

// ErrCycleLimit is returned by Tick and Run once Settings.MaxCycles
// instructions were executed.
var ErrCycleLimit = errors.New("Cycle limit reached.")

// Settings holds the configuration parameters for a Runner.
type Settings struct {
	// The interval between each timer tick. Chip-8 timers run at
	// 60hz = time.Second / 60.
	TimerInterval time.Duration
	// Amount of instructions executed on every tick.
	CyclesPerTick int
	// Stop after this many instructions. 0 means no limit.
	MaxCycles uint64
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s.TimerInterval <= 0 {
		return fmt.Errorf("TimerInterval must be > 0, got %v.", s.TimerInterval)
	}
	if s.CyclesPerTick < 1 {
		return fmt.Errorf("CyclesPerTick must be >= 1, got %v.", s.CyclesPerTick)
	}
	return nil
}

// DefaultSettings runs 10 instructions per tick with 60hz timers.
var DefaultSettings = &Settings{
	TimerInterval: time.Second / 60,
	CyclesPerTick: 10,
}

// keyWaitPoll is how long Run sleeps between ticks while the program waits for
// a key and the driver does not own the loop.
const keyWaitPoll = time.Millisecond

// A Runner connects a Chip8 to a driver.
type Runner struct {
	c        *hachi.Chip8
	drv      Driver
	driver   string
	logger   *log.Logger
	settings Settings

	now             func() time.Time
	sleep           func(ctx context.Context, d time.Duration)
	lastTimerUpdate time.Time
	lastKeypad      [16]bool
	cycles          uint64
}

// New initializes the named driver for c. If settings is nil, DefaultSettings
// will be used. If logger is nil, only errors are logged to stdout.
func New(c *hachi.Chip8, driver string, logger *log.Logger,
	s *Settings) (r *Runner, err error) {

	drv := lookupDriver(driver)
	if drv == nil {
		err = fmt.Errorf("Driver %s not found.", driver)
		return
	}

	if s == nil {
		s = DefaultSettings
	}
	if err = s.Validate(); err != nil {
		return
	}

	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		logger = log.NewWithConfig(cfg)
	}

	if err = drv.OnInit(c); err != nil {
		err = fmt.Errorf("initializing driver %s: %w", driver, err)
		return
	}

	r = &Runner{
		c:        c,
		drv:      drv,
		driver:   driver,
		logger:   logger,
		settings: *s,
		now:      time.Now,
		sleep:    sleepContext,
	}
	logger.Debug("Driver initialized", log.String("driver", driver))
	return
}

// Chip8 returns the machine driven by the runner.
func (r *Runner) Chip8() *hachi.Chip8 { return r.c }

// Driver returns the name of the driver in use by the runner.
func (r *Runner) Driver() string { return r.driver }

// Cycles returns the amount of instructions executed so far.
func (r *Runner) Cycles() uint64 { return r.cycles }

// GetDriverData gets custom data from the driver.
// Returns nil if the data key is not found.
func (r *Runner) GetDriverData(key string) interface{} {
	return r.drv.GetData(key)
}

// SetDriverData sets custom data on the driver.
func (r *Runner) SetDriverData(key string, value interface{}) error {
	return r.drv.SetData(key, value)
}

// Tick polls input, runs up to CyclesPerTick instructions, updates the
// screen and catches the timers up with the clock. Returns an error if any.
func (r *Runner) Tick() error {
	r.drv.OnUpdate(r.c)
	r.resumeOnKeyPress()

	for i := 0; i < r.settings.CyclesPerTick; i++ {
		if _, waiting := r.c.WaitingForKey(); waiting {
			break
		}
		if r.settings.MaxCycles != 0 && r.cycles >= r.settings.MaxCycles {
			return ErrCycleLimit
		}
		if err := r.c.Step(); err != nil {
			return err
		}
		r.cycles++
	}

	if r.c.Redraw {
		r.drv.UpdateScreen(r.c)
		r.c.Redraw = false
	}

	r.updateTimers()
	return nil
}

// resumeOnKeyPress hands the first key that went down since the last tick to
// a program waiting on LD VX,K.
func (r *Runner) resumeOnKeyPress() {
	keypad := r.c.Keypad
	if x, waiting := r.c.WaitingForKey(); waiting {
		for k, down := range keypad {
			if down && !r.lastKeypad[k] {
				r.c.ResumeWithKey(uint8(k))
				r.logger.Debug("Key wait resumed",
					log.Int("key", k), log.Int("register", int(x)))
				break
			}
		}
	}
	r.lastKeypad = keypad
}

func (r *Runner) updateTimers() {
	now := r.now()

	if r.lastTimerUpdate.IsZero() {
		r.lastTimerUpdate = now
	}

	for now.Sub(r.lastTimerUpdate) >= r.settings.TimerInterval {
		if r.c.ST > 0 {
			r.drv.Beep()
		}
		r.c.DecrementTimers()
		r.lastTimerUpdate = r.lastTimerUpdate.Add(r.settings.TimerInterval)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run runs the program until ctx is cancelled, the driver quits or an error
// occurs. Drivers implementing Looper own the loop, otherwise ticks run
// back to back, with a short sleep between them while waiting for a key.
func (r *Runner) Run(ctx context.Context) error {
	tick := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.Tick()
	}

	if l, ok := r.drv.(Looper); ok {
		return l.Loop(tick)
	}

	for {
		if err := tick(); err != nil {
			return err
		}
		if _, waiting := r.c.WaitingForKey(); waiting {
			r.sleep(ctx, keyWaitPoll)
		}
	}
}
