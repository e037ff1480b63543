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

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "defaults",
			args: []string{"hachi", "prog.ch8"},
			want: Options{Input: "prog.ch8", Driver: "null", CyclesPerTick: 10, TimerHz: 60},
		},
		{
			name: "headless overrides driver",
			args: []string{"hachi", "-driver", "null", "-headless", "prog.ch8"},
			want: Options{Input: "prog.ch8", Driver: "null", Headless: true, CyclesPerTick: 10, TimerHz: 60},
		},
		{
			name: "trace implies debug",
			args: []string{"hachi", "-trace", "-strict", "prog.ch8"},
			want: Options{Input: "prog.ch8", Driver: "null", Trace: true, Debug: true, Strict: true,
				CyclesPerTick: 10, TimerHz: 60},
		},
		{
			name: "limits",
			args: []string{"hachi", "-cycles", "3", "-max-cycles", "500", "-timer-hz", "30", "-q", "prog.ch8"},
			want: Options{Input: "prog.ch8", Driver: "null", Quiet: true, CyclesPerTick: 3, MaxCycles: 500,
				TimerHz: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.args, "null")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	var usageErr *UsageError

	_, err := ParseFlags([]string{"hachi"}, "null")
	assert.True(t, errors.As(err, &usageErr))

	_, err = ParseFlags([]string{"hachi", "a.ch8", "b.ch8"}, "null")
	assert.True(t, errors.As(err, &usageErr))

	_, err = ParseFlags([]string{"hachi", "-nope", "a.ch8"}, "null")
	assert.True(t, errors.As(err, &usageErr))

	_, err = ParseFlags([]string{"hachi", "-driver", "nope", "a.ch8"}, "null")
	assert.Error(t, err)
	assert.False(t, errors.As(err, &usageErr))

	_, err = ParseFlags([]string{"hachi", "-timer-hz", "0", "a.ch8"}, "null")
	assert.Error(t, err)
}

func TestRunnerSettings(t *testing.T) {
	s := Options{CyclesPerTick: 4, MaxCycles: 9, TimerHz: 50}.runnerSettings()
	assert.Equal(t, 20*time.Millisecond, s.TimerInterval)
	assert.Equal(t, 4, s.CyclesPerTick)
	assert.Equal(t, uint64(9), s.MaxCycles)
	assert.NoError(t, s.Validate())
}

func writeProgram(t *testing.T, program []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.ch8")
	assert.NoError(t, os.WriteFile(path, program, 0o600))
	return path
}

func TestRunUntilCycleLimit(t *testing.T) {
	// JP 200
	opts := Options{
		Input:         writeProgram(t, []byte{0x12, 0x00}),
		Driver:        "null",
		CyclesPerTick: 10,
		MaxCycles:     100,
		TimerHz:       60,
	}

	var state bytes.Buffer
	assert.NoError(t, Run(context.Background(), log.NewTestLogger(t), opts, &state))
	assert.Equal(t, 0, state.Len())
}

func TestRunCancelled(t *testing.T) {
	opts := Options{
		Input:         writeProgram(t, []byte{0x12, 0x00}),
		Driver:        "null",
		CyclesPerTick: 10,
		TimerHz:       60,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Run(ctx, log.NewTestLogger(t), opts, &bytes.Buffer{}))
}

func TestRunStrictFault(t *testing.T) {
	// RET with an empty stack
	opts := Options{
		Input:         writeProgram(t, []byte{0x00, 0xEE}),
		Driver:        "null",
		Strict:        true,
		CyclesPerTick: 10,
		TimerHz:       60,
	}

	var state bytes.Buffer
	err := Run(context.Background(), log.NewTestLogger(t), opts, &state)
	var underflow *hachi.StackUnderflowErr
	assert.True(t, errors.As(err, &underflow))
	assert.Contains(t, state.String(), "PC: 0200")
}

func TestRunLoadErrors(t *testing.T) {
	opts := Options{Driver: "null", CyclesPerTick: 10, TimerHz: 60}

	opts.Input = filepath.Join(t.TempDir(), "missing.ch8")
	err := Run(context.Background(), log.NewTestLogger(t), opts, &bytes.Buffer{})
	var ioErr *hachi.IOErr
	assert.True(t, errors.As(err, &ioErr))

	opts.Input = writeProgram(t, make([]byte, hachi.MaxProgramSize+1))
	err = Run(context.Background(), log.NewTestLogger(t), opts, &bytes.Buffer{})
	var oom *hachi.OutOfMemoryErr
	assert.True(t, errors.As(err, &oom))
}
