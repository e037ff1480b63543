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

package hachi

import (
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// newTestChip8 returns a machine with the given opcodes loaded at
// ProgramStart and a seeded random source.
func newTestChip8(t *testing.T, program ...uint16) *Chip8 {
	t.Helper()
	return newTestChip8WithSettings(t, &Settings{}, program...)
}

func newTestChip8WithSettings(t *testing.T, s *Settings, program ...uint16) *Chip8 {
	t.Helper()
	s.Rand = rand.New(rand.NewSource(1))
	c, err := New(s)
	assert.NoError(t, err)
	assert.NoError(t, c.LoadRaw(assemble(program...)))
	return c
}

func assemble(program ...uint16) []byte {
	b := make([]byte, 0, len(program)*2)
	for _, opcode := range program {
		b = append(b, byte(opcode>>8), byte(opcode))
	}
	return b
}

func step(t *testing.T, c *Chip8, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		assert.NoError(t, c.Step())
	}
}

func TestNew(t *testing.T) {
	c, err := New(nil)
	assert.NoError(t, err)

	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, uint16(0), c.I)
	assert.Equal(t, uint8(0), c.SP)
	assert.Equal(t, uint8(0), c.DT)
	assert.Equal(t, uint8(0), c.ST)
	assert.Equal(t, [16]uint8{}, c.V)
	assert.Equal(t, [StackSize]uint16{}, c.Stack)
	assert.Equal(t, [Height][Width]uint8{}, c.Screen)
	assert.Equal(t, Font[:], c.Memory[:len(Font)])
	for addr := len(Font); addr < MemorySize; addr++ {
		if c.Memory[addr] != 0 {
			t.Fatalf("memory at %03X is %02X, expected 0", addr, c.Memory[addr])
		}
	}
	_, waiting := c.WaitingForKey()
	assert.False(t, waiting)
}

func TestNewInvalidSettings(t *testing.T) {
	_, err := New(&Settings{Trace: true})
	assert.Error(t, err)

	_, err = New(&Settings{Trace: true, Logger: log.NewTestLogger(t)})
	assert.NoError(t, err)
}

func TestReset(t *testing.T) {
	c := newTestChip8(t, 0x6A42, 0x2300, 0xF00A)
	step(t, c, 3)
	c.SetKey(0x3, true)
	c.DT, c.ST = 10, 20
	c.Screen[4][5] = 1

	c.Reset()

	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, uint8(0), c.V[0xA])
	assert.Equal(t, uint8(0), c.SP)
	assert.Equal(t, uint8(0), c.DT)
	assert.Equal(t, uint8(0), c.ST)
	assert.False(t, c.Keypad[0x3])
	assert.Equal(t, uint8(0), c.Screen[4][5])
	assert.Equal(t, uint8(0), c.Memory[ProgramStart])
	_, waiting := c.WaitingForKey()
	assert.False(t, waiting)
}

func TestLoadRaw(t *testing.T) {
	c, err := New(nil)
	assert.NoError(t, err)

	program := []byte{0x12, 0x34, 0x56}
	assert.NoError(t, c.LoadRaw(program))
	assert.Equal(t, program, c.Memory[ProgramStart:ProgramStart+3])
	assert.Equal(t, uint16(ProgramStart), c.PC)

	full := make([]byte, MaxProgramSize)
	full[len(full)-1] = 0xAB
	assert.NoError(t, c.LoadRaw(full))
	assert.Equal(t, uint8(0xAB), c.Memory[0xFFE])

	err = c.LoadRaw(make([]byte, MaxProgramSize+1))
	var oom *OutOfMemoryErr
	assert.True(t, errors.As(err, &oom))
	assert.Equal(t, MaxProgramSize+1, oom.ProgramSize)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0xE0, 0x12, 0x00}, 0o600))

	c, err := New(&Settings{Logger: log.NewTestLogger(t)})
	assert.NoError(t, err)

	size, err := c.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, size)
	assert.Equal(t, []byte{0x00, 0xE0, 0x12, 0x00}, c.Memory[ProgramStart:ProgramStart+4])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	c, err := New(nil)
	assert.NoError(t, err)

	_, err = c.Load(filepath.Join(dir, "missing.ch8"))
	var ioErr *IOErr
	assert.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	big := filepath.Join(dir, "big.ch8")
	assert.NoError(t, os.WriteFile(big, make([]byte, MaxProgramSize+1), 0o600))
	size, err := c.Load(big)
	var oom *OutOfMemoryErr
	assert.True(t, errors.As(err, &oom))
	assert.Equal(t, MaxProgramSize+1, size)
}

func TestDecrementTimers(t *testing.T) {
	c := newTestChip8(t)
	c.DT, c.ST = 2, 1

	c.DecrementTimers()
	assert.Equal(t, uint8(1), c.DT)
	assert.Equal(t, uint8(0), c.ST)

	c.DecrementTimers()
	c.DecrementTimers()
	assert.Equal(t, uint8(0), c.DT)
	assert.Equal(t, uint8(0), c.ST)
}

func TestSetKey(t *testing.T) {
	c := newTestChip8(t)
	c.SetKey(0xB, true)
	assert.True(t, c.Keypad[0xB])
	c.SetKey(0x1B, false)
	assert.False(t, c.Keypad[0xB])
}

func TestString(t *testing.T) {
	c := newTestChip8(t, 0x2206)
	step(t, c, 1)
	c.SetKey(0x1, true)
	s := c.String()
	assert.True(t, strings.Contains(s, "PC: 0206"))
	assert.True(t, strings.Contains(s, "SP: 1"))
	assert.True(t, strings.Contains(s, "Keypad: 0000000000000010"))
}

func TestTrace(t *testing.T) {
	c := newTestChip8WithSettings(t, &Settings{Trace: true, Logger: log.NewTestLogger(t)},
		0x6005, 0x7001)
	step(t, c, 2)
	assert.Equal(t, uint8(6), c.V[0])
}
