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

// Package hachi implements a CHIP-8 interpreter core.
//
// The core owns no clock, window or event loop. A host creates a Chip8 with
// New, loads a program with Load or LoadRaw and then calls Step as often as
// it likes, decrementing the timers with DecrementTimers at 60hz and writing
// the keypad state between steps. See package runner for such a host.
package hachi

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// Memory layout and machine geometry.
const (
	// MemorySize is the size of the addressable memory.
	MemorySize = 0x1000
	// ProgramStart is where programs are loaded and where execution begins.
	// The original interpreter occupied the first 512 bytes.
	ProgramStart = 0x200
	// MaxProgramSize is the largest program that fits before the last
	// memory address.
	MaxProgramSize = 0xFFF - ProgramStart
	// StackSize is the maximum amount of nested calls.
	StackSize = 16
	// Width and Height of the screen in pixels.
	Width  = 64
	Height = 32
	// GlyphSize is the amount of bytes per font glyph.
	GlyphSize = 5

	addrMask = MemorySize - 1
)

// Font holds the hex digit glyphs 0-F which are copied at address 0.
var Font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// -----------------------------------------------------------------------------

// Settings holds the configuration parameters for a Chip8 instance.
type Settings struct {
	// Strict makes Step return an error instead of executing an instruction
	// that overflows or underflows the stack, pushes I past 0xFFF or touches
	// memory past the last address. Otherwise those wrap silently.
	Strict bool
	// Trace logs every executed instruction at debug level.
	Trace bool
	// Logger receives load and trace messages. Can be nil.
	Logger *log.Logger
	// Rand is the source used by RND. When nil, the global math/rand source
	// is used.
	Rand *rand.Rand
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s.Trace && s.Logger == nil {
		return fmt.Errorf("Trace requires a Logger.")
	}
	return nil
}

// DefaultSettings are permissive and silent, like the original CHIP-8.
var DefaultSettings = &Settings{}

// -----------------------------------------------------------------------------

// A Machine is what a host needs to drive an interpreter.
type Machine interface {
	LoadRaw(program []byte) error
	Step() error
	ResumeWithKey(k uint8)
	DecrementTimers()
}

var _ Machine = (*Chip8)(nil)

// Chip8 holds the state of a CHIP-8 virtual machine.
type Chip8 struct {
	// The memory where programs are loaded and executed.
	// 0x000~0x1FF is reserved, with the font at 0x000~0x04F.
	Memory [MemorySize]byte
	// V[0x0]~V[0xF] are 8-bit registers. V[0xF] doubles as a carry, borrow
	// and collision flag.
	V [16]uint8
	// 16-bit address register. Can grow past 0xFFF, memory accesses only
	// use the lower 12 bits.
	I uint16
	// The call stack, which holds return addresses.
	Stack [StackSize]uint16
	// The stack pointer, which is the current call depth.
	SP uint8
	// Program counter. Holds the address of the next instruction.
	PC uint16
	// Timers. The host decrements them at 60hz while they are non-zero.
	// ST/SoundTimer makes a beeping sound as long as its value is non-zero.
	DT uint8
	ST uint8
	// Keypad is a hex keyboard with 16 keys, written by the host.
	// 8, 4, 6 and 2 are typically used for directional input.
	Keypad [16]bool
	// Screen buffer, indexed as Screen[y][x]. Each pixel is either 0 or 1.
	Screen [Height][Width]uint8
	// Redraw is set whenever the screen changes. The host clears it once it
	// has presented the screen.
	Redraw bool

	waiting bool
	waitReg uint8

	strict bool
	trace  bool
	logger *log.Logger
	rnd    *rand.Rand
}

// New initializes a new instance of Chip8 with the given settings. If settings
// is nil, DefaultSettings will be used.
func New(s *Settings) (c *Chip8, err error) {
	if s == nil {
		s = DefaultSettings
	}

	err = s.Validate()
	if err != nil {
		return
	}

	c = &Chip8{
		strict: s.Strict,
		trace:  s.Trace,
		logger: s.Logger,
		rnd:    s.Rand,
	}
	c.Reset()
	return
}

// Reset puts the machine back in its power-on state: everything is zeroed,
// the font is copied at address 0 and PC points to ProgramStart.
// A loaded program is wiped as well.
func (c *Chip8) Reset() {
	c.Memory = [MemorySize]byte{}
	copy(c.Memory[:], Font[:])
	c.V = [16]uint8{}
	c.I = 0
	c.Stack = [StackSize]uint16{}
	c.SP = 0
	c.PC = ProgramStart
	c.DT = 0
	c.ST = 0
	c.Keypad = [16]bool{}
	c.Screen = [Height][Width]uint8{}
	c.Redraw = true
	c.waiting = false
	c.waitReg = 0
}

// String returns formatted information about the state of the machine.
func (c *Chip8) String() string {
	depth := min(int(c.SP), StackSize)
	return fmt.Sprintf("Chip8{Registers: [% 02X] I: %04X, "+
		"Stack: % 04X, SP: %v, PC: %04X, DT: %02X, ST: %02X, "+
		"Keypad: %016b}",
		c.V, c.I, c.Stack[:depth], c.SP, c.PC, c.DT, c.ST, c.keyBits())
}

func (c *Chip8) keyBits() (bits uint16) {
	for k, down := range c.Keypad {
		if down {
			bits |= 1 << k
		}
	}
	return
}

// Load opens a CHIP-8 binary file and loads it into memory.
// Returns the size, in bytes, of the program and an error if any.
func (c *Chip8) Load(path string) (size int, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = &IOErr{path, err}
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		err = &IOErr{path, err}
		return
	}

	size = int(fi.Size())
	if size > MaxProgramSize {
		err = &OutOfMemoryErr{size}
		return
	}

	program := make([]byte, size)
	if _, err = io.ReadFull(f, program); err != nil {
		err = &IOErr{path, err}
		return
	}

	err = c.LoadRaw(program)
	return
}

// LoadRaw copies a CHIP-8 binary into memory at ProgramStart. Nothing else
// is reset, so call Reset first when reusing a machine.
func (c *Chip8) LoadRaw(program []byte) error {
	if len(program) > MaxProgramSize {
		return &OutOfMemoryErr{len(program)}
	}
	copy(c.Memory[ProgramStart:], program)
	if c.logger != nil {
		c.logger.Info("Loaded program", log.Int("bytes", len(program)))
	}
	return nil
}

// SetKey updates the state of key k (0x0~0xF).
func (c *Chip8) SetKey(k uint8, pressed bool) { c.Keypad[k&0xF] = pressed }

// DecrementTimers counts both timers down by one unless they already are
// zero. The host calls this at 60hz.
func (c *Chip8) DecrementTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
}

// WaitingForKey reports whether a LD VX,K instruction suspended execution and
// which register will receive the key.
func (c *Chip8) WaitingForKey() (x uint8, ok bool) { return c.waitReg, c.waiting }

// ResumeWithKey stores key k in the register a LD VX,K instruction is waiting
// on and resumes execution. Does nothing when the machine is not waiting.
func (c *Chip8) ResumeWithKey(k uint8) {
	if !c.waiting {
		return
	}
	c.V[c.waitReg] = k & 0xF
	c.waiting = false
}

// Step executes one instruction. While the machine waits for a key it does
// nothing. Errors are only returned in strict mode.
func (c *Chip8) Step() error {
	if c.waiting {
		return nil
	}

	pc := c.PC
	opcode := uint16(c.Memory[pc&addrMask])<<8 | uint16(c.Memory[(pc+1)&addrMask])

	if c.strict {
		if err := c.check(pc, opcode); err != nil {
			return err
		}
	}
	if c.trace {
		c.logger.Debug("Step", log.Hex("pc", pc), log.String("op", Mnemonic(opcode)))
	}

	c.PC += 2
	c.execute(opcode)
	return nil
}
