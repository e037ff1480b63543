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

// Package termloop implements a terminal driver for hachi using termloop.
//
// The driver owns the main loop (it implements runner.Looper), so
// runner.Run hands control to termloop and ticks the emulator on every
// frame. Escape quits.
//
// Key mappings can be modified through SetDriverData("key_map", myMap), where
// myMap is a map[termloop.Key]uint8 with termloop keys as keys and
// Chip-8 keys (0x0~0xF) as values. Characters always follow the usual
// 1234/QWER/ASDF/ZXCV layout.
package termloop

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/runner"
	tl "github.com/JoelOtter/termloop"
	"golang.org/x/term"
)

// keys are released automatically after this long, since termbox only
// reports key down events
const keyHold = 100 * time.Millisecond

// charMap maps characters to keypad keys.
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var charMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// A TermloopDriver is a terminal-based driver that uses the termloop library.
// It shows the current emulator state in real time and the screen.
type TermloopDriver struct {
	g                 *tl.Game
	registers         *tl.Text
	pointersAndTimers *tl.Text
	devices           *tl.Text
	status            *tl.Text
	stack             []*tl.Text
	syscalls          [10]*tl.Text
	screen            [hachi.Width][hachi.Height]*tl.Rectangle
	lastScreen        [hachi.Height][hachi.Width]uint8
	keyMap            map[tl.Key]uint8
	err               error
}

func (d *TermloopDriver) printSyscall(s string) {
	for i := len(d.syscalls) - 1; i > 0; i-- {
		d.syscalls[i].SetText(d.syscalls[i-1].Text())
	}
	d.syscalls[0].SetText(s)
}

// just a wrapper entity to handle input
type inputHandler struct {
	c      *hachi.Chip8
	d      *TermloopDriver
	timers map[uint8]time.Time
}

func (i *inputHandler) Draw(s *tl.Screen) {
	for key, t := range i.timers {
		if time.Since(t) > keyHold {
			i.c.SetKey(key, false)
			delete(i.timers, key)
		}
	}
}

func (i *inputHandler) Tick(ev tl.Event) {
	if ev.Type != tl.EventKey {
		return
	}
	key, ok := i.d.keyMap[ev.Key]
	if !ok {
		key, ok = charMap[ev.Ch]
	}
	if !ok {
		return
	}
	i.c.SetKey(key, true)
	i.timers[key] = time.Now()
}

// just a wrapper entity to call the runner's tick function on every frame
type ticker struct {
	d    *TermloopDriver
	tick func() error
}

func (t *ticker) Draw(s *tl.Screen) {
	if t.d.err != nil {
		return
	}
	if err := t.tick(); err != nil {
		// keep the last state on screen until the user quits
		t.d.err = err
		t.d.printSyscall("HALT")
		t.d.status.SetText(fmt.Sprintf("%v (press Esc to quit)", err))
	}
}

func (t *ticker) Tick(ev tl.Event) {}

func (d *TermloopDriver) OnInit(c *hachi.Chip8) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("Standard input is not a terminal.")
	}

	// 8, 4, 6 and 2 are typically used for directional input.
	d.keyMap = map[tl.Key]uint8{
		tl.KeyArrowDown:  0x2,
		tl.KeyArrowLeft:  0x4,
		tl.KeyArrowRight: 0x6,
		tl.KeyArrowUp:    0x8,
		tl.KeyEnter:      0x5,
	}
	d.err = nil

	// init termloop
	d.g = tl.NewGame()
	d.g.SetEndKey(tl.KeyEsc)
	scr := d.g.Screen()

	scr.AddEntity(&inputHandler{c, d, make(map[uint8]time.Time)})
	scr.AddEntity(tl.NewText(0, 0, "Stack   Syscalls",
		tl.ColorDefault, tl.ColorDefault))

	// stack
	d.stack = make([]*tl.Text, hachi.StackSize)
	for i := 0; i < len(d.stack); i++ {
		d.stack[i] = tl.NewText(
			0, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.stack[i])
	}

	// syscall log
	for i := 0; i < len(d.syscalls); i++ {
		d.syscalls[i] = tl.NewText(
			8, i+1, "", tl.ColorDefault, tl.ColorDefault)
		scr.AddEntity(d.syscalls[i])
	}

	// chip info
	d.registers = tl.NewText(20, 0, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.registers)

	d.pointersAndTimers = tl.NewText(20, 1, "",
		tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.pointersAndTimers)

	d.devices = tl.NewText(20, 2, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.devices)

	d.status = tl.NewText(20, 3, "", tl.ColorRed, tl.ColorDefault)
	scr.AddEntity(d.status)

	// screen preview at 20,5
	for i := 0; i < hachi.Width; i++ {
		for j := 0; j < hachi.Height; j++ {
			d.screen[i][j] = tl.NewRectangle(20+i, 5+j, 1, 1, tl.ColorWhite)
		}
	}
	d.lastScreen = [hachi.Height][hachi.Width]uint8{}

	return nil
}

func (d *TermloopDriver) OnUpdate(c *hachi.Chip8) {
	// update chip info
	d.registers.SetText(fmt.Sprintf("Registers: % 02X", c.V))
	d.pointersAndTimers.SetText(
		fmt.Sprintf("I: %04X SP: %v, PC: %04X, DT: %02X, ST: %02X",
			c.I, c.SP, c.PC, c.DT, c.ST))

	keys := ""
	for k, down := range c.Keypad {
		if down {
			keys += fmt.Sprintf("%X", k)
		}
	}
	wait := ""
	if x, ok := c.WaitingForKey(); ok {
		wait = fmt.Sprintf(" (waiting for key into V%X)", x)
	}
	d.devices.SetText(fmt.Sprintf("Keypad: %-16s%s", keys, wait))

	// update stack
	for i := 0; i < len(d.stack); i++ {
		if i < int(c.SP) {
			d.stack[i].SetText(fmt.Sprintf("%04X", c.Stack[i]))
		} else {
			d.stack[i].SetText("")
		}
	}
}

// screenEvent names the change that triggered a screen update: a blank
// screen can only come from CLS or from sprites erasing everything.
func screenEvent(c *hachi.Chip8) string {
	if c.Screen == ([hachi.Height][hachi.Width]uint8{}) {
		return "CLS"
	}
	return "DRW"
}

func (d *TermloopDriver) UpdateScreen(c *hachi.Chip8) {
	d.printSyscall(screenEvent(c))

	scr := d.g.Screen()
	for y := 0; y < hachi.Height; y++ {
		for x := 0; x < hachi.Width; x++ {
			switch was, is := d.lastScreen[y][x], c.Screen[y][x]; {
			case is > was:
				// this pixel was activated
				scr.AddEntity(d.screen[x][y])
			case is < was:
				// this pixel was deactivated
				scr.RemoveEntity(d.screen[x][y])
			}
		}
	}

	d.lastScreen = c.Screen
}

func (d *TermloopDriver) Beep() { d.printSyscall("BEEP") }

// Loop starts termloop, which calls tick on every frame until the user
// presses Escape. Returns the error that stopped the emulator, if any.
func (d *TermloopDriver) Loop(tick func() error) error {
	d.g.Screen().AddEntity(&ticker{d: d, tick: tick})
	d.g.Start()
	return d.err
}

func (d *TermloopDriver) GetData(key string) interface{} {
	if key == "ctx" {
		return d.g
	}
	return nil
}

func (d *TermloopDriver) SetData(key string, value interface{}) error {
	if key == "key_map" {
		newMap, ok := value.(map[tl.Key]uint8)
		if !ok {
			return fmt.Errorf("Invalid type %s for key_map.", reflect.TypeOf(value))
		}
		d.keyMap = newMap
		return nil
	}
	return fmt.Errorf("Unknown data key '%s'.", key)
}

// -----------------------------------------------------------------------------

func init() {
	if err := runner.RegisterDriver("termloop", &TermloopDriver{}); err != nil {
		panic(err)
	}
}
