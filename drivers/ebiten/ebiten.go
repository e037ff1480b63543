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

// Package ebiten implements a windowed driver for hachi using ebiten.
//
// The window shows the screen scaled up, a status line with the program
// counter, the timers and the pressed keys, and flashes its border while the
// sound timer is active. Escape or closing the window quits.
//
// The default keypad layout is:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
//
// Key mappings can be modified through SetDriverData("key_map", myMap), where
// myMap is a map[ebiten.Key]uint8 with ebiten keys as keys and Chip-8 keys
// (0x0~0xF) as values.
package ebiten

import (
	"errors"
	"fmt"
	"image/color"
	"reflect"
	"strings"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/Francesco149/go-hachi/v2/runner"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

const (
	scale        = 10
	border       = 4
	statusHeight = 18

	screenWidth  = hachi.Width*scale + 2*border
	screenHeight = hachi.Height*scale + 2*border + statusHeight

	// frames the border stays lit after a beep
	flashFrames = 4
)

var (
	pixelOn     = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	pixelOff    = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	borderOff   = color.RGBA{0x30, 0x30, 0x30, 0xFF}
	borderBeep  = color.RGBA{0xE0, 0x60, 0x20, 0xFF}
	statusColor = color.RGBA{0xBE, 0xBE, 0xBE, 0xFF}
)

// DefaultKeyMap maps the left side of a qwerty keyboard to the keypad.
func DefaultKeyMap() map[ebiten.Key]uint8 {
	return map[ebiten.Key]uint8{
		ebiten.Key1: 0x1, ebiten.Key2: 0x2, ebiten.Key3: 0x3, ebiten.Key4: 0xC,
		ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
		ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
		ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
	}
}

// An EbitenDriver shows the screen in a window and reads the keypad from the
// keyboard.
type EbitenDriver struct {
	keyMap map[ebiten.Key]uint8
	pixels []byte
	window *ebiten.Image
	flash  int
	status string
	tick   func() error
}

// keypadState returns the keypad as seen through keyMap, given a function
// that reports whether a host key is held.
func keypadState(keyMap map[ebiten.Key]uint8,
	pressed func(ebiten.Key) bool) (keypad [16]bool) {

	for key, k := range keyMap {
		if pressed(key) {
			keypad[k&0xF] = true
		}
	}
	return
}

// fillPixels converts the screen into RGBA pixels.
func fillPixels(dst []byte, scr *[hachi.Height][hachi.Width]uint8) {
	for y := 0; y < hachi.Height; y++ {
		for x := 0; x < hachi.Width; x++ {
			c := pixelOff
			if scr[y][x] != 0 {
				c = pixelOn
			}
			i := (y*hachi.Width + x) * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

func statusLine(c *hachi.Chip8) string {
	var keys strings.Builder
	for k, down := range c.Keypad {
		if down {
			fmt.Fprintf(&keys, "%X", k)
		}
	}
	s := fmt.Sprintf("PC: %04X I: %04X DT: %02X ST: %02X Keys: %s",
		c.PC, c.I, c.DT, c.ST, keys.String())
	if x, ok := c.WaitingForKey(); ok {
		s += fmt.Sprintf(" (LD V%X,K)", x)
	}
	return s
}

func (d *EbitenDriver) OnInit(c *hachi.Chip8) error {
	if d.keyMap == nil {
		d.keyMap = DefaultKeyMap()
	}
	d.pixels = make([]byte, hachi.Width*hachi.Height*4)
	fillPixels(d.pixels, &c.Screen)
	d.flash = 0
	d.status = statusLine(c)
	return nil
}

func (d *EbitenDriver) OnUpdate(c *hachi.Chip8) {
	keypad := keypadState(d.keyMap, ebiten.IsKeyPressed)
	for k, down := range keypad {
		c.SetKey(uint8(k), down)
	}
	d.status = statusLine(c)
}

func (d *EbitenDriver) UpdateScreen(c *hachi.Chip8) {
	fillPixels(d.pixels, &c.Screen)
}

func (d *EbitenDriver) Beep() { d.flash = flashFrames }

// Loop opens the window and calls tick once per frame until the window is
// closed, Escape is pressed or tick fails.
func (d *EbitenDriver) Loop(tick func() error) error {
	d.tick = tick
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("hachi")

	err := ebiten.RunGame(d)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.
func (d *EbitenDriver) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if d.flash > 0 {
		d.flash--
	}
	if d.tick == nil {
		return nil
	}
	return d.tick()
}

// Draw implements ebiten.Game.
func (d *EbitenDriver) Draw(screen *ebiten.Image) {
	if d.window == nil {
		d.window = ebiten.NewImage(hachi.Width, hachi.Height)
	}
	d.window.WritePixels(d.pixels)

	if d.flash > 0 {
		screen.Fill(borderBeep)
	} else {
		screen.Fill(borderOff)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(border, border)
	screen.DrawImage(d.window, op)

	text.Draw(screen, d.status, basicfont.Face7x13,
		border, screenHeight-border-4, statusColor)
}

// Layout implements ebiten.Game.
func (d *EbitenDriver) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (d *EbitenDriver) GetData(key string) interface{} {
	if key == "key_map" {
		return d.keyMap
	}
	return nil
}

func (d *EbitenDriver) SetData(key string, value interface{}) error {
	if key == "key_map" {
		newMap, ok := value.(map[ebiten.Key]uint8)
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
	if err := runner.RegisterDriver("ebiten", &EbitenDriver{}); err != nil {
		panic(err)
	}
}
