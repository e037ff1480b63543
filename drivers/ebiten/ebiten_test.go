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

package ebiten

import (
	"testing"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultKeyMapCoversKeypad(t *testing.T) {
	seen := map[uint8]bool{}
	for _, k := range DefaultKeyMap() {
		seen[k] = true
	}
	assert.Len(t, seen, 16)
}

func TestKeypadState(t *testing.T) {
	held := map[ebiten.Key]bool{ebiten.KeyQ: true, ebiten.KeyV: true}
	keypad := keypadState(DefaultKeyMap(), func(k ebiten.Key) bool { return held[k] })

	expected := [16]bool{}
	expected[0x4] = true
	expected[0xF] = true
	assert.Equal(t, expected, keypad)
}

func TestFillPixels(t *testing.T) {
	var scr [hachi.Height][hachi.Width]uint8
	scr[1][2] = 1

	dst := make([]byte, hachi.Width*hachi.Height*4)
	fillPixels(dst, &scr)

	on := (1*hachi.Width + 2) * 4
	assert.Equal(t, []byte{pixelOn.R, pixelOn.G, pixelOn.B, pixelOn.A}, dst[on:on+4])
	assert.Equal(t, []byte{pixelOff.R, pixelOff.G, pixelOff.B, pixelOff.A}, dst[0:4])
}

func TestStatusLine(t *testing.T) {
	c, err := hachi.New(nil)
	assert.NoError(t, err)
	assert.NoError(t, c.LoadRaw([]byte{0xF5, 0x0A}))
	c.SetKey(0xA, true)
	assert.Equal(t, "PC: 0200 I: 0000 DT: 00 ST: 00 Keys: A", statusLine(c))

	c.SetKey(0xA, false)
	assert.NoError(t, c.Step())
	assert.Contains(t, statusLine(c), "(LD V5,K)")
}

func TestSetData(t *testing.T) {
	d := &EbitenDriver{}
	custom := map[ebiten.Key]uint8{ebiten.KeySpace: 0x5}
	assert.NoError(t, d.SetData("key_map", custom))
	assert.Equal(t, custom, d.GetData("key_map"))
	assert.Error(t, d.SetData("key_map", 1))
	assert.Error(t, d.SetData("palette", nil))
}

func TestBeepFlashesBorder(t *testing.T) {
	d := &EbitenDriver{}
	d.Beep()
	assert.Equal(t, flashFrames, d.flash)
}
