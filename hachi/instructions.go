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

import "math/rand"

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// execute runs an opcode. PC already points to the next instruction.
// Unknown opcodes are ignored.
func (c *Chip8) execute(opcode uint16) {
	x := uint8(opcode >> 8 & 0x0F)
	y := uint8(opcode >> 4 & 0x0F)
	n := uint8(opcode & 0x0F)
	nn := uint8(opcode)
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		switch nnn {
		case 0x0E0: // CLS
			c.Screen = [Height][Width]uint8{}
			c.Redraw = true
		case 0x0EE: // RET
			c.SP--
			c.PC = c.Stack[c.SP%StackSize]
		}
		// SYS NNN calls machine code, which we don't have
	case 0x1:
		// JP NNN
		c.PC = nnn
	case 0x2:
		// CALL NNN
		c.Stack[c.SP%StackSize] = c.PC
		c.SP++
		c.PC = nnn
	case 0x3:
		// SE VX,NN
		if c.V[x] == nn {
			c.PC += 2
		}
	case 0x4:
		// SNE VX,NN
		if c.V[x] != nn {
			c.PC += 2
		}
	case 0x5:
		// SE VX,VY
		if c.V[x] == c.V[y] {
			c.PC += 2
		}
	case 0x6:
		// LD VX,NN
		c.V[x] = nn
	case 0x7:
		// ADD VX,NN
		c.V[x] += nn
	case 0x8:
		c.alu(x, y, n)
	case 0x9:
		// SNE VX,VY
		if c.V[x] != c.V[y] {
			c.PC += 2
		}
	case 0xA:
		// LD I,NNN
		c.I = nnn
	case 0xB:
		// JP V0,NNN
		c.PC = nnn + uint16(c.V[0])
	case 0xC:
		// RND VX,NN
		var r uint32
		if c.rnd != nil {
			r = c.rnd.Uint32()
		} else {
			r = rand.Uint32()
		}
		c.V[x] = uint8(r) & nn
	case 0xD:
		// DRW VX,VY,N
		c.draw(x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			// SKP VX
			if c.Keypad[c.V[x]&0x0F] {
				c.PC += 2
			}
		case 0xA1:
			// SKNP VX
			if !c.Keypad[c.V[x]&0x0F] {
				c.PC += 2
			}
		}
	case 0xF:
		c.misc(x, nn)
	}
}

// alu runs the 8XYN register to register operations.
// VF is written before VX, so the flag is lost when X is F and the operands
// read after it see the new flag.
func (c *Chip8) alu(x, y, n uint8) {
	switch n {
	case 0x0:
		// LD VX,VY
		c.V[x] = c.V[y]
	case 0x1:
		// OR VX,VY
		c.V[x] |= c.V[y]
	case 0x2:
		// AND VX,VY
		c.V[x] &= c.V[y]
	case 0x3:
		// XOR VX,VY
		c.V[x] ^= c.V[y]
	case 0x4:
		// ADD VX,VY
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[0xF] = flag(sum > 0xFF)
		c.V[x] = uint8(sum)
	case 0x5:
		// SUB VX,VY (VF = not borrow)
		c.V[0xF] = flag(c.V[x] > c.V[y])
		c.V[x] -= c.V[y]
	case 0x6:
		// SHR VX
		c.V[0xF] = c.V[x] & 0x01
		c.V[x] >>= 1
	case 0x7:
		// SUBN VX,VY
		// the flag compares VX > VY just like SUB, not VY > VX
		c.V[0xF] = flag(c.V[x] > c.V[y])
		c.V[x] = c.V[y] - c.V[x]
	case 0xE:
		// SHL VX
		c.V[0xF] = c.V[x] >> 7
		c.V[x] <<= 1
	}
}

// draw XORs an 8 pixel wide sprite of the given amount of rows, read from I,
// at VX,VY. Coordinates wrap around the screen edges.
// VF is cleared first and the coordinates are read for every set pixel, so
// DRW VF,.. starts at column 0 and moves once a collision sets the flag.
func (c *Chip8) draw(x, y, rows uint8) {
	c.V[0xF] = 0

	for row := 0; row < int(rows); row++ {
		sprite := c.Memory[(c.I+uint16(row))&addrMask]

		for col := 0; col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			sx := (int(c.V[x]) + col) % Width
			sy := (int(c.V[y]) + row) % Height
			if c.Screen[sy][sx] == 1 {
				// collision, this pixel is about to be erased
				c.V[0xF] = 1
			}
			c.Screen[sy][sx] ^= 1
		}
	}

	c.Redraw = true
}

// misc runs the FXNN instructions.
func (c *Chip8) misc(x, nn uint8) {
	switch nn {
	case 0x07:
		// LD VX,DT
		c.V[x] = c.DT
	case 0x0A:
		// LD VX,K
		// a key that is already down satisfies the wait right away, the
		// highest one wins
		for k := len(c.Keypad) - 1; k >= 0; k-- {
			if c.Keypad[k] {
				c.V[x] = uint8(k)
				return
			}
		}
		c.waiting = true
		c.waitReg = x
	case 0x15:
		// LD DT,VX
		c.DT = c.V[x]
	case 0x18:
		// LD ST,VX
		c.ST = c.V[x]
	case 0x1E:
		// ADD I,VX
		c.V[0xF] = flag(uint32(c.I)+uint32(c.V[x]) > 0xFFF)
		c.I += uint16(c.V[x])
	case 0x29:
		// LD I,CHAR VX
		c.I = uint16(c.V[x]) * GlyphSize
	case 0x33:
		// LD [I],BCD VX
		value := c.V[x]
		c.Memory[c.I&addrMask] = value / 100
		c.Memory[(c.I+1)&addrMask] = value / 10 % 10
		c.Memory[(c.I+2)&addrMask] = value % 10
	case 0x55:
		// LD [I],VX
		for i := uint16(0); i <= uint16(x); i++ {
			c.Memory[(c.I+i)&addrMask] = c.V[i]
		}
	case 0x65:
		// LD VX,[I]
		for i := uint16(0); i <= uint16(x); i++ {
			c.V[i] = c.Memory[(c.I+i)&addrMask]
		}
	}
}

// check looks for the conditions that strict mode reports before an opcode
// is executed.
func (c *Chip8) check(pc, opcode uint16) error {
	f := Fault{pc, opcode}
	x := opcode >> 8 & 0x0F

	if int(pc)+1 >= MemorySize {
		return &AccessErr{f, int(pc) + 1}
	}

	// end is one past the last address the instruction touches
	end := 0
	switch opcode >> 12 {
	case 0x0:
		if opcode == 0x00EE && c.SP == 0 {
			return &StackUnderflowErr{f}
		}
	case 0x2:
		if c.SP >= StackSize {
			return &StackOverflowErr{f}
		}
	case 0xD:
		end = int(c.I) + int(opcode&0x0F)
	case 0xF:
		switch opcode & 0xFF {
		case 0x1E:
			if i := int(c.I) + int(c.V[x]); i > 0xFFF {
				return &IndexOverflowErr{f, i}
			}
		case 0x33:
			end = int(c.I) + 3
		case 0x55, 0x65:
			end = int(c.I) + int(x) + 1
		}
	}

	if end > MemorySize {
		return &AccessErr{f, end - 1}
	}
	return nil
}
