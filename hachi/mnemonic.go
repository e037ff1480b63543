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

import "fmt"

// aluMnemonics maps the last nibble of 8XYN opcodes to their name.
var aluMnemonics = map[uint16]string{
	0x0: "LD", 0x1: "OR", 0x2: "AND", 0x3: "XOR", 0x4: "ADD",
	0x5: "SUB", 0x6: "SHR", 0x7: "SUBN", 0xE: "SHL",
}

// miscFormats maps the last byte of FXNN opcodes to a format taking X.
var miscFormats = map[uint16]string{
	0x07: "LD V%1X,DT",
	0x0A: "LD V%1X,K",
	0x15: "LD DT,V%1X",
	0x18: "LD ST,V%1X",
	0x1E: "ADD I,V%1X",
	0x29: "LD I,CHAR V%1X",
	0x33: "LD [I],BCD V%1X",
	0x55: "LD [I],V%1X",
	0x65: "LD V%1X,[I]",
}

// Mnemonic returns a pseudo-asm representation of an opcode, such as
// "LD V1,0A" or "DRW V0,V1,5". Opcodes the interpreter ignores are shown as
// raw data ("DW 8AB9").
func Mnemonic(opcode uint16) string {
	x := opcode >> 8 & 0x0F
	y := opcode >> 4 & 0x0F
	nn := opcode & 0xFF
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		switch nnn {
		case 0x0E0:
			return "CLS"
		case 0x0EE:
			return "RET"
		}
		return fmt.Sprintf("SYS %03X", nnn)
	case 0x1:
		return fmt.Sprintf("JP %03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL %03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%1X,%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%1X,%02X", x, nn)
	case 0x5:
		return fmt.Sprintf("SE V%1X,V%1X", x, y)
	case 0x6:
		return fmt.Sprintf("LD V%1X,%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%1X,%02X", x, nn)
	case 0x8:
		if name, ok := aluMnemonics[opcode&0x0F]; ok {
			return fmt.Sprintf("%s V%1X,V%1X", name, x, y)
		}
	case 0x9:
		return fmt.Sprintf("SNE V%1X,V%1X", x, y)
	case 0xA:
		return fmt.Sprintf("LD I,%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0,%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%1X,%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%1X,V%1X,%1X", x, y, opcode&0x0F)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%1X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%1X", x)
		}
	case 0xF:
		if format, ok := miscFormats[nn]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf("DW %04X", opcode)
}
