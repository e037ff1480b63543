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

// An OutOfMemoryErr is returned upon attempting to load a program that
// exceeds the memory's capacity.
type OutOfMemoryErr struct {
	ProgramSize int
}

func (e *OutOfMemoryErr) Error() string {
	return fmt.Sprintf("Not enough memory (program size: %v, free memory: %v)",
		e.ProgramSize, MaxProgramSize)
}

// An IOErr is returned when a program file can't be opened or read.
type IOErr struct {
	Path string
	Err  error
}

func (e *IOErr) Error() string {
	return fmt.Sprintf("Can't read program %q: %v", e.Path, e.Err)
}

func (e *IOErr) Unwrap() error { return e.Err }

// -----------------------------------------------------------------------------
// The following are only returned in strict mode. The faulting instruction is
// not executed, so the machine state is the one right before it.

// A Fault locates the instruction that caused a strict mode error.
type Fault struct {
	PC     uint16
	Opcode uint16
}

func (f Fault) String() string {
	return fmt.Sprintf("%04X (%04X %s)", f.PC, f.Opcode, Mnemonic(f.Opcode))
}

// A StackOverflowErr is returned when a call would nest deeper than
// StackSize.
type StackOverflowErr struct{ Fault }

func (e *StackOverflowErr) Error() string {
	return "Stack overflow at " + e.Fault.String() + "."
}

// A StackUnderflowErr is returned when returning with an empty stack.
type StackUnderflowErr struct{ Fault }

func (e *StackUnderflowErr) Error() string {
	return "Stack underflow at " + e.Fault.String() + "."
}

// An IndexOverflowErr is returned when ADD I,VX moves I past 0xFFF.
type IndexOverflowErr struct {
	Fault
	I int
}

func (e *IndexOverflowErr) Error() string {
	return fmt.Sprintf("Index overflow (I: %04X) at %v.", e.I, e.Fault)
}

// An AccessErr is returned when an instruction would read or write memory
// past the last address.
type AccessErr struct {
	Fault
	Address int
}

func (e *AccessErr) Error() string {
	return fmt.Sprintf("Access past end of memory (address: %X) at %v.",
		e.Address, e.Fault)
}
