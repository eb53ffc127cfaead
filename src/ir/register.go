package ir

import "fmt"

// Register is a physical x86-64 general-purpose register identity. The
// textual rendering of a register at a given Size lives in
// src/backend/amd64, which is the only package that knows about assembler
// mnemonics; this package only needs identity.
type Register int

const (
	AX Register = iota
	BX
	CX
	DX
	SI
	DI
	SP
	BP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// ParameterRegisters is the System V AMD64 integer parameter order.
var ParameterRegisters = []Register{DI, SI, DX, CX, R8, R9}

func (r Register) String() string {
	names := [...]string{"AX", "BX", "CX", "DX", "SI", "DI", "SP", "BP",
		"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15"}
	if int(r) < 0 || int(r) >= len(names) {
		return fmt.Sprintf("reg(%d)", int(r))
	}
	return names[r]
}

// VariableLocation is where a named variable lives: a physical register
// (function parameters, by convention) or a stack slot below rbp (every
// declared local).
type VariableLocation interface {
	isVariableLocation()
}

// RegisterLocation binds a name directly to a physical register.
type RegisterLocation struct {
	Reg Register
}

// StackLocation binds a name to a byte offset below rbp.
type StackLocation struct {
	Offset uint32
}

func (RegisterLocation) isVariableLocation() {}
func (StackLocation) isVariableLocation()    {}
