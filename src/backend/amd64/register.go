// Package amd64 is the x86-64 lowering backend: the register descriptor,
// instruction model and emitter, the per-Value/per-Operand lowering rules,
// function/call/conditional codegen, and the module compile driver.
package amd64

import (
	"strconv"

	"ir2x64/src/ir"
)

// widths holds one register's three textual renderings: 16/32/64-bit. No
// 8-bit view exists; a Byte-width request reaching the register renderer is
// a fatal error. Byte-sized locals live in stack storage instead, which
// does accept Byte width — see RenderLocation.
type widths struct {
	w16, w32, w64 string
}

var registerTable = map[ir.Register]widths{
	ir.AX:  {"AX", "EAX", "RAX"},
	ir.BX:  {"BX", "EBX", "RBX"},
	ir.CX:  {"CX", "ECX", "RCX"},
	ir.DX:  {"DX", "EDX", "RDX"},
	ir.SI:  {"SI", "ESI", "RSI"},
	ir.DI:  {"DI", "EDI", "RDI"},
	ir.SP:  {"SP", "ESP", "RSP"},
	ir.BP:  {"BP", "EBP", "RBP"},
	ir.R8:  {"R8W", "R8D", "R8"},
	ir.R9:  {"R9W", "R9D", "R9"},
	ir.R10: {"R10W", "R10D", "R10"},
	ir.R11: {"R11W", "R11D", "R11"},
	ir.R12: {"R12W", "R12D", "R12"},
	ir.R13: {"R13W", "R13D", "R13"},
	ir.R14: {"R14W", "R14D", "R14"},
	ir.R15: {"R15W", "R15D", "R15"},
}

// RenderRegister returns reg's textual form at the given width. Byte is
// rejected: ErrByteWidthUnsupported.
func RenderRegister(reg ir.Register, sz ir.Size) (string, error) {
	w, ok := registerTable[reg]
	if !ok {
		return "", Errorf(ErrUnsupportedOperator, "amd64: unknown register %v", reg)
	}
	switch sz {
	case ir.Word:
		return w.w16, nil
	case ir.DoubleWord:
		return w.w32, nil
	case ir.QuadWord:
		return w.w64, nil
	default:
		return "", ErrByteWidthUnsupported
	}
}

// AsPtr renders reg as a bare 64-bit pointer dereference target, e.g.
// "QWORD [RAX]" — used when loading the address held in reg through to its
// pointee at QuadWord width.
func AsPtr(reg ir.Register) (string, error) {
	w, ok := registerTable[reg]
	if !ok {
		return "", Errorf(ErrUnsupportedOperator, "amd64: unknown register %v", reg)
	}
	return ir.QuadWord.Mnemonic() + " [" + w.w64 + "]", nil
}

// AsDeref renders reg's 64-bit view as a dereference target at the given
// size, e.g. "DWORD [RAX]".
func AsDeref(reg ir.Register, sz ir.Size) (string, error) {
	if sz == ir.Byte {
		return "", ErrByteWidthUnsupported
	}
	w, ok := registerTable[reg]
	if !ok {
		return "", Errorf(ErrUnsupportedOperator, "amd64: unknown register %v", reg)
	}
	return sz.Mnemonic() + " [" + w.w64 + "]", nil
}

// RenderLocation renders a variable's storage location at the given size:
// a register at its sized view, or a stack slot as "<size> [rbp-<n>]".
// Stack slots accept Byte — the register file does not — so this is the
// one place callers should render a byte-sized local.
func RenderLocation(loc ir.VariableLocation, sz ir.Size) (string, error) {
	switch l := loc.(type) {
	case ir.RegisterLocation:
		return RenderRegister(l.Reg, sz)
	case ir.StackLocation:
		return stackOperand(l, sz), nil
	default:
		return "", Errorf(ErrIllegalLHS, "amd64: unknown variable location %T", loc)
	}
}

func stackOperand(l ir.StackLocation, sz ir.Size) string {
	return sz.Mnemonic() + " [rbp-" + strconv.Itoa(int(l.Offset)) + "]"
}
