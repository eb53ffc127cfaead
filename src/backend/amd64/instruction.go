package amd64

import "ir2x64/src/ir"

// tokenKind classifies a ValueCodegen token so lowering rules can decide
// when memory-to-memory staging or an AX pre-load is required, without
// re-parsing the rendered text.
type tokenKind int

const (
	tokRegister tokenKind = iota
	tokStack
	tokPointer
	tokNumber
	tokCharLiteral
	tokStringLiteral
)

// ValueCodegen is the result of lowering one ir.Value: its rendered
// assembler text, the kind of operand it is, and the width it was rendered
// at.
type ValueCodegen struct {
	Kind tokenKind
	Text string
	Size ir.Size
}

// IsMemory reports whether this token addresses memory (a stack slot or a
// pointer dereference) rather than a register or an immediate.
func (v ValueCodegen) IsMemory() bool {
	return v.Kind == tokStack || v.Kind == tokPointer
}

// IsImmediate reports whether this token is a literal constant that cannot
// be the destination of a mov.
func (v ValueCodegen) IsImmediate() bool {
	return v.Kind == tokNumber || v.Kind == tokCharLiteral
}

// Instruction is the closed set of emitted assembler records, each knowing
// how to render its own Intel-syntax text.
type Instruction interface {
	isInstruction()
	Render() string
}

// AsmLiteral passes raw text through verbatim (InlineAssembly statements).
type AsmLiteral struct{ Text string }

// Label emits a bare "<name>:" line — a function entry point or an
// internally allocated branch target.
type Label struct{ Name string }

// Move is "mov dst, src".
type Move struct{ Dst, Src string }

// IntMultiply is "imul dst, src" (signed multiply, two-address form).
type IntMultiply struct{ Dst, Src string }

// Multiply is "mul dst, src" — reserved; the lowering never actually emits
// this (statement-level Multiply is a recognised-but-unwired variant).
type Multiply struct{ Dst, Src string }

// Compare is "cmp a, b".
type Compare struct{ A, B string }

// Add is "add dst, src".
type Add struct{ Dst, Src string }

// Sub is "sub dst, src".
type Sub struct{ Dst, Src string }

// LoadAddress is "lea dst, src".
type LoadAddress struct{ Dst, Src string }

// Push is "push src".
type Push struct{ Src string }

// Pop is "pop dst".
type Pop struct{ Dst string }

// Return is the bare "ret".
type Return struct{}

// Call is "call name".
type Call struct{ Name string }

// JumpConditional is "j<suffix> label".
type JumpConditional struct {
	Label  string
	Suffix string
}

func (AsmLiteral) isInstruction()      {}
func (Label) isInstruction()           {}
func (Move) isInstruction()            {}
func (IntMultiply) isInstruction()     {}
func (Multiply) isInstruction()        {}
func (Compare) isInstruction()         {}
func (Add) isInstruction()             {}
func (Sub) isInstruction()             {}
func (LoadAddress) isInstruction()     {}
func (Push) isInstruction()            {}
func (Pop) isInstruction()             {}
func (Return) isInstruction()          {}
func (Call) isInstruction()            {}
func (JumpConditional) isInstruction() {}

func (i AsmLiteral) Render() string  { return i.Text }
func (i Label) Render() string       { return i.Name + ":" }
func (i Move) Render() string        { return "mov " + i.Dst + ", " + i.Src }
func (i IntMultiply) Render() string { return "imul " + i.Dst + ", " + i.Src }
func (i Multiply) Render() string    { return "mul " + i.Dst + ", " + i.Src }
func (i Compare) Render() string     { return "cmp " + i.A + ", " + i.B }
func (i Add) Render() string         { return "add " + i.Dst + ", " + i.Src }
func (i Sub) Render() string         { return "sub " + i.Dst + ", " + i.Src }
func (i LoadAddress) Render() string { return "lea " + i.Dst + ", " + i.Src }
func (i Push) Render() string        { return "push " + i.Src }
func (i Pop) Render() string         { return "pop " + i.Dst }
func (Return) Render() string        { return "ret" }
func (i Call) Render() string        { return "call " + i.Name }
func (i JumpConditional) Render() string {
	return "j" + i.Suffix + " " + i.Label
}
