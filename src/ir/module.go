package ir

// IRModule is the root of a program: an ordered list of top-level operands,
// almost always FunctionDecl statements.
type IRModule struct {
	Operands []Operand
}

// NewIRModule returns an empty module ready for Append calls.
func NewIRModule() *IRModule {
	return &IRModule{}
}

// Append adds one or more top-level operands to the module, in order.
func (m *IRModule) Append(ops ...Operand) {
	m.Operands = append(m.Operands, ops...)
}
