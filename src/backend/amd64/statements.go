package amd64

import "ir2x64/src/ir"

// lowerOperand dispatches a single top-level or nested Operand to its
// lowering rule.
func (c *Compiler) lowerOperand(op ir.Operand) error {
	switch o := op.(type) {
	case ir.DeclareVariable:
		return c.lowerDeclareVariable(o)
	case ir.SetValue:
		return c.lowerSetValue(o)
	case ir.FunctionDecl:
		return c.lowerFunctionDecl(o)
	case ir.FunctionCallStmt:
		_, err := c.lowerCall(o.Name, o.Args)
		return err
	case ir.ReturnStmt:
		return Errorf(ErrReturnOutsideFunction, "amd64: return reached outside a function body")
	case ir.IfStmt:
		return c.lowerIf(o)
	case ir.ArithmeticStmt:
		return c.lowerArithmeticStmt(o)
	case ir.InlineAssembly:
		c.buf.Append(AsmLiteral{Text: o.Text})
		return nil
	case ir.DropVariable:
		c.scope.Drop(o.Name)
		return nil
	default:
		return Errorf(ErrUnsupportedOperator, "amd64: unknown operand %T", op)
	}
}

// lowerDeclareVariable allocates the slot, evaluates the initialiser at the
// declared width, and stores it, staging through AX when both sides would
// otherwise be memory.
func (c *Compiler) lowerDeclareVariable(s ir.DeclareVariable) error {
	loc, err := c.scope.Declare(s.Name, s.Type)
	if err != nil {
		return err
	}
	sz := s.Type.Size()
	valCg, err := c.codegenSize(s.Init, sz)
	if err != nil {
		return err
	}
	locText, err := RenderLocation(loc, sz)
	if err != nil {
		return err
	}
	dst := ValueCodegen{Kind: tokStack, Text: locText, Size: sz}
	return c.emitStore(dst, valCg, sz)
}

// lowerSetValue resolves the addressable destination via codegenLHS,
// evaluates the source at the same width, then stores with the same
// memory-to-memory staging rule.
func (c *Compiler) lowerSetValue(s ir.SetValue) error {
	dst, sz, err := c.codegenLHS(s.LHS)
	if err != nil {
		return err
	}
	src, err := c.codegenSize(s.RHS, sz)
	if err != nil {
		return err
	}
	return c.emitStore(dst, src, sz)
}

// emitStore is the memory-to-memory staging rule shared by DeclareVariable
// and SetValue: x86 forbids a mov with both operands in memory, so such a
// pair is staged through AX at the given width instead.
func (c *Compiler) emitStore(dst, src ValueCodegen, sz ir.Size) error {
	if dst.IsMemory() && src.IsMemory() {
		raxSized, err := RenderRegister(ir.AX, sz)
		if err != nil {
			return err
		}
		c.buf.Append(Move{Dst: raxSized, Src: src.Text})
		c.buf.Append(Move{Dst: dst.Text, Src: raxSized})
		return nil
	}
	c.buf.Append(Move{Dst: dst.Text, Src: src.Text})
	return nil
}

// lowerArithmeticStmt handles statement-level Add/Subtract/Multiply/Divide.
// Add/Subtract emit nothing (the effect is already folded into whichever
// Value produced the operands); Multiply/Divide are fatal, matching their
// unreached codegen arm in the system this engine's arithmetic model is
// drawn from.
func (c *Compiler) lowerArithmeticStmt(s ir.ArithmeticStmt) error {
	switch s.Op {
	case ir.ArithAdd, ir.ArithSubtract:
		return nil
	default:
		return Errorf(ErrUnsupportedOperator, "amd64: statement-level %v is unsupported", s.Op)
	}
}
