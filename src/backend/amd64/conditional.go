package amd64

import "ir2x64/src/ir"

// lowerIf computes both sides of the predicate, compares, then skips the
// body with the *inverted* condition so the body falls through on truth.
//
// The cmp operands are emitted (lhs, rhs) in the predicate's own field
// order — "cmp a, b" for "a > b" — and the jump uses the predicate's
// inverse suffix so the body is skipped on negation.
func (c *Compiler) lowerIf(stmt ir.IfStmt) error {
	opSize, err := c.sizeEstimate(stmt.Predicate.RHS)
	if err != nil {
		return err
	}

	lhsCg, err := c.codegen(stmt.Predicate.LHS)
	if err != nil {
		return err
	}
	rhsCg, err := c.codegenSize(stmt.Predicate.RHS, opSize)
	if err != nil {
		return err
	}

	first, second := lhsCg, rhsCg
	if (first.IsMemory() && second.IsMemory()) || first.IsImmediate() {
		raxSized, err := RenderRegister(ir.AX, opSize)
		if err != nil {
			return err
		}
		c.buf.Append(Move{Dst: raxSized, Src: first.Text})
		first = ValueCodegen{Kind: tokRegister, Text: raxSized, Size: opSize}
	}

	c.buf.Append(Compare{A: first.Text, B: second.Text})

	label := c.buf.NextIfLabel()
	c.buf.Append(JumpConditional{Label: label, Suffix: stmt.Predicate.Op.Inverse().Suffix()})

	if _, err := c.scope.PushScope(); err != nil {
		return err
	}
	for _, op := range stmt.Body {
		if err := c.lowerOperand(op); err != nil {
			return err
		}
	}
	c.scope.Pop()

	c.buf.Append(Label{Name: label})
	return nil
}
