package amd64

import (
	"strconv"

	"ir2x64/src/ir"
)

// codegen lowers v at its estimated width.
func (c *Compiler) codegen(v ir.Value) (ValueCodegen, error) {
	sz, err := c.sizeEstimate(v)
	if err != nil {
		return ValueCodegen{}, err
	}
	return c.codegenSize(v, sz)
}

// codegenSize lowers v, forcing the given width where the rule allows an
// explicit override (Add/Sub, literals); Variable/Reference/Dereference
// always render at their own declared/pointee width regardless of sz.
func (c *Compiler) codegenSize(v ir.Value, sz ir.Size) (ValueCodegen, error) {
	switch val := v.(type) {
	case ir.NullValue:
		return ValueCodegen{}, ErrNullValue

	case ir.IntLiteral:
		return ValueCodegen{Kind: tokNumber, Text: val.Text, Size: sz}, nil

	case ir.CharLiteral:
		return ValueCodegen{Kind: tokCharLiteral, Text: "'" + string(val.Ch) + "'", Size: ir.Byte}, nil

	case ir.StringLiteral:
		label := c.buf.Intern(val.Text)
		return ValueCodegen{Kind: tokStringLiteral, Text: label, Size: ir.QuadWord}, nil

	case ir.VariableRef:
		loc, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return ValueCodegen{}, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		text, err := RenderLocation(loc, typ.Size())
		if err != nil {
			return ValueCodegen{}, err
		}
		return ValueCodegen{Kind: locationKind(loc), Text: text, Size: typ.Size()}, nil

	case ir.Reference:
		loc, _, ok := c.scope.Lookup(val.Name)
		if !ok {
			return ValueCodegen{}, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		stackLoc, ok := loc.(ir.StackLocation)
		if !ok {
			return ValueCodegen{}, Errorf(ErrIllegalLHS, "amd64: cannot take address of register-bound %q", val.Name)
		}
		addr := "[rbp-" + strconv.Itoa(int(stackLoc.Offset)) + "]"
		rax64, err := RenderRegister(ir.AX, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, err
		}
		c.buf.Append(LoadAddress{Dst: rax64, Src: addr})
		return ValueCodegen{Kind: tokRegister, Text: rax64, Size: ir.QuadWord}, nil

	case ir.Dereference:
		loc, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return ValueCodegen{}, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		derefSz, err := typ.DerefSize()
		if err != nil {
			return ValueCodegen{}, err
		}
		ptrText, err := RenderLocation(loc, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, err
		}
		rax64, err := RenderRegister(ir.AX, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, err
		}
		c.buf.Append(Move{Dst: rax64, Src: ptrText})
		subAX, err := RenderRegister(ir.AX, derefSz)
		if err != nil {
			return ValueCodegen{}, err
		}
		c.buf.Append(Move{Dst: subAX, Src: "[" + subAX + "]"})
		return ValueCodegen{Kind: tokRegister, Text: subAX, Size: derefSz}, nil

	case ir.FunctionCallValue:
		return c.lowerCall(val.Name, val.Args)

	case ir.AddValue:
		return c.lowerArith(val.LHS, val.RHS, true, sz)

	case ir.SubValue:
		return c.lowerArith(val.LHS, val.RHS, false, sz)

	default:
		return ValueCodegen{}, Errorf(ErrUnsupportedOperator, "amd64: unknown value %T", v)
	}
}

// codegenLHS is the restricted addressable form: only Variable and
// Dereference may be an assignment target. Returns the destination token
// plus the width the assignment should use.
func (c *Compiler) codegenLHS(v ir.Value) (ValueCodegen, ir.Size, error) {
	switch val := v.(type) {
	case ir.VariableRef:
		loc, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return ValueCodegen{}, 0, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		text, err := RenderLocation(loc, typ.Size())
		if err != nil {
			return ValueCodegen{}, 0, err
		}
		return ValueCodegen{Kind: locationKind(loc), Text: text, Size: typ.Size()}, typ.Size(), nil

	case ir.Dereference:
		loc, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return ValueCodegen{}, 0, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		derefSz, err := typ.DerefSize()
		if err != nil {
			return ValueCodegen{}, 0, err
		}
		ptrText, err := RenderLocation(loc, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, 0, err
		}
		rax64, err := RenderRegister(ir.AX, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, 0, err
		}
		c.buf.Append(Move{Dst: rax64, Src: ptrText})
		deref, err := AsDeref(ir.AX, derefSz)
		if err != nil {
			return ValueCodegen{}, 0, err
		}
		return ValueCodegen{Kind: tokPointer, Text: deref, Size: derefSz}, derefSz, nil

	default:
		return ValueCodegen{}, 0, Errorf(ErrIllegalLHS, "amd64: %T is not an addressable location", v)
	}
}

// lowerArith evaluates lhs then rhs at the operation's width, stages lhs
// into AX, then add/sub rhs into it. Nested arithmetic therefore clobbers
// AX — a known limitation preserved as-is rather than fixed with a scratch
// pool.
func (c *Compiler) lowerArith(lhs, rhs ir.Value, isAdd bool, sz ir.Size) (ValueCodegen, error) {
	lcg, err := c.codegenSize(lhs, sz)
	if err != nil {
		return ValueCodegen{}, err
	}
	rcg, err := c.codegenSize(rhs, sz)
	if err != nil {
		return ValueCodegen{}, err
	}
	raxSized, err := RenderRegister(ir.AX, sz)
	if err != nil {
		return ValueCodegen{}, err
	}
	c.buf.Append(Move{Dst: raxSized, Src: lcg.Text})
	if isAdd {
		c.buf.Append(Add{Dst: raxSized, Src: rcg.Text})
	} else {
		c.buf.Append(Sub{Dst: raxSized, Src: rcg.Text})
	}
	return ValueCodegen{Kind: tokRegister, Text: raxSized, Size: sz}, nil
}

// sizeEstimate is the recursive width estimate for Add/Sub when no
// explicit size is supplied.
func (c *Compiler) sizeEstimate(v ir.Value) (ir.Size, error) {
	sz, ok, err := c.sizeEstimateOk(v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return ir.DoubleWord, nil
	}
	return sz, nil
}

func (c *Compiler) sizeEstimateOk(v ir.Value) (ir.Size, bool, error) {
	switch val := v.(type) {
	case ir.VariableRef:
		_, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return 0, false, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		return typ.Size(), true, nil
	case ir.Reference:
		return ir.QuadWord, true, nil
	case ir.Dereference:
		_, typ, ok := c.scope.Lookup(val.Name)
		if !ok {
			return 0, false, Errorf(ErrUnknownVariable, "amd64: variable %q", val.Name)
		}
		sz, err := typ.DerefSize()
		if err != nil {
			return 0, false, err
		}
		return sz, true, nil
	case ir.FunctionCallValue:
		sig, ok := c.scope.LookupFunction(val.Name)
		if !ok {
			return 0, false, Errorf(ErrUnknownFunction, "amd64: function %q", val.Name)
		}
		return sig.ReturnType.Size(), true, nil
	case ir.AddValue:
		return c.nestedEstimate(val.LHS, val.RHS)
	case ir.SubValue:
		return c.nestedEstimate(val.LHS, val.RHS)
	default:
		// IntLiteral, CharLiteral, StringLiteral, NullValue: no type to
		// fall back on.
		return 0, false, nil
	}
}

func (c *Compiler) nestedEstimate(lhs, rhs ir.Value) (ir.Size, bool, error) {
	if sz, ok, err := c.sizeEstimateOk(lhs); err != nil {
		return 0, false, err
	} else if ok {
		return sz, true, nil
	}
	return c.sizeEstimateOk(rhs)
}

func locationKind(loc ir.VariableLocation) tokenKind {
	if _, isReg := loc.(ir.RegisterLocation); isReg {
		return tokRegister
	}
	return tokStack
}

