package amd64

import (
	"fmt"

	"ir2x64/src/ir"
	"ir2x64/src/util"
)

// lowerFunctionDecl emits the prologue, binds parameters to their
// registers, lowers the body, and hands off to lowerReturn once a Return
// statement is reached.
func (c *Compiler) lowerFunctionDecl(fd ir.FunctionDecl) error {
	if len(fd.Params) > len(ir.ParameterRegisters) {
		return Errorf(ErrTooManyParameters, "amd64: function %q declares %d parameters", fd.Name, len(fd.Params))
	}
	if !containsReturn(fd.Body) {
		return Errorf(ErrMissingReturn, "amd64: function %q has no return statement", fd.Name)
	}

	c.scope.PushFunction()
	util.Log.WithField("function", fd.Name).Debug("lowering function")

	c.buf.Append(Label{Name: fd.Name})
	rbp, err := RenderRegister(ir.BP, ir.QuadWord)
	if err != nil {
		return err
	}
	rsp, err := RenderRegister(ir.SP, ir.QuadWord)
	if err != nil {
		return err
	}
	c.buf.Append(Push{Src: rbp})
	c.buf.Append(Move{Dst: rbp, Src: rsp})
	placeholderIdx := c.buf.Placeholder()

	for i, p := range fd.Params {
		if err := c.scope.Bind(p.Name, p.Type, ir.RegisterLocation{Reg: ir.ParameterRegisters[i]}); err != nil {
			return err
		}
	}

	for _, op := range fd.Body {
		if ret, ok := op.(ir.ReturnStmt); ok {
			return c.lowerReturn(ret, fd.ReturnType, placeholderIdx)
		}
		if err := c.lowerOperand(op); err != nil {
			return err
		}
	}

	// Unreachable under the containsReturn precondition above; the function
	// scope is still popped here. Error returns from the body loop above
	// leave it pushed.
	c.scope.Pop()
	return Errorf(ErrMissingReturn, "amd64: function %q fell through without returning", fd.Name)
}

func containsReturn(body []ir.Operand) bool {
	for _, op := range body {
		if _, ok := op.(ir.ReturnStmt); ok {
			return true
		}
	}
	return false
}

// lowerReturn moves the value into AX at the return width if it isn't
// already there, patches or removes the stack-frame placeholder, and emits
// the epilogue.
func (c *Compiler) lowerReturn(ret ir.ReturnStmt, retType ir.OperandType, placeholderIdx int) error {
	if ret.Value != nil {
		if _, isNull := ret.Value.(ir.NullValue); !isNull {
			sz := retType.Size()
			cg, err := c.codegenSize(ret.Value, sz)
			if err != nil {
				return err
			}
			raxSized, err := RenderRegister(ir.AX, sz)
			if err != nil {
				return err
			}
			if cg.Text != raxSized {
				c.buf.Append(Move{Dst: raxSized, Src: cg.Text})
			}
		}
	}

	n := c.scope.FrameSize()
	c.buf.PatchFrameSize(placeholderIdx, n)

	rbp, err := RenderRegister(ir.BP, ir.QuadWord)
	if err != nil {
		return err
	}
	rsp, err := RenderRegister(ir.SP, ir.QuadWord)
	if err != nil {
		return err
	}
	c.buf.Append(Move{Dst: rsp, Src: rbp})
	c.buf.Append(Pop{Dst: rbp})
	c.buf.Append(Return{})
	c.scope.Pop()
	return nil
}

// lowerCall does a conservative caller-saved spill/restore of every
// parameter register used by the call, regardless of whether the caller
// happens to hold a live value there. Shared by FunctionCallValue (used as
// an expression operand) and FunctionCallStmt (called for side effects,
// result discarded).
func (c *Compiler) lowerCall(name string, args []ir.Value) (ValueCodegen, error) {
	sig, ok := c.scope.LookupFunction(name)
	if !ok {
		return ValueCodegen{}, Errorf(ErrUnknownFunction, "amd64: function %q", name)
	}
	if len(args) != len(sig.Params) {
		return ValueCodegen{}, fmt.Errorf("amd64: call to %q passes %d arguments, want %d", name, len(args), len(sig.Params))
	}
	if len(args) > len(ir.ParameterRegisters) {
		return ValueCodegen{}, Errorf(ErrTooManyParameters, "amd64: call to %q passes %d arguments", name, len(args))
	}

	spilled := make([]string, 0, len(args))
	for i, arg := range args {
		paramSz := sig.Params[i].Type.Size()
		reg := ir.ParameterRegisters[i]

		argCg, err := c.codegenSize(arg, paramSz)
		if err != nil {
			return ValueCodegen{}, err
		}
		reg64, err := RenderRegister(reg, ir.QuadWord)
		if err != nil {
			return ValueCodegen{}, err
		}
		regSized, err := RenderRegister(reg, paramSz)
		if err != nil {
			return ValueCodegen{}, err
		}

		c.buf.Append(Push{Src: reg64})
		spilled = append(spilled, reg64)
		c.buf.Append(Move{Dst: regSized, Src: argCg.Text})
	}

	c.buf.Append(Call{Name: name})

	for i := len(spilled) - 1; i >= 0; i-- {
		c.buf.Append(Pop{Dst: spilled[i]})
	}

	raxRet, err := RenderRegister(ir.AX, sig.ReturnType.Size())
	if err != nil {
		return ValueCodegen{}, err
	}
	return ValueCodegen{Kind: tokRegister, Text: raxRet, Size: sig.ReturnType.Size()}, nil
}
