package amd64

import (
	"strings"

	"ir2x64/src/ir"
	"ir2x64/src/ir/scope"
	"ir2x64/src/util"
)

// Compiler is the per-module aggregate: created fresh for one module,
// mutated exclusively by the single lowering goroutine, and discarded once
// Compile returns the rendered text.
type Compiler struct {
	buf   *Buffer
	scope *scope.Manager
	opts  util.Options
}

// NewCompiler returns a Compiler ready to compile one IRModule.
func NewCompiler(opts util.Options) *Compiler {
	return &Compiler{
		buf:   NewBuffer(opts.LabelStart),
		scope: scope.NewManager(),
		opts:  opts,
	}
}

// Compile optionally runs the dead-variable pass, pre-registers every
// top-level function's signature (so forward calls are legal), lowers
// every top-level operand in order, then renders the ".rodata"/".text"
// sections.
func (c *Compiler) Compile(m *ir.IRModule) (string, error) {
	if c.opts.RunOptimise {
		m.Optimise()
	}

	for _, op := range m.Operands {
		fd, ok := op.(ir.FunctionDecl)
		if !ok {
			continue
		}
		sig := scope.Signature{Name: fd.Name, ReturnType: fd.ReturnType, Params: fd.Params}
		if err := c.scope.DeclareFunction(sig); err != nil {
			util.Log.WithError(err).WithField("function", fd.Name).Error("duplicate function signature")
			return "", err
		}
	}

	for _, op := range m.Operands {
		if err := c.lowerOperand(op); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	sb.WriteString("section .rodata\n")
	sb.WriteString(c.buf.RenderRodata())
	sb.WriteString("\n")
	sb.WriteString("section .text\n")
	sb.WriteString(c.buf.RenderText())
	return sb.String(), nil
}

// Compile is the package-level convenience entry point: build a fresh
// Compiler with opts and compile m in one call, the shape cmd/irdump and
// most tests use.
func Compile(m *ir.IRModule, opts util.Options) (string, error) {
	return NewCompiler(opts).Compile(m)
}
