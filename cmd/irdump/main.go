// Command irdump is a tiny example driver, not a general front end: it
// builds one of a handful of canonical IR modules programmatically and
// prints the compiled assembly, exercising the core the way any external
// collaborator (a real front end, a test harness) would. There is no
// source-file parsing anywhere in this repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ir2x64/src/backend/amd64"
	"ir2x64/src/ir"
	"ir2x64/src/util"
)

var noOptimise bool
var scenario string

func main() {
	root := &cobra.Command{
		Use:   "irdump",
		Short: "Build a canonical IR module and print its compiled x86-64 assembly",
		RunE:  run,
	}
	root.Flags().StringVar(&scenario, "scenario", "identity",
		"which canonical module to build: identity, forwarding, deref, conditional, call, string")
	root.Flags().BoolVar(&noOptimise, "no-optimise", false,
		"skip the dead-variable pass before compiling")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	module, err := buildScenario(scenario)
	if err != nil {
		return err
	}

	opts := util.DefaultOptions()
	opts.RunOptimise = !noOptimise

	text, err := amd64.Compile(module, opts)
	if err != nil {
		util.Log.WithError(err).Error("compile failed")
		return err
	}
	fmt.Println(text)
	return nil
}

// buildScenario constructs one of six canonical scenarios purely by calling
// ir package constructors — exactly how a real front end would hand IR to
// this core.
func buildScenario(name string) (*ir.IRModule, error) {
	switch name {
	case "identity":
		return identityModule(), nil
	case "forwarding":
		return forwardingModule(), nil
	case "deref":
		return derefModule(), nil
	case "conditional":
		return conditionalModule(), nil
	case "call":
		return callModule(), nil
	case "string":
		return stringModule(), nil
	default:
		return nil, fmt.Errorf("irdump: unknown scenario %q", name)
	}
}

// identityModule is scenario 1: _start(): declare a:i32 = 20;
// declare b:i32 = a; return b.
func identityModule() *ir.IRModule {
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: ir.IntType{Width: ir.DoubleWord},
		Name:       "_start",
		Body: []ir.Operand{
			ir.DeclareVariable{Type: ir.IntType{Width: ir.DoubleWord}, Name: "a", Init: ir.IntLiteral{Text: "20"}},
			ir.DeclareVariable{Type: ir.IntType{Width: ir.DoubleWord}, Name: "b", Init: ir.VariableRef{Name: "a"}},
			ir.ReturnStmt{Value: ir.VariableRef{Name: "b"}},
		},
	})
	return m
}

// forwardingModule is scenario 2: _start(c:i32): declare a:i32 = c + 2;
// declare b:i32 = a; return b.
func forwardingModule() *ir.IRModule {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Params:     []ir.Param{{Name: "c", Type: i32}},
		Body: []ir.Operand{
			ir.DeclareVariable{Type: i32, Name: "a", Init: ir.AddValue{LHS: ir.VariableRef{Name: "c"}, RHS: ir.IntLiteral{Text: "2"}}},
			ir.DeclareVariable{Type: i32, Name: "b", Init: ir.VariableRef{Name: "a"}},
			ir.ReturnStmt{Value: ir.VariableRef{Name: "b"}},
		},
	})
	return m
}

// derefModule is scenario 3: declare p:*i32, then SetValue(Dereference(p), 7).
func derefModule() *ir.IRModule {
	i32 := ir.IntType{Width: ir.DoubleWord}
	ptr := ir.PointerType{Elem: i32}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body: []ir.Operand{
			ir.DeclareVariable{Type: i32, Name: "target", Init: ir.IntLiteral{Text: "0"}},
			ir.DeclareVariable{Type: ptr, Name: "p", Init: ir.Reference{Name: "target"}},
			ir.SetValue{LHS: ir.Dereference{Name: "p"}, RHS: ir.IntLiteral{Text: "7"}},
			ir.ReturnStmt{Value: ir.VariableRef{Name: "target"}},
		},
	})
	return m
}

// conditionalModule is scenario 4: if a > b { call(f) }.
func conditionalModule() *ir.IRModule {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{ReturnType: i32, Name: "f", Body: []ir.Operand{
		ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}},
	}})
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body: []ir.Operand{
			ir.DeclareVariable{Type: i32, Name: "a", Init: ir.IntLiteral{Text: "3"}},
			ir.DeclareVariable{Type: i32, Name: "b", Init: ir.IntLiteral{Text: "1"}},
			ir.IfStmt{
				Predicate: ir.ComparePredicate{Op: ir.GreaterThan, LHS: ir.VariableRef{Name: "a"}, RHS: ir.VariableRef{Name: "b"}},
				Body:      []ir.Operand{ir.FunctionCallStmt{Name: "f"}},
			},
			ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}},
		},
	})
	return m
}

// callModule is scenario 5: f(x, y) called with two arguments.
func callModule() *ir.IRModule {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32, Name: "f",
		Params: []ir.Param{{Name: "x", Type: i32}, {Name: "y", Type: i32}},
		Body: []ir.Operand{
			ir.ReturnStmt{Value: ir.AddValue{LHS: ir.VariableRef{Name: "x"}, RHS: ir.VariableRef{Name: "y"}}},
		},
	})
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body: []ir.Operand{
			ir.DeclareVariable{Type: i32, Name: "r", Init: ir.FunctionCallValue{
				Name: "f",
				Args: []ir.Value{ir.IntLiteral{Text: "1"}, ir.IntLiteral{Text: "2"}},
			}},
			ir.ReturnStmt{Value: ir.VariableRef{Name: "r"}},
		},
	})
	return m
}

// stringModule is scenario 6: a string constant "hi\n" referenced from a
// call, exercising the .rodata table.
func stringModule() *ir.IRModule {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{ReturnType: i32, Name: "puts", Params: []ir.Param{{Name: "s", Type: ir.PointerType{Elem: ir.CharType{}}}}, Body: []ir.Operand{
		ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}},
	}})
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body: []ir.Operand{
			ir.FunctionCallStmt{Name: "puts", Args: []ir.Value{ir.StringLiteral{Text: "hi\n"}}},
			ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}},
		},
	})
	return m
}
