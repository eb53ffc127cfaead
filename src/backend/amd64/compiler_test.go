package amd64

import (
	"errors"
	"strings"
	"testing"

	"ir2x64/src/ir"
	"ir2x64/src/util"
)

func compileNoOptimise(t *testing.T, m *ir.IRModule) string {
	t.Helper()
	text, err := Compile(m, util.Options{RunOptimise: false})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return text
}

// TestIdentityScenario pins down scenario 1's literal rendering:
// declare a := 20; declare b := a; return b.
func TestIdentityScenario(t *testing.T) {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body: []ir.Operand{
			ir.DeclareVariable{Type: i32, Name: "a", Init: ir.IntLiteral{Text: "20"}},
			ir.DeclareVariable{Type: i32, Name: "b", Init: ir.VariableRef{Name: "a"}},
			ir.ReturnStmt{Value: ir.VariableRef{Name: "b"}},
		},
	})

	got := compileNoOptimise(t, m)
	want := "section .rodata\n" +
		"\n" +
		"section .text\n" +
		"_start:\n" +
		"\tpush RBP\n" +
		"\tmov RBP, RSP\n" +
		"\tsub RSP, 8\n" +
		"\tmov DWORD [rbp-4], 20\n" +
		"\tmov EAX, DWORD [rbp-4]\n" +
		"\tmov DWORD [rbp-8], EAX\n" +
		"\tmov EAX, DWORD [rbp-8]\n" +
		"\tmov RSP, RBP\n" +
		"\tpop RBP\n" +
		"\tret\n"
	if got != want {
		t.Errorf("compiled text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestIdentityScenarioOptimisedMatchesUnoptimised documents a consequence of
// the bump-allocator design: DropVariable never reclaims a stack slot and
// every local here is stack-resident, so the dead-variable pass changes
// scope bookkeeping only — the emitted instruction stream is byte-identical
// with or without it.
func TestIdentityScenarioOptimisedMatchesUnoptimised(t *testing.T) {
	build := func() *ir.IRModule {
		i32 := ir.IntType{Width: ir.DoubleWord}
		m := ir.NewIRModule()
		m.Append(ir.FunctionDecl{
			ReturnType: i32,
			Name:       "_start",
			Body: []ir.Operand{
				ir.DeclareVariable{Type: i32, Name: "a", Init: ir.IntLiteral{Text: "20"}},
				ir.DeclareVariable{Type: i32, Name: "b", Init: ir.VariableRef{Name: "a"}},
				ir.ReturnStmt{Value: ir.VariableRef{Name: "b"}},
			},
		})
		return m
	}

	unoptimised, err := Compile(build(), util.Options{RunOptimise: false})
	if err != nil {
		t.Fatalf("Compile (no optimise): %v", err)
	}
	optimised, err := Compile(build(), util.Options{RunOptimise: true})
	if err != nil {
		t.Fatalf("Compile (optimise): %v", err)
	}
	if unoptimised != optimised {
		t.Errorf("expected optimise to leave the instruction stream unchanged here:\nunoptimised:\n%s\noptimised:\n%s", unoptimised, optimised)
	}
}

// TestForwardingScenario is scenario 2: a parameter forwarded
// through an Add expression and then copied onward before returning.
func TestForwardingScenario(t *testing.T) {
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

	got := compileNoOptimise(t, m)
	want := "section .rodata\n" +
		"\n" +
		"section .text\n" +
		"_start:\n" +
		"\tpush RBP\n" +
		"\tmov RBP, RSP\n" +
		"\tsub RSP, 8\n" +
		"\tmov EAX, EDI\n" +
		"\tadd EAX, 2\n" +
		"\tmov DWORD [rbp-4], EAX\n" +
		"\tmov EAX, DWORD [rbp-4]\n" +
		"\tmov DWORD [rbp-8], EAX\n" +
		"\tmov EAX, DWORD [rbp-8]\n" +
		"\tmov RSP, RBP\n" +
		"\tpop RBP\n" +
		"\tret\n"
	if got != want {
		t.Errorf("compiled text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestDereferenceScenario is scenario 3: take the address of a
// local, store through the resulting pointer, then return the original.
func TestDereferenceScenario(t *testing.T) {
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

	got := compileNoOptimise(t, m)
	want := "section .rodata\n" +
		"\n" +
		"section .text\n" +
		"_start:\n" +
		"\tpush RBP\n" +
		"\tmov RBP, RSP\n" +
		"\tsub RSP, 12\n" +
		"\tmov DWORD [rbp-4], 0\n" +
		"\tlea RAX, [rbp-4]\n" +
		"\tmov QWORD [rbp-12], RAX\n" +
		"\tmov RAX, QWORD [rbp-12]\n" +
		"\tmov DWORD [RAX], 7\n" +
		"\tmov EAX, DWORD [rbp-4]\n" +
		"\tmov RSP, RBP\n" +
		"\tpop RBP\n" +
		"\tret\n"
	if got != want {
		t.Errorf("compiled text mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestConditionalScenarioStructure checks the shape of an If lowering
// without pinning every byte: a cmp against the inverted-suffix jump, a
// label that the jump target and the join point both use, and the call
// inside the body appearing between them.
func TestConditionalScenarioStructure(t *testing.T) {
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

	got := compileNoOptimise(t, m)

	// Both predicate operands are stack slots, so the (lhs, rhs) pair is
	// staged through AX first (x86 forbids a memory-memory cmp): lhs loads
	// into EAX, then the compare reads (EAX, rhs) — "cmp a, b" in the
	// predicate's own field order.
	if !strings.Contains(got, "mov EAX, DWORD [rbp-4]") {
		t.Errorf("expected lhs (a) staged into EAX ahead of the compare, got:\n%s", got)
	}
	if !strings.Contains(got, "cmp EAX, DWORD [rbp-8]") {
		t.Errorf("expected the compare to read (staged lhs, rhs) relative to the predicate's own field order, got:\n%s", got)
	}
	if !strings.Contains(got, "jle .IF1") {
		t.Errorf("expected the inverse of GreaterThan (LessOrEqual -> \"le\") as the skip-body jump, got:\n%s", got)
	}
	if !strings.Contains(got, "call f") {
		t.Errorf("expected a call to f inside the if body, got:\n%s", got)
	}
	if !strings.Contains(got, ".IF1:") {
		t.Errorf("expected the join label .IF1: to be emitted after the body, got:\n%s", got)
	}
	// The stage-then-compare-then-jump must precede the call, and the join
	// label (re-used as the jump target) must follow it.
	stageIdx := strings.Index(got, "mov EAX, DWORD [rbp-4]")
	cmpIdx := strings.Index(got, "cmp EAX, DWORD [rbp-8]")
	jumpIdx := strings.LastIndex(got, "jle .IF1")
	callIdx := strings.Index(got, "call f")
	labelIdx := strings.Index(got, ".IF1:")
	if !(stageIdx < cmpIdx && cmpIdx < jumpIdx && jumpIdx < callIdx && callIdx < labelIdx) {
		t.Errorf("expected order stage < cmp < jump < call < join label, got stageIdx=%d cmpIdx=%d jumpIdx=%d callIdx=%d labelIdx=%d\n%s",
			stageIdx, cmpIdx, jumpIdx, callIdx, labelIdx, got)
	}
}

// TestCallScenarioSpillRestoreBalance exercises scenario 5's call
// sequencing: every pushed parameter register is popped in reverse order
// after the call.
func TestCallScenarioSpillRestoreBalance(t *testing.T) {
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

	got := compileNoOptimise(t, m)

	wantSeq := []string{
		"push RDI",
		"mov EDI, 1",
		"push RSI",
		"mov ESI, 2",
		"call f",
		"pop RSI",
		"pop RDI",
	}
	last := -1
	for _, line := range wantSeq {
		idx := strings.Index(got, line)
		if idx < 0 {
			t.Fatalf("expected %q in compiled output:\n%s", line, got)
		}
		if idx < last {
			t.Errorf("expected %q to appear after the previous step, got out-of-order output:\n%s", line, got)
		}
		last = idx
	}
}

// TestStringScenarioRodataTable exercises scenario 6: a string
// literal argument is interned into .rodata and referenced by label from
// .text.
func TestStringScenarioRodataTable(t *testing.T) {
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

	got := compileNoOptimise(t, m)
	if !strings.Contains(got, ".LC0:\n\tdb \"hi\", 10, \"\", 0\n") {
		t.Errorf("expected the interned string table entry, got:\n%s", got)
	}
	if !strings.Contains(got, "mov RDI, .LC0") {
		t.Errorf("expected the call argument to reference the interned label, got:\n%s", got)
	}
}

// TestDuplicateFunctionNameRejected confirms redeclaring a function name is
// rejected, not silently ignored.
func TestDuplicateFunctionNameRejected(t *testing.T) {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	body := []ir.Operand{ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}}}
	m.Append(ir.FunctionDecl{ReturnType: i32, Name: "f", Body: body})
	m.Append(ir.FunctionDecl{ReturnType: i32, Name: "f", Body: body})

	if _, err := Compile(m, util.Options{RunOptimise: false}); err == nil {
		t.Fatalf("expected an error compiling a module with two functions named %q", "f")
	}
}

// TestMissingReturnRejected exercises: a function body
// lacking a Return is rejected before any of it is lowered.
func TestMissingReturnRejected(t *testing.T) {
	i32 := ir.IntType{Width: ir.DoubleWord}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "_start",
		Body:       []ir.Operand{ir.DeclareVariable{Type: i32, Name: "a", Init: ir.IntLiteral{Text: "1"}}},
	})
	_, err := Compile(m, util.Options{RunOptimise: false})
	if err == nil {
		t.Fatalf("expected ErrMissingReturn for a function with no return statement")
	}
}

// TestTooManyParametersRejected exercises the 6-register parameter limit.
func TestTooManyParametersRejected(t *testing.T) {
	i32 := ir.IntType{Width: ir.DoubleWord}
	params := make([]ir.Param, 7)
	for i := range params {
		params[i] = ir.Param{Name: string(rune('a' + i)), Type: i32}
	}
	m := ir.NewIRModule()
	m.Append(ir.FunctionDecl{
		ReturnType: i32,
		Name:       "f",
		Params:     params,
		Body:       []ir.Operand{ir.ReturnStmt{Value: ir.IntLiteral{Text: "0"}}},
	})
	if _, err := Compile(m, util.Options{RunOptimise: false}); err == nil {
		t.Fatalf("expected ErrTooManyParameters for a 7-parameter function")
	}
}

// TestArithmeticStmtMultiplyDivideUnsupported confirms statement-level
// Multiply/Divide are fatal, unlike the no-op Add/Subtract.
func TestArithmeticStmtMultiplyDivideUnsupported(t *testing.T) {
	i32 := ir.IntType{Width: ir.DoubleWord}
	for _, op := range []ir.ArithOp{ir.ArithMultiply, ir.ArithDivide} {
		m := ir.NewIRModule()
		m.Append(ir.FunctionDecl{
			ReturnType: i32,
			Name:       "_start",
			Body: []ir.Operand{
				ir.DeclareVariable{Type: i32, Name: "a", Init: ir.IntLiteral{Text: "1"}},
				ir.ArithmeticStmt{Op: op, Type: i32, LHS: ir.VariableRef{Name: "a"}, RHS: ir.IntLiteral{Text: "1"}},
				ir.ReturnStmt{Value: ir.VariableRef{Name: "a"}},
			},
		})
		if _, err := Compile(m, util.Options{RunOptimise: false}); !errors.Is(err, ErrUnsupportedOperator) {
			t.Errorf("ArithOp %v: expected ErrUnsupportedOperator, got %v", op, err)
		}
	}
}

// TestCompileIsDeterministic compiles the same module twice and requires
// byte-identical output, since the engine has no source of nondeterminism
// (single-threaded, no maps walked in iteration order that would affect
// emission — label/string counters are deterministic per Compiler).
func TestCompileIsDeterministic(t *testing.T) {
	build := func() *ir.IRModule {
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

	first, err := Compile(build(), util.Options{RunOptimise: true})
	if err != nil {
		t.Fatalf("Compile (first): %v", err)
	}
	second, err := Compile(build(), util.Options{RunOptimise: true})
	if err != nil {
		t.Fatalf("Compile (second): %v", err)
	}
	if first != second {
		t.Errorf("expected two compiles of the same module to match:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}
