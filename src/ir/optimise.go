package ir

import "github.com/samber/lo"

// Optimise runs the dead-variable pass over a module in place: a single
// last-use sweep per statement list followed by a rewrite that drops
// variables right after their last read, and elides declarations that are
// never read at all. There is no register allocator downstream of this
// pass — the only consumer of liveness here is "when is it safe to retire a
// stack slot".
//
// The pass is not flow-sensitive across statement-list boundaries: each
// FunctionDecl body and each If body gets its own independent sweep. Names
// used inside a FunctionDecl body never reach the enclosing list's
// accounting. Names used inside an If body also count as uses at the If's
// own index in the enclosing list, so an outer variable read inside the
// body stays live until after the If.
func (m *IRModule) Optimise() {
	m.Operands = optimiseList(m.Operands)
}

func optimiseList(ops []Operand) []Operand {
	// Recurse into nested bodies first so each gets its own independent
	// sweep before this level's accounting runs.
	for i, op := range ops {
		switch o := op.(type) {
		case FunctionDecl:
			o.Body = optimiseList(o.Body)
			ops[i] = o
		case IfStmt:
			o.Body = optimiseList(o.Body)
			ops[i] = o
		}
	}

	lastUse := map[string]int{}
	for i, op := range ops {
		for _, name := range lo.Uniq(reachableNames(op)) {
			lastUse[name] = i
		}
	}

	result := make([]Operand, 0, len(ops))
	for i, op := range ops {
		result = append(result, op)
		opIdx := len(result) - 1
		for name, last := range lastUse {
			if last != i {
				continue
			}
			if decl, ok := op.(DeclareVariable); ok && decl.Name == name {
				// last_use[name] still points at this declaration's own
				// index, meaning nothing after it ever read the name. Drop
				// the declaration itself rather than emitting a drop after
				// it.
				result = append(result[:opIdx], result[opIdx+1:]...)
				continue
			}
			result = append(result, DropVariable{Name: name})
		}
	}
	return result
}

// reachableNames returns every variable name a single operand's values
// reference, recursing into nested Value expressions and into nested If
// bodies — a name used only inside an If body is attributed to the index of
// the If in the list currently being swept. FunctionDecl bodies are not
// walked: a function's names belong to its own sweep only.
func reachableNames(op Operand) []string {
	switch o := op.(type) {
	case DeclareVariable:
		// The declaration itself counts as an "appearance" of its own name:
		// this is what lets a variable with no subsequent read still get a
		// last_use entry (pinned at its own declaring statement), so the
		// "drop the just-emitted declaration" rule below has something to
		// match against.
		return append([]string{o.Name}, valueNames(o.Init)...)
	case SetValue:
		return append(valueNames(o.LHS), valueNames(o.RHS)...)
	case FunctionCallStmt:
		return lo.FlatMap(o.Args, func(v Value, _ int) []string { return valueNames(v) })
	case ReturnStmt:
		if o.Value == nil {
			return nil
		}
		return valueNames(o.Value)
	case IfStmt:
		names := append(valueNames(o.Predicate.LHS), valueNames(o.Predicate.RHS)...)
		for _, inner := range o.Body {
			names = append(names, reachableNames(inner)...)
		}
		return names
	case ArithmeticStmt:
		return append(valueNames(o.LHS), valueNames(o.RHS)...)
	case FunctionDecl:
		return nil
	case InlineAssembly, DropVariable:
		return nil
	default:
		return nil
	}
}

// valueNames returns every variable name referenced within a Value
// expression, recursing through Reference/Dereference, call arguments, and
// Add/Sub operands.
func valueNames(v Value) []string {
	switch val := v.(type) {
	case VariableRef:
		return []string{val.Name}
	case Reference:
		return []string{val.Name}
	case Dereference:
		return []string{val.Name}
	case FunctionCallValue:
		return lo.FlatMap(val.Args, func(a Value, _ int) []string { return valueNames(a) })
	case AddValue:
		return append(valueNames(val.LHS), valueNames(val.RHS)...)
	case SubValue:
		return append(valueNames(val.LHS), valueNames(val.RHS)...)
	default:
		// IntLiteral, CharLiteral, StringLiteral: no variable reference.
		return nil
	}
}
