package scope

import (
	"fmt"

	"ir2x64/src/ir"
	"ir2x64/src/util"
)

// Signature is a declared function's callable shape, held in the single
// global scope so calls can be checked and sized before the callee itself
// has been lowered: a FunctionDecl and every call to it may appear in
// either order within a module.
type Signature struct {
	Name       string
	ReturnType ir.OperandType
	Params     []ir.Param
}

// Manager is the nested scope stack plus the single global scope of
// function signatures, holding per-scope VariableManager frames pushed and
// popped around a function body and its nested If bodies.
type Manager struct {
	global map[string]Signature
	scopes *util.Stack[*VariableManager]
}

// NewManager returns an empty scope manager with no active function frame.
func NewManager() *Manager {
	return &Manager{global: map[string]Signature{}, scopes: util.NewStack[*VariableManager]()}
}

// DeclareFunction registers a function signature in the single global
// scope. Returns an error on a duplicate name.
func (m *Manager) DeclareFunction(sig Signature) error {
	if _, exists := m.global[sig.Name]; exists {
		return fmt.Errorf("scope: function %q already declared", sig.Name)
	}
	m.global[sig.Name] = sig
	return nil
}

// LookupFunction returns a previously declared function's signature.
func (m *Manager) LookupFunction(name string) (Signature, bool) {
	sig, ok := m.global[name]
	return sig, ok
}

// PushFunction opens a fresh function frame (a new bump-allocated stack
// counter starting at zero) and returns its root scope.
func (m *Manager) PushFunction() *VariableManager {
	vm := newVariableManager(&frame{})
	m.scopes.Push(vm)
	return vm
}

// PushScope opens a nested scope (an If body) that shares the current
// function frame's stack allocator, so nested declarations still grow the
// same frame. Returns an error if there is no enclosing function frame.
func (m *Manager) PushScope() (*VariableManager, error) {
	top, ok := m.scopes.Peek()
	if !ok {
		return nil, fmt.Errorf("scope: no enclosing function frame")
	}
	vm := newVariableManager(top.fr)
	m.scopes.Push(vm)
	return vm, nil
}

// Pop closes the innermost scope, making its declarations invisible again.
func (m *Manager) Pop() (*VariableManager, bool) {
	return m.scopes.Pop()
}

// Current returns the innermost active scope. Requesting it with no active
// scope is a programmer error, not a recoverable condition, so this panics
// rather than returning an error.
func (m *Manager) Current() *VariableManager {
	top, ok := m.scopes.Peek()
	if !ok {
		panic("scope: Current() called with no active scope")
	}
	return top
}

// Declare allocates and binds name in the innermost scope.
func (m *Manager) Declare(name string, t ir.OperandType) (ir.VariableLocation, error) {
	return m.Current().Declare(name, t)
}

// Bind associates name with an existing location in the innermost scope.
func (m *Manager) Bind(name string, t ir.OperandType, loc ir.VariableLocation) error {
	return m.Current().Bind(name, t, loc)
}

// Lookup searches the scope stack innermost-first and returns the first
// match, so a nested declaration shadows an outer one of the same name.
func (m *Manager) Lookup(name string) (ir.VariableLocation, ir.OperandType, bool) {
	for _, vm := range m.scopes.All() {
		if e, ok := vm.lookup(name); ok {
			return e.loc, e.typ, true
		}
	}
	return nil, nil, false
}

// Drop retires name from the innermost scope.
func (m *Manager) Drop(name string) {
	m.Current().Drop(name)
}

// FrameSize returns the current function frame's total allocated bytes.
func (m *Manager) FrameSize() uint32 {
	return m.Current().FrameSize()
}
