// Package scope manages name visibility and storage assignment while IR is
// being lowered: which names are visible at a given point, whether a name
// lives in a register or on the stack, and how large the enclosing
// function's frame needs to be.
package scope

import (
	"fmt"

	"ir2x64/src/ir"
)

// frame is the shared, monotonically growing stack allocator for one
// function. It outlives any single nested scope: a name declared inside an
// If body still occupies a slot that is never reused once the body exits.
type frame struct {
	size uint32
}

type entry struct {
	loc ir.VariableLocation
	typ ir.OperandType
}

// VariableManager is the name table for one lexical scope (a function body
// or a nested If body). Declaring a name allocates a new stack slot from
// the enclosing function's shared frame; binding a name to an existing
// location (used for parameters) does not.
type VariableManager struct {
	fr    *frame
	names map[string]entry
}

func newVariableManager(fr *frame) *VariableManager {
	return &VariableManager{fr: fr, names: map[string]entry{}}
}

// Declare allocates a new stack slot sized for t and binds name to it in
// this scope. Returns an error if name is already declared in this exact
// scope (shadowing an outer scope's name is allowed).
func (vm *VariableManager) Declare(name string, t ir.OperandType) (ir.VariableLocation, error) {
	if _, exists := vm.names[name]; exists {
		return nil, fmt.Errorf("scope: variable %q already declared in this scope", name)
	}
	vm.fr.size += uint32(t.Size().Bytes())
	loc := ir.StackLocation{Offset: vm.fr.size}
	vm.names[name] = entry{loc: loc, typ: t}
	return loc, nil
}

// Bind associates name with an already-allocated location (a parameter's
// register, typically) without growing the frame.
func (vm *VariableManager) Bind(name string, t ir.OperandType, loc ir.VariableLocation) error {
	if _, exists := vm.names[name]; exists {
		return fmt.Errorf("scope: variable %q already declared in this scope", name)
	}
	vm.names[name] = entry{loc: loc, typ: t}
	return nil
}

func (vm *VariableManager) lookup(name string) (entry, bool) {
	e, ok := vm.names[name]
	return e, ok
}

// Drop retires name from this scope. It does not shrink the frame: slots
// are never reused once allocated, a known limitation of the bump-allocator
// design.
func (vm *VariableManager) Drop(name string) {
	delete(vm.names, name)
}

// FrameSize returns the total bytes allocated so far in the enclosing
// function's frame.
func (vm *VariableManager) FrameSize() uint32 {
	return vm.fr.size
}
