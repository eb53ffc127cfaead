package amd64

import (
	"fmt"
	"strconv"
	"strings"
)

// stringEntry is one row of the .rodata string table: an internally
// allocated label and the literal text it carries.
type stringEntry struct {
	Label string
	Text  string
}

// Buffer is the append-only instruction stream plus the .rodata string
// table and label counter. It holds a structured []Instruction rather than
// a raw string builder because the stack-frame placeholder needs a scripted
// rewrite (or removal, if the frame ends up empty) after the rest of the
// function has already been emitted.
type Buffer struct {
	instrs  []Instruction
	strings []stringEntry
	ifCount int
}

// NewBuffer returns an empty instruction buffer whose ".IF<n>" label counter
// starts after labelStart, letting a host program keep labels stable across
// repeated compiles or namespace them when assembling more than one module
// into the same file.
func NewBuffer(labelStart int) *Buffer {
	return &Buffer{ifCount: labelStart}
}

// Append adds one or more instructions to the end of the buffer, in order.
func (b *Buffer) Append(ins ...Instruction) {
	b.instrs = append(b.instrs, ins...)
}

// Placeholder appends a synthetic "[PLACEHOLDER]" label right after the
// prologue's "mov rbp, rsp", and returns its index so the caller can patch
// or remove it once the frame size is known.
func (b *Buffer) Placeholder() int {
	b.Append(Label{Name: "[PLACEHOLDER]"})
	return len(b.instrs) - 1
}

// PatchFrameSize is the buffer's first scripted edit: rewrite the
// placeholder at idx into "sub rsp, n", or — the second scripted edit —
// remove it outright when n is zero (no locals were ever declared on the
// path to the first Return).
func (b *Buffer) PatchFrameSize(idx int, n uint32) {
	if n == 0 {
		b.instrs = append(b.instrs[:idx], b.instrs[idx+1:]...)
		return
	}
	b.instrs[idx] = Sub{Dst: "RSP", Src: strconv.FormatUint(uint64(n), 10)}
}

// NextIfLabel allocates the next ".IF<n>" label from the per-compiler
// monotonic counter, starting at labelStart+1 (".IF1" for labelStart 0).
func (b *Buffer) NextIfLabel() string {
	b.ifCount++
	return fmt.Sprintf(".IF%d", b.ifCount)
}

// Intern records text in the .rodata string table, reusing an existing
// entry if the same literal was already interned, and returns the label to
// reference it by in .text.
func (b *Buffer) Intern(text string) string {
	for _, e := range b.strings {
		if e.Text == text {
			return e.Label
		}
	}
	label := fmt.Sprintf(".LC%d", len(b.strings))
	b.strings = append(b.strings, stringEntry{Label: label, Text: text})
	return label
}

// RenderText joins the buffered instructions into the ".text" section body,
// one rendered instruction per line, indenting everything but labels to
// match the assembler convention labels are flush-left, instructions are
// tab-indented.
func (b *Buffer) RenderText() string {
	var sb strings.Builder
	for _, ins := range b.instrs {
		if _, isLabel := ins.(Label); isLabel {
			sb.WriteString(ins.Render())
		} else {
			sb.WriteString("\t")
			sb.WriteString(ins.Render())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderRodata joins the interned string table into the ".rodata" section
// body: one label plus one "db" directive per literal, with "\n" escaped to
// a `", 10, "` byte-splice since NASM string literals can't embed a raw
// newline.
func (b *Buffer) RenderRodata() string {
	var sb strings.Builder
	for _, e := range b.strings {
		sb.WriteString(e.Label)
		sb.WriteString(":\n\tdb \"")
		sb.WriteString(strings.ReplaceAll(e.Text, "\n", `", 10, "`))
		sb.WriteString("\", 0\n")
	}
	return sb.String()
}
