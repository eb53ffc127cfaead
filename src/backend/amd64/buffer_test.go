package amd64

import "testing"

func TestPlaceholderPatchedToSub(t *testing.T) {
	b := NewBuffer(0)
	idx := b.Placeholder()
	b.Append(Move{Dst: "EAX", Src: "1"})
	b.PatchFrameSize(idx, 16)

	got := b.RenderText()
	want := "\tsub RSP, 16\n\tmov EAX, 1\n"
	if got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
}

func TestPlaceholderRemovedWhenFrameIsEmpty(t *testing.T) {
	b := NewBuffer(0)
	idx := b.Placeholder()
	b.Append(Move{Dst: "EAX", Src: "1"})
	b.PatchFrameSize(idx, 0)

	got := b.RenderText()
	want := "\tmov EAX, 1\n"
	if got != want {
		t.Errorf("RenderText() = %q, want %q (placeholder should be removed, not zero-patched)", got, want)
	}
}

func TestNextIfLabelStartsAtOneByDefault(t *testing.T) {
	b := NewBuffer(0)
	if got := b.NextIfLabel(); got != ".IF1" {
		t.Errorf("first NextIfLabel() = %q, want %q", got, ".IF1")
	}
	if got := b.NextIfLabel(); got != ".IF2" {
		t.Errorf("second NextIfLabel() = %q, want %q", got, ".IF2")
	}
}

func TestNextIfLabelHonoursLabelStart(t *testing.T) {
	b := NewBuffer(10)
	if got := b.NextIfLabel(); got != ".IF11" {
		t.Errorf("NextIfLabel() with labelStart=10 = %q, want %q", got, ".IF11")
	}
}

func TestInternDedupesIdenticalLiterals(t *testing.T) {
	b := NewBuffer(0)
	l1 := b.Intern("hi\n")
	l2 := b.Intern("hi\n")
	if l1 != l2 {
		t.Errorf("Intern should return the same label for identical text: got %q and %q", l1, l2)
	}
	l3 := b.Intern("bye")
	if l3 == l1 {
		t.Errorf("Intern should return a distinct label for distinct text")
	}
}

func TestRenderRodataEscapesNewline(t *testing.T) {
	b := NewBuffer(0)
	b.Intern("hi\n")
	got := b.RenderRodata()
	want := ".LC0:\n\tdb \"hi\", 10, \"\", 0\n"
	if got != want {
		t.Errorf("RenderRodata() = %q, want %q", got, want)
	}
}

func TestRenderRodataPlainLiteral(t *testing.T) {
	b := NewBuffer(0)
	b.Intern("bye")
	got := b.RenderRodata()
	want := ".LC0:\n\tdb \"bye\", 0\n"
	if got != want {
		t.Errorf("RenderRodata() = %q, want %q", got, want)
	}
}
