package funcgen

import "testing"

func TestGenerator_EmitDefAndAssign(t *testing.T) {
	g := New()
	g.EmitDef("vec3", "color", "vec3(1.0, 0.0, 0.0)")
	g.EmitAssign("color", "*=", "0.5")

	want := "vec3 color = vec3(1.0, 0.0, 0.0);\n" +
		"color *= 0.5;\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGenerator_IndentTracksBlocks(t *testing.T) {
	g := New()
	g.EmitIf("x > 0.0")
	g.EmitAssign("y", "=", "1.0")
	g.EmitElse()
	g.EmitAssign("y", "=", "0.0")
	g.CloseBlock()

	want := "if (x > 0.0) {\n" +
		"    y = 1.0;\n" +
		"} else {\n" +
		"    y = 0.0;\n" +
		"}\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGenerator_EmitForShape(t *testing.T) {
	g := New()
	g.EmitFor("i", "0", "4", "1")
	g.EmitExprStmt("doSomething(i)")
	g.CloseBlock()

	want := "for (int i = 0; i < 4; i += 1) {\n" +
		"    doSomething(i);\n" +
		"}\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGenerator_EmitTempIsUnique(t *testing.T) {
	g := New()
	a := g.EmitTemp("float", "1.0")
	b := g.EmitTemp("float", "2.0")
	if a == b {
		t.Errorf("EmitTemp returned the same name twice: %q", a)
	}
}

func TestGenerator_EmitBindingIndexOnlyOnce(t *testing.T) {
	g := New()
	g.EmitBindingIndex(3)
	g.EmitBindingIndex(3)
	g.EmitBindingIndex(4)

	want := "const uint _b3 = slot3;\n" +
		"const uint _b4 = slot4;\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q (binding 3's index const must be emitted exactly once)", got, want)
	}
}
