// Package funcgen implements the Per-Stage Function Generator (component
// E): a textual buffer that accumulates the GLSL statements making up one
// stage entry point's body, plus the bookkeeping (indent level, temporary
// counter, binding-index emission mask) the semantic analyzer needs while
// walking a stage function.
//
// Grounded on glsl/writer.go's out/indent buffer and writeLine/pushIndent/
// popIndent idiom, and glsl/statements.go's per-statement-kind emitters —
// generalized from IR-node-driven emission to the analyzer calling emit_*
// directly as a side effect of validating each VSL statement (spec.md
// §4.4.4, §4.5).
package funcgen

import (
	"fmt"
	"strings"
)

// Generator accumulates one stage entry point's GLSL body text. Each stage
// being analyzed owns exactly one Generator (spec.md §4.5); it is not safe
// for concurrent use.
type Generator struct {
	out    strings.Builder
	indent int
	uid    uint32

	// bindingEmitMask tracks which binding indices already had their
	// index-load const emitted in this function (spec.md §4.5
	// emit_binding_index).
	bindingEmitMask map[uint32]bool
}

// New constructs an empty Generator.
func New() *Generator {
	return &Generator{bindingEmitMask: make(map[uint32]bool, 8)}
}

// String returns the accumulated body text.
func (g *Generator) String() string { return g.out.String() }

func (g *Generator) writeIndent() {
	for i := 0; i < g.indent; i++ {
		g.out.WriteString("    ")
	}
}

func (g *Generator) writeLine(format string, args ...any) {
	g.writeIndent()
	if len(args) == 0 {
		g.out.WriteString(format)
	} else {
		fmt.Fprintf(&g.out, format, args...)
	}
	g.out.WriteByte('\n')
}

// EmitDecl emits an uninitialized declaration: `T name;`.
func (g *Generator) EmitDecl(typeName, name string) {
	g.writeLine("%s %s;", typeName, name)
}

// EmitDef emits an initialized declaration: `T name = value;`.
func (g *Generator) EmitDef(typeName, name, value string) {
	g.writeLine("%s %s = %s;", typeName, name, value)
}

// EmitExprStmt emits a bare expression statement: `expr;` (a function call
// used for its side effects, per spec.md §4.4.2).
func (g *Generator) EmitExprStmt(expr string) {
	g.writeLine("%s;", expr)
}

// EmitAssign emits an assignment: `lvalue op value;`.
func (g *Generator) EmitAssign(lvalue, op, value string) {
	g.writeLine("%s %s %s;", lvalue, op, value)
}

// EmitTemp materializes value into a fresh `_t<N>` local of type typeName
// and returns a reference to it, used to pin down subexpression side
// effects before they're consumed twice (spec.md §4.5).
func (g *Generator) EmitTemp(typeName, value string) string {
	name := fmt.Sprintf("_t%d", g.uid)
	g.uid++
	g.EmitDef(typeName, name, value)
	return name
}

// EmitImageStore emits `imageStore(storeRef, …, value);`.
func (g *Generator) EmitImageStore(storeRef, value string) {
	g.writeLine("imageStore(%s, %s);", storeRef, value)
}

// EmitIf opens an `if (cond) {` block.
func (g *Generator) EmitIf(cond string) {
	g.writeLine("if (%s) {", cond)
	g.indent++
}

// EmitElif closes the current block and opens `} else if (cond) {`.
func (g *Generator) EmitElif(cond string) {
	g.indent--
	g.writeLine("} else if (%s) {", cond)
	g.indent++
}

// EmitElse closes the current block and opens `} else {`.
func (g *Generator) EmitElse() {
	g.indent--
	g.writeLine("} else {")
	g.indent++
}

// EmitFor opens a `for (int name = start; name < end; name += step) {`
// block (spec.md §4.4.2's `for (i: [start, end, step])` form). A negative
// step (one written with a leading "-") compares with `>` instead of `<`.
func (g *Generator) EmitFor(name, start, end, step string) {
	cmp := "<"
	if strings.HasPrefix(step, "-") {
		cmp = ">"
	}
	g.writeLine("for (int %s = %s; %s %s %s; %s += %s) {", name, start, name, cmp, end, name, step)
	g.indent++
}

// CloseBlock closes the innermost open block.
func (g *Generator) CloseBlock() {
	g.indent--
	g.writeLine("}")
}

// EmitControl emits a bare control statement: `break;`, `continue;`,
// `return;`, or `discard;`.
func (g *Generator) EmitControl(keyword string) {
	g.writeLine("%s;", keyword)
}

// EmitBindingIndex emits the index-load constant for binding i exactly
// once per function, gated by bindingEmitMask (spec.md §4.5):
// `const uint _b<i> = slot<i>;`, reading the member of the anonymous
// push-constant block by its bare name.
func (g *Generator) EmitBindingIndex(i uint32) {
	if g.bindingEmitMask[i] {
		return
	}
	g.bindingEmitMask[i] = true
	g.writeLine("const uint _b%d = slot%d;", i, i)
}
