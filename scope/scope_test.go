package scope

import (
	"testing"

	"github.com/vsl-lang/vsl/types"
)

func TestManager_AddGlobalRejectsDuplicatesAndReserved(t *testing.T) {
	m := NewManager(types.NewRegistry())

	if err := m.AddGlobal(&Variable{Name: "albedo", Kind: Input}); err != nil {
		t.Fatalf("AddGlobal(albedo): %v", err)
	}
	if err := m.AddGlobal(&Variable{Name: "albedo", Kind: Output}); err == nil {
		t.Error("expected a duplicate global name to be rejected")
	}
	if err := m.AddGlobal(&Variable{Name: "gl_Position", Kind: Output}); err == nil {
		t.Error("expected a gl_-prefixed name to be rejected as reserved")
	}
	if err := m.AddGlobal(&Variable{Name: "float", Kind: Input}); err == nil {
		t.Error("expected a global colliding with a builtin type name to be rejected")
	}
}

func TestManager_DeclareRejectsShadowing(t *testing.T) {
	m := NewManager(types.NewRegistry())
	if err := m.AddGlobal(&Variable{Name: "lightCount", Kind: Binding}); err != nil {
		t.Fatalf("AddGlobal: %v", err)
	}

	m.PushGlobalScope(Vertex)
	if err := m.Declare(&Variable{Name: "tmp", Kind: Local}); err != nil {
		t.Fatalf("Declare(tmp): %v", err)
	}

	m.PushScope(Conditional)
	if err := m.Declare(&Variable{Name: "tmp", Kind: Local}); err == nil {
		t.Error("expected declaring \"tmp\" in a nested scope to be rejected as shadowing")
	}
	if err := m.Declare(&Variable{Name: "lightCount", Kind: Local}); err == nil {
		t.Error("expected declaring a name that shadows a global to be rejected")
	}
	if err := m.Declare(&Variable{Name: "other", Kind: Local}); err != nil {
		t.Errorf("Declare(other) in a fresh nested scope should succeed: %v", err)
	}
	m.PopScope()

	if _, ok := m.Lookup("other"); ok {
		t.Error("\"other\" was declared in a scope that has since been popped and must no longer resolve")
	}
	if _, ok := m.Lookup("tmp"); !ok {
		t.Error("\"tmp\" was declared in the outer Function scope and must still resolve")
	}
}

func TestManager_LookupResolutionOrder(t *testing.T) {
	m := NewManager(types.NewRegistry())
	if err := m.AddGlobal(&Variable{Name: "x", Kind: Binding}); err != nil {
		t.Fatalf("AddGlobal: %v", err)
	}
	m.PushGlobalScope(Vertex)

	v, ok := m.Lookup("x")
	if !ok || v.Kind != Binding {
		t.Fatal("expected \"x\" to resolve to the global binding before any local shadows it")
	}

	m.PushScope(Conditional)
	if err := m.Declare(&Variable{Name: "y", Kind: Local}); err != nil {
		t.Fatalf("Declare(y): %v", err)
	}
	v, ok = m.Lookup("y")
	if !ok || v.Kind != Local {
		t.Error("expected \"y\" to resolve to the innermost scope's local")
	}
}

func TestManager_StageBuiltinsSeeded(t *testing.T) {
	m := NewManager(types.NewRegistry())

	m.PushGlobalScope(Vertex)
	if _, ok := m.Lookup("$Position"); !ok {
		t.Error("Vertex stage scope must seed $Position")
	}
	if _, ok := m.Lookup("$FragCoord"); ok {
		t.Error("$FragCoord must not be visible in the Vertex stage")
	}

	m.PushGlobalScope(Fragment)
	if _, ok := m.Lookup("$FragCoord"); !ok {
		t.Error("Fragment stage scope must seed $FragCoord")
	}
	if _, ok := m.Lookup("$Position"); ok {
		t.Error("$Position must not be visible in the Fragment stage")
	}
}

func TestAccess_ReadableWritable(t *testing.T) {
	if !RO.Readable() || RO.Writable() {
		t.Error("RO must be readable and not writable")
	}
	if WO.Readable() || !WO.Writable() {
		t.Error("WO must be writable and not readable")
	}
	if !RW.Readable() || !RW.Writable() {
		t.Error("RW must be both readable and writable")
	}
}

func TestManager_InLoop(t *testing.T) {
	m := NewManager(types.NewRegistry())
	m.PushGlobalScope(Fragment)
	if m.InLoop() {
		t.Error("a fresh Function scope is not inside a loop")
	}
	m.PushScope(Loop)
	if !m.InLoop() {
		t.Error("expected InLoop() true once a Loop scope is pushed")
	}
	m.PushScope(Conditional)
	if !m.InLoop() {
		t.Error("a Conditional nested inside a Loop is still considered InLoop")
	}
	m.PopScope()
	m.PopScope()
	if m.InLoop() {
		t.Error("InLoop() must be false again once the Loop scope is popped")
	}
}
