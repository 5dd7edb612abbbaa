// Package scope implements the VSL scope/symbol model (component B): the
// flat global list plus the per-stage stack of nested scopes that drives
// name resolution while the semantic analyzer walks a shader.
//
// Grounded on naga's function-local variable handling in
// ir/resolve.go (ExprLocalVariable/ExprFunctionArgument lookups) and on
// wgsl/lower.go's lexical-scope stack used while lowering WGSL statements
// to IR — generalized here to VSL's stage-aware, shadowing-forbidden model.
package scope

import (
	"fmt"
	"strings"

	"github.com/vsl-lang/vsl/types"
)

// Kind tags a scope's nesting context (spec.md §3): a stage entry point's
// top-level Function scope, or a nested Conditional/Loop block.
type Kind uint8

const (
	Function Kind = iota
	Conditional
	Loop
)

// VarKind tags what role a Variable plays (spec.md §3).
type VarKind uint8

const (
	Input VarKind = iota
	Output
	Binding
	Builtin
	Constant
	Local
	Parameter
	Private
)

// Access controls whether a Variable can be read, written, or both.
type Access uint8

const (
	RO Access = iota
	WO
	RW
)

func (a Access) Readable() bool { return a == RO || a == RW }
func (a Access) Writable() bool { return a == WO || a == RW }

// Stage identifies a shader pipeline stage.
type Stage uint8

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	if s == Vertex {
		return "vert"
	}
	return "frag"
}

// LocalExtra is the Variable.Extra payload for kind Local: a Vertex-to-
// Fragment interpolant (GLOSSARY).
type LocalExtra struct {
	SourceStage Stage
	Flat        bool
}

// BindingExtra is the Variable.Extra payload for kind Binding.
type BindingExtra struct {
	Slot uint8
}

// BuiltinExtra is the Variable.Extra payload for kind Builtin.
type BuiltinExtra struct {
	Stage  Stage
	Access Access
}

// Variable is a named, typed slot visible to the analyzer (spec.md §3).
type Variable struct {
	Name      string
	Kind      VarKind
	Type      *types.ShaderType
	ArraySize uint32
	Access    Access
	Extra     any // *LocalExtra, *BindingExtra, or *BuiltinExtra; nil otherwise
}

// Scope is one entry in the per-stage scope stack.
type Scope struct {
	Kind      Kind
	Variables []*Variable
}

func (s *Scope) find(name string) *Variable {
	for _, v := range s.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// reservedPrefixes are the name prefixes spec.md §4.2 reserves for
// builtins, the Vulkan/driver layer, and internal synthesis.
var reservedPrefixes = []string{"gl_", "vk_", "_vsl"}

func isReserved(name string) bool {
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Manager owns the flat global symbol list and, while a stage function is
// being analyzed, the stack of nested Scopes for that stage (spec.md §4.2).
// Each concurrently-compiled Shader must own its own Manager (spec.md §5).
type Manager struct {
	registry  *types.Registry
	globals   []*Variable
	globalIdx map[string]*Variable
	constants map[string]*Variable
	stack     []*Scope
	curStage  Stage
}

// NewManager constructs a Manager backed by the given type Registry, used
// to reject global names that collide with builtin type spellings.
func NewManager(registry *types.Registry) *Manager {
	return &Manager{
		registry:  registry,
		globalIdx: make(map[string]*Variable, 32),
		constants: make(map[string]*Variable, 8),
	}
}

// AddGlobal registers a global symbol (input, output, binding, uniform
// member, struct name, etc). It fails on a duplicate or reserved name
// (spec.md §4.2).
func (m *Manager) AddGlobal(v *Variable) error {
	if isReserved(v.Name) {
		return fmt.Errorf("name %q is reserved", v.Name)
	}
	if _, ok := m.registry.GetBuiltin(v.Name); ok {
		return fmt.Errorf("name %q collides with a builtin type", v.Name)
	}
	if _, ok := m.globalIdx[v.Name]; ok {
		return fmt.Errorf("global %q is already declared", v.Name)
	}
	if v.Kind == Constant {
		m.constants[v.Name] = v
	}
	m.globalIdx[v.Name] = v
	m.globals = append(m.globals, v)
	return nil
}

// Globals returns every registered global, in declaration order.
func (m *Manager) Globals() []*Variable { return m.globals }

// stageBuiltins seeds the per-stage entry-point scope, per spec.md §4.2:
// Vertex sees $VertexIndex/$InstanceIndex (read-only) and $Position
// (write-only); Fragment sees $FragCoord/$PointCoord (read-only).
func stageBuiltins(stage Stage) []*Variable {
	mk := func(name string, access Access, sz uint8, dims uint8) *Variable {
		return &Variable{
			Name:   name,
			Kind:   Builtin,
			Access: access,
			Extra:  &BuiltinExtra{Stage: stage, Access: access},
		}
	}
	if stage == Vertex {
		return []*Variable{
			mk("$VertexIndex", RO, 4, 1),
			mk("$InstanceIndex", RO, 4, 1),
			mk("$Position", WO, 4, 4),
		}
	}
	return []*Variable{
		mk("$FragCoord", RO, 4, 4),
		mk("$PointCoord", RO, 4, 2),
	}
}

// PushGlobalScope starts analysis of a new stage: it pushes the Function
// scope that will hold the stage entry point's locals and seeds it with
// that stage's builtins (spec.md §4.2). The builtin Variables' Type fields
// are filled in by the caller (the semantic analyzer), which has access to
// the Registry's int/vec4/vec2 types.
func (m *Manager) PushGlobalScope(stage Stage) *Scope {
	m.curStage = stage
	s := &Scope{Kind: Function, Variables: stageBuiltins(stage)}
	m.stack = []*Scope{s}
	return s
}

// PushScope pushes a nested Conditional or Loop scope.
func (m *Manager) PushScope(kind Kind) *Scope {
	s := &Scope{Kind: kind}
	m.stack = append(m.stack, s)
	return s
}

// PopScope pops the innermost scope.
func (m *Manager) PopScope() {
	if len(m.stack) == 0 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
}

// InLoop reports whether any ancestor scope on the current stack is a
// Loop scope, governing break/continue legality (spec.md §4.2).
func (m *Manager) InLoop() bool {
	for _, s := range m.stack {
		if s.Kind == Loop {
			return true
		}
	}
	return false
}

// CurrentStage returns the stage currently being analyzed.
func (m *Manager) CurrentStage() Stage { return m.curStage }

// Declare adds v to the innermost active scope. It fails if v's name
// shadows ANY enclosing scope or a global — VSL disallows shadowing
// outright to keep generated GLSL unambiguous (spec.md §4.2).
func (m *Manager) Declare(v *Variable) error {
	if len(m.stack) == 0 {
		return fmt.Errorf("no active scope to declare %q in", v.Name)
	}
	if _, ok := m.lookupScopes(v.Name); ok {
		return fmt.Errorf("declaration of %q would shadow an enclosing name", v.Name)
	}
	if _, ok := m.globalIdx[v.Name]; ok {
		return fmt.Errorf("declaration of %q would shadow a global", v.Name)
	}
	top := m.stack[len(m.stack)-1]
	top.Variables = append(top.Variables, v)
	return nil
}

func (m *Manager) lookupScopes(name string) (*Variable, bool) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if v := m.stack[i].find(name); v != nil {
			return v, true
		}
	}
	return nil, false
}

// Lookup resolves name innermost-outermost through the active scope stack,
// then globals, then constants (spec.md §4.2).
func (m *Manager) Lookup(name string) (*Variable, bool) {
	if v, ok := m.lookupScopes(name); ok {
		return v, true
	}
	if v, ok := m.globalIdx[name]; ok {
		return v, true
	}
	if v, ok := m.constants[name]; ok {
		return v, true
	}
	return nil, false
}
