// Package sema implements the Semantic Analyzer (component D): the
// tree-walking visitor that validates an ast.Module against the type
// system, resolves names via scope, resolves operators/functions via
// overload, and records reflection into a ShaderInfo — emitting lowered
// GLSL statements into a funcgen.Generator as a side effect of successful
// validation (spec.md §4.4).
//
// Grounded on wgsl/lower.go's AST-to-IR lowering walk (the same
// recursive-descent, fallible-return shape) and, for the validation rules
// themselves, on ir/validate.go's structured error reporting.
package sema

import (
	"fmt"
	"strconv"

	math32 "github.com/chewxy/math32"

	"github.com/vsl-lang/vsl/ast"
	"github.com/vsl-lang/vsl/funcgen"
	"github.com/vsl-lang/vsl/overload"
	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/types"
	"github.com/vsl-lang/vsl/vslerr"
)

// InterfaceVariable is a reflection record for a vertex input or fragment
// output (spec.md §3).
type InterfaceVariable struct {
	Name      string
	Location  uint32
	Type      *types.ShaderType
	ArraySize uint32
}

// BindingVariable is a reflection record for a Sampler/Image/Buffer/Texels
// binding.
type BindingVariable struct {
	Name string
	Slot uint32
	Type *types.ShaderType
}

// SubpassVariable is a reflection record for a subpass input.
type SubpassVariable struct {
	Name   string
	Index  uint32
	Type   *types.ShaderType
	Format *types.TexelFormat
}

// UniformVariable is the reflection record for the (at most one) uniform
// block.
type UniformVariable struct {
	Name   string
	Struct *types.StructType
}

// LocalVariable is a reflection record for a Vertex->Fragment interpolant.
type LocalVariable struct {
	Name        string
	Type        *types.ShaderType
	SourceStage scope.Stage
	Flat        bool
}

// ShaderInfo aggregates every reflection record produced during analysis
// (spec.md §3). Stages is a bitmask with bit `1<<stage` set for each stage
// the shader declares an entry point for.
type ShaderInfo struct {
	Stages    uint8
	Inputs    []InterfaceVariable
	Outputs   []InterfaceVariable
	Bindings  []BindingVariable
	Subpasses []SubpassVariable
	Uniform   *UniformVariable
	Locals    []LocalVariable
}

func stageBit(s scope.Stage) uint8 { return 1 << uint8(s) }

// StageOutput is what Analyze produces for one stage entry point:
// its generated function body, ready for the Stage Generator (component
// F) to wrap in a translation unit.
type StageOutput struct {
	Stage scope.Stage
	Body  string
}

// Analyzer drives a single shader's semantic analysis. Each concurrently
// compiled Shader must own its own Analyzer (spec.md §5).
type Analyzer struct {
	registry *types.Registry
	scopes   *scope.Manager
	ops      *overload.Table

	info ShaderInfo

	usedInputLoc   map[uint32]string
	usedOutputLoc  map[uint32]string
	usedBindSlot   map[uint32]string
	usedSubpassIdx map[uint32]string
}

// NewAnalyzer constructs an Analyzer backed by a fresh per-compilation
// Registry/Manager and the given (process-wide, read-only) overload Table.
func NewAnalyzer(ops *overload.Table) *Analyzer {
	reg := types.NewRegistry()
	return &Analyzer{
		registry:       reg,
		scopes:         scope.NewManager(reg),
		ops:            ops,
		usedInputLoc:   make(map[uint32]string),
		usedOutputLoc:  make(map[uint32]string),
		usedBindSlot:   make(map[uint32]string),
		usedSubpassIdx: make(map[uint32]string),
	}
}

// Info returns the accumulated reflection after a successful Analyze.
func (a *Analyzer) Info() ShaderInfo { return a.info }

// Registry returns the per-compilation Type Registry, needed by the Stage
// Generator to enumerate the registered struct types.
func (a *Analyzer) Registry() *types.Registry { return a.registry }

// exprVal is the result of evaluating an expression bottom-up (spec.md
// §4.4.3): its emitted GLSL text, its VSL type, its array size (1 unless
// it denotes a fixed-size array), and whether it is a compile-time literal
// (governs the implicit Unsigned->Signed literal cast).
type exprVal struct {
	ref        string
	typ        *types.ShaderType
	arraySize  uint32
	literal    bool
	writable   bool
	imageStore bool
}

// Analyze validates mod in full and returns the per-stage generated GLSL
// bodies plus the accumulated ShaderInfo, per spec.md §4.4.1's statement
// order and §4.4.5's no-partial-compilation discipline: the first error
// aborts analysis entirely.
func (a *Analyzer) Analyze(mod *ast.Module) ([]StageOutput, error) {
	for _, s := range mod.Structs {
		if err := a.analyzeStruct(s); err != nil {
			return nil, err
		}
	}
	for _, in := range mod.Inputs {
		if err := a.analyzeIO(in, true); err != nil {
			return nil, err
		}
	}
	for _, out := range mod.Outputs {
		if err := a.analyzeIO(out, false); err != nil {
			return nil, err
		}
	}
	if mod.Uniform != nil {
		if err := a.analyzeUniform(mod.Uniform); err != nil {
			return nil, err
		}
	}
	for _, b := range mod.Bindings {
		if err := a.analyzeBinding(b); err != nil {
			return nil, err
		}
	}
	for _, sp := range mod.Subpasses {
		if err := a.analyzeSubpass(sp); err != nil {
			return nil, err
		}
	}
	for _, l := range mod.Locals {
		if err := a.analyzeLocal(l); err != nil {
			return nil, err
		}
	}

	var outputs []StageOutput
	for _, sd := range mod.Stages {
		body, err := a.analyzeStage(sd)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, body)
	}
	return outputs, nil
}

func (a *Analyzer) resolveType(ref *ast.TypeRef) (*types.ShaderType, *vslerr.Error) {
	t, ok := a.registry.ParseOrGet(ref.Name)
	if !ok {
		return nil, vslerr.At(vslerr.KindType, ref.Span.Line, ref.Span.Column, "unknown type %q", ref.Name).WithBadText(ref.Name)
	}
	return t, nil
}

func (a *Analyzer) analyzeStruct(s *ast.StructDecl) *vslerr.Error {
	members := make([]types.StructMember, 0, len(s.Members))
	for _, m := range s.Members {
		mt, err := a.resolveType(m.Type)
		if err != nil {
			return err
		}
		arraySize := m.ArraySize
		if arraySize == 0 {
			arraySize = 1
		}
		members = append(members, types.StructMember{Name: m.Name, Type: mt, ArraySize: arraySize})
	}
	if _, err := a.registry.AddStruct(s.Name, members); err != nil {
		return vslerr.At(vslerr.KindLimit, s.Span.Line, s.Span.Column, "%s", err.Error()).WithBadText(s.Name)
	}
	return nil
}

func (a *Analyzer) analyzeIO(d *ast.IODecl, isInput bool) *vslerr.Error {
	t, err := a.resolveType(d.Type)
	if err != nil {
		return err
	}
	if !t.IsNumeric() {
		return vslerr.At(vslerr.KindType, d.Span.Line, d.Span.Column, "interface variable %q must be numeric", d.Name).WithBadText(d.Name)
	}

	arraySize := d.ArraySize
	if arraySize == 0 {
		arraySize = 1
	}
	if isInput && arraySize > types.MaxInputArraySize {
		return vslerr.At(vslerr.KindLimit, d.Span.Line, d.Span.Column, "input %q array size exceeds MAX_INPUT_ARRAY_SIZE", d.Name).WithBadText(d.Name)
	}
	if !isInput && arraySize != 1 {
		return vslerr.At(vslerr.KindType, d.Span.Line, d.Span.Column, "output %q may not be an array", d.Name).WithBadText(d.Name)
	}

	used := a.usedInputLoc
	maxIdx := uint32(types.MaxInputIndex)
	kind := scope.Input
	if !isInput {
		used = a.usedOutputLoc
		maxIdx = types.MaxOutputIndex
		kind = scope.Output
	}

	span := t.GetBindingCount() * arraySize
	for loc := d.Location; loc < d.Location+span; loc++ {
		if loc > maxIdx {
			return vslerr.At(vslerr.KindLimit, d.Span.Line, d.Span.Column, "location %d exceeds the maximum", loc).WithBadText(d.Name)
		}
		if prev, ok := used[loc]; ok {
			return vslerr.At(vslerr.KindBinding, d.Span.Line, d.Span.Column, "location %d already used by %q", loc, prev).WithBadText(d.Name)
		}
		used[loc] = d.Name
	}

	access := scope.RO
	if !isInput {
		access = scope.WO
	}
	if err := a.scopes.AddGlobal(&scope.Variable{Name: d.Name, Kind: kind, Type: t, ArraySize: arraySize, Access: access}); err != nil {
		return vslerr.At(vslerr.KindScope, d.Span.Line, d.Span.Column, "%s", err.Error()).WithBadText(d.Name)
	}

	iv := InterfaceVariable{Name: d.Name, Location: d.Location, Type: t, ArraySize: arraySize}
	if isInput {
		a.info.Inputs = append(a.info.Inputs, iv)
	} else {
		a.info.Outputs = append(a.info.Outputs, iv)
	}
	return nil
}

func (a *Analyzer) analyzeUniform(u *ast.UniformDecl) *vslerr.Error {
	if a.info.Uniform != nil {
		return vslerr.At(vslerr.KindScope, u.Span.Line, u.Span.Column, "at most one uniform statement is allowed").WithBadText(u.Name)
	}
	st, ok := a.registry.ParseOrGet(u.StructName)
	if !ok || !st.HasStructType() {
		return vslerr.At(vslerr.KindType, u.Span.Line, u.Span.Column, "unknown uniform struct %q", u.StructName).WithBadText(u.StructName)
	}
	strc := st.StructRef()
	for _, m := range strc.Members {
		if err := a.scopes.AddGlobal(&scope.Variable{Name: m.Name, Kind: scope.Binding, Type: m.Type, ArraySize: m.ArraySize, Access: scope.RO}); err != nil {
			return vslerr.At(vslerr.KindScope, u.Span.Line, u.Span.Column, "%s", err.Error()).WithBadText(m.Name)
		}
	}
	a.info.Uniform = &UniformVariable{Name: u.Name, Struct: strc}
	return nil
}

func (a *Analyzer) analyzeBinding(b *ast.BindingDecl) *vslerr.Error {
	t, err := a.resolveType(b.Type)
	if err != nil {
		return err
	}
	if !t.IsTexelType() && !t.IsBufferType() {
		return vslerr.At(vslerr.KindType, b.Span.Line, b.Span.Column, "binding %q must be a sampler/image/buffer type", b.Name).WithBadText(b.Name)
	}
	if b.Slot > types.MaxBindingIndex {
		return vslerr.At(vslerr.KindLimit, b.Span.Line, b.Span.Column, "binding slot %d exceeds the maximum", b.Slot).WithBadText(b.Name)
	}
	if prev, ok := a.usedBindSlot[b.Slot]; ok {
		return vslerr.At(vslerr.KindBinding, b.Span.Line, b.Span.Column, "binding slot %d already used by %q", b.Slot, prev).WithBadText(b.Name)
	}
	a.usedBindSlot[b.Slot] = b.Name

	if err := a.scopes.AddGlobal(&scope.Variable{Name: b.Name, Kind: scope.Binding, Type: t, ArraySize: 1, Access: scope.RW, Extra: &scope.BindingExtra{Slot: uint8(b.Slot)}}); err != nil {
		return vslerr.At(vslerr.KindScope, b.Span.Line, b.Span.Column, "%s", err.Error()).WithBadText(b.Name)
	}
	a.info.Bindings = append(a.info.Bindings, BindingVariable{Name: b.Name, Slot: b.Slot, Type: t})
	return nil
}

func (a *Analyzer) analyzeSubpass(sp *ast.SubpassDecl) *vslerr.Error {
	t, err := a.resolveType(sp.Type)
	if err != nil {
		return err
	}
	format, ok := a.registry.TexelFormat(sp.Format)
	if !ok {
		return vslerr.At(vslerr.KindType, sp.Span.Line, sp.Span.Column, "unknown texel format %q", sp.Format).WithBadText(sp.Format)
	}
	if sp.Index >= types.MaxSubpassInputs {
		return vslerr.At(vslerr.KindLimit, sp.Span.Line, sp.Span.Column, "subpass index %d exceeds MAX_SUBPASS_INPUTS", sp.Index).WithBadText(sp.Name)
	}
	if prev, ok := a.usedSubpassIdx[sp.Index]; ok {
		return vslerr.At(vslerr.KindBinding, sp.Span.Line, sp.Span.Column, "subpass index %d already used by %q", sp.Index, prev).WithBadText(sp.Name)
	}
	a.usedSubpassIdx[sp.Index] = sp.Name

	if err := a.scopes.AddGlobal(&scope.Variable{Name: sp.Name, Kind: scope.Binding, Type: t, ArraySize: 1, Access: scope.RO}); err != nil {
		return vslerr.At(vslerr.KindScope, sp.Span.Line, sp.Span.Column, "%s", err.Error()).WithBadText(sp.Name)
	}
	a.info.Subpasses = append(a.info.Subpasses, SubpassVariable{Name: sp.Name, Index: sp.Index, Type: t, Format: format})
	return nil
}

func (a *Analyzer) analyzeLocal(l *ast.LocalDecl) *vslerr.Error {
	t, err := a.resolveType(l.Type)
	if err != nil {
		return err
	}
	if err := a.scopes.AddGlobal(&scope.Variable{
		Name: l.Name, Kind: scope.Local, Type: t, ArraySize: 1, Access: scope.RW,
		Extra: &scope.LocalExtra{SourceStage: scope.Vertex, Flat: l.Flat},
	}); err != nil {
		return vslerr.At(vslerr.KindScope, l.Span.Line, l.Span.Column, "%s", err.Error()).WithBadText(l.Name)
	}
	a.info.Locals = append(a.info.Locals, LocalVariable{Name: l.Name, Type: t, SourceStage: scope.Vertex, Flat: l.Flat})
	return nil
}

// stageOf maps ast.StageKeyword to scope.Stage.
func stageOf(k ast.StageKeyword) scope.Stage {
	if k == ast.StageVert {
		return scope.Vertex
	}
	return scope.Fragment
}

func (a *Analyzer) analyzeStage(sd *ast.StageDecl) (StageOutput, *vslerr.Error) {
	st := stageOf(sd.Stage)
	a.info.Stages |= stageBit(st)

	s := a.scopes.PushGlobalScope(st)
	a.seedBuiltinTypes(s, st)
	gen := funcgen.New()

	for _, stmt := range sd.Body {
		if err := a.analyzeStmt(stmt, gen, st); err != nil {
			a.scopes.PopScope()
			return StageOutput{}, err
		}
	}
	a.scopes.PopScope()
	return StageOutput{Stage: st, Body: gen.String()}, nil
}

// seedBuiltinTypes fills in the Type field of each builtin Variable the
// Manager seeded the stage's scope with (scope.PushGlobalScope leaves Type
// nil; only the analyzer has the Registry needed to resolve it).
func (a *Analyzer) seedBuiltinTypes(s *scope.Scope, st scope.Stage) {
	intT, _ := a.registry.GetBuiltin("int")
	vec2T, _ := a.registry.GetBuiltin("vec2")
	vec4T, _ := a.registry.GetBuiltin("vec4")
	for _, v := range s.Variables {
		switch v.Name {
		case "$VertexIndex", "$InstanceIndex":
			v.Type = intT
		case "$Position", "$FragCoord":
			v.Type = vec4T
		case "$PointCoord":
			v.Type = vec2T
		}
	}
	_ = st
}

func (a *Analyzer) analyzeStmt(s ast.Stmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	switch n := s.(type) {
	case *ast.VarStmt:
		return a.analyzeVarStmt(n, gen, stage)
	case *ast.AssignStmt:
		return a.analyzeAssignStmt(n, gen, stage)
	case *ast.ExprStmt:
		v, err := a.evalExpr(n.Expr, gen, stage)
		if err != nil {
			return err
		}
		gen.EmitExprStmt(v.ref)
		return nil
	case *ast.IfStmt:
		return a.analyzeIfStmt(n, gen, stage)
	case *ast.ForStmt:
		return a.analyzeForStmt(n, gen, stage)
	case *ast.ControlStmt:
		return a.analyzeControlStmt(n, stage, gen)
	default:
		return vslerr.At(vslerr.KindInternal, 0, 0, "unhandled statement type %T", s)
	}
}

func (a *Analyzer) analyzeVarStmt(n *ast.VarStmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	t, terr := a.resolveType(n.Type)
	if terr != nil {
		return terr
	}
	if err := a.scopes.Declare(&scope.Variable{Name: n.Name, Kind: scope.Private, Type: t, ArraySize: 1, Access: scope.RW}); err != nil {
		return vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "%s", err.Error()).WithBadText(n.Name)
	}
	if n.Init == nil {
		gen.EmitDecl(t.Name(), n.Name)
		return nil
	}
	v, err := a.evalExpr(n.Init, gen, stage)
	if err != nil {
		return err
	}
	if !v.typ.IsSame(t) && !(v.literal && v.typ.HasImplicitLiteralCast(t)) && !v.typ.HasImplicitCast(t) {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "cannot initialize %q of type %s with %s", n.Name, t.Name(), v.typ.Name())
	}
	gen.EmitDef(t.Name(), n.Name, v.ref)
	return nil
}

func (a *Analyzer) analyzeAssignStmt(n *ast.AssignStmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	lv, err := a.evalLvalue(n.Lvalue, gen, stage)
	if err != nil {
		return err
	}
	if !lv.writable {
		return vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "%s is not writable", lv.ref).WithBadText(lv.ref)
	}
	rv, err := a.evalExpr(n.Value, gen, stage)
	if err != nil {
		return err
	}
	if !rv.typ.IsSame(lv.typ) && !(rv.literal && rv.typ.HasImplicitLiteralCast(lv.typ)) && !rv.typ.HasImplicitCast(lv.typ) {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "assignment type mismatch: %s vs %s", lv.typ.Name(), rv.typ.Name())
	}
	if lv.imageStore {
		if n.Op != "=" {
			return vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "image/texel store only supports plain assignment").WithBadText(string(n.Op))
		}
		gen.EmitImageStore(lv.ref, rv.ref)
		return nil
	}
	gen.EmitAssign(lv.ref, string(n.Op), rv.ref)
	return nil
}

func (a *Analyzer) analyzeIfStmt(n *ast.IfStmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	cv, err := a.evalExpr(n.Condition, gen, stage)
	if err != nil {
		return err
	}
	if !cv.typ.IsBoolean() || !cv.typ.IsScalar() {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "if condition must be a scalar Boolean")
	}
	gen.EmitIf(cv.ref)
	if err := a.analyzeBlock(n.Body, gen, stage); err != nil {
		return err
	}
	for _, elif := range n.Elifs {
		ev, err := a.evalExpr(elif.Condition, gen, stage)
		if err != nil {
			return err
		}
		if !ev.typ.IsBoolean() || !ev.typ.IsScalar() {
			return vslerr.At(vslerr.KindType, elif.Span.Line, elif.Span.Column, "elif condition must be a scalar Boolean")
		}
		gen.EmitElif(ev.ref)
		if err := a.analyzeBlock(elif.Body, gen, stage); err != nil {
			return err
		}
	}
	if n.Else != nil {
		gen.EmitElse()
		if err := a.analyzeBlock(n.Else, gen, stage); err != nil {
			return err
		}
	}
	gen.CloseBlock()
	return nil
}

func (a *Analyzer) analyzeBlock(body []ast.Stmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	a.scopes.PushScope(scope.Conditional)
	defer a.scopes.PopScope()
	for _, stmt := range body {
		if err := a.analyzeStmt(stmt, gen, stage); err != nil {
			return err
		}
	}
	return nil
}

func asIntLiteral(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	n, err := strconv.ParseInt(lit.Text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a *Analyzer) analyzeForStmt(n *ast.ForStmt, gen *funcgen.Generator, stage scope.Stage) *vslerr.Error {
	start, okS := asIntLiteral(n.Start)
	end, okE := asIntLiteral(n.End)
	step, okT := asIntLiteral(n.Step)
	if !okS || !okE || !okT {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "for loop bounds must be integer literal constants")
	}
	if step == 0 {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "for loop step must not be zero")
	}
	if (end-start)/step <= 0 {
		return vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "for loop range is empty")
	}

	intT, _ := a.registry.GetBuiltin("int")
	a.scopes.PushScope(scope.Loop)
	if err := a.scopes.Declare(&scope.Variable{Name: n.Var, Kind: scope.Private, Type: intT, ArraySize: 1, Access: scope.RW}); err != nil {
		a.scopes.PopScope()
		return vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "%s", err.Error()).WithBadText(n.Var)
	}
	gen.EmitFor(n.Var, strconv.FormatInt(start, 10), strconv.FormatInt(end, 10), strconv.FormatInt(step, 10))
	for _, stmt := range n.Body {
		if err := a.analyzeStmt(stmt, gen, stage); err != nil {
			a.scopes.PopScope()
			return err
		}
	}
	a.scopes.PopScope()
	gen.CloseBlock()
	return nil
}

func (a *Analyzer) analyzeControlStmt(n *ast.ControlStmt, stage scope.Stage, gen *funcgen.Generator) *vslerr.Error {
	switch n.Keyword {
	case ast.CtrlBreak:
		if !a.scopes.InLoop() {
			return vslerr.At(vslerr.KindControl, n.Span.Line, n.Span.Column, "break used outside a loop")
		}
		gen.EmitControl("break")
	case ast.CtrlContinue:
		if !a.scopes.InLoop() {
			return vslerr.At(vslerr.KindControl, n.Span.Line, n.Span.Column, "continue used outside a loop")
		}
		gen.EmitControl("continue")
	case ast.CtrlReturn:
		gen.EmitControl("return")
	case ast.CtrlDiscard:
		if stage != scope.Fragment {
			return vslerr.At(vslerr.KindControl, n.Span.Line, n.Span.Column, "discard is only allowed in the Fragment stage")
		}
		gen.EmitControl("discard")
	}
	return nil
}

// evalLvalue evaluates an expression used as an assignment target,
// additionally validating writability and swizzle-write rules (spec.md
// §4.4.2).
func (a *Analyzer) evalLvalue(e ast.Expr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	switch n := e.(type) {
	case *ast.NameExpr:
		v, ok := a.scopes.Lookup(n.Name)
		if !ok {
			return exprVal{}, vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "undefined name %q", n.Name).WithBadText(n.Name)
		}
		if verr := checkWrite(v, stage, n.Span); verr != nil {
			return exprVal{}, verr
		}
		ref, _ := a.bindingRef(v, gen, glslRef(n.Name))
		return exprVal{ref: ref, typ: v.Type, arraySize: v.ArraySize, writable: true}, nil
	case *ast.IndexExpr:
		base, err := a.evalLvalue(n.Expr, gen, stage)
		if err != nil {
			return exprVal{}, err
		}
		idx, err := a.evalExpr(n.Index, gen, stage)
		if err != nil {
			return exprVal{}, err
		}
		if !idx.typ.IsInteger() {
			return exprVal{}, vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "index must be an integer")
		}
		if base.typ.Base == types.Image || base.typ.Base == types.RWTexels {
			vec4, _ := a.registry.GetBuiltin("vec4")
			return exprVal{ref: fmt.Sprintf("%s, %s", base.ref, idx.ref), typ: vec4, writable: base.writable, imageStore: true}, nil
		}
		return exprVal{ref: fmt.Sprintf("%s[%s]", base.ref, idx.ref), typ: base.typ, writable: base.writable}, nil
	case *ast.MemberExpr:
		base, err := a.evalLvalue(n.Expr, gen, stage)
		if err != nil {
			return exprVal{}, err
		}
		if base.typ.IsStruct() || base.typ.HasStructType() {
			strc := base.typ.StructRef()
			m, _, ok := strc.GetMember(n.Member)
			if !ok {
				return exprVal{}, vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "no member %q", n.Member).WithBadText(n.Member)
			}
			return exprVal{ref: base.ref + "." + n.Member, typ: m.Type, writable: base.writable}, nil
		}
		if err := validateSwizzle(n.Member, base.typ, true, n.Span); err != nil {
			return exprVal{}, err
		}
		return exprVal{ref: base.ref + "." + n.Member, typ: swizzleType(a.registry, base.typ, n.Member), writable: base.writable}, nil
	default:
		return exprVal{}, vslerr.At(vslerr.KindInternal, 0, 0, "unsupported lvalue %T", e)
	}
}

// checkRead enforces spec.md §3's stage-access rule for reads: a Local is
// readable only in Fragment; a Builtin with access WO is never readable;
// other kinds fall back to their declared Access.
func checkRead(v *scope.Variable, stage scope.Stage, span ast.Span) *vslerr.Error {
	if v.Kind == scope.Local {
		if stage == scope.Vertex {
			return vslerr.At(vslerr.KindScope, span.Line, span.Column, "%q may not be read from the Vertex stage", v.Name).WithBadText(v.Name)
		}
		return nil
	}
	if !v.Access.Readable() {
		return vslerr.At(vslerr.KindScope, span.Line, span.Column, "%q is write-only", v.Name).WithBadText(v.Name)
	}
	return nil
}

// checkWrite enforces spec.md §3's stage-access rule for writes: a Local
// is writable only in Vertex; a Builtin with access RO is never writable;
// other kinds fall back to their declared Access.
func checkWrite(v *scope.Variable, stage scope.Stage, span ast.Span) *vslerr.Error {
	if v.Kind == scope.Local {
		if stage == scope.Fragment {
			return vslerr.At(vslerr.KindScope, span.Line, span.Column, "%q may not be written from the Fragment stage", v.Name).WithBadText(v.Name)
		}
		return nil
	}
	if !v.Access.Writable() {
		return vslerr.At(vslerr.KindScope, span.Line, span.Column, "%q is read-only", v.Name).WithBadText(v.Name)
	}
	return nil
}

// bindingRef rewrites a resolved name's GLSL reference for a real `bind(S)`
// declaration (spec.md §4.5/§4.6 step 4): those are the only scope.Binding
// variables carrying a *scope.BindingExtra in Extra, since uniform members
// and subpass inputs reuse scope.Binding for their kind but are declared
// under their own bare GLSL name. On a match it emits that binding's index
// constant once per function and returns the indexed binding-table access
// matching glslgen.go's bindingClass; otherwise it returns fallback
// unchanged.
func (a *Analyzer) bindingRef(v *scope.Variable, gen *funcgen.Generator, fallback string) (string, bool) {
	be, ok := v.Extra.(*scope.BindingExtra)
	if !ok {
		return fallback, false
	}
	gen.EmitBindingIndex(uint32(be.Slot))
	return fmt.Sprintf("%s[_b%d]", bindingArrayName(v.Type), be.Slot), true
}

// bindingArrayName returns the fixed binding-table array a resource type
// indexes into, mirroring glslgen.go's bindingClass.
func bindingArrayName(t *types.ShaderType) string {
	switch t.Base {
	case types.Sampler:
		return "_samplers"
	case types.Image:
		return "_images"
	case types.ROBuffer, types.RWBuffer:
		return "_buffers"
	case types.ROTexels:
		return "_roTexels"
	case types.RWTexels:
		return "_rwTexels"
	default:
		return "_unknown"
	}
}

func glslRef(name string) string {
	switch name {
	case "$Position":
		return "gl_Position"
	case "$VertexIndex":
		return "gl_VertexIndex"
	case "$InstanceIndex":
		return "gl_InstanceIndex"
	case "$FragCoord":
		return "gl_FragCoord"
	case "$PointCoord":
		return "gl_PointCoord"
	default:
		return name
	}
}

// validComponentSets enumerates the three accepted swizzle letter sets
// (spec.md §4.4.2).
var validComponentSets = [][]byte{[]byte("xyzw"), []byte("rgba"), []byte("stpq")}

func componentIndex(c byte) (int, bool) {
	for _, set := range validComponentSets {
		for i, ch := range set {
			if ch == c {
				return i, true
			}
		}
	}
	return 0, false
}

func validateSwizzle(member string, base *types.ShaderType, isWrite bool, span ast.Span) *vslerr.Error {
	if !base.IsVector() {
		return vslerr.At(vslerr.KindType, span.Line, span.Column, "%q is not a vector swizzle target", member)
	}
	dims := int(base.VecDims())
	seen := make(map[byte]bool, len(member))
	for i := 0; i < len(member); i++ {
		c := member[i]
		idx, ok := componentIndex(c)
		if !ok || idx >= dims {
			return vslerr.At(vslerr.KindType, span.Line, span.Column, "invalid swizzle component %q", string(c)).WithBadText(member)
		}
		if isWrite && seen[c] {
			return vslerr.At(vslerr.KindType, span.Line, span.Column, "repeated component %q in swizzle write", string(c)).WithBadText(member)
		}
		seen[c] = true
	}
	return nil
}

func swizzleType(reg *types.Registry, base *types.ShaderType, member string) *types.ShaderType {
	n := len(member)
	if n == 1 {
		t, _ := reg.GetBuiltin("float")
		return t
	}
	name := fmt.Sprintf("vec%d", n)
	t, _ := reg.GetBuiltin(name)
	return t
}

// evalExpr evaluates an expression bottom-up, resolving names, operators,
// and calls, per spec.md §4.4.3.
func (a *Analyzer) evalExpr(e ast.Expr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	switch n := e.(type) {
	case *ast.Literal:
		return a.evalLiteral(n)
	case *ast.NameExpr:
		v, ok := a.scopes.Lookup(n.Name)
		if !ok {
			return exprVal{}, vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "undefined name %q", n.Name).WithBadText(n.Name)
		}
		if verr := checkRead(v, stage, n.Span); verr != nil {
			return exprVal{}, verr
		}
		ref, _ := a.bindingRef(v, gen, glslRef(n.Name))
		return exprVal{ref: ref, typ: v.Type, arraySize: v.ArraySize, writable: v.Access.Writable() || v.Kind == scope.Local}, nil
	case *ast.IndexExpr:
		return a.evalIndexExpr(n, gen, stage)
	case *ast.MemberExpr:
		return a.evalMemberExpr(n, gen, stage)
	case *ast.CallExpr:
		return a.evalCallExpr(n, gen, stage)
	case *ast.BinaryExpr:
		return a.evalBinaryExpr(n, gen, stage)
	case *ast.UnaryExpr:
		return a.evalUnaryExpr(n, gen, stage)
	case *ast.TernaryExpr:
		return a.evalTernaryExpr(n, gen, stage)
	default:
		return exprVal{}, vslerr.At(vslerr.KindInternal, 0, 0, "unsupported expression %T", e)
	}
}

// evalLiteral folds a literal's text to its VSL type (spec.md §4.4.3) and
// rejects overflow. Float folding uses math32, not the stdlib math
// package: math32.IsInf/IsNaN operate on the float32 VSL expects directly,
// avoiding the float64->float32 narrowing that a math.IsInf(float64(f), 0)
// check would otherwise require.
func (a *Analyzer) evalLiteral(n *ast.Literal) (exprVal, *vslerr.Error) {
	switch n.Kind {
	case ast.LitBool:
		t, _ := a.registry.GetBuiltin("bool")
		return exprVal{ref: n.Text, typ: t, arraySize: 1, literal: true}, nil
	case ast.LitFloat:
		v, err := strconv.ParseFloat(n.Text, 32)
		f := math32.Float32frombits(math32.Float32bits(float32(v)))
		if err != nil || math32.IsInf(f, 0) || math32.IsNaN(f) {
			return exprVal{}, vslerr.At(vslerr.KindLimit, n.Span.Line, n.Span.Column, "float literal %q overflows float32", n.Text).WithBadText(n.Text)
		}
		t, _ := a.registry.GetBuiltin("float")
		return exprVal{ref: n.Text, typ: t, arraySize: 1, literal: true}, nil
	default:
		name := "uint"
		ref := n.Text + "u"
		text := n.Text
		if len(text) > 0 && text[0] == '-' {
			name = "int"
			ref = text
			if _, err := strconv.ParseInt(text, 10, 32); err != nil {
				return exprVal{}, vslerr.At(vslerr.KindLimit, n.Span.Line, n.Span.Column, "integer literal %q overflows int", n.Text).WithBadText(n.Text)
			}
		} else if _, err := strconv.ParseUint(text, 10, 32); err != nil {
			return exprVal{}, vslerr.At(vslerr.KindLimit, n.Span.Line, n.Span.Column, "integer literal %q overflows uint", n.Text).WithBadText(n.Text)
		}
		t, _ := a.registry.GetBuiltin(name)
		return exprVal{ref: ref, typ: t, arraySize: 1, literal: true}, nil
	}
}

func (a *Analyzer) evalIndexExpr(n *ast.IndexExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	base, err := a.evalExpr(n.Expr, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	idx, err := a.evalExpr(n.Index, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	if !idx.typ.IsInteger() {
		return exprVal{}, vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "index must be an integer")
	}
	if lit, ok := n.Index.(*ast.Literal); ok && lit.Kind == ast.LitInt && base.arraySize > 1 {
		if v, ok := asIntLiteral(n.Index); ok && (v < 0 || uint32(v) >= base.arraySize) {
			return exprVal{}, vslerr.At(vslerr.KindLimit, n.Span.Line, n.Span.Column, "index %d out of bounds", v)
		}
	}

	resultType := base.typ
	resultArraySize := uint32(1)
	if base.arraySize > 1 {
		resultArraySize = 1
	} else if base.typ.IsMatrix() {
		name := fmt.Sprintf("vec%d", base.typ.VecDims())
		resultType, _ = a.registry.GetBuiltin(name)
	} else if base.typ.IsVector() {
		resultType, _ = a.registry.GetBuiltin("float")
	}
	return exprVal{ref: fmt.Sprintf("%s[%s]", base.ref, idx.ref), typ: resultType, arraySize: resultArraySize, writable: base.writable}, nil
}

func (a *Analyzer) evalMemberExpr(n *ast.MemberExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	base, err := a.evalExpr(n.Expr, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	if base.typ.HasStructType() {
		strc := base.typ.StructRef()
		m, _, ok := strc.GetMember(n.Member)
		if !ok {
			return exprVal{}, vslerr.At(vslerr.KindScope, n.Span.Line, n.Span.Column, "no member %q", n.Member).WithBadText(n.Member)
		}
		return exprVal{ref: base.ref + "." + n.Member, typ: m.Type, arraySize: m.ArraySize, writable: base.writable}, nil
	}
	if verr := validateSwizzle(n.Member, base.typ, false, n.Span); verr != nil {
		return exprVal{}, verr
	}
	return exprVal{ref: base.ref + "." + n.Member, typ: swizzleType(a.registry, base.typ, n.Member), arraySize: 1}, nil
}

func (a *Analyzer) evalCallExpr(n *ast.CallExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	if t, ok := a.registry.ParseOrGet(n.Name); ok {
		return a.evalConstructorCall(n, t, gen, stage)
	}

	args := make([]overload.Arg, 0, len(n.Args))
	vals := make([]exprVal, 0, len(n.Args))
	for _, arg := range n.Args {
		v, err := a.evalExpr(arg, gen, stage)
		if err != nil {
			return exprVal{}, err
		}
		args = append(args, overload.Arg{Type: v.typ, Literal: v.literal})
		vals = append(vals, v)
	}
	res, rerr := a.ops.Resolve(n.Name, args)
	if rerr != nil {
		return exprVal{}, vslerr.At(vslerr.KindFunction, n.Span.Line, n.Span.Column, "%s", rerr.Error()).WithBadText(n.Name)
	}
	refs := make([]string, len(vals))
	for i, v := range vals {
		refs[i] = v.ref
	}
	ref := overload.Substitute(res.Entry.GenString, n.Name, refs)
	return exprVal{ref: ref, typ: res.ResultType, arraySize: 1}, nil
}

func (a *Analyzer) evalConstructorCall(n *ast.CallExpr, t *types.ShaderType, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	argRefs := make([]string, 0, len(n.Args))
	var totalComponents uint32
	for _, arg := range n.Args {
		v, err := a.evalExpr(arg, gen, stage)
		if err != nil {
			return exprVal{}, err
		}
		argRefs = append(argRefs, v.ref)
		if v.typ.IsVector() {
			totalComponents += uint32(v.typ.VecDims())
		} else {
			totalComponents++
		}
	}
	if t.IsVector() && len(n.Args) > 1 && totalComponents != uint32(t.VecDims()) {
		return exprVal{}, vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "%s constructor expects %d components, got %d", t.Name(), t.VecDims(), totalComponents).WithBadText(n.Name)
	}
	joined := ""
	for i, r := range argRefs {
		if i > 0 {
			joined += ", "
		}
		joined += r
	}
	return exprVal{ref: fmt.Sprintf("%s(%s)", t.Name(), joined), typ: t, arraySize: 1}, nil
}

func (a *Analyzer) evalBinaryExpr(n *ast.BinaryExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	l, err := a.evalExpr(n.Left, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	r, err := a.evalExpr(n.Right, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	res, rerr := a.ops.Resolve(string(n.Op), []overload.Arg{{Type: l.typ, Literal: l.literal}, {Type: r.typ, Literal: r.literal}})
	if rerr != nil {
		return exprVal{}, vslerr.At(vslerr.KindOperator, n.Span.Line, n.Span.Column, "%s", rerr.Error()).WithBadText(string(n.Op))
	}
	ref := overload.Substitute(res.Entry.GenString, string(n.Op), []string{l.ref, r.ref})
	return exprVal{ref: ref, typ: res.ResultType, arraySize: 1}, nil
}

func (a *Analyzer) evalUnaryExpr(n *ast.UnaryExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	v, err := a.evalExpr(n.Operand, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	name := string(n.Op)
	if name == "-" {
		name = "neg"
	}
	res, rerr := a.ops.Resolve(name, []overload.Arg{{Type: v.typ, Literal: v.literal}})
	if rerr != nil {
		return exprVal{}, vslerr.At(vslerr.KindOperator, n.Span.Line, n.Span.Column, "%s", rerr.Error()).WithBadText(string(n.Op))
	}
	ref := overload.Substitute(res.Entry.GenString, string(n.Op), []string{v.ref})
	return exprVal{ref: ref, typ: res.ResultType, arraySize: 1}, nil
}

func (a *Analyzer) evalTernaryExpr(n *ast.TernaryExpr, gen *funcgen.Generator, stage scope.Stage) (exprVal, *vslerr.Error) {
	c, err := a.evalExpr(n.Condition, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	if !c.typ.IsBoolean() {
		return exprVal{}, vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "ternary condition must be Boolean")
	}
	th, err := a.evalExpr(n.Then, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	el, err := a.evalExpr(n.Else, gen, stage)
	if err != nil {
		return exprVal{}, err
	}
	if !th.typ.IsSame(el.typ) {
		return exprVal{}, vslerr.At(vslerr.KindType, n.Span.Line, n.Span.Column, "ternary branches must have the same type")
	}
	return exprVal{ref: fmt.Sprintf("(%s ? %s : %s)", c.ref, th.ref, el.ref), typ: th.typ, arraySize: 1}, nil
}
