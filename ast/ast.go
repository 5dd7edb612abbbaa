// Package ast defines the syntax-tree node shapes the semantic analyzer
// consumes. The grammar/lexer front-end that produces these nodes is an
// external collaborator (SPEC_FULL.md §1, Non-goals) — this package only
// fixes the contract between that parser and the analyzer.
//
// Adapted from wgsl/ast.go's node-interface shape (Node/Decl/Stmt/Expr with
// marker methods and an embedded Span), generalized to VSL's own statement
// and declaration forms (spec.md §6 "Source language").
package ast

// Span locates a node in source text for diagnostics (vslerr.Error.Line /
// .Column).
type Span struct {
	Line   uint32
	Column uint32
}

// Node is the base interface implemented by every tree node.
type Node interface {
	Pos() Span
}

// Decl is a file-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a stage function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeRef is an unresolved type spelling, as written in source: a bare
// builtin name ("vec3"), a parameterized form ("image2D<rgba8_unorm>"), or
// a struct name. The Type Registry resolves it (types.Registry.ParseOrGet).
type TypeRef struct {
	Name string
	Span Span
}

func (t *TypeRef) Pos() Span { return t.Span }

// Module is the top-level syntax tree for one shader source file
// (spec.md §6, §4.4.1).
type Module struct {
	Structs   []*StructDecl
	Inputs    []*IODecl
	Outputs   []*IODecl
	Uniform   *UniformDecl // nil if absent
	Bindings  []*BindingDecl
	Subpasses []*SubpassDecl
	Locals    []*LocalDecl
	Stages    []*StageDecl
	Span      Span
}

// StructDecl is `struct NAME { member: TYPE[;N], … }`.
type StructDecl struct {
	Name    string
	Members []*StructMemberDecl
	Span    Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

type StructMemberDecl struct {
	Name      string
	Type      *TypeRef
	ArraySize uint32 // 1 if not an array
	Span      Span
}

// IODecl is `in(L) NAME: TYPE[;N];` or `out(L) NAME: TYPE;`.
type IODecl struct {
	Location  uint32
	Name      string
	Type      *TypeRef
	ArraySize uint32 // 1 if not an array; only inputs may be arrays (spec.md §4.4.1)
	Span      Span
}

func (i *IODecl) Pos() Span { return i.Span }
func (i *IODecl) declNode() {}

// UniformDecl is `uniform NAME: STRUCT;`.
type UniformDecl struct {
	Name       string
	StructName string
	Span       Span
}

func (u *UniformDecl) Pos() Span { return u.Span }
func (u *UniformDecl) declNode() {}

// BindingDecl is `bind(S) NAME: TYPE;`.
type BindingDecl struct {
	Slot uint32
	Name string
	Type *TypeRef
	Span Span
}

func (b *BindingDecl) Pos() Span { return b.Span }
func (b *BindingDecl) declNode() {}

// SubpassDecl is `subpass(I) NAME: TYPE<FMT>;`.
type SubpassDecl struct {
	Index  uint32
	Name   string
	Type   *TypeRef
	Format string
	Span   Span
}

func (s *SubpassDecl) Pos() Span { return s.Span }
func (s *SubpassDecl) declNode() {}

// LocalDecl is `local NAME: TYPE [flat];`, a Vertex->Fragment interpolant.
type LocalDecl struct {
	Name string
	Type *TypeRef
	Flat bool
	Span Span
}

func (l *LocalDecl) Pos() Span { return l.Span }
func (l *LocalDecl) declNode() {}

// StageKeyword names a pipeline stage entry point, `stage vert { … }` or
// `stage frag { … }`.
type StageKeyword uint8

const (
	StageVert StageKeyword = iota
	StageFrag
)

// StageDecl is one stage entry point.
type StageDecl struct {
	Stage StageKeyword
	Body  []Stmt
	Span  Span
}

func (s *StageDecl) Pos() Span { return s.Span }
func (s *StageDecl) declNode() {}

// Statements (spec.md §4.4.2)

// VarStmt is a Private variable definition or declaration: `T name;` or
// `T name = expr;`.
type VarStmt struct {
	Type *TypeRef
	Name string
	Init Expr // nil for a bare declaration
	Span Span
}

func (v *VarStmt) Pos() Span { return v.Span }
func (v *VarStmt) stmtNode() {}

// AssignOp is the assignment operator spelling: "=", "+=", "-=", "*=", "/=".
type AssignOp string

// AssignStmt assigns to an lvalue expression (Name, Index, or swizzle
// Member).
type AssignStmt struct {
	Lvalue Expr
	Op     AssignOp
	Value  Expr
	Span   Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// ExprStmt is a bare expression used as a statement (a Call, typically).
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// ElifClause is one `elif (cond) { … }` clause of an IfStmt.
type ElifClause struct {
	Condition Expr
	Body      []Stmt
	Span      Span
}

// IfStmt is `if (cond) { … } [elif (cond) { … }]* [else { … }]`.
type IfStmt struct {
	Condition Expr
	Body      []Stmt
	Elifs     []ElifClause
	Else      []Stmt // nil if absent
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt is `for (i: [start, end, step]) { … }` (spec.md §4.4.2). Start,
// End, and Step must be integer literal constants; that constraint is
// enforced by the semantic analyzer, not the grammar.
type ForStmt struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  []Stmt
	Span  Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// ControlKeyword names a bare control statement.
type ControlKeyword uint8

const (
	CtrlBreak ControlKeyword = iota
	CtrlContinue
	CtrlReturn
	CtrlDiscard
)

// ControlStmt is `break;`, `continue;`, `return;`, or `discard;`.
type ControlStmt struct {
	Keyword ControlKeyword
	Span    Span
}

func (c *ControlStmt) Pos() Span { return c.Span }
func (c *ControlStmt) stmtNode() {}

// Expressions (spec.md §4.4.3)

// LiteralKind tags the lexical form of a Literal.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
)

// Literal is a numeric or boolean literal as written in source; the
// analyzer assigns its VSL type (spec.md §4.4.3: unsigned unless negative,
// float for floating literals).
type Literal struct {
	Kind LiteralKind
	Text string
	Span Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// NameExpr is a bare identifier, resolved via the Scope Manager.
type NameExpr struct {
	Name string
	Span Span
}

func (n *NameExpr) Pos() Span { return n.Span }
func (n *NameExpr) exprNode() {}

// IndexExpr is `expr[index]`.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// MemberExpr is `expr.member`: a struct field access or a vector swizzle,
// disambiguated by the analyzer from the operand's resolved type.
type MemberExpr struct {
	Expr   Expr
	Member string
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// CallExpr is `name(args…)`: a constructor call if name resolves to a
// type, otherwise a builtin function call (spec.md §4.4.3, §4.3).
type CallExpr struct {
	Name string
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// BinaryOp is an arithmetic/bitwise/relational/logical/shift/equality
// operator spelling, resolved against the operator table (spec.md §4.3).
type BinaryOp string

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryOp is a prefix unary operator spelling: "-", "!", "~".
type UnaryOp string

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Span      Span
}

func (t *TernaryExpr) Pos() Span { return t.Span }
func (t *TernaryExpr) exprNode() {}
