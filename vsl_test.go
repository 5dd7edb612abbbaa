package vsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsl-lang/vsl/ast"
	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/spirvc"
)

func lit(kind ast.LiteralKind, text string) *ast.Literal {
	return &ast.Literal{Kind: kind, Text: text}
}

func floatLit(text string) *ast.Literal { return lit(ast.LitFloat, text) }

// identityVertexModule builds `stage vert { $Position = vec4(0.0, 0.0, 0.0, 1.0); }`,
// the minimal end-to-end scenario: a vertex stage that writes its required
// builtin output and nothing else.
func identityVertexModule() *ast.Module {
	assign := &ast.AssignStmt{
		Lvalue: &ast.NameExpr{Name: "$Position"},
		Op:     "=",
		Value: &ast.CallExpr{
			Name: "vec4",
			Args: []ast.Expr{floatLit("0.0"), floatLit("0.0"), floatLit("0.0"), floatLit("1.0")},
		},
	}
	return &ast.Module{
		Stages: []*ast.StageDecl{
			{Stage: ast.StageVert, Body: []ast.Stmt{assign}},
		},
	}
}

func TestCompileIdentityVertexShader(t *testing.T) {
	mod := identityVertexModule()
	opts := DefaultOptions()
	opts.Compiler = spirvc.StubCompiler{}

	shader, err := Compile(mod, opts)
	require.NoError(t, err)

	glsl, ok := shader.GLSL(scope.Vertex)
	require.True(t, ok)
	assert.Contains(t, glsl, "gl_Position")
	assert.Contains(t, glsl, "vec4(0.0, 0.0, 0.0, 1.0)")

	words, ok := shader.Bytecode(scope.Vertex)
	require.True(t, ok)
	assert.NotEmpty(t, words)

	art, err := shader.WriteArtifact()
	require.NoError(t, err)
	assert.Equal(t, uint16(1<<uint8(scope.Vertex)), art.StageMask)
}

func TestCompileIsIdempotentAfterSuccess(t *testing.T) {
	mod := identityVertexModule()
	opts := DefaultOptions()
	opts.Compiler = spirvc.StubCompiler{}

	shader := New(mod)
	require.NoError(t, shader.Compile(opts))
	require.NoError(t, shader.Compile(opts)) // second call is a no-op, not a re-run
}

func TestCompileLatchesFirstError(t *testing.T) {
	// A discard outside a Fragment stage is rejected (spec.md §4.4.2): the
	// vertex stage may not discard.
	mod := &ast.Module{
		Stages: []*ast.StageDecl{
			{Stage: ast.StageVert, Body: []ast.Stmt{
				&ast.ControlStmt{Keyword: ast.CtrlDiscard},
			}},
		},
	}
	opts := DefaultOptions()
	opts.Compiler = spirvc.StubCompiler{}

	shader := New(mod)
	err1 := shader.Compile(opts)
	require.Error(t, err1)

	err2 := shader.Compile(opts)
	assert.Same(t, err1, err2) // latched, not re-evaluated
}

func TestWriteArtifactRequiresCompile(t *testing.T) {
	shader := New(identityVertexModule())
	_, err := shader.WriteArtifact()
	assert.Error(t, err)
}
