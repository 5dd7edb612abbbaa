package overload

import (
	"testing"

	"github.com/vsl-lang/vsl/types"
)

func arg(t *testing.T, r *types.Registry, name string, literal bool) Arg {
	t.Helper()
	ty, ok := r.GetBuiltin(name)
	if !ok {
		t.Fatalf("missing builtin %q", name)
	}
	return Arg{Type: ty, Literal: literal}
}

func TestTable_ResolveGenericOperator(t *testing.T) {
	tb := NewDefaultTable()
	r := types.NewRegistry() // a Shader's own Registry — distinct from builtins' internal one

	res, err := tb.Resolve("+", []Arg{arg(t, r, "vec3", false), arg(t, r, "vec3", false)})
	if err != nil {
		t.Fatalf("Resolve(+, vec3, vec3): %v", err)
	}
	if !res.ResultType.IsSame(mustType(t, r, "vec3")) {
		t.Errorf("result type = %v, want vec3", res.ResultType.Name())
	}
	if res.Casts != 0 {
		t.Errorf("Casts = %d, want 0 for an exact generic match", res.Casts)
	}
}

func TestTable_ResolveIsDeterministic(t *testing.T) {
	tb := NewDefaultTable()
	r := types.NewRegistry()
	args := []Arg{arg(t, r, "int", false), arg(t, r, "int", false)}

	first, err := tb.Resolve("*", args)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := tb.Resolve("*", args)
		if err != nil {
			t.Fatalf("Resolve (rerun %d): %v", i, err)
		}
		if again.Entry.GenString != first.Entry.GenString || again.ResultType != first.ResultType {
			t.Fatalf("Resolve returned a different overload on rerun %d: %+v vs %+v", i, again, first)
		}
	}
}

func TestTable_ResolveMatrixVectorMultiply(t *testing.T) {
	tb := NewDefaultTable()
	r := types.NewRegistry()

	res, err := tb.Resolve("*", []Arg{arg(t, r, "mat4", false), arg(t, r, "vec4", false)})
	if err != nil {
		t.Fatalf("Resolve(mat4 * vec4): %v", err)
	}
	if !res.ResultType.IsSame(mustType(t, r, "vec4")) {
		t.Errorf("mat4 * vec4 result = %v, want vec4", res.ResultType.Name())
	}
}

func TestTable_ResolveAppliesImplicitLiteralCast(t *testing.T) {
	tb := NewDefaultTable()
	r := types.NewRegistry()

	// An unsigned literal argument against an int-typed "<" overload should
	// only match through the literal-only uint->int cast.
	res, err := tb.Resolve("<", []Arg{arg(t, r, "int", false), arg(t, r, "uint", true)})
	if err != nil {
		t.Fatalf("Resolve(int < uint-literal): %v", err)
	}
	if res.Casts == 0 {
		t.Error("expected at least one implicit cast to be counted for a uint literal against int")
	}
}

func TestTable_ResolveNoMatch(t *testing.T) {
	tb := NewDefaultTable()
	r := types.NewRegistry()

	_, err := tb.Resolve("+", []Arg{arg(t, r, "sampler2D", false), arg(t, r, "sampler2D", false)})
	if err == nil {
		t.Fatal("expected no overload of \"+\" to accept two samplers")
	}
	if _, ok := err.(*NoMatchError); !ok {
		t.Errorf("expected a *NoMatchError, got %T", err)
	}
}

func TestSubstitute(t *testing.T) {
	got := Substitute("$1 $op $2", "+", []string{"a", "b"})
	if got != "a + b" {
		t.Errorf("Substitute = %q, want %q", got, "a + b")
	}

	got = Substitute("normalize($1)", "", []string{"v"})
	if got != "normalize(v)" {
		t.Errorf("Substitute = %q, want %q", got, "normalize(v)")
	}
}

func mustType(t *testing.T, r *types.Registry, name string) *types.ShaderType {
	t.Helper()
	ty, ok := r.GetBuiltin(name)
	if !ok {
		t.Fatalf("missing builtin %q", name)
	}
	return ty
}
