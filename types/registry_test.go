package types

import "testing"

func TestRegistry_BuiltinInterning(t *testing.T) {
	r := NewRegistry()

	f1, ok := r.GetBuiltin("float")
	if !ok {
		t.Fatal("expected builtin \"float\"")
	}
	f2, ok := r.GetBuiltin("float")
	if !ok {
		t.Fatal("expected builtin \"float\" on second lookup")
	}
	if f1 != f2 {
		t.Errorf("expected same pointer for repeated GetBuiltin(\"float\"), got %p and %p", f1, f2)
	}

	vec3, _ := r.GetBuiltin("vec3")
	vec4, _ := r.GetBuiltin("vec4")
	if vec3 == vec4 {
		t.Error("vec3 and vec4 must not intern to the same type")
	}
}

func TestRegistry_NumericFamilies(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name          string
		base          BaseType
		vecDims       uint8
		matCols       uint8
		scalarVariant bool
	}{
		{"int", Signed, 1, 1, true},
		{"uint", Unsigned, 1, 1, true},
		{"float", Float, 1, 1, true},
		{"bool", Boolean, 1, 1, true},
		{"vec2", Float, 2, 1, false},
		{"ivec4", Signed, 4, 1, false},
		{"uvec3", Unsigned, 3, 1, false},
		{"bvec2", Boolean, 2, 1, false},
		{"mat4", Float, 4, 4, false},
		{"mat3x2", Float, 2, 3, false},
	}
	for _, c := range cases {
		ty, ok := r.GetBuiltin(c.name)
		if !ok {
			t.Fatalf("missing builtin %q", c.name)
		}
		if ty.Base != c.base {
			t.Errorf("%s: base = %v, want %v", c.name, ty.Base, c.base)
		}
		if ty.VecDims() != c.vecDims {
			t.Errorf("%s: VecDims() = %d, want %d", c.name, ty.VecDims(), c.vecDims)
		}
		if ty.MatCols() != c.matCols {
			t.Errorf("%s: MatCols() = %d, want %d", c.name, ty.MatCols(), c.matCols)
		}
	}

	mat4, _ := r.GetBuiltin("mat4")
	if got := mat4.GetBindingCount(); got != 4 {
		t.Errorf("mat4.GetBindingCount() = %d, want 4", got)
	}
	vec3, _ := r.GetBuiltin("vec3")
	if got := vec3.GetBindingCount(); got != 1 {
		t.Errorf("vec3.GetBindingCount() = %d, want 1", got)
	}
}

func TestRegistry_ParseOrGetTexelAndBuffer(t *testing.T) {
	r := NewRegistry()

	img, ok := r.ParseOrGet("image2D<rgba8_unorm>")
	if !ok {
		t.Fatal("expected image2D<rgba8_unorm> to parse")
	}
	img2, ok := r.ParseOrGet("image2D<rgba8_unorm>")
	if !ok || img != img2 {
		t.Error("expected repeated ParseOrGet of the same spelling to intern to the same pointer")
	}

	if _, ok := r.ParseOrGet("image2D<not_a_format>"); ok {
		t.Error("expected an unknown texel format to fail to parse")
	}

	st, err := r.AddStruct("Particle", []StructMember{
		{Name: "pos", Type: mustBuiltin(t, r, "vec3"), ArraySize: 1},
	})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}
	_ = st

	buf, ok := r.ParseOrGet("RWBuffer<Particle>")
	if !ok {
		t.Fatal("expected RWBuffer<Particle> to parse once Particle is registered")
	}
	if buf.StructRef() == nil || buf.StructRef().Name != "Particle" {
		t.Error("expected RWBuffer<Particle>.StructRef() to be the Particle struct")
	}
	if _, ok := r.ParseOrGet("RWBuffer<Missing>"); ok {
		t.Error("expected RWBuffer<Missing> to fail: Missing was never registered")
	}
}

func TestRegistry_AddStructRejectsCollisions(t *testing.T) {
	r := NewRegistry()

	if _, err := r.AddStruct("float", nil); err == nil {
		t.Error("expected struct named after a builtin to be rejected")
	}

	if _, err := r.AddStruct("Thing", nil); err != nil {
		t.Fatalf("AddStruct(Thing): %v", err)
	}
	if _, err := r.AddStruct("Thing", nil); err == nil {
		t.Error("expected a duplicate struct name to be rejected")
	}
}

func TestRegistry_StructsPreservesDeclarationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"Alpha", "Beta", "Gamma"}
	for _, n := range names {
		if _, err := r.AddStruct(n, nil); err != nil {
			t.Fatalf("AddStruct(%s): %v", n, err)
		}
	}
	got := r.Structs()
	if len(got) != len(names) {
		t.Fatalf("Structs() returned %d entries, want %d", len(got), len(names))
	}
	for i, n := range names {
		if got[i].Name != n {
			t.Errorf("Structs()[%d].Name = %q, want %q", i, got[i].Name, n)
		}
	}
}

func mustBuiltin(t *testing.T, r *Registry, name string) *ShaderType {
	t.Helper()
	ty, ok := r.GetBuiltin(name)
	if !ok {
		t.Fatalf("missing builtin %q", name)
	}
	return ty
}
