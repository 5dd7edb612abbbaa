package types

import "testing"

func TestAddStruct_Std140Layout(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	v3, _ := r.GetBuiltin("vec3")
	v2, _ := r.GetBuiltin("vec2")

	typ, err := r.AddStruct("Light", []StructMember{
		{Name: "intensity", Type: f, ArraySize: 1},
		{Name: "position", Type: v3, ArraySize: 1},
		{Name: "uv", Type: v2, ArraySize: 1},
	})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}
	st := typ.StructRef()

	// float at offset 0; vec3 (16-byte align) pushed to offset 16;
	// vec2 (8-byte align) fits at 28 -> rounds to 32.
	want := []uint32{0, 16, 32}
	for i, w := range want {
		if st.Offsets[i] != w {
			t.Errorf("member %d offset = %d, want %d", i, st.Offsets[i], w)
		}
	}
	if st.Alignment != vec4Align {
		t.Errorf("struct alignment = %d, want %d", st.Alignment, vec4Align)
	}
}

func TestAddStruct_LayoutIsIdempotent(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	members := []StructMember{{Name: "x", Type: f, ArraySize: 1}}

	t1, err := r.AddStruct("A", members)
	if err != nil {
		t.Fatalf("AddStruct(A): %v", err)
	}
	t2, err := r.AddStruct("B", members)
	if err != nil {
		t.Fatalf("AddStruct(B): %v", err)
	}
	st1, st2 := t1.StructRef(), t2.StructRef()
	if st1.Size != st2.Size || st1.Alignment != st2.Alignment || st1.Offsets[0] != st2.Offsets[0] {
		t.Error("identical member lists must lay out identically regardless of struct name")
	}
}

func TestAddStruct_ArrayStrideRoundsToVec4(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	typ, err := r.AddStruct("Weights", []StructMember{
		{Name: "w", Type: f, ArraySize: 4},
	})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}
	st := typ.StructRef()
	// Each array element strides to a vec4 (16 bytes) boundary: 4 elements -> 64 bytes.
	if st.Size != 64 {
		t.Errorf("array-of-4-floats struct size = %d, want 64", st.Size)
	}
}

func TestAddStruct_RejectsOversizeMemberCount(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	members := make([]StructMember, MaxMemberCount+1)
	for i := range members {
		members[i] = StructMember{Name: "m", Type: f, ArraySize: 1}
	}
	if _, err := r.AddStruct("TooBig", members); err == nil {
		t.Error("expected a struct exceeding MaxMemberCount to be rejected")
	}
}

func TestAddStruct_RejectsOversizeArray(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	members := []StructMember{{Name: "m", Type: f, ArraySize: MaxArraySize + 1}}
	if _, err := r.AddStruct("TooLong", members); err == nil {
		t.Error("expected a member array exceeding MaxArraySize to be rejected")
	}
}

func TestStructType_GetMember(t *testing.T) {
	r := NewRegistry()
	f, _ := r.GetBuiltin("float")
	typ, err := r.AddStruct("Pair", []StructMember{
		{Name: "a", Type: f, ArraySize: 1},
		{Name: "b", Type: f, ArraySize: 1},
	})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}
	st := typ.StructRef()

	m, off, ok := st.GetMember("b")
	if !ok {
		t.Fatal("expected member \"b\" to be found")
	}
	if m.Name != "b" || off != st.Offsets[1] {
		t.Errorf("GetMember(\"b\") = (%v, %d), want name b offset %d", m, off, st.Offsets[1])
	}
	if st.HasMember("c") {
		t.Error("struct Pair has no member \"c\"")
	}
}
