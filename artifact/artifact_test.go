package artifact

import (
	"bytes"
	"testing"

	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/sema"
	"github.com/vsl-lang/vsl/types"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	reg := types.NewRegistry()
	vec4, _ := reg.GetBuiltin("vec4")
	vec2, _ := reg.GetBuiltin("vec2")
	sampler, _ := reg.GetBuiltin("sampler2D")
	f, _ := reg.GetBuiltin("float")

	strc, err := reg.AddStruct("Globals", []types.StructMember{
		{Name: "time", Type: f, ArraySize: 1},
	})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}

	info := sema.ShaderInfo{
		Stages: 1<<uint8(scope.Vertex) | 1<<uint8(scope.Fragment),
		Inputs: []sema.InterfaceVariable{
			{Name: "position", Location: 0, Type: vec4, ArraySize: 1},
		},
		Outputs: []sema.InterfaceVariable{
			{Name: "color", Location: 0, Type: vec4, ArraySize: 1},
		},
		Bindings: []sema.BindingVariable{
			{Name: "albedo", Slot: 1, Type: sampler},
		},
		Uniform: &sema.UniformVariable{Name: "globals", Struct: strc.StructRef()},
	}
	bytecode := map[scope.Stage][]uint32{
		scope.Vertex:   {0x07230203, 1, 2, 3},
		scope.Fragment: {0x07230203, 4, 5},
	}

	art, err := FromShaderInfo(info, reg, bytecode)
	if err != nil {
		t.Fatalf("FromShaderInfo: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, art); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Version != art.Version || got.StageMask != art.StageMask {
		t.Errorf("header mismatch: got Version=%d StageMask=%#x, want Version=%d StageMask=%#x",
			got.Version, got.StageMask, art.Version, art.StageMask)
	}
	if len(got.Inputs) != 1 || got.Inputs[0].Location != 0 {
		t.Errorf("Inputs = %+v, want 1 record at location 0", got.Inputs)
	}
	if len(got.Outputs) != 1 {
		t.Errorf("Outputs = %+v, want 1 record", got.Outputs)
	}
	if len(got.Bindings) != 1 || got.Bindings[0].Slot != 1 {
		t.Errorf("Bindings = %+v, want 1 record at slot 1", got.Bindings)
	}
	if len(got.Structs) != 1 || got.Structs[0].Name != "Globals" {
		t.Errorf("Structs = %+v, want 1 record named Globals", got.Structs)
	}
	if !got.HasUniform || got.UniformStructIndex != 0 {
		t.Errorf("HasUniform=%v UniformStructIndex=%d, want true/0", got.HasUniform, got.UniformStructIndex)
	}

	if gv := got.Bytecode[uint8(scope.Vertex)]; len(gv) != 4 || gv[0] != 0x07230203 {
		t.Errorf("vertex bytecode = %v, want 4 words starting with the SPIR-V magic", gv)
	}
	if gf := got.Bytecode[uint8(scope.Fragment)]; len(gf) != 2 {
		t.Errorf("fragment bytecode = %v, want 2 words", gf)
	}
}

func TestRead_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NOPE")
	if _, err := Read(&buf); err == nil {
		t.Error("expected Read to reject a stream with the wrong magic bytes")
	}
}

func TestFromShaderInfo_NoUniformLeavesIndexZero(t *testing.T) {
	reg := types.NewRegistry()
	art, err := FromShaderInfo(sema.ShaderInfo{}, reg, nil)
	if err != nil {
		t.Fatalf("FromShaderInfo: %v", err)
	}
	if art.HasUniform {
		t.Error("expected HasUniform=false when ShaderInfo has no uniform")
	}
	if art.UniformStructIndex != 0 {
		t.Errorf("UniformStructIndex = %d, want 0 when ShaderInfo has no uniform", art.UniformStructIndex)
	}
}
