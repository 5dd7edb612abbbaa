package glslgen

import (
	"strings"
	"testing"

	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/sema"
	"github.com/vsl-lang/vsl/types"
)

func TestGenerate_VertexInterfaceAndBody(t *testing.T) {
	reg := types.NewRegistry()
	vec4, _ := reg.GetBuiltin("vec4")

	info := sema.ShaderInfo{
		Stages: 1 << uint8(scope.Vertex),
		Inputs: []sema.InterfaceVariable{
			{Name: "position", Location: 0, Type: vec4, ArraySize: 1},
		},
	}
	stageOutputs := []sema.StageOutput{
		{Stage: scope.Vertex, Body: "gl_Position = position;\n"},
	}

	out := Generate(info, stageOutputs, reg, DefaultOptions())
	glsl, ok := out["vert"]
	if !ok {
		t.Fatal("expected a \"vert\" entry in Generate's output")
	}
	if !strings.HasPrefix(glsl, "#version 450 core\n") {
		t.Error("expected the GLSL unit to begin with the #version directive")
	}
	if !strings.Contains(glsl, "layout(location = 0) in vec4 position;") {
		t.Errorf("expected the vertex input interface declaration, got:\n%s", glsl)
	}
	if !strings.Contains(glsl, "gl_Position = position;") {
		t.Errorf("expected the stage body to be embedded in main(), got:\n%s", glsl)
	}
	if !strings.Contains(glsl, "void main() {\n    gl_Position = position;\n}\n") {
		t.Errorf("expected the body to be indented one level inside main(), got:\n%s", glsl)
	}
}

func TestGenerate_BindingTableOnlyWhenBindingsPresent(t *testing.T) {
	reg := types.NewRegistry()

	out := Generate(sema.ShaderInfo{}, []sema.StageOutput{{Stage: scope.Fragment, Body: ""}}, reg, DefaultOptions())
	glsl := out["frag"]
	if strings.Contains(glsl, "_BindIndices") {
		t.Error("expected no push-constant binding-index block when no bindings are declared")
	}

	sampler, _ := reg.GetBuiltin("sampler2D")
	info := sema.ShaderInfo{
		Bindings: []sema.BindingVariable{{Name: "albedo", Slot: 2, Type: sampler}},
	}
	out = Generate(info, []sema.StageOutput{{Stage: scope.Fragment, Body: ""}}, reg, DefaultOptions())
	glsl = out["frag"]
	if !strings.Contains(glsl, "layout(set = 0, binding = 0) uniform sampler2D _samplers[8192];") {
		t.Errorf("expected the sampler binding-table declaration, got:\n%s", glsl)
	}
	if !strings.Contains(glsl, "uint slot2;") {
		t.Errorf("expected the push-constant index for slot 2, got:\n%s", glsl)
	}
}

func TestGenerate_UniformBlockEmittedAtSetSix(t *testing.T) {
	reg := types.NewRegistry()
	f, _ := reg.GetBuiltin("float")
	strc, err := reg.AddStruct("Globals", []types.StructMember{{Name: "time", Type: f, ArraySize: 1}})
	if err != nil {
		t.Fatalf("AddStruct: %v", err)
	}

	info := sema.ShaderInfo{
		Uniform: &sema.UniformVariable{Name: "u", Struct: strc.StructRef()},
	}
	out := Generate(info, []sema.StageOutput{{Stage: scope.Fragment, Body: ""}}, reg, DefaultOptions())
	glsl := out["frag"]
	if !strings.Contains(glsl, "layout(set = 6, binding = 0, std140) uniform _Uniform {") {
		t.Errorf("expected the uniform block at set 6, got:\n%s", glsl)
	}
	if !strings.Contains(glsl, "float time;") {
		t.Errorf("expected the uniform member declaration, got:\n%s", glsl)
	}
	if !strings.Contains(glsl, "};\n\n") {
		t.Errorf("expected an anonymous block (no instance name on the closing brace), got:\n%s", glsl)
	}
	if strings.Contains(glsl, "} u;") {
		t.Errorf("expected no instance-name qualifier, since sema.go lifts members into global scope by bare name, got:\n%s", glsl)
	}
}

func TestGenerate_LocalsUseStageDirection(t *testing.T) {
	reg := types.NewRegistry()
	vec3, _ := reg.GetBuiltin("vec3")
	info := sema.ShaderInfo{
		Locals: []sema.LocalVariable{{Name: "normal", Type: vec3, SourceStage: scope.Vertex, Flat: false}},
	}

	out := Generate(info, []sema.StageOutput{
		{Stage: scope.Vertex, Body: ""},
		{Stage: scope.Fragment, Body: ""},
	}, reg, DefaultOptions())

	if !strings.Contains(out["vert"], "layout(location = 0) out vec3 normal;") {
		t.Errorf("expected Vertex to emit an \"out\" local, got:\n%s", out["vert"])
	}
	if !strings.Contains(out["frag"], "layout(location = 0) in vec3 normal;") {
		t.Errorf("expected Fragment to emit an \"in\" local, got:\n%s", out["frag"])
	}
}
