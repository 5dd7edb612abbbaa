// Package glslgen implements the Stage Generator (component F): it
// assembles the complete GLSL translation unit for one pipeline stage —
// version directive, struct definitions, interface declarations, the
// fixed binding-table convention, inter-stage locals, the uniform block,
// and the captured function body — per spec.md §4.6.
//
// Grounded on glsl/backend.go's Version/Options shape and glsl/writer.go's
// struct/interface emission passes, generalized from IR-module-driven
// generation to ShaderInfo-driven generation over VSL's fixed resource
// classes and descriptor-set convention.
package glslgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/sema"
	"github.com/vsl-lang/vsl/types"
)

// BindingTableSizes configures the fixed-size descriptor arrays declared
// at sets 0-4 (spec.md §4.6, §6). Defaults are sourced from
// original_source/vsl/Shader.hpp.
type BindingTableSizes struct {
	Samplers uint32
	Images   uint32
	Buffers  uint32
	ROTexels uint32
	RWTexels uint32
}

// DefaultBindingTableSizes mirrors the original engine's default
// allocation.
var DefaultBindingTableSizes = BindingTableSizes{
	Samplers: 8192,
	Images:   128,
	Buffers:  512,
	ROTexels: 128,
	RWTexels: 128,
}

// Options configures generation.
type Options struct {
	Sizes BindingTableSizes
}

// DefaultOptions returns Options with DefaultBindingTableSizes.
func DefaultOptions() Options { return Options{Sizes: DefaultBindingTableSizes} }

// glslTypeName maps a ShaderType to its GLSL spelling. VSL's builtin
// spellings (vec3, mat4, …) coincide with GLSL's own for numeric types;
// texel/buffer/struct types need their own mapping.
func glslTypeName(t *types.ShaderType) string {
	if t.IsNumeric() || t.IsStruct() {
		return t.Name()
	}
	if t.IsTexelType() {
		return texelGLSLType(t)
	}
	return t.Name()
}

func texelGLSLType(t *types.ShaderType) string {
	texel, ok := t.Payload.(types.Texel)
	if !ok {
		return t.Name()
	}
	switch t.Base {
	case types.Sampler:
		prefix := ""
		if texel.Format != nil {
			prefix = texel.Format.SamplerPrefix()
		}
		return fmt.Sprintf("%ssampler%s", prefix, texel.Rank.Suffix())
	case types.Image, types.RWTexels:
		prefix := ""
		if texel.Format != nil {
			prefix = texel.Format.SamplerPrefix()
		}
		return fmt.Sprintf("%simage%s", prefix, texel.Rank.Suffix())
	case types.ROTexels:
		return "samplerBuffer"
	case types.SubpassInput:
		return "subpassInput"
	default:
		return t.Name()
	}
}

// structMemberGLSL renders one struct member declaration line.
func structMemberGLSL(m types.StructMember) string {
	if m.ArraySize > 1 {
		return fmt.Sprintf("%s %s[%d];", glslTypeName(m.Type), m.Name, m.ArraySize)
	}
	return fmt.Sprintf("%s %s;", glslTypeName(m.Type), m.Name)
}

// writeStructs emits every registered struct definition (spec.md §4.6
// step 2). Structs are emitted in declaration order for every stage;
// per-stage reachability pruning is not performed, matching the
// conservative "include every visible struct" fallback of a
// single-translation-unit generator.
func writeStructs(buf *strings.Builder, reg *types.Registry) {
	for _, s := range reg.Structs() {
		fmt.Fprintf(buf, "struct %s {\n", s.Name)
		for _, m := range s.Members {
			fmt.Fprintf(buf, "    %s\n", structMemberGLSL(m))
		}
		buf.WriteString("};\n\n")
	}
}

func bindingClass(t *types.ShaderType) string {
	switch {
	case t.Base == types.Sampler:
		return "sampler"
	case t.Base == types.Image:
		return "image"
	case t.Base == types.ROBuffer, t.Base == types.RWBuffer:
		return "buffer"
	case t.Base == types.ROTexels:
		return "roTexel"
	case t.Base == types.RWTexels:
		return "rwTexel"
	default:
		return "unknown"
	}
}

// writeBindingTables emits the fixed binding-table convention: one large
// array per resource class at a fixed descriptor set, plus a push-constant
// block of indirect indices for every declared binding (spec.md §4.6 step
// 4).
func writeBindingTables(buf *strings.Builder, bindings []sema.BindingVariable, sizes BindingTableSizes) {
	var samplers, images, buffers, roTexels, rwTexels []sema.BindingVariable
	for _, b := range bindings {
		switch bindingClass(b.Type) {
		case "sampler":
			samplers = append(samplers, b)
		case "image":
			images = append(images, b)
		case "buffer":
			buffers = append(buffers, b)
		case "roTexel":
			roTexels = append(roTexels, b)
		case "rwTexel":
			rwTexels = append(rwTexels, b)
		}
	}

	if len(bindings) > 0 {
		buf.WriteString("#extension GL_EXT_nonuniform_qualifier : require\n\n")
	}
	if len(samplers) > 0 {
		fmt.Fprintf(buf, "layout(set = 0, binding = 0) uniform sampler2D _samplers[%d];\n", sizes.Samplers)
	}
	if len(images) > 0 {
		fmt.Fprintf(buf, "layout(set = 1, binding = 0, rgba8) uniform image2D _images[%d];\n", sizes.Images)
	}
	if len(buffers) > 0 {
		fmt.Fprintf(buf, "layout(set = 2, binding = 0, std140) buffer _Buffers { uint data[]; } _buffers[%d];\n", sizes.Buffers)
	}
	if len(roTexels) > 0 {
		fmt.Fprintf(buf, "layout(set = 3, binding = 0) uniform samplerBuffer _roTexels[%d];\n", sizes.ROTexels)
	}
	if len(rwTexels) > 0 {
		fmt.Fprintf(buf, "layout(set = 4, binding = 0, rgba8) uniform imageBuffer _rwTexels[%d];\n", sizes.RWTexels)
	}
	if len(bindings) > 0 {
		buf.WriteString("\nlayout(push_constant) uniform _BindIndices {\n")
		sorted := append([]sema.BindingVariable(nil), bindings...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })
		for _, b := range sorted {
			fmt.Fprintf(buf, "    uint slot%d;\n", b.Slot)
		}
		buf.WriteString("};\n\n")
	}
}

// writeSubpassInputs emits subpass input declarations at set 5 (spec.md
// §4.6 step 5).
func writeSubpassInputs(buf *strings.Builder, subpasses []sema.SubpassVariable) {
	for _, sp := range subpasses {
		fmt.Fprintf(buf, "layout(input_attachment_index = %d, set = 5, binding = %d) uniform subpassInput %s;\n", sp.Index, sp.Index, sp.Name)
	}
	if len(subpasses) > 0 {
		buf.WriteString("\n")
	}
}

// writeUniform emits the uniform block at set 6 binding 0 (spec.md §4.6
// step 7), if the shader declared one. The block is anonymous: sema.go
// lifts every member into the global scope under its bare name, so the
// block carries no instance name here, letting `m` read directly instead
// of requiring a `u.m` qualifier.
func writeUniform(buf *strings.Builder, u *sema.UniformVariable) {
	if u == nil {
		return
	}
	fmt.Fprintf(buf, "layout(set = 6, binding = 0, std140) uniform _Uniform {\n")
	for _, m := range u.Struct.Members {
		fmt.Fprintf(buf, "    %s\n", structMemberGLSL(m))
	}
	buf.WriteString("};\n\n")
}

// writeVertexInterface emits `layout(location=L) in TYPE name;` for every
// declared input, expanding matrices and arrays to consecutive locations
// (spec.md §4.6 step 3).
func writeVertexInterface(buf *strings.Builder, inputs []sema.InterfaceVariable) {
	for _, in := range inputs {
		if in.ArraySize > 1 {
			fmt.Fprintf(buf, "layout(location = %d) in %s %s[%d];\n", in.Location, glslTypeName(in.Type), in.Name, in.ArraySize)
			continue
		}
		fmt.Fprintf(buf, "layout(location = %d) in %s %s;\n", in.Location, glslTypeName(in.Type), in.Name)
	}
	if len(inputs) > 0 {
		buf.WriteString("\n")
	}
}

// writeFragmentInterface emits `layout(location=L) out TYPE name;` for
// every declared output.
func writeFragmentInterface(buf *strings.Builder, outputs []sema.InterfaceVariable) {
	for _, out := range outputs {
		fmt.Fprintf(buf, "layout(location = %d) out %s %s;\n", out.Location, glslTypeName(out.Type), out.Name)
	}
	if len(outputs) > 0 {
		buf.WriteString("\n")
	}
}

// writeLocals emits inter-stage locals: Vertex emits `out`, Fragment
// emits `in`, at monotonically assigned locations starting at 0 within
// the stage (spec.md §4.6 step 6).
func writeLocals(buf *strings.Builder, locals []sema.LocalVariable, stage scope.Stage) {
	direction := "out"
	if stage == scope.Fragment {
		direction = "in"
	}
	for i, l := range locals {
		flat := ""
		if l.Flat {
			flat = "flat "
		}
		fmt.Fprintf(buf, "layout(location = %d) %s%s %s %s;\n", i, flat, direction, glslTypeName(l.Type), l.Name)
	}
	if len(locals) > 0 {
		buf.WriteString("\n")
	}
}

// Generate assembles the full GLSL translation unit for every stage the
// shader declares, keyed by scope.Stage.String() ("vert"/"frag").
func Generate(info sema.ShaderInfo, stageOutputs []sema.StageOutput, reg *types.Registry, opts Options) map[string]string {
	result := make(map[string]string, len(stageOutputs))
	for _, so := range stageOutputs {
		var buf strings.Builder
		buf.WriteString("#version 450 core\n\n")
		writeStructs(&buf, reg)
		writeBindingTables(&buf, info.Bindings, opts.Sizes)
		writeSubpassInputs(&buf, info.Subpasses)
		writeUniform(&buf, info.Uniform)

		if so.Stage == scope.Vertex {
			writeVertexInterface(&buf, info.Inputs)
		} else {
			writeFragmentInterface(&buf, info.Outputs)
		}
		writeLocals(&buf, info.Locals, so.Stage)

		buf.WriteString("void main() {\n")
		buf.WriteString(indentBody(so.Body))
		buf.WriteString("}\n")

		result[so.Stage.String()] = buf.String()
	}
	return result
}

func indentBody(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	var out strings.Builder
	for _, l := range lines {
		if l == "" {
			out.WriteString("\n")
			continue
		}
		out.WriteString("    ")
		out.WriteString(l)
		out.WriteString("\n")
	}
	return out.String()
}
