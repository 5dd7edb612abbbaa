package types

import "fmt"

// TexelKind is the component interpretation of a TexelFormat (spec.md §3).
type TexelKind uint8

const (
	TexelSigned TexelKind = iota
	TexelUnsigned
	TexelFloat
	TexelUNorm
	TexelSNorm
)

// TexelFormat describes the packed scalar format of a sampled or stored
// image element. The full set is a closed enumeration (spec.md §3, §6);
// instances live in a process-wide constant table, shared by every
// Registry in the process (they are immutable and never mutated after
// package init, matching the "read-mostly, initialized once" global table
// idiom used for naga's keyword tables in glsl/keywords.go).
type TexelFormat struct {
	Kind           TexelKind
	ComponentSize  uint8 // bytes: 1, 2, or 4
	ComponentCount uint8 // 1, 2, or 4
	name           string
}

// Name returns the VSL spelling of the format, e.g. "rgba8_unorm".
func (f *TexelFormat) Name() string { return f.name }

// GLSLImageFormat returns the GLSL `layout(...)` qualifier spelling, e.g.
// "rgba8" for rgba8_unorm, "rg16f" for rg16_float.
func (f *TexelFormat) GLSLImageFormat() string {
	comp := componentLetters[f.ComponentCount]
	bits := int(f.ComponentSize) * 8
	switch f.Kind {
	case TexelFloat:
		return fmt.Sprintf("%s%df", comp, bits)
	case TexelSigned:
		return fmt.Sprintf("%s%di", comp, bits)
	case TexelUnsigned:
		return fmt.Sprintf("%s%dui", comp, bits)
	case TexelUNorm:
		return fmt.Sprintf("%s%d", comp, bits)
	case TexelSNorm:
		return fmt.Sprintf("%s%d_snorm", comp, bits)
	default:
		return fmt.Sprintf("%s%d", comp, bits)
	}
}

// SamplerPrefix returns the GLSL sampler-name prefix implied by this
// format's component kind: "", "i", or "u" for sampler/isampler/usampler.
func (f *TexelFormat) SamplerPrefix() string {
	switch f.Kind {
	case TexelSigned:
		return "i"
	case TexelUnsigned:
		return "u"
	default:
		return ""
	}
}

var componentLetters = map[uint8]string{1: "r", 2: "rg", 4: "rgba"}

// texelFormats is the closed, process-wide enumeration of valid formats
// (spec.md §6 names rgba8_unorm, rg16_float, … as examples from this set).
var texelFormats = buildTexelFormats()

func buildTexelFormats() map[string]*TexelFormat {
	m := make(map[string]*TexelFormat, 48)
	add := func(kind TexelKind, size, count uint8) {
		comp := componentLetters[count]
		name := fmt.Sprintf("%s%d_%s", comp, int(size)*8, kindName(kind))
		m[name] = &TexelFormat{Kind: kind, ComponentSize: size, ComponentCount: count, name: name}
	}
	for _, count := range []uint8{1, 2, 4} {
		add(TexelUNorm, 1, count)
		add(TexelSNorm, 1, count)
		add(TexelUnsigned, 1, count)
		add(TexelSigned, 1, count)

		add(TexelUNorm, 2, count)
		add(TexelSNorm, 2, count)
		add(TexelUnsigned, 2, count)
		add(TexelSigned, 2, count)
		add(TexelFloat, 2, count)

		add(TexelUnsigned, 4, count)
		add(TexelSigned, 4, count)
		add(TexelFloat, 4, count)
	}
	return m
}

func kindName(k TexelKind) string {
	switch k {
	case TexelSigned:
		return "sint"
	case TexelUnsigned:
		return "uint"
	case TexelFloat:
		return "float"
	case TexelUNorm:
		return "unorm"
	case TexelSNorm:
		return "snorm"
	default:
		return "unknown"
	}
}

// LookupTexelFormat returns the named TexelFormat from the process-wide
// constant table, or nil if name is not part of the closed enumeration.
func LookupTexelFormat(name string) *TexelFormat {
	return texelFormats[name]
}
