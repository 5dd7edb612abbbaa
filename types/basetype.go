// Package types implements the VSL type registry (component A): the owner
// of every builtin and user-declared ShaderType and StructType for a single
// shader compilation. Grounded on the interning strategy of
// github.com/gogpu/naga's ir.TypeRegistry (ir/registry.go), generalized from
// naga's generic IR type arena to VSL's fixed, spec-defined type taxonomy.
package types

// BaseType tags the kind of a ShaderType, as spec.md §3.
type BaseType uint8

const (
	Void BaseType = iota
	Boolean
	Signed
	Unsigned
	Float
	Sampler
	Image
	ROBuffer
	RWBuffer
	ROTexels
	RWTexels
	SubpassInput
	Uniform
	Struct
)

// String names a BaseType the way VSL source spells it, used in error
// messages and in GLSL type-name synthesis.
func (b BaseType) String() string {
	switch b {
	case Void:
		return "void"
	case Boolean:
		return "bool"
	case Signed:
		return "int"
	case Unsigned:
		return "uint"
	case Float:
		return "float"
	case Sampler:
		return "sampler"
	case Image:
		return "image"
	case ROBuffer:
		return "ROBuffer"
	case RWBuffer:
		return "RWBuffer"
	case ROTexels:
		return "ROTexels"
	case RWTexels:
		return "RWTexels"
	case SubpassInput:
		return "subpassInput"
	case Uniform:
		return "uniform"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether b is Signed, Unsigned, or Float. Boolean is
// not numeric here, although bool types also carry a Numeric payload.
func (b BaseType) IsNumeric() bool {
	return b == Signed || b == Unsigned || b == Float
}

// IsTexel reports whether b carries a Texel payload (rank + format).
func (b BaseType) IsTexel() bool {
	switch b {
	case Sampler, Image, ROTexels, RWTexels, SubpassInput:
		return true
	default:
		return false
	}
}

// IsBuffer reports whether b carries a Buffer payload (struct-backed).
func (b BaseType) IsBuffer() bool {
	return b == Uniform || b == ROBuffer || b == RWBuffer
}

// TexelRank is the dimensionality of a texel-like object (spec.md §3).
type TexelRank uint8

const (
	Rank1D TexelRank = iota
	Rank2D
	Rank3D
	Rank1DArray
	Rank2DArray
	RankCube
	RankBuffer
)

// Suffix returns the GLSL/VSL type-name suffix for the rank, e.g. "2D",
// "2DArray", "Cube", or "Buffer".
func (r TexelRank) Suffix() string {
	switch r {
	case Rank1D:
		return "1D"
	case Rank2D:
		return "2D"
	case Rank3D:
		return "3D"
	case Rank1DArray:
		return "1DArray"
	case Rank2DArray:
		return "2DArray"
	case RankCube:
		return "Cube"
	case RankBuffer:
		return "Buffer"
	default:
		return "?"
	}
}
