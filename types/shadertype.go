package types

// Payload is the variant data carried by a ShaderType, one of Numeric,
// Texel, Buffer, or StructPayload. Re-architected from the source's
// tagged-union struct (BaseType discriminant + C union) into a Go sum type,
// per spec.md §9's design note — the same approach naga takes for
// ir.TypeInner (ir/ir.go).
type Payload interface {
	payload()
}

// Numeric is the payload for Boolean/Signed/Unsigned/Float base types:
// scalar, vector, or matrix numeric data.
type Numeric struct {
	SizeBytes uint8 // 1, 2, 4, or 8
	VecDims   uint8 // 1..4; >1 with MatCols==1 is a vector
	MatCols   uint8 // 1..4; >1 means a (Float-only) matrix with MatCols columns
}

func (Numeric) payload() {}

// Texel is the payload for Sampler/Image/ROTexels/RWTexels/SubpassInput.
type Texel struct {
	Rank   TexelRank
	Format *TexelFormat
}

func (Texel) payload() {}

// Buffer is the payload for Uniform/ROBuffer/RWBuffer: a struct-backed
// resource.
type Buffer struct {
	Struct *StructType
}

func (Buffer) payload() {}

// StructPayload is the payload for the Struct base type: a plain
// (non-resource) user struct value.
type StructPayload struct {
	Struct *StructType
}

func (StructPayload) payload() {}

// ShaderType is an immutable, interned type reference (spec.md §3). Once
// constructed by a Registry it is never mutated; all references to it
// within a compilation are non-owning borrows whose lifetime is tied to
// that Registry, per spec.md §9's "shared, non-owning type references"
// design note.
type ShaderType struct {
	Base    BaseType
	Payload Payload
	name    string // cached VSL spelling, set at construction
}

// Name returns the VSL spelling of the type, e.g. "vec3", "mat4",
// "image2D<rgba8_unorm>", "MyStruct".
func (t *ShaderType) Name() string { return t.name }

// IsVoid, IsBoolean, … mirror the base-type predicates of the original
// ShaderType (original_source/vsl/Types.hpp): pattern matches over the
// tagged BaseType rather than union-member checks, per spec.md §9.
func (t *ShaderType) IsVoid() bool     { return t.Base == Void }
func (t *ShaderType) IsBoolean() bool  { return t.Base == Boolean }
func (t *ShaderType) IsSigned() bool   { return t.Base == Signed }
func (t *ShaderType) IsUnsigned() bool { return t.Base == Unsigned }
func (t *ShaderType) IsFloat() bool    { return t.Base == Float }
func (t *ShaderType) IsSampler() bool  { return t.Base == Sampler }
func (t *ShaderType) IsImage() bool    { return t.Base == Image }
func (t *ShaderType) IsStruct() bool   { return t.Base == Struct }

// IsInteger reports whether t is Signed or Unsigned.
func (t *ShaderType) IsInteger() bool { return t.Base == Signed || t.Base == Unsigned }

// IsNumeric reports whether t is a scalar, vector, or matrix numeric type.
func (t *ShaderType) IsNumeric() bool { return t.Base.IsNumeric() }

// IsScalar, IsVector, IsMatrix decompose a Numeric payload by its dims, as
// spec.md §3's invariant: vecDims=matCols=1 is scalar, matCols=1 with
// vecDims>1 is a vector, matCols>1 is a (Float-only) matrix.
func (t *ShaderType) IsScalar() bool {
	n, ok := t.Payload.(Numeric)
	return ok && n.VecDims == 1 && n.MatCols == 1
}

func (t *ShaderType) IsVector() bool {
	n, ok := t.Payload.(Numeric)
	return ok && n.VecDims > 1 && n.MatCols == 1
}

func (t *ShaderType) IsMatrix() bool {
	n, ok := t.Payload.(Numeric)
	return ok && n.MatCols > 1
}

// IsTexelType reports whether t is Sampler, Image, ROTexels, RWTexels, or
// SubpassInput.
func (t *ShaderType) IsTexelType() bool { return t.Base.IsTexel() }

// IsBufferType reports whether t is ROBuffer or RWBuffer.
func (t *ShaderType) IsBufferType() bool {
	return t.Base == ROBuffer || t.Base == RWBuffer
}

// HasStructType reports whether t carries a struct reference, directly
// (Struct) or through a buffer/uniform payload.
func (t *ShaderType) HasStructType() bool {
	return t.Base == Uniform || t.IsBufferType() || t.Base == Struct
}

// StructRef returns the backing StructType for a Struct/Uniform/ROBuffer/
// RWBuffer type, or nil.
func (t *ShaderType) StructRef() *StructType {
	switch p := t.Payload.(type) {
	case StructPayload:
		return p.Struct
	case Buffer:
		return p.Struct
	default:
		return nil
	}
}

// VecDims returns the vector width (1 for scalars) of a numeric type, or 0
// for non-numeric types.
func (t *ShaderType) VecDims() uint8 {
	if n, ok := t.Payload.(Numeric); ok {
		return n.VecDims
	}
	return 0
}

// MatCols returns the column count (1 for non-matrices) of a numeric type,
// or 0 for non-numeric types.
func (t *ShaderType) MatCols() uint8 {
	if n, ok := t.Payload.(Numeric); ok {
		return n.MatCols
	}
	return 0
}

// GetBindingCount returns the number of consecutive input/output locations
// (or binding slots) this type occupies: MatCols for a matrix, 1 otherwise.
// An InterfaceVariable's total location span is GetBindingCount()*arraySize
// (spec.md §3's ShaderInfo invariant).
func (t *ShaderType) GetBindingCount() uint32 {
	if n, ok := t.Payload.(Numeric); ok && n.MatCols > 1 {
		return uint32(n.MatCols)
	}
	return 1
}

// IsSame reports structural equality. Because ShaderType values are
// interned by the Registry, pointer equality is sufficient and preferred;
// IsSame exists for cross-Registry comparisons (e.g. tests).
func (t *ShaderType) IsSame(o *ShaderType) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Base != o.Base {
		return false
	}
	switch p := t.Payload.(type) {
	case Numeric:
		op, ok := o.Payload.(Numeric)
		return ok && p == op
	case Texel:
		op, ok := o.Payload.(Texel)
		return ok && p.Rank == op.Rank && p.Format == op.Format
	case Buffer:
		op, ok := o.Payload.(Buffer)
		return ok && p.Struct == op.Struct
	case StructPayload:
		op, ok := o.Payload.(StructPayload)
		return ok && p.Struct == op.Struct
	default:
		return true // both Void, no payload
	}
}

// hasImplicitCast implements the one-step implicit cast lattice of
// spec.md §4.3: Signed -> Float, Unsigned -> Float, and (for literals
// only) Unsigned -> Signed. It is acyclic by construction: each rule fires
// in exactly one direction.
func (t *ShaderType) hasImplicitCast(target *ShaderType, literal bool) bool {
	if !t.IsNumeric() || !target.IsNumeric() {
		return false
	}
	tn, _ := t.Payload.(Numeric)
	gn, _ := target.Payload.(Numeric)
	if tn.VecDims != gn.VecDims || tn.MatCols != gn.MatCols {
		return false
	}
	switch {
	case t.Base == Signed && target.Base == Float:
		return true
	case t.Base == Unsigned && target.Base == Float:
		return true
	case t.Base == Unsigned && target.Base == Signed && literal:
		return true
	default:
		return false
	}
}

// HasImplicitCast reports whether a value of type t can be implicitly cast
// to target (non-literal context).
func (t *ShaderType) HasImplicitCast(target *ShaderType) bool {
	return t.hasImplicitCast(target, false)
}

// HasImplicitLiteralCast reports whether a literal of type t can be
// implicitly cast to target, which additionally allows Unsigned->Signed.
func (t *ShaderType) HasImplicitLiteralCast(target *ShaderType) bool {
	return t.hasImplicitCast(target, true)
}
