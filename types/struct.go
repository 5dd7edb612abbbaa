package types

import "fmt"

// Limits mirrors the fixed numeric ceilings carried in the original VSL
// source (original_source/vsl/Shader.hpp, vsl/reflection/ShaderInfo.hpp,
// vsl/reflection/Types.hpp) that spec.md names but does not spell out.
const (
	MaxNameLength     = 32
	MaxStructSize     = 1024
	MaxArraySize      = 64
	MaxMemberCount    = 32
	MaxInputIndex     = 31
	MaxOutputIndex    = 7
	MaxInputArraySize = 8
	MaxBindingIndex   = 31
	MaxSubpassInputs  = 4
)

// StructMember is one field of a user-declared struct.
type StructMember struct {
	Name      string
	Type      *ShaderType
	ArraySize uint32 // 1 for a non-array member, up to MaxArraySize
}

// StructType is a user-defined struct, laid out with std140-like alignment
// rules (spec.md §3). Offsets and size are computed once at construction by
// the Registry and never recomputed — StructType values are immutable.
type StructType struct {
	Name      string
	Members   []StructMember
	Offsets   []uint32
	Size      uint32
	Alignment uint32
}

// GetMember returns the named member and its byte offset, or (nil, 0, false).
func (s *StructType) GetMember(name string) (*StructMember, uint32, bool) {
	for i, m := range s.Members {
		if m.Name == name {
			return &s.Members[i], s.Offsets[i], true
		}
	}
	return nil, 0, false
}

// HasMember reports whether name is a member of s.
func (s *StructType) HasMember(name string) bool {
	_, _, ok := s.GetMember(name)
	return ok
}

// std140 alignment/size helpers. scalarAlign is the component size of the
// member's base scalar (1/2/4/8 bytes); vecAlign rounds up to the std140
// vec2/vec4 rule; arrays and matrices always round their stride to a
// multiple of 16 (one vec4 slot), as spec.md §3 specifies.
const vec4Align = 16

func scalarSize(t *ShaderType) uint32 {
	if n, ok := t.Payload.(Numeric); ok {
		return uint32(n.SizeBytes)
	}
	return 4
}

// baseAlignOf returns the std140 alignment, in bytes, of a single instance
// of t ignoring array wrapping.
func baseAlignOf(t *ShaderType) uint32 {
	n, ok := t.Payload.(Numeric)
	if !ok {
		// Non-numeric (struct) members align to their own struct alignment,
		// rounded up to a vec4 boundary.
		if t.Base == Struct {
			if sp, ok := t.Payload.(StructPayload); ok {
				return roundUp(sp.Struct.Alignment, vec4Align)
			}
		}
		return vec4Align
	}
	scalar := uint32(n.SizeBytes)
	switch {
	case n.MatCols > 1:
		// Matrices are laid out as MatCols consecutive vec4 (or dvec4) slots.
		return vec4Align
	case n.VecDims == 1:
		return scalar
	case n.VecDims == 2:
		return 2 * scalar
	default: // 3 or 4
		return 4 * scalar
	}
}

// sizeOf returns the unpadded size, in bytes, of a single instance of t.
func sizeOf(t *ShaderType) uint32 {
	n, ok := t.Payload.(Numeric)
	if !ok {
		if t.Base == Struct {
			if sp, ok := t.Payload.(StructPayload); ok {
				return sp.Struct.Size
			}
		}
		return 0
	}
	scalar := uint32(n.SizeBytes)
	if n.MatCols > 1 {
		return uint32(n.MatCols) * 4 * scalar // MatCols vec4 slots
	}
	return uint32(n.VecDims) * scalar
}

func roundUp(value, multiple uint32) uint32 {
	if multiple == 0 {
		return value
	}
	rem := value % multiple
	if rem == 0 {
		return value
	}
	return value + (multiple - rem)
}

// layoutStruct computes offsets, size, and alignment for members using the
// std140-style rules spec.md §3 fixes: scalar alignment is the component
// size; vec2 aligns to 2x component, vec3/vec4 to 4x; matrices occupy
// MatCols vec4 slots; arrays round their per-element stride up to vec4;
// the struct's own alignment is the max member alignment, rounded to vec4.
func layoutStruct(name string, members []StructMember) (*StructType, error) {
	if len(members) > MaxMemberCount {
		return nil, fmt.Errorf("struct %q has %d members, exceeds limit of %d", name, len(members), MaxMemberCount)
	}

	offsets := make([]uint32, len(members))
	var cursor, maxAlign uint32
	for i, m := range members {
		if m.ArraySize > MaxArraySize {
			return nil, fmt.Errorf("member %q of struct %q has array size %d, exceeds limit of %d", m.Name, name, m.ArraySize, MaxArraySize)
		}
		align := baseAlignOf(m.Type)
		stride := sizeOf(m.Type)
		if m.ArraySize > 1 {
			align = roundUp(align, vec4Align)
			stride = roundUp(stride, vec4Align)
		}
		cursor = roundUp(cursor, align)
		offsets[i] = cursor

		count := m.ArraySize
		if count == 0 {
			count = 1
		}
		cursor += stride * count
		if align > maxAlign {
			maxAlign = align
		}
	}
	alignment := roundUp(maxAlign, vec4Align)
	size := roundUp(cursor, alignment)

	if size > MaxStructSize {
		return nil, fmt.Errorf("struct %q has size %d bytes, exceeds limit of %d", name, size, MaxStructSize)
	}

	return &StructType{
		Name:      name,
		Members:   members,
		Offsets:   offsets,
		Size:      size,
		Alignment: alignment,
	}, nil
}
