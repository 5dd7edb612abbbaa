// Package artifact implements the Artifact Writer (component H): the
// binary `.vsp` container combining reflection records with per-stage
// SPIR-V bytecode, per spec.md §6's fixed little-endian layout.
//
// Grounded on spirv/writer.go's binary.LittleEndian.PutUint32 word
// assembly, generalized from a single SPIR-V module's word stream to the
// full `.vsp` record sequence (header, interface/binding/subpass/struct
// records, optional uniform record, per-stage bytecode blocks).
package artifact

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/sema"
	"github.com/vsl-lang/vsl/types"
)

// Magic is the 4-byte file signature.
var Magic = [4]byte{'V', 'S', 'L', 0}

// FormatVersion is the artifact format version embedded in the header.
const FormatVersion uint32 = 1

// InterfaceRecord is one vertex input or fragment output (spec.md §6): 8
// bytes on the wire (location, baseType, dims[2], arraySize, 3 bytes pad).
type InterfaceRecord struct {
	Location  uint8
	BaseType  uint8
	Dims      [2]uint8 // [vecDims, matCols]
	ArraySize uint8
}

// BindingRecord is one Sampler/Image/Buffer/Texels binding (spec.md §6): 8
// bytes on the wire (slot, baseType, stageMask u16, 4-byte union).
type BindingRecord struct {
	Slot      uint8
	BaseType  uint8
	StageMask uint16
	Union     [4]byte // image{rank,texelType,texelSize,texelCount} or buffer{size u16, pad u16}
}

// SubpassRecord is one subpass input (spec.md §6): 4 bytes on the wire.
type SubpassRecord struct {
	TexelFormat uint8
	TexelCount  uint8
}

// StructMemberRecord is one struct field (spec.md §6): 4 bytes on the
// wire (baseType, dims[2], arraySize).
type StructMemberRecord struct {
	BaseType  uint8
	Dims      [2]uint8
	ArraySize uint8
}

// StructRecord is one user struct's reflection entry: a length-prefixed
// name followed by its member records.
type StructRecord struct {
	Name    string
	Members []StructMemberRecord
}

// Artifact is the fully decoded contents of a `.vsp` file.
type Artifact struct {
	Version            uint32
	StageMask          uint16
	Flags              uint16
	Inputs             []InterfaceRecord
	Outputs            []InterfaceRecord
	Bindings           []BindingRecord
	Subpasses          []SubpassRecord
	Structs            []StructRecord
	HasUniform         bool
	UniformStructIndex uint16
	// Bytecode is keyed by stage bit index: 0 for Vertex, 1 for Fragment
	// (spec.md §6 "for each stage in stage_mask, ascending bit").
	Bytecode map[uint8][]uint32
}

func dimsOf(t *types.ShaderType) [2]uint8 {
	return [2]uint8{t.VecDims(), t.MatCols()}
}

func toInterfaceRecord(iv sema.InterfaceVariable) InterfaceRecord {
	return InterfaceRecord{
		Location:  uint8(iv.Location),
		BaseType:  uint8(iv.Type.Base),
		Dims:      dimsOf(iv.Type),
		ArraySize: uint8(iv.ArraySize),
	}
}

func toBindingRecord(b sema.BindingVariable, stageMask uint16) BindingRecord {
	rec := BindingRecord{Slot: uint8(b.Slot), BaseType: uint8(b.Type.Base), StageMask: stageMask}
	if texel, ok := b.Type.Payload.(types.Texel); ok {
		rec.Union[0] = uint8(texel.Rank)
		if texel.Format != nil {
			rec.Union[1] = uint8(texel.Format.Kind)
			rec.Union[2] = texel.Format.ComponentSize
			rec.Union[3] = texel.Format.ComponentCount
		}
	} else if buf, ok := b.Type.Payload.(types.Buffer); ok && buf.Struct != nil {
		binary.LittleEndian.PutUint16(rec.Union[0:2], uint16(buf.Struct.Size))
	}
	return rec
}

func toSubpassRecord(sp sema.SubpassVariable) SubpassRecord {
	rec := SubpassRecord{}
	if sp.Format != nil {
		rec.TexelFormat = uint8(sp.Format.Kind)
		rec.TexelCount = sp.Format.ComponentCount
	}
	return rec
}

func toStructRecord(s *types.StructType) StructRecord {
	rec := StructRecord{Name: s.Name, Members: make([]StructMemberRecord, len(s.Members))}
	for i, m := range s.Members {
		rec.Members[i] = StructMemberRecord{
			BaseType:  uint8(m.Type.Base),
			Dims:      dimsOf(m.Type),
			ArraySize: uint8(m.ArraySize),
		}
	}
	return rec
}

// FromShaderInfo builds the on-disk Artifact model from the accumulated
// reflection and a per-stage SPIR-V word stream.
func FromShaderInfo(info sema.ShaderInfo, reg *types.Registry, bytecode map[scope.Stage][]uint32) (*Artifact, error) {
	a := &Artifact{
		Version:   FormatVersion,
		StageMask: uint16(info.Stages),
		Bytecode:  make(map[uint8][]uint32, len(bytecode)),
	}
	for _, in := range info.Inputs {
		a.Inputs = append(a.Inputs, toInterfaceRecord(in))
	}
	for _, out := range info.Outputs {
		a.Outputs = append(a.Outputs, toInterfaceRecord(out))
	}
	for _, b := range info.Bindings {
		a.Bindings = append(a.Bindings, toBindingRecord(b, uint16(info.Stages)))
	}
	for _, sp := range info.Subpasses {
		a.Subpasses = append(a.Subpasses, toSubpassRecord(sp))
	}
	for i, s := range reg.Structs() {
		a.Structs = append(a.Structs, toStructRecord(s))
		if info.Uniform != nil && info.Uniform.Struct == s {
			a.HasUniform = true
			a.UniformStructIndex = uint16(i)
		}
	}
	for stage, words := range bytecode {
		a.Bytecode[uint8(stage)] = words
	}
	return a, nil
}

// Write serializes a to w in the exact byte layout of spec.md §6.
func Write(w io.Writer, a *Artifact) error {
	var buf bytes.Buffer

	buf.Write(Magic[:])
	binary.Write(&buf, binary.LittleEndian, a.Version)
	binary.Write(&buf, binary.LittleEndian, a.StageMask)
	binary.Write(&buf, binary.LittleEndian, a.Flags)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // reserved

	buf.WriteByte(uint8(len(a.Inputs)))
	buf.WriteByte(uint8(len(a.Outputs)))
	buf.WriteByte(uint8(len(a.Bindings)))
	buf.WriteByte(uint8(len(a.Subpasses)))

	binary.Write(&buf, binary.LittleEndian, uint16(len(a.Structs)))
	if a.HasUniform {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.WriteByte(0) // reserved

	for _, rec := range a.Inputs {
		writeInterfaceRecord(&buf, rec)
	}
	for _, rec := range a.Outputs {
		writeInterfaceRecord(&buf, rec)
	}
	for _, rec := range a.Bindings {
		buf.WriteByte(rec.Slot)
		buf.WriteByte(rec.BaseType)
		binary.Write(&buf, binary.LittleEndian, rec.StageMask)
		buf.Write(rec.Union[:])
	}
	for _, rec := range a.Subpasses {
		buf.WriteByte(rec.TexelFormat)
		buf.WriteByte(rec.TexelCount)
		buf.Write([]byte{0, 0})
	}
	for _, s := range a.Structs {
		if len(s.Name) > 255 {
			return fmt.Errorf("artifact: struct name %q too long", s.Name)
		}
		buf.WriteByte(uint8(len(s.Name)))
		buf.WriteString(s.Name)
		binary.Write(&buf, binary.LittleEndian, uint16(len(s.Members)))
		for _, m := range s.Members {
			buf.WriteByte(m.BaseType)
			buf.Write(m.Dims[:])
			buf.WriteByte(m.ArraySize)
		}
	}
	if a.HasUniform {
		binary.Write(&buf, binary.LittleEndian, a.UniformStructIndex)
	}

	for bit := uint8(0); bit < 16; bit++ {
		if a.StageMask&(1<<bit) == 0 {
			continue
		}
		words := a.Bytecode[bit]
		binary.Write(&buf, binary.LittleEndian, uint32(len(words)))
		for _, word := range words {
			binary.Write(&buf, binary.LittleEndian, word)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeInterfaceRecord(buf *bytes.Buffer, rec InterfaceRecord) {
	buf.WriteByte(rec.Location)
	buf.WriteByte(rec.BaseType)
	buf.Write(rec.Dims[:])
	buf.WriteByte(rec.ArraySize)
	buf.Write([]byte{0, 0, 0})
}

// Read deserializes a `.vsp` artifact from r, the inverse of Write.
func Read(r io.Reader) (*Artifact, error) {
	br := &byteReader{r: r}

	var magic [4]byte
	br.read(magic[:])
	if br.err == nil && magic != Magic {
		return nil, fmt.Errorf("artifact: bad magic %v", magic)
	}

	a := &Artifact{Bytecode: map[uint8][]uint32{}}
	a.Version = br.u32()
	a.StageMask = br.u16()
	a.Flags = br.u16()
	br.u32() // reserved

	inputCount := br.u8()
	outputCount := br.u8()
	bindingCount := br.u8()
	subpassCount := br.u8()

	structCount := br.u16()
	hasUniform := br.u8()
	br.u8() // reserved

	for i := uint8(0); i < inputCount; i++ {
		a.Inputs = append(a.Inputs, br.interfaceRecord())
	}
	for i := uint8(0); i < outputCount; i++ {
		a.Outputs = append(a.Outputs, br.interfaceRecord())
	}
	for i := uint8(0); i < bindingCount; i++ {
		var rec BindingRecord
		rec.Slot = br.u8()
		rec.BaseType = br.u8()
		rec.StageMask = br.u16()
		br.read(rec.Union[:])
		a.Bindings = append(a.Bindings, rec)
	}
	for i := uint8(0); i < subpassCount; i++ {
		var rec SubpassRecord
		rec.TexelFormat = br.u8()
		rec.TexelCount = br.u8()
		br.skip(2)
		a.Subpasses = append(a.Subpasses, rec)
	}
	for i := uint16(0); i < structCount; i++ {
		nameLen := br.u8()
		name := make([]byte, nameLen)
		br.read(name)
		memberCount := br.u16()
		members := make([]StructMemberRecord, memberCount)
		for j := range members {
			members[j].BaseType = br.u8()
			br.read(members[j].Dims[:])
			members[j].ArraySize = br.u8()
		}
		a.Structs = append(a.Structs, StructRecord{Name: string(name), Members: members})
	}
	if hasUniform != 0 {
		a.HasUniform = true
		a.UniformStructIndex = br.u16()
	}

	for bit := uint8(0); bit < 16; bit++ {
		if a.StageMask&(1<<bit) == 0 {
			continue
		}
		count := br.u32()
		words := make([]uint32, count)
		for i := range words {
			words[i] = br.u32()
		}
		a.Bytecode[bit] = words
	}

	if br.err != nil && br.err != io.EOF {
		return nil, br.err
	}
	return a, nil
}

func (br *byteReader) interfaceRecord() InterfaceRecord {
	var rec InterfaceRecord
	rec.Location = br.u8()
	rec.BaseType = br.u8()
	br.read(rec.Dims[:])
	rec.ArraySize = br.u8()
	br.skip(3)
	return rec
}

// byteReader is a small little-endian cursor that latches the first
// error, so call sites can read fields without their own error-per-field
// handling.
type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) read(p []byte) {
	if br.err != nil {
		return
	}
	_, br.err = io.ReadFull(br.r, p)
}

func (br *byteReader) skip(n int) { br.read(make([]byte, n)) }

func (br *byteReader) u8() uint8 {
	var b [1]byte
	br.read(b[:])
	return b[0]
}

func (br *byteReader) u16() uint16 {
	var b [2]byte
	br.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

func (br *byteReader) u32() uint32 {
	var b [4]byte
	br.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}
