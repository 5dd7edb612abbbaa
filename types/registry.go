package types

import (
	"fmt"
	"strings"
)

// numericKey canonicalizes (BaseType, size, vecDims, matCols) so that equal
// keys always yield pointer-equal ShaderTypes, per spec.md §4.1's
// "canonicalization" guarantee and §8's "type interning" testable property.
// Grounded on ir.TypeRegistry.normalizeType (ir/registry.go), which builds
// an equivalent string key to deduplicate SPIR-V type declarations; here the
// key space is the small, fixed VSL type grammar instead of an open IR.
type numericKey struct {
	base    BaseType
	size    uint8
	vecDims uint8
	matCols uint8
}

type texelKey struct {
	base   BaseType
	rank   TexelRank
	format *TexelFormat
}

type bufferKey struct {
	base BaseType
	strc *StructType
}

// Registry owns every ShaderType and StructType for a single shader
// compilation (component A). It guarantees pointer equality for equal type
// keys and is not safe for concurrent use from multiple goroutines — each
// concurrently-compiled Shader must own its own Registry (spec.md §5).
type Registry struct {
	builtinsByName map[string]*ShaderType
	numeric        map[numericKey]*ShaderType
	texel          map[texelKey]*ShaderType
	buffer         map[bufferKey]*ShaderType
	structsByName  map[string]*StructType
	structTypes    map[*StructType]*ShaderType
	structOrder    []*StructType
}

// NewRegistry constructs a Registry pre-populated with every builtin type
// named in spec.md §4.1.
func NewRegistry() *Registry {
	r := &Registry{
		builtinsByName: make(map[string]*ShaderType, 64),
		numeric:        make(map[numericKey]*ShaderType, 64),
		texel:          make(map[texelKey]*ShaderType, 32),
		buffer:         make(map[bufferKey]*ShaderType, 8),
		structsByName:  make(map[string]*StructType, 8),
		structTypes:    make(map[*StructType]*ShaderType, 8),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) internNumeric(base BaseType, size, vecDims, matCols uint8, name string) *ShaderType {
	key := numericKey{base, size, vecDims, matCols}
	if existing, ok := r.numeric[key]; ok {
		return existing
	}
	st := &ShaderType{Base: base, Payload: Numeric{SizeBytes: size, VecDims: vecDims, MatCols: matCols}, name: name}
	r.numeric[key] = st
	return st
}

func (r *Registry) registerBuiltins() {
	add := func(name string, t *ShaderType) {
		r.builtinsByName[name] = t
	}

	add("void", &ShaderType{Base: Void, name: "void"})
	add("bool", r.internNumeric(Boolean, 1, 1, 1, "bool"))
	add("int", r.internNumeric(Signed, 4, 1, 1, "int"))
	add("uint", r.internNumeric(Unsigned, 4, 1, 1, "uint"))
	add("float", r.internNumeric(Float, 4, 1, 1, "float"))

	vecFamilies := []struct {
		base   BaseType
		prefix string
	}{{Float, "vec"}, {Signed, "ivec"}, {Unsigned, "uvec"}, {Boolean, "bvec"}}
	for _, fam := range vecFamilies {
		size := uint8(4)
		if fam.base == Boolean {
			size = 1
		}
		for dims := uint8(2); dims <= 4; dims++ {
			name := fmt.Sprintf("%s%d", fam.prefix, dims)
			add(name, r.internNumeric(fam.base, size, dims, 1, name))
		}
	}

	for cols := uint8(2); cols <= 4; cols++ {
		for rows := uint8(2); rows <= 4; rows++ {
			var name string
			if cols == rows {
				name = fmt.Sprintf("mat%d", cols)
			} else {
				name = fmt.Sprintf("mat%dx%d", cols, rows)
			}
			add(name, r.internNumeric(Float, 4, rows, cols, name))
		}
	}

	ranks := []TexelRank{Rank1D, Rank2D, Rank3D, Rank1DArray, Rank2DArray, RankCube}
	for _, rank := range ranks {
		add("sampler"+rank.Suffix(), r.internTexel(Sampler, rank, nil, "sampler"+rank.Suffix()))
	}
	add("textureBuffer", r.internTexel(ROTexels, RankBuffer, nil, "textureBuffer"))
	add("imageBuffer", r.internTexel(RWTexels, RankBuffer, nil, "imageBuffer"))
	add("subpassInput", r.internTexel(SubpassInput, Rank2D, nil, "subpassInput"))
}

func (r *Registry) internTexel(base BaseType, rank TexelRank, format *TexelFormat, name string) *ShaderType {
	key := texelKey{base, rank, format}
	if existing, ok := r.texel[key]; ok {
		return existing
	}
	st := &ShaderType{Base: base, Payload: Texel{Rank: rank, Format: format}, name: name}
	r.texel[key] = st
	return st
}

func (r *Registry) internBuffer(base BaseType, strc *StructType, name string) *ShaderType {
	key := bufferKey{base, strc}
	if existing, ok := r.buffer[key]; ok {
		return existing
	}
	st := &ShaderType{Base: base, Payload: Buffer{Struct: strc}, name: name}
	r.buffer[key] = st
	return st
}

// GetBuiltin looks up a builtin type by its exact VSL spelling (spec.md
// §4.1): void, bool, int, uint, float, vecN/ivecN/uvecN/bvecN, matN/matNxM,
// every bare sampler{rank}, textureBuffer, imageBuffer, subpassInput.
func (r *Registry) GetBuiltin(name string) (*ShaderType, bool) {
	t, ok := r.builtinsByName[name]
	return t, ok
}

// imageRankNames maps the rank suffix used in "image2D", "image2DArray",
// etc. to the corresponding TexelRank.
var imageRankNames = map[string]TexelRank{
	"1D": Rank1D, "2D": Rank2D, "3D": Rank3D,
	"1DArray": Rank1DArray, "2DArray": Rank2DArray, "Cube": RankCube,
}

// ParseOrGet resolves a (possibly parameterized) type name, such as
// "image2D<rgba8_unorm>" or "ROBuffer<MyStruct>" (spec.md §4.1). Plain
// builtin names are delegated to GetBuiltin. The completed type is cached
// so repeated parses of the same spelling return the same pointer.
func (r *Registry) ParseOrGet(name string) (*ShaderType, bool) {
	if t, ok := r.GetBuiltin(name); ok {
		return t, true
	}
	if st, ok := r.structTypeByName(name); ok {
		return st, true
	}

	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return nil, false
	}
	head := name[:open]
	param := name[open+1 : len(name)-1]

	switch {
	case head == "ROBuffer" || head == "RWBuffer":
		strc, ok := r.structsByName[param]
		if !ok {
			return nil, false
		}
		base := ROBuffer
		if head == "RWBuffer" {
			base = RWBuffer
		}
		return r.internBuffer(base, strc, name), true
	case strings.HasPrefix(head, "image"):
		return r.parseTexelParam(Image, head[len("image"):], param, name)
	case strings.HasPrefix(head, "sampler"):
		return r.parseTexelParam(Sampler, head[len("sampler"):], param, name)
	case head == "textureBuffer":
		return r.parseFormatOnly(ROTexels, RankBuffer, param, name)
	case head == "imageBuffer":
		return r.parseFormatOnly(RWTexels, RankBuffer, param, name)
	case head == "subpassInput":
		return r.parseFormatOnly(SubpassInput, Rank2D, param, name)
	default:
		return nil, false
	}
}

func (r *Registry) parseTexelParam(base BaseType, rankSuffix, param, fullName string) (*ShaderType, bool) {
	rank, ok := imageRankNames[rankSuffix]
	if !ok {
		return nil, false
	}
	return r.parseFormatOnly(base, rank, param, fullName)
}

func (r *Registry) parseFormatOnly(base BaseType, rank TexelRank, formatName, fullName string) (*ShaderType, bool) {
	format := LookupTexelFormat(formatName)
	if format == nil {
		return nil, false
	}
	return r.internTexel(base, rank, format, fullName), true
}

func (r *Registry) structTypeByName(name string) (*ShaderType, bool) {
	strc, ok := r.structsByName[name]
	if !ok {
		return nil, false
	}
	if st, ok := r.structTypes[strc]; ok {
		return st, true
	}
	return nil, false
}

// AddStruct registers a user struct (spec.md §4.1). It fails if the name
// collides with a builtin type name or a previously registered struct.
func (r *Registry) AddStruct(name string, members []StructMember) (*ShaderType, error) {
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("struct name %q exceeds max length %d", name, MaxNameLength)
	}
	if _, ok := r.builtinsByName[name]; ok {
		return nil, fmt.Errorf("struct name %q collides with a builtin type", name)
	}
	if _, ok := r.structsByName[name]; ok {
		return nil, fmt.Errorf("struct %q is already defined", name)
	}

	strc, err := layoutStruct(name, members)
	if err != nil {
		return nil, err
	}
	r.structsByName[name] = strc
	r.structOrder = append(r.structOrder, strc)

	st := &ShaderType{Base: Struct, Payload: StructPayload{Struct: strc}, name: name}
	r.structTypes[strc] = st
	return st, nil
}

// Structs returns every registered user struct, in declaration order.
func (r *Registry) Structs() []*StructType {
	return r.structOrder
}

// TexelFormat looks up a named format from the process-wide constant
// table (spec.md §4.1).
func (r *Registry) TexelFormat(name string) (*TexelFormat, bool) {
	f := LookupTexelFormat(name)
	return f, f != nil
}

// GenTypeFamily names the four generic overload-table placeholders
// (spec.md §4.1, GLOSSARY "genType"). They are never interned as
// ShaderTypes — only the operator/function tables interpret them.
type GenTypeFamily uint8

const (
	GenType GenTypeFamily = iota
	GenIType
	GenUType
	GenBType
)

// Matches reports whether a concrete ShaderType is a scalar or vector whose
// base matches the family that a generic placeholder stands for. Matrices
// never match a generic family.
func (g GenTypeFamily) Matches(t *ShaderType) bool {
	if !t.IsScalar() && !t.IsVector() {
		return false
	}
	switch g {
	case GenType:
		return t.Base == Float
	case GenIType:
		return t.Base == Signed
	case GenUType:
		return t.Base == Unsigned
	case GenBType:
		return t.Base == Boolean
	default:
		return false
	}
}
