package overload

import (
	"sync"

	"github.com/vsl-lang/vsl/types"
)

// builtinTypes backs the concrete (non-generic) parameter and result types
// used while building the default Table. It is a private, lazily
// initialized Registry distinct from any Shader's own Registry — overload
// matching compares types structurally (ShaderType.IsSame), never by
// pointer identity, so sharing these ShaderType values across every
// concurrently-compiled Shader's Resolve calls is safe (spec.md §5).
var (
	builtinTypesOnce sync.Once
	builtinTypes     *types.Registry
)

func bt() *types.Registry {
	builtinTypesOnce.Do(func() {
		builtinTypes = types.NewRegistry()
	})
	return builtinTypes
}

func must(name string) *types.ShaderType {
	t, ok := bt().GetBuiltin(name)
	if !ok {
		panic("overload: unknown builtin type " + name)
	}
	return t
}

func gen(family types.GenTypeFamily) Param { return Param{Generic: &family} }
func con(name string) Param                { return Param{Concrete: must(name)} }

func sameAs(i int) ResultSpec { return ResultSpec{SameAsParam: i} }
func result(name string) ResultSpec {
	return ResultSpec{Concrete: must(name), SameAsParam: -1}
}

// NewDefaultTable builds the standard VSL operator and builtin-function
// table (spec.md §4.3): arithmetic/relational/logical/bitwise operators
// over the genType/genIType/genUType/genBType families, plus the common
// GLSL builtin math and vector functions. Grounded on
// original_source/vsl/Generator/OperatorTable.hpp's and
// FunctionTable.hpp's entry lists and on naga's glsl/expressions.go builtin
// dispatch (which enumerates the same GLSL function surface case-by-case).
func NewDefaultTable() *Table {
	t := NewTable()
	addArithmeticOperators(t)
	addRelationalOperators(t)
	addLogicalOperators(t)
	addBitwiseOperators(t)
	addMathFunctions(t)
	addVectorFunctions(t)
	addTextureFunctions(t)
	return t
}

// binaryGeneric registers `left $op right` once for each of the given
// families, applied symmetrically (both operands and the result share the
// same family/width). Matrix forms are not registered here.
func binaryGeneric(t *Table, name, genString string, families ...types.GenTypeFamily) {
	for _, fam := range families {
		t.Add(name, Entry{
			Params:    []Param{gen(fam), gen(fam)},
			Result:    sameAs(0),
			GenString: genString,
		})
	}
}

func addArithmeticOperators(t *Table) {
	for _, name := range []string{"+", "-", "*", "/"} {
		binaryGeneric(t, name, "$1 $op $2", types.GenType, types.GenIType, types.GenUType)
	}
	binaryGeneric(t, "%", "$1 $op $2", types.GenIType, types.GenUType)

	// Scalar*matrix, matrix*scalar, matrix*matrix, matrix*vector.
	matNames := []string{"mat2", "mat3", "mat4"}
	for _, m := range matNames {
		t.Add("*", Entry{Params: []Param{con(m), con("float")}, Result: sameAs(0), GenString: "$1 * $2"})
		t.Add("*", Entry{Params: []Param{con("float"), con(m)}, Result: sameAs(1), GenString: "$1 * $2"})
		t.Add("*", Entry{Params: []Param{con(m), con(m)}, Result: sameAs(0), GenString: "$1 * $2"})
	}
	t.Add("*", Entry{Params: []Param{con("mat2"), con("vec2")}, Result: result("vec2"), GenString: "$1 * $2"})
	t.Add("*", Entry{Params: []Param{con("mat3"), con("vec3")}, Result: result("vec3"), GenString: "$1 * $2"})
	t.Add("*", Entry{Params: []Param{con("mat4"), con("vec4")}, Result: result("vec4"), GenString: "$1 * $2"})

	// Unary negation.
	t.Add("neg", Entry{Params: []Param{gen(types.GenType)}, Result: sameAs(0), GenString: "-$1"})
	t.Add("neg", Entry{Params: []Param{gen(types.GenIType)}, Result: sameAs(0), GenString: "-$1"})
}

func addRelationalOperators(t *Table) {
	for _, name := range []string{"<", "<=", ">", ">="} {
		t.Add(name, Entry{Params: []Param{con("float"), con("float")}, Result: result("bool"), GenString: "$1 $op $2"})
		t.Add(name, Entry{Params: []Param{con("int"), con("int")}, Result: result("bool"), GenString: "$1 $op $2"})
		t.Add(name, Entry{Params: []Param{con("uint"), con("uint")}, Result: result("bool"), GenString: "$1 $op $2"})
	}
	for _, name := range []string{"==", "!="} {
		for _, fam := range []types.GenTypeFamily{types.GenType, types.GenIType, types.GenUType, types.GenBType} {
			t.Add(name, Entry{Params: []Param{gen(fam), gen(fam)}, Result: result("bool"), GenString: "$1 $op $2"})
		}
	}
}

func addLogicalOperators(t *Table) {
	t.Add("&&", Entry{Params: []Param{con("bool"), con("bool")}, Result: result("bool"), GenString: "$1 && $2"})
	t.Add("||", Entry{Params: []Param{con("bool"), con("bool")}, Result: result("bool"), GenString: "$1 || $2"})
	t.Add("!", Entry{Params: []Param{con("bool")}, Result: result("bool"), GenString: "!$1"})
}

func addBitwiseOperators(t *Table) {
	for _, name := range []string{"&", "|", "^"} {
		binaryGeneric(t, name, "$1 $op $2", types.GenIType, types.GenUType)
	}
	for _, name := range []string{"<<", ">>"} {
		t.Add(name, Entry{Params: []Param{gen(types.GenIType), con("int")}, Result: sameAs(0), GenString: "$1 $op $2"})
		t.Add(name, Entry{Params: []Param{gen(types.GenUType), con("uint")}, Result: sameAs(0), GenString: "$1 $op $2"})
	}
	t.Add("~", Entry{Params: []Param{gen(types.GenIType)}, Result: sameAs(0), GenString: "~$1"})
	t.Add("~", Entry{Params: []Param{gen(types.GenUType)}, Result: sameAs(0), GenString: "~$1"})
}

// unaryGen registers a single-argument genType->genType GLSL function.
func unaryGen(t *Table, name string) {
	t.Add(name, Entry{Params: []Param{gen(types.GenType)}, Result: sameAs(0), GenString: name + "($1)"})
}

// binaryGen registers a two-argument genType->genType GLSL function.
func binaryGen(t *Table, name string) {
	t.Add(name, Entry{Params: []Param{gen(types.GenType), gen(types.GenType)}, Result: sameAs(0), GenString: name + "($1, $2)"})
}

func addMathFunctions(t *Table) {
	for _, name := range []string{
		"abs", "floor", "ceil", "fract", "sqrt", "inversesqrt",
		"exp", "exp2", "log", "log2",
		"sin", "cos", "tan", "asin", "acos", "atan",
		"sign", "radians", "degrees",
	} {
		unaryGen(t, name)
	}
	for _, name := range []string{"pow", "mod", "min", "max", "step", "atan"} {
		binaryGen(t, name)
	}
	t.Add("abs", Entry{Params: []Param{gen(types.GenIType)}, Result: sameAs(0), GenString: "abs($1)"})
	t.Add("min", Entry{Params: []Param{gen(types.GenIType), gen(types.GenIType)}, Result: sameAs(0), GenString: "min($1, $2)"})
	t.Add("max", Entry{Params: []Param{gen(types.GenIType), gen(types.GenIType)}, Result: sameAs(0), GenString: "max($1, $2)"})
	t.Add("min", Entry{Params: []Param{gen(types.GenUType), gen(types.GenUType)}, Result: sameAs(0), GenString: "min($1, $2)"})
	t.Add("max", Entry{Params: []Param{gen(types.GenUType), gen(types.GenUType)}, Result: sameAs(0), GenString: "max($1, $2)"})

	t.Add("clamp", Entry{
		Params:    []Param{gen(types.GenType), gen(types.GenType), gen(types.GenType)},
		Result:    sameAs(0),
		GenString: "clamp($1, $2, $3)",
	})
	t.Add("mix", Entry{
		Params:    []Param{gen(types.GenType), gen(types.GenType), gen(types.GenType)},
		Result:    sameAs(0),
		GenString: "mix($1, $2, $3)",
	})
	t.Add("smoothstep", Entry{
		Params:    []Param{gen(types.GenType), gen(types.GenType), gen(types.GenType)},
		Result:    sameAs(0),
		GenString: "smoothstep($1, $2, $3)",
	})
}

func addVectorFunctions(t *Table) {
	t.Add("length", Entry{Params: []Param{gen(types.GenType)}, Result: result("float"), GenString: "length($1)"})
	t.Add("distance", Entry{Params: []Param{gen(types.GenType), gen(types.GenType)}, Result: result("float"), GenString: "distance($1, $2)"})
	t.Add("dot", Entry{Params: []Param{gen(types.GenType), gen(types.GenType)}, Result: result("float"), GenString: "dot($1, $2)"})
	t.Add("normalize", Entry{Params: []Param{gen(types.GenType)}, Result: sameAs(0), GenString: "normalize($1)"})
	t.Add("reflect", Entry{Params: []Param{gen(types.GenType), gen(types.GenType)}, Result: sameAs(0), GenString: "reflect($1, $2)"})

	t.Add("cross", Entry{Params: []Param{con("vec3"), con("vec3")}, Result: result("vec3"), GenString: "cross($1, $2)"})

	for _, m := range []string{"mat2", "mat3", "mat4"} {
		t.Add("transpose", Entry{Params: []Param{con(m)}, Result: sameAs(0), GenString: "transpose($1)"})
		t.Add("inverse", Entry{Params: []Param{con(m)}, Result: sameAs(0), GenString: "inverse($1)"})
	}
}

func addTextureFunctions(t *Table) {
	samplerCoords := []struct {
		sampler string
		coord   string
	}{
		{"sampler1D", "float"}, {"sampler2D", "vec2"}, {"sampler3D", "vec3"},
		{"sampler1DArray", "vec2"}, {"sampler2DArray", "vec3"}, {"samplerCube", "vec3"},
	}
	for _, sc := range samplerCoords {
		t.Add("texture", Entry{
			Params:    []Param{con(sc.sampler), con(sc.coord)},
			Result:    result("vec4"),
			GenString: "texture($1, $2)",
		})
	}
	t.Add("texelFetch", Entry{
		Params:    []Param{con("textureBuffer"), con("int")},
		Result:    result("vec4"),
		GenString: "texelFetch($1, $2)",
	})
	t.Add("imageLoad", Entry{
		Params:    []Param{con("imageBuffer"), con("int")},
		Result:    result("vec4"),
		GenString: "imageLoad($1, $2)",
	})
	t.Add("subpassLoad", Entry{
		Params:    []Param{con("subpassInput")},
		Result:    result("vec4"),
		GenString: "subpassLoad($1)",
	})
}
