// Package overload implements the VSL operator and function overload
// tables (component C): registries of built-in operator and function
// signatures, resolved against call-site argument types using VSL's
// generic-type matching and implicit-cast rules (spec.md §4.3).
//
// Grounded on naga's op_chain literal-width families of "generic" GLSL
// builtins and their own-resolution pattern — concretely mirrored from
// glsl/expressions.go's case-by-case builtin-function lowering — rewritten
// here as data-driven descriptor tables per spec.md §9's design note
// ("keep (family, is_generic, result_refs_arg_N) descriptors and resolve at
// call sites" rather than instantiating every concrete overload).
package overload

import (
	"fmt"

	"github.com/vsl-lang/vsl/types"
)

// Param describes one formal parameter of an operator/function overload.
type Param struct {
	// Concrete is the required type, or nil if Generic is set.
	Concrete *types.ShaderType
	// Generic, when non-nil, names the genType/genIType/genUType/genBType
	// family this parameter matches (spec.md §4.1, §4.3).
	Generic *types.GenTypeFamily
}

// ResultSpec is either a concrete return type or "same type as parameter N"
// (for genType propagation), per spec.md §4.3.
type ResultSpec struct {
	Concrete      *types.ShaderType
	SameAsParam   int // index into Params, or -1 if Concrete is used
	GenericFamily bool
}

// Entry is one overload of an operator or function name.
type Entry struct {
	Name   string
	Params []Param
	Result ResultSpec
	// GenString carries $1..$N placeholders (and $op for shared
	// operator entries) that generation substitutes literally
	// (spec.md §4.3 "Emitted form").
	GenString string
}

// Arg is one call-site argument presented to Resolve.
type Arg struct {
	Type    *types.ShaderType
	Literal bool // true for integer/float literal arguments (spec.md §4.3 cast #1/#3)
}

// Table is a process-wide, read-only-after-init registry of operator and
// function overloads, keyed by name. Multiple Shaders compiled
// concurrently may share one Table safely once built (spec.md §5).
type Table struct {
	entries map[string][]Entry
}

// NewTable constructs an empty Table; callers populate it with Add before
// first use and must not mutate it afterward.
func NewTable() *Table {
	return &Table{entries: make(map[string][]Entry, 64)}
}

// Add registers an overload under name. Multiple overloads may share a
// name (e.g. "+"  for every arithmetic type, "max" for every genType).
func (t *Table) Add(name string, e Entry) {
	e.Name = name
	t.entries[name] = append(t.entries[name], e)
}

// candidates returns every registered overload for name.
func (t *Table) candidates(name string) []Entry {
	return t.entries[name]
}

// Resolution is a successfully resolved overload plus the concrete
// substitution chosen for any generic parameters in it.
type Resolution struct {
	Entry      Entry
	ResultType *types.ShaderType
	Casts      int // number of implicit casts required, used for ambiguity tie-breaking
}

// AmbiguousError reports that more than one overload matched with the
// same minimal cast count.
type AmbiguousError struct {
	Name string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous overload for %q", e.Name)
}

// NoMatchError reports that no overload of name accepts the given
// arguments.
type NoMatchError struct {
	Name string
	Args []Arg
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no overload of %q matches the given %d argument(s)", e.Name, len(e.Args))
}

// Resolve implements spec.md §4.3's overload resolution: among the
// candidates for name, find entries where every parameter matches (rule 1
// for generic parameters, rule 2 otherwise), then select the unique match
// requiring the fewest implicit casts; a tie is an ambiguity error.
func (t *Table) Resolve(name string, args []Arg) (*Resolution, error) {
	candidates := t.candidates(name)
	if len(candidates) == 0 {
		return nil, &NoMatchError{Name: name, Args: args}
	}

	var best *Resolution
	bestCasts := -1
	ambiguous := false

	for _, entry := range candidates {
		res, ok := matchEntry(entry, args)
		if !ok {
			continue
		}
		switch {
		case bestCasts < 0 || res.Casts < bestCasts:
			best = res
			bestCasts = res.Casts
			ambiguous = false
		case res.Casts == bestCasts:
			ambiguous = true
		}
	}

	if best == nil {
		return nil, &NoMatchError{Name: name, Args: args}
	}
	if ambiguous {
		return nil, &AmbiguousError{Name: name}
	}
	return best, nil
}

// matchEntry checks whether entry accepts args, returning the Resolution
// with its substituted result type and implicit-cast count if so.
func matchEntry(entry Entry, args []Arg) (*Resolution, bool) {
	if len(entry.Params) != len(args) {
		return nil, false
	}

	// Tracks the concrete vecDims each generic family has committed to in
	// this entry, so every genType-family parameter agrees (spec.md §4.3
	// rule 1: "all generic parameters of the same family in this entry
	// must agree on concrete vecDims").
	familyDims := map[types.GenTypeFamily]uint8{}
	casts := 0

	for i, p := range entry.Params {
		arg := args[i]
		if p.Generic != nil {
			fam := *p.Generic
			if !fam.Matches(arg.Type) {
				return nil, false
			}
			dims := arg.Type.VecDims()
			if existing, seen := familyDims[fam]; seen {
				if existing != dims {
					return nil, false
				}
			} else {
				familyDims[fam] = dims
			}
			continue
		}

		if p.Concrete.IsSame(arg.Type) {
			continue
		}
		if arg.Literal && arg.Type.HasImplicitLiteralCast(p.Concrete) {
			casts++
			continue
		}
		if !arg.Literal && arg.Type.HasImplicitCast(p.Concrete) {
			casts++
			continue
		}
		return nil, false
	}

	result := entry.Result.Concrete
	if entry.Result.SameAsParam >= 0 {
		result = args[entry.Result.SameAsParam].Type
	}

	return &Resolution{Entry: entry, ResultType: result, Casts: casts}, true
}

// Substitute renders entry.GenString with the given argument refStrings
// (and, for shared operator entries, the literal operator text), per
// spec.md §4.3 "Emitted form".
func Substitute(genString string, op string, argRefs []string) string {
	out := []byte(genString)
	result := make([]byte, 0, len(out)+16)
	for i := 0; i < len(out); i++ {
		if out[i] != '$' || i+1 >= len(out) {
			result = append(result, out[i])
			continue
		}
		if out[i+1] == 'o' && i+2 < len(out) && out[i+2] == 'p' {
			result = append(result, op...)
			i += 2
			continue
		}
		if out[i+1] >= '1' && out[i+1] <= '9' {
			idx := int(out[i+1] - '1')
			if idx < len(argRefs) {
				result = append(result, argRefs[idx]...)
			}
			i++
			continue
		}
		result = append(result, out[i])
	}
	return string(result)
}
