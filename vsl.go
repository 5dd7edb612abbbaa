// Package vsl provides a Pure Go VSL (Vulkan Shading Language) shader
// cross-compiler.
//
// vsl compiles a single VSL source module — one vertex stage and one
// fragment stage sharing a common set of declared resources — to GLSL
// text and, optionally, SPIR-V bytecode packaged into a `.vsp` artifact.
//
// The package provides a simple, high-level API for shader compilation as
// well as lower-level access to individual compilation stages.
//
// Example usage:
//
//	shader := vsl.New(module)
//	if err := shader.Compile(vsl.DefaultOptions()); err != nil {
//	    log.Fatal(err)
//	}
//	glsl, _ := shader.GLSL(scope.Vertex)
//
// For artifact packaging, use shader.WriteArtifact after Compile.
package vsl

import (
	"context"
	"fmt"

	"github.com/vsl-lang/vsl/artifact"
	"github.com/vsl-lang/vsl/ast"
	"github.com/vsl-lang/vsl/glslgen"
	"github.com/vsl-lang/vsl/overload"
	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/sema"
	"github.com/vsl-lang/vsl/spirvc"
	"github.com/vsl-lang/vsl/types"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// Compiler is the SPIR-V backend to invoke. Defaults to ExecCompiler
	// (shells out to glslangValidator) when nil.
	Compiler spirvc.Compiler

	// SkipSPIRV generates GLSL only, without invoking the SPIR-V driver
	// interface at all.
	SkipSPIRV bool

	// GLSLOptions configures the Stage Generator's binding-table sizes.
	GLSLOptions glslgen.Options
}

// DefaultOptions returns sensible default options: the real
// glslangValidator-backed compiler and default binding-table sizes.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Compiler:    spirvc.ExecCompiler{},
		GLSLOptions: glslgen.DefaultOptions(),
	}
}

// Shader is a single compilation's state machine: parsed (always true on
// construction, since parsing is out of scope and callers already hold an
// *ast.Module) -> analyzed -> generated -> compiled. Each phase may run at
// most once; the first error encountered is latched and returned by every
// subsequent call until a new Shader is constructed.
type Shader struct {
	mod *ast.Module

	analyzed bool
	compiled bool

	info              sema.ShaderInfo
	registry          *types.Registry
	stageOutputsCache []sema.StageOutput
	glsl              map[string]string
	bytecode          map[scope.Stage][]uint32

	err error
}

// New constructs a Shader from an already-parsed VSL module. Parsing VSL
// source text is out of this package's scope; callers supply an
// *ast.Module built by an external front end.
func New(mod *ast.Module) *Shader {
	return &Shader{mod: mod}
}

// Compile runs the full pipeline: semantic analysis, GLSL generation, and
// (unless opts.SkipSPIRV) SPIR-V compilation of each stage. It is
// idempotent: calling Compile again after success or failure returns the
// latched result without redoing work.
func (s *Shader) Compile(opts CompileOptions) error {
	if s.err != nil {
		return s.err
	}
	if s.compiled {
		return nil
	}

	if err := s.analyze(); err != nil {
		return s.fail(err)
	}
	if err := s.generate(opts.GLSLOptions); err != nil {
		return s.fail(err)
	}
	if !opts.SkipSPIRV {
		if err := s.compileSPIRV(opts.Compiler); err != nil {
			return s.fail(err)
		}
	}

	s.compiled = true
	return nil
}

func (s *Shader) fail(err error) error {
	s.err = err
	return err
}

// analyze runs the Semantic Analyzer over the module (component D),
// populating reflection info and per-stage GLSL function bodies.
func (s *Shader) analyze() error {
	if s.analyzed {
		return nil
	}

	analyzer := sema.NewAnalyzer(overload.NewDefaultTable())
	stageOutputs, err := analyzer.Analyze(s.mod)
	if err != nil {
		return fmt.Errorf("semantic analysis: %w", err)
	}

	s.info = analyzer.Info()
	s.registry = analyzer.Registry()
	s.stageOutputsCache = stageOutputs
	s.analyzed = true
	return nil
}

// generate runs the Stage Generator (component F) over every analyzed
// stage, producing one complete GLSL translation unit per stage.
func (s *Shader) generate(opts glslgen.Options) error {
	if s.glsl != nil {
		return nil
	}
	s.glsl = glslgen.Generate(s.info, s.stageOutputsCache, s.registry, opts)
	return nil
}

// compileSPIRV runs the SPIR-V Driver Interface (component G) over every
// generated stage's GLSL text.
func (s *Shader) compileSPIRV(c spirvc.Compiler) error {
	if c == nil {
		c = spirvc.ExecCompiler{}
	}
	s.bytecode = make(map[scope.Stage][]uint32, len(s.glsl))
	for _, stage := range []scope.Stage{scope.Vertex, scope.Fragment} {
		glsl, ok := s.glsl[stage.String()]
		if !ok {
			continue
		}
		words, err := c.Compile(context.Background(), stage, glsl)
		if err != nil {
			return fmt.Errorf("SPIR-V compilation (%s): %w", stage, err)
		}
		s.bytecode[stage] = words
	}
	return nil
}

// Info returns the shader's reflection info. Valid after Compile succeeds.
func (s *Shader) Info() sema.ShaderInfo { return s.info }

// Registry returns the Type Registry that owns every type referenced by
// this shader's declarations.
func (s *Shader) Registry() *types.Registry { return s.registry }

// GLSL returns the generated GLSL source for stage ("vert" or "frag"),
// and whether that stage was declared.
func (s *Shader) GLSL(stage scope.Stage) (string, bool) {
	src, ok := s.glsl[stage.String()]
	return src, ok
}

// Bytecode returns the compiled SPIR-V words for stage, and whether that
// stage was compiled (only set when CompileOptions.SkipSPIRV is false).
func (s *Shader) Bytecode(stage scope.Stage) ([]uint32, bool) {
	words, ok := s.bytecode[stage]
	return words, ok
}

// WriteArtifact packages this shader's reflection info and compiled
// bytecode into the Artifact Writer's (component H) in-memory model,
// ready for artifact.Write.
func (s *Shader) WriteArtifact() (*artifact.Artifact, error) {
	if !s.compiled {
		return nil, fmt.Errorf("vsl: WriteArtifact called before a successful Compile")
	}
	return artifact.FromShaderInfo(s.info, s.registry, s.bytecode)
}

// Compile is a package-level convenience wrapping New(mod).Compile(opts)
// for callers that don't need the intermediate Shader handle.
func Compile(mod *ast.Module, opts CompileOptions) (*Shader, error) {
	s := New(mod)
	if err := s.Compile(opts); err != nil {
		return nil, err
	}
	return s, nil
}
