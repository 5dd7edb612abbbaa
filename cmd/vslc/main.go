// Command vslc is the VSL shader compiler CLI.
//
// Usage:
//
//	vslc [options] <file>
//
// Examples:
//
//	vslc shader.vsl                      # compile to shader.vsp
//	vslc -o out.vsp shader.vsl           # compile to a named artifact
//	vslc --no-compile shader.vsl         # stop after GLSL generation
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsl-lang/vsl"
	"github.com/vsl-lang/vsl/artifact"
	"github.com/vsl-lang/vsl/ast"
	"github.com/vsl-lang/vsl/scope"
)

// parseSource turns VSL source text into a syntax tree. Grammar and
// lexing are an external collaborator's responsibility (spec.md §1
// Non-goals; SPEC_FULL.md §1): this CLI drives the compiler pipeline
// (analysis, GLSL generation, SPIR-V compilation, artifact packaging) and
// leaves the front end to be wired in by the deployment that owns the
// VSL grammar.
var parseSource = func(path string, source []byte) (*ast.Module, error) {
	return nil, fmt.Errorf("vslc: no VSL front end is wired into this build (got %d bytes from %s)", len(source), path)
}

var (
	output          string
	saveIntermediate bool
	saveBytecode    bool
	noOptimize      bool
	noCompile       bool
	versionFlag     bool
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	root := &cobra.Command{
		Use:   "vslc [options] <file>",
		Short: "Compile a VSL shader module to a .vsp artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&output, "output", "o", "", "output artifact path (default: input path with .vsp extension)")
	root.Flags().BoolVar(&saveIntermediate, "save-intermediate", false, "also write per-stage GLSL alongside the artifact")
	root.Flags().BoolVar(&saveBytecode, "save-bytecode", false, "also write per-stage raw SPIR-V alongside the artifact")
	root.Flags().BoolVar(&noOptimize, "no-optimize", false, "disable SPIR-V optimization passes")
	root.Flags().BoolVar(&noCompile, "no-compile", false, "stop after GLSL generation; do not invoke the SPIR-V compiler")
	root.Flags().BoolVar(&versionFlag, "version", false, "print version and exit")

	if err := root.Execute(); err != nil {
		// cobra already printed the error; usage errors map to exit code 1.
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if versionFlag {
		fmt.Printf("vslc version %s\n", version())
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("exactly one input file is required")
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	mod, err := parseSource(inputPath, source)
	if err != nil {
		log.Printf("vslc: %v", err)
		os.Exit(2)
	}

	opts := vsl.DefaultOptions()
	opts.SkipSPIRV = noCompile
	_ = noOptimize // accepted for CLI-flag parity with spec.md §6; no optimizer exists to toggle.

	shader, err := vsl.Compile(mod, opts)
	if err != nil {
		log.Printf("vslc: compilation failed: %v", err)
		os.Exit(2)
	}

	outPath := output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".vsp"
	}

	if saveIntermediate {
		if err := writeStageFiles(outPath, shader, ".glsl", func(stage scope.Stage) ([]byte, bool) {
			src, ok := shader.GLSL(stage)
			return []byte(src), ok
		}); err != nil {
			log.Printf("vslc: %v", err)
			os.Exit(2)
		}
	}
	if saveBytecode && !noCompile {
		if err := writeStageFiles(outPath, shader, ".spv", func(stage scope.Stage) ([]byte, bool) {
			words, ok := shader.Bytecode(stage)
			if !ok {
				return nil, false
			}
			return wordsToBytes(words), true
		}); err != nil {
			log.Printf("vslc: %v", err)
			os.Exit(2)
		}
	}
	if noCompile {
		return nil
	}

	art, err := shader.WriteArtifact()
	if err != nil {
		log.Printf("vslc: %v", err)
		os.Exit(2)
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.Printf("vslc: creating %s: %v", outPath, err)
		os.Exit(2)
	}
	defer f.Close()
	if err := artifact.Write(f, art); err != nil {
		log.Printf("vslc: writing %s: %v", outPath, err)
		os.Exit(2)
	}
	return nil
}

func writeStageFiles(outPath string, shader *vsl.Shader, ext string, get func(scope.Stage) ([]byte, bool)) error {
	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	for _, stage := range []scope.Stage{scope.Vertex, scope.Fragment} {
		data, ok := get(stage)
		if !ok {
			continue
		}
		path := fmt.Sprintf("%s.%s%s", base, stage, ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		out[i*4] = byte(w)
		out[i*4+1] = byte(w >> 8)
		out[i*4+2] = byte(w >> 16)
		out[i*4+3] = byte(w >> 24)
	}
	return out
}
