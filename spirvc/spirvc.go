// Package spirvc implements the SPIR-V Driver Interface (component G):
// an intentionally thin, opaque boundary to an external Vulkan shader
// compiler. The core treats its diagnostics as opaque strings and
// promotes the first one to a vslerr.Error with stage-level granularity
// only — no source line mapping (spec.md §4.7, §7).
//
// Grounded on spirv/spirv.go's Version type for the target SPIR-V
// version and on the external-tool-invocation shape of naga's own
// cmd/texture_compile driver (a thin os/exec wrapper around an external
// encoder), adapted here to shell out to glslangValidator instead of
// reimplementing a GLSL front-end.
package spirvc

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"

	"github.com/vsl-lang/vsl/scope"
	"github.com/vsl-lang/vsl/vslerr"
)

// Version identifies a target SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Version1_0 is the minimum SPIR-V version Vulkan 1.0 guarantees.
var Version1_0 = Version{1, 0}

// Compiler is the interface VSL core code uses to turn one stage's GLSL
// text into SPIR-V words. It never exposes which backend produced the
// words (spec.md §4.7: "opaque; specified only by interface").
type Compiler interface {
	Compile(ctx context.Context, stage scope.Stage, glsl string) ([]uint32, error)
}

// stageEnv names the glslangValidator -S stage argument for each VSL
// stage.
func stageEnv(stage scope.Stage) string {
	if stage == scope.Vertex {
		return "vert"
	}
	return "frag"
}

// ExecCompiler invokes an external glslangValidator (or API-compatible)
// binary found on PATH. It is the production Compiler: the GLSL-to-SPIR-V
// translation itself is explicitly out of core scope (spec.md §1).
type ExecCompiler struct {
	// Path overrides the binary name/path; defaults to "glslangValidator".
	Path string
}

// Compile writes glsl to a temp file, invokes the external compiler, and
// reads back the SPIR-V binary it produces.
func (c ExecCompiler) Compile(ctx context.Context, stage scope.Stage, glsl string) ([]uint32, error) {
	bin := c.Path
	if bin == "" {
		bin = "glslangValidator"
	}

	inFile, err := os.CreateTemp("", "vsl-*."+stageEnv(stage))
	if err != nil {
		return nil, vslerr.Newf(vslerr.KindInternal, "creating temp GLSL file: %v", err)
	}
	defer os.Remove(inFile.Name())
	if _, err := inFile.WriteString(glsl); err != nil {
		inFile.Close()
		return nil, vslerr.Newf(vslerr.KindInternal, "writing temp GLSL file: %v", err)
	}
	inFile.Close()

	outPath := inFile.Name() + ".spv"
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, bin, "-V", "-S", stageEnv(stage), "-o", outPath, inFile.Name())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := firstLine(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, vslerr.At(vslerr.KindInternal, 0, 0, "%s", msg)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, vslerr.Newf(vslerr.KindInternal, "reading SPIR-V output: %v", err)
	}
	return wordsFromBytes(data)
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

func wordsFromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("spirv: byte stream length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// StubCompiler is a deterministic, dependency-free Compiler used in tests
// and in environments without a Vulkan SDK installed: it returns a fixed,
// non-empty word stream derived from the GLSL text's length so callers can
// exercise the orchestrator and artifact writer without a real backend.
type StubCompiler struct{}

func (StubCompiler) Compile(_ context.Context, stage scope.Stage, glsl string) ([]uint32, error) {
	if glsl == "" {
		return nil, vslerr.New(vslerr.KindInternal, "empty GLSL source")
	}
	return []uint32{0x07230203, uint32(stage), uint32(len(glsl))}, nil
}
