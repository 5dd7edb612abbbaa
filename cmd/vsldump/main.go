// Command vsldump dumps a `.vsp` artifact: its reflection records
// (interfaces, bindings, subpasses, structs, uniform) and a disassembly
// of each stage's embedded SPIR-V words.
//
// Usage:
//
//	vsldump <file.vsp>
//
// Adapted from cmd/spvdis's SPIR-V disassembler: the opcode/decoration/
// builtin name tables are the external SPIR-V standard's own enumeration
// (unchanged by adaptation), reused here as one disassembly pass over
// each stage block of an Artifact instead of a bare top-level .spv file.
package main

import (
	"fmt"
	"os"

	"github.com/vsl-lang/vsl/artifact"
)

var opcodeNames = map[uint16]string{
	5: "OpName", 6: "OpMemberName", 14: "OpMemoryModel", 15: "OpEntryPoint",
	16: "OpExecutionMode", 17: "OpCapability", 19: "OpTypeVoid", 20: "OpTypeBool",
	21: "OpTypeInt", 22: "OpTypeFloat", 23: "OpTypeVector", 24: "OpTypeMatrix",
	25: "OpTypeImage", 26: "OpTypeSampler", 27: "OpTypeSampledImage",
	28: "OpTypeArray", 30: "OpTypeStruct", 32: "OpTypePointer", 33: "OpTypeFunction",
	43: "OpConstant", 44: "OpConstantComposite", 54: "OpFunction",
	55: "OpFunctionParameter", 56: "OpFunctionEnd", 59: "OpVariable", 61: "OpLoad",
	62: "OpStore", 65: "OpAccessChain", 71: "OpDecorate", 72: "OpMemberDecorate",
	80: "OpCompositeConstruct", 81: "OpCompositeExtract", 86: "OpSampledImage",
	87: "OpImageSampleImplicitLod", 248: "OpLabel", 249: "OpBranch",
	253: "OpReturn", 254: "OpReturnValue",
}

var decorations = map[uint32]string{
	2: "Block", 30: "Location", 33: "Binding", 34: "DescriptorSet",
	35: "Offset", 11: "BuiltIn", 14: "Flat", 43: "InputAttachmentIndex",
}

var builtinNames = map[uint32]string{
	0: "Position", 15: "FragCoord", 16: "PointCoord",
	42: "VertexIndex", 43: "InstanceIndex",
}

func id(n uint32) string { return fmt.Sprintf("%%%d", n) }

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

// disassembleWords prints one spvasm-like line per instruction. Operand
// formatting is generic (id/name lists) rather than a full per-opcode
// grammar: vsldump's purpose is reflection-record inspection first, SPIR-V
// disassembly as a secondary aid.
func disassembleWords(words []uint32) {
	offset := 0
	for offset < len(words) {
		word := words[offset]
		opcode := uint16(word & 0xFFFF)
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount > len(words) {
			fmt.Printf("  ; ERROR: invalid word count %d at word %d\n", wordCount, offset)
			return
		}
		ops := words[offset+1 : offset+wordCount]

		name := opcodeNames[opcode]
		if name == "" {
			name = fmt.Sprintf("Op%d", opcode)
		}
		fmt.Printf("  %s", name)
		switch opcode {
		case 71: // OpDecorate
			if len(ops) >= 2 {
				fmt.Printf(" %s %s", id(ops[0]), lookup(decorations, ops[1]))
				if ops[1] == 11 && len(ops) > 2 { // BuiltIn
					fmt.Printf(" %s", lookup(builtinNames, ops[2]))
					break
				}
				for i := 2; i < len(ops); i++ {
					fmt.Printf(" %d", ops[i])
				}
			}
		default:
			for _, op := range ops {
				fmt.Printf(" %s", id(op))
			}
		}
		fmt.Println()
		offset += wordCount
	}
}

func dumpInterfaces(label string, recs []artifact.InterfaceRecord) {
	for _, r := range recs {
		fmt.Printf("  [%d] baseType=%d dims=%v arraySize=%d\n", r.Location, r.BaseType, r.Dims, r.ArraySize)
	}
	if len(recs) == 0 {
		fmt.Printf("  (none)\n")
	}
	_ = label
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: vsldump <file.vsp>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	art, err := artifact.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; VSL artifact\n")
	fmt.Printf("; Version: %d\n", art.Version)
	fmt.Printf("; StageMask: 0x%04x\n", art.StageMask)
	fmt.Println()

	fmt.Println("Inputs:")
	dumpInterfaces("input", art.Inputs)
	fmt.Println("Outputs:")
	dumpInterfaces("output", art.Outputs)

	fmt.Println("Bindings:")
	for _, b := range art.Bindings {
		fmt.Printf("  slot=%d baseType=%d stageMask=0x%04x\n", b.Slot, b.BaseType, b.StageMask)
	}
	fmt.Println("Subpasses:")
	for _, sp := range art.Subpasses {
		fmt.Printf("  texelFormat=%d texelCount=%d\n", sp.TexelFormat, sp.TexelCount)
	}
	fmt.Println("Structs:")
	for _, s := range art.Structs {
		fmt.Printf("  %s (%d members)\n", s.Name, len(s.Members))
		for _, m := range s.Members {
			fmt.Printf("    baseType=%d dims=%v arraySize=%d\n", m.BaseType, m.Dims, m.ArraySize)
		}
	}
	if art.HasUniform {
		fmt.Printf("Uniform: struct #%d\n", art.UniformStructIndex)
	}
	fmt.Println()

	for bit, words := range art.Bytecode {
		stageName := "vert"
		if bit == 1 {
			stageName = "frag"
		}
		fmt.Printf("--- %s (%d words) ---\n", stageName, len(words))
		disassembleWords(words)
		fmt.Println()
	}
}
