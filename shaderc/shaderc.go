// Package shaderc is pie's shader cross-compilation collaborator.
//
// Backends hand it ShaderAttachments in whatever language the caller
// supplied and receive SPIR-V bytecode plus enough reflection to wire
// the module into a pipeline. WGSL is compiled with gogpu/naga; SPIR-V
// input is validated and reflected with vs-ude/spirv.
package shaderc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/vs-ude/spirv"

	pie "github.com/IsometricSoftware/Pie"
)

// Package errors.
var (
	// ErrBadMagic is returned when bytecode does not start with the
	// SPIR-V magic number.
	ErrBadMagic = errors.New("shaderc: not a SPIR-V module")

	// ErrTruncated is returned when bytecode length is not a whole
	// number of 32-bit words.
	ErrTruncated = errors.New("shaderc: truncated SPIR-V module")

	// ErrNoEntryPoint is returned when a module declares no entry point
	// for the requested stage.
	ErrNoEntryPoint = errors.New("shaderc: no entry point for stage")
)

// spirvMagic is the little-endian SPIR-V magic number.
const spirvMagic = 0x07230203

// CompileWGSL compiles WGSL source to SPIR-V bytecode.
func CompileWGSL(source string) ([]byte, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shaderc: failed to compile WGSL: %w", err)
	}
	return code, nil
}

// Words converts SPIR-V bytecode to little-endian 32-bit words,
// validating the header magic.
func Words(code []byte) ([]uint32, error) {
	if len(code)%4 != 0 {
		return nil, ErrTruncated
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = uint32(code[i*4]) |
			uint32(code[i*4+1])<<8 |
			uint32(code[i*4+2])<<16 |
			uint32(code[i*4+3])<<24
	}
	if len(words) == 0 || words[0] != spirvMagic {
		return nil, ErrBadMagic
	}
	return words, nil
}

// Bytes converts SPIR-V words back to little-endian bytecode.
func Bytes(words []uint32) []byte {
	code := make([]byte, len(words)*4)
	for i, w := range words {
		code[i*4] = byte(w)
		code[i*4+1] = byte(w >> 8)
		code[i*4+2] = byte(w >> 16)
		code[i*4+3] = byte(w >> 24)
	}
	return code
}

// EntryPoint is one entry point declared by a SPIR-V module.
type EntryPoint struct {
	Name  string
	Stage pie.ShaderStage
}

// Reflect loads a SPIR-V module and returns its entry points.
func Reflect(code []byte) ([]EntryPoint, error) {
	mod, err := spirv.Load(bytes.NewReader(code))
	if err != nil {
		return nil, fmt.Errorf("shaderc: failed to parse SPIR-V: %w", err)
	}

	var entries []EntryPoint
	for _, instr := range mod.Code {
		ep, ok := instr.(*spirv.OpEntryPoint)
		if !ok {
			continue
		}
		stage, ok := stageFromModel(ep.ExecutionModel)
		if !ok {
			continue
		}
		entries = append(entries, EntryPoint{
			Name:  string(ep.Name),
			Stage: stage,
		})
	}
	return entries, nil
}

// Validate checks the structural validity of a SPIR-V module.
func Validate(code []byte) error {
	mod, err := spirv.Load(bytes.NewReader(code))
	if err != nil {
		return fmt.Errorf("shaderc: failed to parse SPIR-V: %w", err)
	}
	if err := mod.Verify(); err != nil {
		return fmt.Errorf("shaderc: invalid SPIR-V: %w", err)
	}
	return nil
}

// HasStage reports whether the module declares an entry point with the
// given stage and name (empty name matches any).
func HasStage(code []byte, stage pie.ShaderStage, name string) (bool, error) {
	entries, err := Reflect(code)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Stage == stage && (name == "" || e.Name == name) {
			return true, nil
		}
	}
	return false, nil
}

func stageFromModel(m spirv.ExecutionModel) (pie.ShaderStage, bool) {
	switch m {
	case spirv.ExecutionModelVertex:
		return pie.ShaderStageVertex, true
	case spirv.ExecutionModelFragment:
		return pie.ShaderStageFragment, true
	case spirv.ExecutionModelGeometry:
		return pie.ShaderStageGeometry, true
	case spirv.ExecutionModelGLCompute:
		return pie.ShaderStageCompute, true
	default:
		return 0, false
	}
}
