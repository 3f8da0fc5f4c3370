package pie

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint8

const (
	// ShaderStageVertex is the vertex stage.
	ShaderStageVertex ShaderStage = iota

	// ShaderStageFragment is the fragment (pixel) stage.
	ShaderStageFragment

	// ShaderStageGeometry is the geometry stage.
	ShaderStageGeometry

	// ShaderStageCompute is the compute stage. A compute attachment
	// must be the only attachment of its shader.
	ShaderStageCompute
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "Vertex"
	case ShaderStageFragment:
		return "Fragment"
	case ShaderStageGeometry:
		return "Geometry"
	case ShaderStageCompute:
		return "Compute"
	default:
		return "Unknown"
	}
}

// ShaderLanguage identifies the representation carried by a
// ShaderAttachment. Each backend consumes the representations it can;
// the shaderc package cross-compiles WGSL to SPIR-V for the backends
// that consume bytecode.
type ShaderLanguage uint8

const (
	// LanguageSPIRV is SPIR-V bytecode in Source (little-endian words).
	// Consumed directly by the Vulkan backend; reflected for others.
	LanguageSPIRV ShaderLanguage = iota

	// LanguageWGSL is WGSL text, cross-compiled to SPIR-V at shader
	// construction.
	LanguageWGSL

	// LanguageGLSL is GLSL text for the OpenGL backend.
	LanguageGLSL

	// LanguageHLSL is HLSL text for the Direct3D 11 backend.
	LanguageHLSL
)

// ShaderAttachment is one stage of a shader program: the stage, the
// source or bytecode, and the language it is expressed in.
type ShaderAttachment struct {
	// Stage is the pipeline stage this attachment compiles for.
	Stage ShaderStage

	// Language tells the backend how to interpret Source.
	Language ShaderLanguage

	// Source holds the shader text or bytecode.
	Source []byte

	// EntryPoint is the entry function name. Empty means "main".
	EntryPoint string
}

// Entry returns the attachment's entry point, defaulting to "main".
func (a ShaderAttachment) Entry() string {
	if a.EntryPoint == "" {
		return "main"
	}
	return a.EntryPoint
}

// SpecializationConstant is a named override value baked into a shader
// at compile/link time rather than supplied through a uniform buffer.
// Value holds the raw 32-bit bit pattern; use math.Float32bits for
// float constants.
type SpecializationConstant struct {
	// ID is the constant's specialization ID as declared in the shader.
	ID uint32

	// Value is the 32-bit value to bake in.
	Value uint32
}

// Shader is a compiled and linked program. Compilation or
// cross-compilation happens at construction; afterwards the shader is
// an opaque bindable unit.
type Shader interface {
	Resource
}
