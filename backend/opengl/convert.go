package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	pie "github.com/IsometricSoftware/Pie"
)

// glFormat returns the internal format, pixel format and component type
// for a pie format. internal 0 means unsupported.
func glFormat(f pie.Format) (internal int32, format, typ uint32) {
	switch f {
	case pie.FormatR8UNorm:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case pie.FormatR8G8UNorm:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE
	case pie.FormatR8G8B8A8UNorm:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case pie.FormatR8G8B8A8UNormSRGB:
		return gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE
	case pie.FormatB8G8R8A8UNorm:
		return gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE
	case pie.FormatB8G8R8A8UNormSRGB:
		return gl.SRGB8_ALPHA8, gl.BGRA, gl.UNSIGNED_BYTE
	case pie.FormatR16Float:
		return gl.R16F, gl.RED, gl.HALF_FLOAT
	case pie.FormatR16G16Float:
		return gl.RG16F, gl.RG, gl.HALF_FLOAT
	case pie.FormatR16G16B16A16Float:
		return gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT
	case pie.FormatR32Float:
		return gl.R32F, gl.RED, gl.FLOAT
	case pie.FormatR32G32Float:
		return gl.RG32F, gl.RG, gl.FLOAT
	case pie.FormatR32G32B32Float:
		return gl.RGB32F, gl.RGB, gl.FLOAT
	case pie.FormatR32G32B32A32Float:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case pie.FormatR32UInt:
		return gl.R32UI, gl.RED_INTEGER, gl.UNSIGNED_INT
	case pie.FormatR32G32B32A32UInt:
		return gl.RGBA32UI, gl.RGBA_INTEGER, gl.UNSIGNED_INT
	case pie.FormatD16UNorm:
		return gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT
	case pie.FormatD24UNormS8UInt:
		return gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8
	case pie.FormatD32Float:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		// BC compression needs the S3TC extension, which the core 3.3
		// loader does not carry.
		return 0, 0, 0
	}
}

func glBufferTarget(t pie.BufferType) uint32 {
	switch t {
	case pie.BufferTypeIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case pie.BufferTypeUniform:
		return gl.UNIFORM_BUFFER
	case pie.BufferTypeShaderStorage:
		// GL 3.3 has no SSBOs; texture buffers are the closest binding
		// point that still allows create/update paths to work.
		return gl.TEXTURE_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func glPrimitive(t pie.PrimitiveType) uint32 {
	switch t {
	case pie.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case pie.PrimitiveLineList:
		return gl.LINES
	case pie.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case pie.PrimitivePointList:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func glComparison(f pie.ComparisonFunc) uint32 {
	switch f {
	case pie.ComparisonNever:
		return gl.NEVER
	case pie.ComparisonLess:
		return gl.LESS
	case pie.ComparisonEqual:
		return gl.EQUAL
	case pie.ComparisonLessEqual:
		return gl.LEQUAL
	case pie.ComparisonGreater:
		return gl.GREATER
	case pie.ComparisonNotEqual:
		return gl.NOTEQUAL
	case pie.ComparisonGreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func glBlendFactor(f pie.BlendFactor) uint32 {
	switch f {
	case pie.BlendZero:
		return gl.ZERO
	case pie.BlendSrcColor:
		return gl.SRC_COLOR
	case pie.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case pie.BlendDestColor:
		return gl.DST_COLOR
	case pie.BlendOneMinusDestColor:
		return gl.ONE_MINUS_DST_COLOR
	case pie.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case pie.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case pie.BlendDestAlpha:
		return gl.DST_ALPHA
	case pie.BlendOneMinusDestAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func glBlendOp(o pie.BlendOperation) uint32 {
	switch o {
	case pie.BlendOpSubtract:
		return gl.FUNC_SUBTRACT
	case pie.BlendOpReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case pie.BlendOpMin:
		return gl.MIN
	case pie.BlendOpMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

func glStencilOp(o pie.StencilOp) uint32 {
	switch o {
	case pie.StencilZero:
		return gl.ZERO
	case pie.StencilReplace:
		return gl.REPLACE
	case pie.StencilIncrementClamp:
		return gl.INCR
	case pie.StencilDecrementClamp:
		return gl.DECR
	case pie.StencilInvert:
		return gl.INVERT
	case pie.StencilIncrementWrap:
		return gl.INCR_WRAP
	case pie.StencilDecrementWrap:
		return gl.DECR_WRAP
	default:
		return gl.KEEP
	}
}

// glAttribute returns the component count, type, and whether the
// attribute is normalized or integer.
func glAttribute(t pie.AttributeType) (size int32, typ uint32, normalized, integer bool) {
	switch t {
	case pie.AttributeFloat:
		return 1, gl.FLOAT, false, false
	case pie.AttributeFloat2:
		return 2, gl.FLOAT, false, false
	case pie.AttributeFloat3:
		return 3, gl.FLOAT, false, false
	case pie.AttributeFloat4:
		return 4, gl.FLOAT, false, false
	case pie.AttributeInt:
		return 1, gl.INT, false, true
	case pie.AttributeInt2:
		return 2, gl.INT, false, true
	case pie.AttributeInt3:
		return 3, gl.INT, false, true
	case pie.AttributeInt4:
		return 4, gl.INT, false, true
	case pie.AttributeByte4Norm:
		return 4, gl.UNSIGNED_BYTE, true, false
	default:
		return 0, 0, false, false
	}
}

// glFilter returns the min and mag filters for a pie filter mode.
// Anisotropy is applied separately through the EXT parameter.
func glFilter(f pie.TextureFilter, mipmapped bool) (minFilter, magFilter int32) {
	if !mipmapped {
		switch f {
		case pie.FilterMinMagMipPoint, pie.FilterMinMagPointMipLinear:
			return gl.NEAREST, gl.NEAREST
		default:
			return gl.LINEAR, gl.LINEAR
		}
	}
	switch f {
	case pie.FilterMinMagMipPoint:
		return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
	case pie.FilterMinMagPointMipLinear:
		return gl.NEAREST_MIPMAP_LINEAR, gl.NEAREST
	case pie.FilterMinMagLinearMipPoint:
		return gl.LINEAR_MIPMAP_NEAREST, gl.LINEAR
	default:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
}

func glAddressMode(a pie.TextureAddress) int32 {
	switch a {
	case pie.AddressMirror:
		return gl.MIRRORED_REPEAT
	case pie.AddressClampToEdge:
		return gl.CLAMP_TO_EDGE
	case pie.AddressClampToBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

func glShaderType(s pie.ShaderStage) uint32 {
	switch s {
	case pie.ShaderStageFragment:
		return gl.FRAGMENT_SHADER
	case pie.ShaderStageGeometry:
		return gl.GEOMETRY_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func glIndexType(f pie.IndexFormat) uint32 {
	if f == pie.IndexFormatU32 {
		return gl.UNSIGNED_INT
	}
	return gl.UNSIGNED_SHORT
}
