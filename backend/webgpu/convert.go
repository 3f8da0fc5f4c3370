package webgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	pie "github.com/IsometricSoftware/Pie"
)

// wgFormat returns the wgpu texture format for a pie format.
// TextureFormatUndefined means unsupported.
func wgFormat(f pie.Format) gputypes.TextureFormat {
	switch f {
	case pie.FormatR8UNorm:
		return gputypes.TextureFormatR8Unorm
	case pie.FormatR8G8UNorm:
		return gputypes.TextureFormatRG8Unorm
	case pie.FormatR8G8B8A8UNorm:
		return gputypes.TextureFormatRGBA8Unorm
	case pie.FormatR8G8B8A8UNormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case pie.FormatB8G8R8A8UNorm:
		return gputypes.TextureFormatBGRA8Unorm
	case pie.FormatB8G8R8A8UNormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb
	case pie.FormatR16Float:
		return gputypes.TextureFormatR16Float
	case pie.FormatR16G16Float:
		return gputypes.TextureFormatRG16Float
	case pie.FormatR16G16B16A16Float:
		return gputypes.TextureFormatRGBA16Float
	case pie.FormatR32Float:
		return gputypes.TextureFormatR32Float
	case pie.FormatR32G32Float:
		return gputypes.TextureFormatRG32Float
	case pie.FormatR32G32B32A32Float:
		return gputypes.TextureFormatRGBA32Float
	case pie.FormatR32UInt:
		return gputypes.TextureFormatR32Uint
	case pie.FormatR32G32B32A32UInt:
		return gputypes.TextureFormatRGBA32Uint
	case pie.FormatD16UNorm:
		return gputypes.TextureFormatDepth16Unorm
	case pie.FormatD24UNormS8UInt:
		return gputypes.TextureFormatDepth24PlusStencil8
	case pie.FormatD32Float:
		return gputypes.TextureFormatDepth32Float
	default:
		// Three-component float and BC formats have no wgpu
		// equivalent.
		return gputypes.TextureFormatUndefined
	}
}

func wgIndexFormat(f pie.IndexFormat) gputypes.IndexFormat {
	if f == pie.IndexFormatU32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func wgPrimitive(t pie.PrimitiveType) gputypes.PrimitiveTopology {
	switch t {
	case pie.PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case pie.PrimitiveLineList:
		return gputypes.PrimitiveTopologyLineList
	case pie.PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case pie.PrimitivePointList:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func wgCompare(f pie.ComparisonFunc) gputypes.CompareFunction {
	switch f {
	case pie.ComparisonNever:
		return gputypes.CompareFunctionNever
	case pie.ComparisonLess:
		return gputypes.CompareFunctionLess
	case pie.ComparisonEqual:
		return gputypes.CompareFunctionEqual
	case pie.ComparisonLessEqual:
		return gputypes.CompareFunctionLessEqual
	case pie.ComparisonGreater:
		return gputypes.CompareFunctionGreater
	case pie.ComparisonNotEqual:
		return gputypes.CompareFunctionNotEqual
	case pie.ComparisonGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

func wgCullMode(c pie.CullFace) gputypes.CullMode {
	switch c {
	case pie.CullFront:
		return gputypes.CullModeFront
	case pie.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func wgBlendFactor(f pie.BlendFactor) gputypes.BlendFactor {
	switch f {
	case pie.BlendZero:
		return gputypes.BlendFactorZero
	case pie.BlendSrcColor:
		return gputypes.BlendFactorSrc
	case pie.BlendOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case pie.BlendDestColor:
		return gputypes.BlendFactorDst
	case pie.BlendOneMinusDestColor:
		return gputypes.BlendFactorOneMinusDst
	case pie.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case pie.BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case pie.BlendDestAlpha:
		return gputypes.BlendFactorDstAlpha
	case pie.BlendOneMinusDestAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	default:
		return gputypes.BlendFactorOne
	}
}

func wgBlendOp(o pie.BlendOperation) gputypes.BlendOperation {
	switch o {
	case pie.BlendOpSubtract:
		return gputypes.BlendOperationSubtract
	case pie.BlendOpReverseSubtract:
		return gputypes.BlendOperationReverseSubtract
	case pie.BlendOpMin:
		return gputypes.BlendOperationMin
	case pie.BlendOpMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func wgWriteMask(m pie.ColorWriteMask) gputypes.ColorWriteMask {
	var out gputypes.ColorWriteMask
	if m&pie.ColorWriteRed != 0 {
		out |= gputypes.ColorWriteMaskRed
	}
	if m&pie.ColorWriteGreen != 0 {
		out |= gputypes.ColorWriteMaskGreen
	}
	if m&pie.ColorWriteBlue != 0 {
		out |= gputypes.ColorWriteMaskBlue
	}
	if m&pie.ColorWriteAlpha != 0 {
		out |= gputypes.ColorWriteMaskAlpha
	}
	return out
}

func wgStencilOp(o pie.StencilOp) hal.StencilOperation {
	switch o {
	case pie.StencilZero:
		return hal.StencilOperationZero
	case pie.StencilReplace:
		return hal.StencilOperationReplace
	case pie.StencilIncrementClamp:
		return hal.StencilOperationIncrementClamp
	case pie.StencilDecrementClamp:
		return hal.StencilOperationDecrementClamp
	case pie.StencilInvert:
		return hal.StencilOperationInvert
	case pie.StencilIncrementWrap:
		return hal.StencilOperationIncrementWrap
	case pie.StencilDecrementWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

func wgVertexFormat(t pie.AttributeType) gputypes.VertexFormat {
	switch t {
	case pie.AttributeFloat:
		return gputypes.VertexFormatFloat32
	case pie.AttributeFloat2:
		return gputypes.VertexFormatFloat32x2
	case pie.AttributeFloat3:
		return gputypes.VertexFormatFloat32x3
	case pie.AttributeFloat4:
		return gputypes.VertexFormatFloat32x4
	case pie.AttributeInt:
		return gputypes.VertexFormatSint32
	case pie.AttributeInt2:
		return gputypes.VertexFormatSint32x2
	case pie.AttributeInt3:
		return gputypes.VertexFormatSint32x3
	case pie.AttributeInt4:
		return gputypes.VertexFormatSint32x4
	case pie.AttributeByte4Norm:
		return gputypes.VertexFormatUnorm8x4
	default:
		return gputypes.VertexFormatFloat32
	}
}

func wgBufferUsage(t pie.BufferType) gputypes.BufferUsage {
	switch t {
	case pie.BufferTypeIndex:
		return gputypes.BufferUsageIndex
	case pie.BufferTypeUniform:
		return gputypes.BufferUsageUniform
	case pie.BufferTypeShaderStorage:
		return gputypes.BufferUsageStorage
	default:
		return gputypes.BufferUsageVertex
	}
}

func wgAddressMode(a pie.TextureAddress) gputypes.AddressMode {
	switch a {
	case pie.AddressMirror:
		return gputypes.AddressModeMirrorRepeat
	case pie.AddressClampToEdge:
		return gputypes.AddressModeClampToEdge
	case pie.AddressClampToBorder:
		// hal has no border mode; degrade to clamp-to-edge.
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

// wgFilters returns the mag, min and mip filters for a pie filter mode.
// Anisotropic filtering degrades to trilinear; the hal sampler
// descriptor does not carry an anisotropy clamp.
func wgFilters(f pie.TextureFilter) (mag, min, mip gputypes.FilterMode) {
	switch f {
	case pie.FilterMinMagMipPoint:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case pie.FilterMinMagPointMipLinear:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest, gputypes.FilterModeLinear
	case pie.FilterMinMagLinearMipPoint:
		return gputypes.FilterModeLinear, gputypes.FilterModeLinear, gputypes.FilterModeNearest
	default:
		return gputypes.FilterModeLinear, gputypes.FilterModeLinear, gputypes.FilterModeLinear
	}
}
