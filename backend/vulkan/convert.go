package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

func vkFormat(f pie.Format) vk.Format {
	switch f {
	case pie.FormatR8UNorm:
		return vk.FormatR8Unorm
	case pie.FormatR8G8UNorm:
		return vk.FormatR8g8Unorm
	case pie.FormatR8G8B8A8UNorm:
		return vk.FormatR8g8b8a8Unorm
	case pie.FormatR8G8B8A8UNormSRGB:
		return vk.FormatR8g8b8a8Srgb
	case pie.FormatB8G8R8A8UNorm:
		return vk.FormatB8g8r8a8Unorm
	case pie.FormatB8G8R8A8UNormSRGB:
		return vk.FormatB8g8r8a8Srgb
	case pie.FormatR16Float:
		return vk.FormatR16Sfloat
	case pie.FormatR16G16Float:
		return vk.FormatR16g16Sfloat
	case pie.FormatR16G16B16A16Float:
		return vk.FormatR16g16b16a16Sfloat
	case pie.FormatR32Float:
		return vk.FormatR32Sfloat
	case pie.FormatR32G32Float:
		return vk.FormatR32g32Sfloat
	case pie.FormatR32G32B32Float:
		return vk.FormatR32g32b32Sfloat
	case pie.FormatR32G32B32A32Float:
		return vk.FormatR32g32b32a32Sfloat
	case pie.FormatR32UInt:
		return vk.FormatR32Uint
	case pie.FormatR32G32B32A32UInt:
		return vk.FormatR32g32b32a32Uint
	case pie.FormatD16UNorm:
		return vk.FormatD16Unorm
	case pie.FormatD24UNormS8UInt:
		return vk.FormatD24UnormS8Uint
	case pie.FormatD32Float:
		return vk.FormatD32Sfloat
	case pie.FormatBC1UNorm:
		return vk.FormatBc1RgbaUnormBlock
	case pie.FormatBC2UNorm:
		return vk.FormatBc2UnormBlock
	case pie.FormatBC3UNorm:
		return vk.FormatBc3UnormBlock
	default:
		return vk.FormatUndefined
	}
}

func vkBufferUsage(t pie.BufferType) vk.BufferUsageFlags {
	switch t {
	case pie.BufferTypeVertex:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	case pie.BufferTypeIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	case pie.BufferTypeUniform:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	case pie.BufferTypeShaderStorage:
		return vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	default:
		return 0
	}
}

func vkPrimitive(t pie.PrimitiveType) vk.PrimitiveTopology {
	switch t {
	case pie.PrimitiveTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case pie.PrimitiveLineList:
		return vk.PrimitiveTopologyLineList
	case pie.PrimitiveLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case pie.PrimitivePointList:
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func vkCullMode(c pie.CullFace) vk.CullModeFlagBits {
	switch c {
	case pie.CullFront:
		return vk.CullModeFrontBit
	case pie.CullBack:
		return vk.CullModeBackBit
	default:
		return vk.CullModeNone
	}
}

func vkPolygonMode(f pie.FillMode) vk.PolygonMode {
	if f == pie.FillWireframe {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func vkCompareOp(f pie.ComparisonFunc) vk.CompareOp {
	switch f {
	case pie.ComparisonNever:
		return vk.CompareOpNever
	case pie.ComparisonLess:
		return vk.CompareOpLess
	case pie.ComparisonEqual:
		return vk.CompareOpEqual
	case pie.ComparisonLessEqual:
		return vk.CompareOpLessOrEqual
	case pie.ComparisonGreater:
		return vk.CompareOpGreater
	case pie.ComparisonNotEqual:
		return vk.CompareOpNotEqual
	case pie.ComparisonGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	default:
		return vk.CompareOpAlways
	}
}

func vkBlendFactor(f pie.BlendFactor) vk.BlendFactor {
	switch f {
	case pie.BlendZero:
		return vk.BlendFactorZero
	case pie.BlendOne:
		return vk.BlendFactorOne
	case pie.BlendSrcColor:
		return vk.BlendFactorSrcColor
	case pie.BlendOneMinusSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case pie.BlendDestColor:
		return vk.BlendFactorDstColor
	case pie.BlendOneMinusDestColor:
		return vk.BlendFactorOneMinusDstColor
	case pie.BlendSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case pie.BlendOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case pie.BlendDestAlpha:
		return vk.BlendFactorDstAlpha
	case pie.BlendOneMinusDestAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	default:
		return vk.BlendFactorOne
	}
}

func vkBlendOp(o pie.BlendOperation) vk.BlendOp {
	switch o {
	case pie.BlendOpSubtract:
		return vk.BlendOpSubtract
	case pie.BlendOpReverseSubtract:
		return vk.BlendOpReverseSubtract
	case pie.BlendOpMin:
		return vk.BlendOpMin
	case pie.BlendOpMax:
		return vk.BlendOpMax
	default:
		return vk.BlendOpAdd
	}
}

func vkStencilOp(o pie.StencilOp) vk.StencilOp {
	switch o {
	case pie.StencilZero:
		return vk.StencilOpZero
	case pie.StencilReplace:
		return vk.StencilOpReplace
	case pie.StencilIncrementClamp:
		return vk.StencilOpIncrementAndClamp
	case pie.StencilDecrementClamp:
		return vk.StencilOpDecrementAndClamp
	case pie.StencilInvert:
		return vk.StencilOpInvert
	case pie.StencilIncrementWrap:
		return vk.StencilOpIncrementAndWrap
	case pie.StencilDecrementWrap:
		return vk.StencilOpDecrementAndWrap
	default:
		return vk.StencilOpKeep
	}
}

func vkAttributeFormat(t pie.AttributeType) vk.Format {
	switch t {
	case pie.AttributeFloat:
		return vk.FormatR32Sfloat
	case pie.AttributeFloat2:
		return vk.FormatR32g32Sfloat
	case pie.AttributeFloat3:
		return vk.FormatR32g32b32Sfloat
	case pie.AttributeFloat4:
		return vk.FormatR32g32b32a32Sfloat
	case pie.AttributeInt:
		return vk.FormatR32Sint
	case pie.AttributeInt2:
		return vk.FormatR32g32Sint
	case pie.AttributeInt3:
		return vk.FormatR32g32b32Sint
	case pie.AttributeInt4:
		return vk.FormatR32g32b32a32Sint
	case pie.AttributeByte4Norm:
		return vk.FormatR8g8b8a8Unorm
	default:
		return vk.FormatUndefined
	}
}

func vkFilter(f pie.TextureFilter) (minMag vk.Filter, mip vk.SamplerMipmapMode, aniso bool) {
	switch f {
	case pie.FilterMinMagMipPoint:
		return vk.FilterNearest, vk.SamplerMipmapModeNearest, false
	case pie.FilterMinMagPointMipLinear:
		return vk.FilterNearest, vk.SamplerMipmapModeLinear, false
	case pie.FilterMinMagLinearMipPoint:
		return vk.FilterLinear, vk.SamplerMipmapModeNearest, false
	case pie.FilterAnisotropic:
		return vk.FilterLinear, vk.SamplerMipmapModeLinear, true
	default:
		return vk.FilterLinear, vk.SamplerMipmapModeLinear, false
	}
}

func vkAddressMode(a pie.TextureAddress) vk.SamplerAddressMode {
	switch a {
	case pie.AddressMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case pie.AddressClampToEdge:
		return vk.SamplerAddressModeClampToEdge
	case pie.AddressClampToBorder:
		return vk.SamplerAddressModeClampToBorder
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func vkShaderStage(s pie.ShaderStage) vk.ShaderStageFlagBits {
	switch s {
	case pie.ShaderStageFragment:
		return vk.ShaderStageFragmentBit
	case pie.ShaderStageGeometry:
		return vk.ShaderStageGeometryBit
	case pie.ShaderStageCompute:
		return vk.ShaderStageComputeBit
	default:
		return vk.ShaderStageVertexBit
	}
}

func vkIndexType(f pie.IndexFormat) vk.IndexType {
	if f == pie.IndexFormatU32 {
		return vk.IndexTypeUint32
	}
	return vk.IndexTypeUint16
}

func colorWriteMask(m pie.ColorWriteMask) vk.ColorComponentFlags {
	var flags vk.ColorComponentFlagBits
	if m&pie.ColorWriteRed != 0 {
		flags |= vk.ColorComponentRBit
	}
	if m&pie.ColorWriteGreen != 0 {
		flags |= vk.ColorComponentGBit
	}
	if m&pie.ColorWriteBlue != 0 {
		flags |= vk.ColorComponentBBit
	}
	if m&pie.ColorWriteAlpha != 0 {
		flags |= vk.ColorComponentABit
	}
	return vk.ColorComponentFlags(flags)
}
