//go:build windows

package d3d11

import (
	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend/d3d11/internal/com"
)

// dxFormat returns the DXGI format for a pie format, or
// DXGI_FORMAT_UNKNOWN when there is no equivalent.
func dxFormat(f pie.Format) uint32 {
	switch f {
	case pie.FormatR8UNorm:
		return com.DXGI_FORMAT_R8_UNORM
	case pie.FormatR8G8UNorm:
		return com.DXGI_FORMAT_R8G8_UNORM
	case pie.FormatR8G8B8A8UNorm:
		return com.DXGI_FORMAT_R8G8B8A8_UNORM
	case pie.FormatR8G8B8A8UNormSRGB:
		return com.DXGI_FORMAT_R8G8B8A8_UNORM_SRGB
	case pie.FormatB8G8R8A8UNorm:
		return com.DXGI_FORMAT_B8G8R8A8_UNORM
	case pie.FormatB8G8R8A8UNormSRGB:
		return com.DXGI_FORMAT_B8G8R8A8_UNORM_SRGB
	case pie.FormatR16Float:
		return com.DXGI_FORMAT_R16_FLOAT
	case pie.FormatR16G16Float:
		return com.DXGI_FORMAT_R16G16_FLOAT
	case pie.FormatR16G16B16A16Float:
		return com.DXGI_FORMAT_R16G16B16A16_FLOAT
	case pie.FormatR32Float:
		return com.DXGI_FORMAT_R32_FLOAT
	case pie.FormatR32G32Float:
		return com.DXGI_FORMAT_R32G32_FLOAT
	case pie.FormatR32G32B32Float:
		return com.DXGI_FORMAT_R32G32B32_FLOAT
	case pie.FormatR32G32B32A32Float:
		return com.DXGI_FORMAT_R32G32B32A32_FLOAT
	case pie.FormatR32UInt:
		return com.DXGI_FORMAT_R32_UINT
	case pie.FormatR32G32B32A32UInt:
		return com.DXGI_FORMAT_R32G32B32A32_UINT
	case pie.FormatD16UNorm:
		return com.DXGI_FORMAT_D16_UNORM
	case pie.FormatD24UNormS8UInt:
		return com.DXGI_FORMAT_D24_UNORM_S8_UINT
	case pie.FormatD32Float:
		return com.DXGI_FORMAT_D32_FLOAT
	case pie.FormatBC1UNorm:
		return com.DXGI_FORMAT_BC1_UNORM
	case pie.FormatBC2UNorm:
		return com.DXGI_FORMAT_BC2_UNORM
	case pie.FormatBC3UNorm:
		return com.DXGI_FORMAT_BC3_UNORM
	default:
		return com.DXGI_FORMAT_UNKNOWN
	}
}

func dxIndexFormat(f pie.IndexFormat) uint32 {
	if f == pie.IndexFormatU32 {
		return com.DXGI_FORMAT_R32_UINT
	}
	return com.DXGI_FORMAT_R16_UINT
}

func dxTopology(t pie.PrimitiveType) uint32 {
	switch t {
	case pie.PrimitiveTriangleStrip:
		return com.PRIMITIVE_TOPOLOGY_TRIANGLESTRIP
	case pie.PrimitiveLineList:
		return com.PRIMITIVE_TOPOLOGY_LINELIST
	case pie.PrimitiveLineStrip:
		return com.PRIMITIVE_TOPOLOGY_LINESTRIP
	case pie.PrimitivePointList:
		return com.PRIMITIVE_TOPOLOGY_POINTLIST
	default:
		return com.PRIMITIVE_TOPOLOGY_TRIANGLELIST
	}
}

func dxComparison(f pie.ComparisonFunc) uint32 {
	switch f {
	case pie.ComparisonNever:
		return com.COMPARISON_NEVER
	case pie.ComparisonLess:
		return com.COMPARISON_LESS
	case pie.ComparisonEqual:
		return com.COMPARISON_EQUAL
	case pie.ComparisonLessEqual:
		return com.COMPARISON_LESS_EQUAL
	case pie.ComparisonGreater:
		return com.COMPARISON_GREATER
	case pie.ComparisonNotEqual:
		return com.COMPARISON_NOT_EQUAL
	case pie.ComparisonGreaterEqual:
		return com.COMPARISON_GREATER_EQUAL
	default:
		return com.COMPARISON_ALWAYS
	}
}

func dxStencilOp(o pie.StencilOp) uint32 {
	switch o {
	case pie.StencilZero:
		return com.STENCIL_OP_ZERO
	case pie.StencilReplace:
		return com.STENCIL_OP_REPLACE
	case pie.StencilIncrementClamp:
		return com.STENCIL_OP_INCR_SAT
	case pie.StencilDecrementClamp:
		return com.STENCIL_OP_DECR_SAT
	case pie.StencilInvert:
		return com.STENCIL_OP_INVERT
	case pie.StencilIncrementWrap:
		return com.STENCIL_OP_INCR
	case pie.StencilDecrementWrap:
		return com.STENCIL_OP_DECR
	default:
		return com.STENCIL_OP_KEEP
	}
}

func dxBlendFactor(f pie.BlendFactor) uint32 {
	switch f {
	case pie.BlendZero:
		return com.BLEND_ZERO
	case pie.BlendSrcColor:
		return com.BLEND_SRC_COLOR
	case pie.BlendOneMinusSrcColor:
		return com.BLEND_INV_SRC_COLOR
	case pie.BlendDestColor:
		return com.BLEND_DEST_COLOR
	case pie.BlendOneMinusDestColor:
		return com.BLEND_INV_DEST_COLOR
	case pie.BlendSrcAlpha:
		return com.BLEND_SRC_ALPHA
	case pie.BlendOneMinusSrcAlpha:
		return com.BLEND_INV_SRC_ALPHA
	case pie.BlendDestAlpha:
		return com.BLEND_DEST_ALPHA
	case pie.BlendOneMinusDestAlpha:
		return com.BLEND_INV_DEST_ALPHA
	default:
		return com.BLEND_ONE
	}
}

func dxBlendOp(o pie.BlendOperation) uint32 {
	switch o {
	case pie.BlendOpSubtract:
		return com.BLEND_OP_SUBTRACT
	case pie.BlendOpReverseSubtract:
		return com.BLEND_OP_REV_SUBTRACT
	case pie.BlendOpMin:
		return com.BLEND_OP_MIN
	case pie.BlendOpMax:
		return com.BLEND_OP_MAX
	default:
		return com.BLEND_OP_ADD
	}
}

func dxCullMode(c pie.CullFace) uint32 {
	switch c {
	case pie.CullFront:
		return com.CULL_FRONT
	case pie.CullBack:
		return com.CULL_BACK
	default:
		return com.CULL_NONE
	}
}

func dxFillMode(f pie.FillMode) uint32 {
	if f == pie.FillWireframe {
		return com.FILL_WIREFRAME
	}
	return com.FILL_SOLID
}

func dxFilter(f pie.TextureFilter) uint32 {
	switch f {
	case pie.FilterMinMagMipPoint:
		return com.FILTER_MIN_MAG_MIP_POINT
	case pie.FilterMinMagPointMipLinear:
		return com.FILTER_MIN_MAG_POINT_MIP_LINEAR
	case pie.FilterMinMagLinearMipPoint:
		return com.FILTER_MIN_MAG_LINEAR_MIP_POINT
	case pie.FilterAnisotropic:
		return com.FILTER_ANISOTROPIC
	default:
		return com.FILTER_MIN_MAG_MIP_LINEAR
	}
}

func dxAddressMode(a pie.TextureAddress) uint32 {
	switch a {
	case pie.AddressMirror:
		return com.TEXTURE_ADDRESS_MIRROR
	case pie.AddressClampToEdge:
		return com.TEXTURE_ADDRESS_CLAMP
	case pie.AddressClampToBorder:
		return com.TEXTURE_ADDRESS_BORDER
	default:
		return com.TEXTURE_ADDRESS_WRAP
	}
}

func dxVertexFormat(t pie.AttributeType) uint32 {
	switch t {
	case pie.AttributeFloat:
		return com.DXGI_FORMAT_R32_FLOAT
	case pie.AttributeFloat2:
		return com.DXGI_FORMAT_R32G32_FLOAT
	case pie.AttributeFloat3:
		return com.DXGI_FORMAT_R32G32B32_FLOAT
	case pie.AttributeFloat4:
		return com.DXGI_FORMAT_R32G32B32A32_FLOAT
	case pie.AttributeInt:
		return com.DXGI_FORMAT_R32_SINT
	case pie.AttributeInt2:
		return com.DXGI_FORMAT_R32G32_SINT
	case pie.AttributeInt3:
		return com.DXGI_FORMAT_R32G32B32_SINT
	case pie.AttributeInt4:
		return com.DXGI_FORMAT_R32G32B32A32_SINT
	case pie.AttributeByte4Norm:
		return com.DXGI_FORMAT_R8G8B8A8_UNORM
	default:
		return com.DXGI_FORMAT_R32_FLOAT
	}
}

func dxWriteMask(m pie.ColorWriteMask) uint8 {
	// The pie mask bit order matches D3D11_COLOR_WRITE_ENABLE.
	return uint8(m) & 0xf
}

func dxClearFlags(f pie.ClearFlags) uint32 {
	var out uint32
	if f&pie.ClearDepth != 0 {
		out |= com.CLEAR_DEPTH
	}
	if f&pie.ClearStencil != 0 {
		out |= com.CLEAR_STENCIL
	}
	return out
}
