//go:build windows

package com

// Device creation.
const (
	DRIVER_TYPE_HARDWARE = 1

	CREATE_DEVICE_SINGLETHREADED = 0x1
	CREATE_DEVICE_DEBUG          = 0x2
	CREATE_DEVICE_BGRA_SUPPORT   = 0x20

	FEATURE_LEVEL_11_0 = 0xb000

	SDK_VERSION = 7
)

// DXGI_FORMAT values used by the backend.
const (
	DXGI_FORMAT_UNKNOWN             = 0
	DXGI_FORMAT_R32G32B32A32_FLOAT  = 2
	DXGI_FORMAT_R32G32B32A32_UINT   = 3
	DXGI_FORMAT_R32G32B32A32_SINT   = 4
	DXGI_FORMAT_R32G32B32_FLOAT     = 6
	DXGI_FORMAT_R32G32B32_SINT      = 8
	DXGI_FORMAT_R16G16B16A16_FLOAT  = 10
	DXGI_FORMAT_R32G32_FLOAT        = 16
	DXGI_FORMAT_R32G32_SINT         = 18
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
	DXGI_FORMAT_R16G16_FLOAT        = 34
	DXGI_FORMAT_D32_FLOAT           = 40
	DXGI_FORMAT_R32_FLOAT           = 41
	DXGI_FORMAT_R32_UINT            = 42
	DXGI_FORMAT_R32_SINT            = 43
	DXGI_FORMAT_D24_UNORM_S8_UINT   = 45
	DXGI_FORMAT_R8G8_UNORM          = 49
	DXGI_FORMAT_R16_FLOAT           = 54
	DXGI_FORMAT_D16_UNORM           = 55
	DXGI_FORMAT_R16_UINT            = 57
	DXGI_FORMAT_R8_UNORM            = 61
	DXGI_FORMAT_BC1_UNORM           = 71
	DXGI_FORMAT_BC2_UNORM           = 74
	DXGI_FORMAT_BC3_UNORM           = 77
	DXGI_FORMAT_B8G8R8A8_UNORM      = 87
	DXGI_FORMAT_B8G8R8A8_UNORM_SRGB = 91
)

// Resource usage, binding and access.
const (
	USAGE_DEFAULT   = 0
	USAGE_IMMUTABLE = 1
	USAGE_DYNAMIC   = 2
	USAGE_STAGING   = 3

	BIND_VERTEX_BUFFER   = 0x1
	BIND_INDEX_BUFFER    = 0x2
	BIND_CONSTANT_BUFFER = 0x4
	BIND_SHADER_RESOURCE = 0x8
	BIND_RENDER_TARGET   = 0x20
	BIND_DEPTH_STENCIL   = 0x40

	CPU_ACCESS_WRITE = 0x10000
	CPU_ACCESS_READ  = 0x20000

	RESOURCE_MISC_GENERATE_MIPS = 0x1
	RESOURCE_MISC_TEXTURECUBE   = 0x4
)

// Input assembler.
const (
	PRIMITIVE_TOPOLOGY_POINTLIST     = 1
	PRIMITIVE_TOPOLOGY_LINELIST      = 2
	PRIMITIVE_TOPOLOGY_LINESTRIP     = 3
	PRIMITIVE_TOPOLOGY_TRIANGLELIST  = 4
	PRIMITIVE_TOPOLOGY_TRIANGLESTRIP = 5

	INPUT_PER_VERTEX_DATA = 0
)

// Rasterizer, blend, depth-stencil state.
const (
	FILL_WIREFRAME = 2
	FILL_SOLID     = 3

	CULL_NONE  = 1
	CULL_FRONT = 2
	CULL_BACK  = 3

	COMPARISON_NEVER         = 1
	COMPARISON_LESS          = 2
	COMPARISON_EQUAL         = 3
	COMPARISON_LESS_EQUAL    = 4
	COMPARISON_GREATER       = 5
	COMPARISON_NOT_EQUAL     = 6
	COMPARISON_GREATER_EQUAL = 7
	COMPARISON_ALWAYS        = 8

	STENCIL_OP_KEEP     = 1
	STENCIL_OP_ZERO     = 2
	STENCIL_OP_REPLACE  = 3
	STENCIL_OP_INCR_SAT = 4
	STENCIL_OP_DECR_SAT = 5
	STENCIL_OP_INVERT   = 6
	STENCIL_OP_INCR     = 7
	STENCIL_OP_DECR     = 8

	BLEND_ZERO           = 1
	BLEND_ONE            = 2
	BLEND_SRC_COLOR      = 3
	BLEND_INV_SRC_COLOR  = 4
	BLEND_SRC_ALPHA      = 5
	BLEND_INV_SRC_ALPHA  = 6
	BLEND_DEST_ALPHA     = 7
	BLEND_INV_DEST_ALPHA = 8
	BLEND_DEST_COLOR     = 9
	BLEND_INV_DEST_COLOR = 10

	BLEND_OP_ADD          = 1
	BLEND_OP_SUBTRACT     = 2
	BLEND_OP_REV_SUBTRACT = 3
	BLEND_OP_MIN          = 4
	BLEND_OP_MAX          = 5
)

// Samplers.
const (
	FILTER_MIN_MAG_MIP_POINT        = 0x0
	FILTER_MIN_MAG_POINT_MIP_LINEAR = 0x1
	FILTER_MIN_MAG_LINEAR_MIP_POINT = 0x14
	FILTER_MIN_MAG_MIP_LINEAR       = 0x15
	FILTER_ANISOTROPIC              = 0x55

	TEXTURE_ADDRESS_WRAP   = 1
	TEXTURE_ADDRESS_MIRROR = 2
	TEXTURE_ADDRESS_CLAMP  = 3
	TEXTURE_ADDRESS_BORDER = 4
)

// Map, clear, views.
const (
	MAP_READ       = 1
	MAP_WRITE      = 2
	MAP_READ_WRITE = 3

	CLEAR_DEPTH   = 0x1
	CLEAR_STENCIL = 0x2

	SRV_DIMENSION_TEXTURE2D      = 4
	SRV_DIMENSION_TEXTURE2DARRAY = 5
	SRV_DIMENSION_TEXTURE3D      = 8
	SRV_DIMENSION_TEXTURECUBE    = 9

	RTV_DIMENSION_TEXTURE2D      = 4
	RTV_DIMENSION_TEXTURE2DARRAY = 5
	RTV_DIMENSION_TEXTURE3D      = 8

	DSV_DIMENSION_TEXTURE2D      = 3
	DSV_DIMENSION_TEXTURE2DARRAY = 4
)

// DXGI swapchain.
const (
	DXGI_USAGE_RENDER_TARGET_OUTPUT = 0x20

	DXGI_SWAP_EFFECT_DISCARD = 0

	DXGI_STATUS_OCCLUDED      = 0x087A0001
	DXGI_ERROR_DEVICE_REMOVED = 0x887A0005
	DXGI_ERROR_DEVICE_RESET   = 0x887A0007
)

// Shader compilation.
const (
	D3DCOMPILE_OPTIMIZATION_LEVEL3 = 1 << 15
	D3DCOMPILE_DEBUG               = 1 << 0
)

type DXGI_RATIONAL struct {
	Numerator   uint32
	Denominator uint32
}

type DXGI_MODE_DESC struct {
	Width            uint32
	Height           uint32
	RefreshRate      DXGI_RATIONAL
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type DXGI_SAMPLE_DESC struct {
	Count   uint32
	Quality uint32
}

type DXGI_SWAP_CHAIN_DESC struct {
	BufferDesc   DXGI_MODE_DESC
	SampleDesc   DXGI_SAMPLE_DESC
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     uint32
	SwapEffect   uint32
	Flags        uint32
}

type BUFFER_DESC struct {
	ByteWidth           uint32
	Usage               uint32
	BindFlags           uint32
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

type SUBRESOURCE_DATA struct {
	PSysMem          uintptr
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

type TEXTURE3D_DESC struct {
	Width          uint32
	Height         uint32
	Depth          uint32
	MipLevels      uint32
	Format         uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type TEXTURE2D_DESC struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     DXGI_SAMPLE_DESC
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// SHADER_RESOURCE_VIEW_DESC carries the view union as raw words; the
// layout matches Texture2D/Texture2DArray/Texture3D/TextureCube views.
type SHADER_RESOURCE_VIEW_DESC struct {
	Format        uint32
	ViewDimension uint32
	U             [4]uint32
}

type RENDER_TARGET_VIEW_DESC struct {
	Format        uint32
	ViewDimension uint32
	U             [3]uint32
}

type DEPTH_STENCIL_VIEW_DESC struct {
	Format        uint32
	ViewDimension uint32
	Flags         uint32
	U             [3]uint32
}

type INPUT_ELEMENT_DESC struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

type RASTERIZER_DESC struct {
	FillMode              uint32
	CullMode              uint32
	FrontCounterClockwise uint32
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       uint32
	ScissorEnable         uint32
	MultisampleEnable     uint32
	AntialiasedLineEnable uint32
}

type RENDER_TARGET_BLEND_DESC struct {
	BlendEnable           uint32
	SrcBlend              uint32
	DestBlend             uint32
	BlendOp               uint32
	SrcBlendAlpha         uint32
	DestBlendAlpha        uint32
	BlendOpAlpha          uint32
	RenderTargetWriteMask uint8
	_                     [3]byte
}

type BLEND_DESC struct {
	AlphaToCoverageEnable  uint32
	IndependentBlendEnable uint32
	RenderTarget           [8]RENDER_TARGET_BLEND_DESC
}

type DEPTH_STENCILOP_DESC struct {
	StencilFailOp      uint32
	StencilDepthFailOp uint32
	StencilPassOp      uint32
	StencilFunc        uint32
}

type DEPTH_STENCIL_DESC struct {
	DepthEnable      uint32
	DepthWriteMask   uint32
	DepthFunc        uint32
	StencilEnable    uint32
	StencilReadMask  uint8
	StencilWriteMask uint8
	_                [2]byte
	FrontFace        DEPTH_STENCILOP_DESC
	BackFace         DEPTH_STENCILOP_DESC
}

type SAMPLER_DESC struct {
	Filter         uint32
	AddressU       uint32
	AddressV       uint32
	AddressW       uint32
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc uint32
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

type VIEWPORT struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

type RECT struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type BOX struct {
	Left   uint32
	Top    uint32
	Front  uint32
	Right  uint32
	Bottom uint32
	Back   uint32
}

type MAPPED_SUBRESOURCE struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}
