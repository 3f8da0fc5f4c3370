package pie

// Comparison functions, blend factors and operations shared by the
// state-object descriptions. State objects are immutable once created;
// equality is structural on the description, never on object identity.

// PrimitiveType is the primitive topology used by draw calls.
type PrimitiveType uint8

const (
	PrimitiveTriangleList PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLineList
	PrimitiveLineStrip
	PrimitivePointList
)

// ClearFlags selects the planes cleared by ClearDepthStencilBuffer.
type ClearFlags uint8

const (
	// ClearDepth clears the depth plane.
	ClearDepth ClearFlags = 1 << iota

	// ClearStencil clears the stencil plane.
	ClearStencil
)

// ComparisonFunc is a depth/stencil/sampler comparison function.
type ComparisonFunc uint8

const (
	ComparisonNever ComparisonFunc = iota
	ComparisonLess
	ComparisonEqual
	ComparisonLessEqual
	ComparisonGreater
	ComparisonNotEqual
	ComparisonGreaterEqual
	ComparisonAlways
)

// CullFace selects which triangle faces the rasterizer discards.
type CullFace uint8

const (
	CullNone CullFace = iota
	CullFront
	CullBack
)

// FillMode selects solid or wireframe rasterization.
type FillMode uint8

const (
	FillSolid FillMode = iota
	FillWireframe
)

// RasterizerStateDescription describes a rasterizer state object.
type RasterizerStateDescription struct {
	// CullFace is the face culling mode.
	CullFace CullFace

	// FrontFaceCCW makes counter-clockwise winding the front face.
	FrontFaceCCW bool

	// FillMode selects solid or wireframe fill.
	FillMode FillMode

	// ScissorTest enables scissor rectangle clipping.
	ScissorTest bool
}

// Rasterizer state presets.
var (
	// RasterizerStateCullNone rasterizes both faces, solid fill,
	// clockwise front faces.
	RasterizerStateCullNone = RasterizerStateDescription{CullFace: CullNone}

	// RasterizerStateCullClockwise culls clockwise faces.
	RasterizerStateCullClockwise = RasterizerStateDescription{CullFace: CullFront}

	// RasterizerStateCullCounterClockwise culls counter-clockwise faces.
	RasterizerStateCullCounterClockwise = RasterizerStateDescription{CullFace: CullBack}

	// RasterizerStateWireframe rasterizes both faces as wireframe.
	RasterizerStateWireframe = RasterizerStateDescription{CullFace: CullNone, FillMode: FillWireframe}
)

// RasterizerState is an immutable compiled rasterizer configuration.
type RasterizerState interface {
	Resource

	// Description returns the description the state was created from.
	Description() RasterizerStateDescription
}

// BlendFactor is a source or destination blend factor.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDestColor
	BlendOneMinusDestColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDestAlpha
	BlendOneMinusDestAlpha
)

// BlendOperation combines the weighted source and destination values.
type BlendOperation uint8

const (
	BlendOpAdd BlendOperation = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// ColorWriteMask selects the channels a blend attachment writes.
type ColorWriteMask uint8

const (
	ColorWriteRed ColorWriteMask = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	// ColorWriteAll writes every channel.
	ColorWriteAll = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

// BlendStateDescription describes a blend state object applied to every
// color target of the bound framebuffer.
type BlendStateDescription struct {
	// Enabled turns blending on.
	Enabled bool

	// Source and Destination weight the color channels.
	Source      BlendFactor
	Destination BlendFactor

	// Operation combines the weighted color values.
	Operation BlendOperation

	// SourceAlpha and DestinationAlpha weight the alpha channel.
	SourceAlpha      BlendFactor
	DestinationAlpha BlendFactor

	// AlphaOperation combines the weighted alpha values.
	AlphaOperation BlendOperation

	// WriteMask selects which channels are written. The zero value
	// writes nothing; use ColorWriteAll for normal rendering.
	WriteMask ColorWriteMask
}

// Blend state presets.
var (
	// BlendStateDisabled writes source values unblended.
	BlendStateDisabled = BlendStateDescription{
		Source: BlendOne, Destination: BlendZero,
		SourceAlpha: BlendOne, DestinationAlpha: BlendZero,
		WriteMask: ColorWriteAll,
	}

	// BlendStateAlphaBlend is premultiplied-alpha blending.
	BlendStateAlphaBlend = BlendStateDescription{
		Enabled: true,
		Source:  BlendOne, Destination: BlendOneMinusSrcAlpha,
		SourceAlpha: BlendOne, DestinationAlpha: BlendOneMinusSrcAlpha,
		WriteMask: ColorWriteAll,
	}

	// BlendStateNonPremultiplied blends straight-alpha source colors.
	BlendStateNonPremultiplied = BlendStateDescription{
		Enabled: true,
		Source:  BlendSrcAlpha, Destination: BlendOneMinusSrcAlpha,
		SourceAlpha: BlendSrcAlpha, DestinationAlpha: BlendOneMinusSrcAlpha,
		WriteMask: ColorWriteAll,
	}

	// BlendStateAdditive accumulates source into destination.
	BlendStateAdditive = BlendStateDescription{
		Enabled: true,
		Source:  BlendSrcAlpha, Destination: BlendOne,
		SourceAlpha: BlendSrcAlpha, DestinationAlpha: BlendOne,
		WriteMask: ColorWriteAll,
	}
)

// BlendState is an immutable compiled blend configuration.
type BlendState interface {
	Resource

	// Description returns the description the state was created from.
	Description() BlendStateDescription
}

// StencilOp is the action taken on a stencil value.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrementClamp
	StencilDecrementClamp
	StencilInvert
	StencilIncrementWrap
	StencilDecrementWrap
)

// StencilFace describes the stencil behavior for one triangle facing.
type StencilFace struct {
	// StencilFail runs when the stencil test fails.
	StencilFail StencilOp

	// DepthFail runs when the stencil test passes but the depth test
	// fails.
	DepthFail StencilOp

	// Pass runs when both tests pass.
	Pass StencilOp

	// Func is the stencil comparison function.
	Func ComparisonFunc
}

// DepthStencilStateDescription describes a depth-stencil state object.
type DepthStencilStateDescription struct {
	// DepthEnabled turns on the depth test.
	DepthEnabled bool

	// DepthWrite permits writes to the depth plane.
	DepthWrite bool

	// DepthFunc is the depth comparison function.
	DepthFunc ComparisonFunc

	// StencilEnabled turns on the stencil test.
	StencilEnabled bool

	// StencilReadMask and StencilWriteMask mask the stencil planes.
	StencilReadMask  uint8
	StencilWriteMask uint8

	// Front and Back configure the two facings.
	Front StencilFace
	Back  StencilFace
}

// Depth-stencil presets.
var (
	// DepthStencilStateDisabled performs no depth or stencil testing.
	DepthStencilStateDisabled = DepthStencilStateDescription{}

	// DepthStencilStateLessEqual passes fragments at or in front of the
	// stored depth and writes depth.
	DepthStencilStateLessEqual = DepthStencilStateDescription{
		DepthEnabled: true,
		DepthWrite:   true,
		DepthFunc:    ComparisonLessEqual,
	}

	// DepthStencilStateReadOnly tests depth without writing it.
	DepthStencilStateReadOnly = DepthStencilStateDescription{
		DepthEnabled: true,
		DepthFunc:    ComparisonLessEqual,
	}
)

// DepthStencilState is an immutable compiled depth-stencil
// configuration.
type DepthStencilState interface {
	Resource

	// Description returns the description the state was created from.
	Description() DepthStencilStateDescription
}
