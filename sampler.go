package pie

// TextureFilter selects texel filtering for minification, magnification
// and mip selection.
type TextureFilter uint8

const (
	// FilterMinMagMipPoint is point filtering everywhere.
	FilterMinMagMipPoint TextureFilter = iota

	// FilterMinMagPointMipLinear is point min/mag, linear between mips.
	FilterMinMagPointMipLinear

	// FilterMinMagMipLinear is linear filtering everywhere.
	FilterMinMagMipLinear

	// FilterMinMagLinearMipPoint is linear min/mag, point between mips.
	FilterMinMagLinearMipPoint

	// FilterAnisotropic enables anisotropic filtering using
	// SamplerStateDescription.MaxAnisotropy.
	FilterAnisotropic
)

// TextureAddress controls sampling outside [0, 1) coordinates.
type TextureAddress uint8

const (
	// AddressRepeat tiles the texture.
	AddressRepeat TextureAddress = iota

	// AddressMirror tiles with alternate reflections.
	AddressMirror

	// AddressClampToEdge repeats the edge texel.
	AddressClampToEdge

	// AddressClampToBorder samples BorderColor outside the texture.
	AddressClampToBorder
)

// SamplerStateDescription describes a sampler state object.
type SamplerStateDescription struct {
	// Filter is the filtering mode.
	Filter TextureFilter

	// AddressU, AddressV, AddressW control wrapping per axis.
	AddressU TextureAddress
	AddressV TextureAddress
	AddressW TextureAddress

	// MaxAnisotropy bounds anisotropic filtering; used only with
	// FilterAnisotropic.
	MaxAnisotropy uint32

	// MinLOD and MaxLOD clamp mip selection.
	MinLOD float32
	MaxLOD float32

	// BorderColor is the RGBA color sampled by AddressClampToBorder.
	BorderColor [4]float32
}

// Sampler presets. MaxLOD is unbounded; backends clamp to their own
// limits.
var (
	// SamplerStateLinearWrap filters linearly and tiles all axes.
	SamplerStateLinearWrap = SamplerStateDescription{
		Filter:   FilterMinMagMipLinear,
		AddressU: AddressRepeat, AddressV: AddressRepeat, AddressW: AddressRepeat,
		MaxLOD: 1000,
	}

	// SamplerStateLinearClamp filters linearly and clamps all axes.
	SamplerStateLinearClamp = SamplerStateDescription{
		Filter:   FilterMinMagMipLinear,
		AddressU: AddressClampToEdge, AddressV: AddressClampToEdge, AddressW: AddressClampToEdge,
		MaxLOD: 1000,
	}

	// SamplerStatePointWrap point-filters and tiles all axes.
	SamplerStatePointWrap = SamplerStateDescription{
		Filter:   FilterMinMagMipPoint,
		AddressU: AddressRepeat, AddressV: AddressRepeat, AddressW: AddressRepeat,
		MaxLOD: 1000,
	}

	// SamplerStatePointClamp point-filters and clamps all axes.
	SamplerStatePointClamp = SamplerStateDescription{
		Filter:   FilterMinMagMipPoint,
		AddressU: AddressClampToEdge, AddressV: AddressClampToEdge, AddressW: AddressClampToEdge,
		MaxLOD: 1000,
	}

	// SamplerStateAnisotropicWrap uses 16x anisotropy and tiles.
	SamplerStateAnisotropicWrap = SamplerStateDescription{
		Filter:        FilterAnisotropic,
		AddressU:      AddressRepeat,
		AddressV:      AddressRepeat,
		AddressW:      AddressRepeat,
		MaxAnisotropy: 16,
		MaxLOD:        1000,
	}
)

// SamplerState is an immutable compiled sampler configuration.
type SamplerState interface {
	Resource

	// Description returns the description the state was created from.
	Description() SamplerStateDescription
}
