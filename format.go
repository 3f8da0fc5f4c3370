package pie

// Format is a pixel format for textures and the default render targets.
type Format uint8

const (
	// FormatUnknown is no format. As a depth-stencil buffer format it
	// means "no depth buffer".
	FormatUnknown Format = iota

	FormatR8UNorm
	FormatR8G8UNorm
	FormatR8G8B8A8UNorm
	FormatR8G8B8A8UNormSRGB
	FormatB8G8R8A8UNorm
	FormatB8G8R8A8UNormSRGB

	FormatR16Float
	FormatR16G16Float
	FormatR16G16B16A16Float

	FormatR32Float
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float

	FormatR32UInt
	FormatR32G32B32A32UInt

	FormatD16UNorm
	FormatD24UNormS8UInt
	FormatD32Float

	FormatBC1UNorm
	FormatBC2UNorm
	FormatBC3UNorm
)

// formatInfo carries the per-format layout facts the backends share.
type formatInfo struct {
	name       string
	bytes      uint32 // bytes per texel; per 4x4 block for BC formats
	depth      bool
	stencil    bool
	compressed bool
}

var formatInfos = [...]formatInfo{
	FormatUnknown:           {name: "Unknown"},
	FormatR8UNorm:           {name: "R8_UNorm", bytes: 1},
	FormatR8G8UNorm:         {name: "R8G8_UNorm", bytes: 2},
	FormatR8G8B8A8UNorm:     {name: "R8G8B8A8_UNorm", bytes: 4},
	FormatR8G8B8A8UNormSRGB: {name: "R8G8B8A8_UNorm_SRGB", bytes: 4},
	FormatB8G8R8A8UNorm:     {name: "B8G8R8A8_UNorm", bytes: 4},
	FormatB8G8R8A8UNormSRGB: {name: "B8G8R8A8_UNorm_SRGB", bytes: 4},
	FormatR16Float:          {name: "R16_Float", bytes: 2},
	FormatR16G16Float:       {name: "R16G16_Float", bytes: 4},
	FormatR16G16B16A16Float: {name: "R16G16B16A16_Float", bytes: 8},
	FormatR32Float:          {name: "R32_Float", bytes: 4},
	FormatR32G32Float:       {name: "R32G32_Float", bytes: 8},
	FormatR32G32B32Float:    {name: "R32G32B32_Float", bytes: 12},
	FormatR32G32B32A32Float: {name: "R32G32B32A32_Float", bytes: 16},
	FormatR32UInt:           {name: "R32_UInt", bytes: 4},
	FormatR32G32B32A32UInt:  {name: "R32G32B32A32_UInt", bytes: 16},
	FormatD16UNorm:          {name: "D16_UNorm", bytes: 2, depth: true},
	FormatD24UNormS8UInt:    {name: "D24_UNorm_S8_UInt", bytes: 4, depth: true, stencil: true},
	FormatD32Float:          {name: "D32_Float", bytes: 4, depth: true},
	FormatBC1UNorm:          {name: "BC1_UNorm", bytes: 8, compressed: true},
	FormatBC2UNorm:          {name: "BC2_UNorm", bytes: 16, compressed: true},
	FormatBC3UNorm:          {name: "BC3_UNorm", bytes: 16, compressed: true},
}

// String returns the format name.
func (f Format) String() string {
	if int(f) >= len(formatInfos) {
		return "Unknown"
	}
	return formatInfos[f].name
}

// BytesPerTexel returns the byte size of one texel, or of one 4x4 block
// for block-compressed formats.
func (f Format) BytesPerTexel() uint32 {
	if int(f) >= len(formatInfos) {
		return 0
	}
	return formatInfos[f].bytes
}

// IsDepth reports whether the format carries a depth plane.
func (f Format) IsDepth() bool {
	return int(f) < len(formatInfos) && formatInfos[f].depth
}

// HasStencil reports whether the format carries a stencil plane.
func (f Format) HasStencil() bool {
	return int(f) < len(formatInfos) && formatInfos[f].stencil
}

// IsCompressed reports whether the format is block-compressed.
func (f Format) IsCompressed() bool {
	return int(f) < len(formatInfos) && formatInfos[f].compressed
}
