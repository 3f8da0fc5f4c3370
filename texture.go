package pie

// TextureType is the dimensionality of a texture.
type TextureType uint8

const (
	// TextureType2D is a two-dimensional texture, optionally an array.
	TextureType2D TextureType = iota

	// TextureType3D is a volume texture.
	TextureType3D

	// TextureTypeCube is a cube map with six faces per array element.
	TextureTypeCube
)

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint8

const (
	// TextureUsageShaderResource makes the texture bindable for
	// sampling in shaders.
	TextureUsageShaderResource TextureUsage = 1 << iota

	// TextureUsageFramebuffer makes the texture attachable to a
	// framebuffer as a color or depth-stencil target.
	TextureUsageFramebuffer

	// TextureUsageGenerateMips permits Device.GenerateMipmaps on the
	// texture. Implies a color format.
	TextureUsageGenerateMips
)

// TextureDescription describes a texture to create. Equality is
// structural: two descriptions with the same fields describe the same
// texture layout.
type TextureDescription struct {
	// Type is the texture dimensionality.
	Type TextureType

	// Width, Height, Depth are the level-0 extents in texels. Depth is
	// ignored for 2D and cube textures.
	Width  int
	Height int
	Depth  int

	// Format is the texel format.
	Format Format

	// MipLevels is the number of mip levels. 0 means the full chain
	// down to 1x1.
	MipLevels int

	// ArraySize is the number of array layers; at least 1.
	ArraySize int

	// Usage restricts how the texture may be bound.
	Usage TextureUsage

	// Dynamic permits CPU-side region updates via
	// Device.UpdateTexture and mapping.
	Dynamic bool
}

// NewTexture2D returns a description of a 2D shader-resource texture
// with a single array layer.
func NewTexture2D(width, height int, format Format, mipLevels int, dynamic bool) TextureDescription {
	return TextureDescription{
		Type:      TextureType2D,
		Width:     width,
		Height:    height,
		Format:    format,
		MipLevels: mipLevels,
		ArraySize: 1,
		Usage:     TextureUsageShaderResource,
		Dynamic:   dynamic,
	}
}

// ResolvedMipLevels returns MipLevels, replacing 0 with the size of the
// full mip chain for the description's extents.
func (d TextureDescription) ResolvedMipLevels() int {
	if d.MipLevels > 0 {
		return d.MipLevels
	}
	levels := 1
	w, h := d.Width, d.Height
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		levels++
	}
	return levels
}

// Texture is a backend image resource. Region updates go through
// Device.UpdateTexture; color-usage textures additionally support
// Device.GenerateMipmaps.
type Texture interface {
	MappableResource

	// Description returns the description the texture was created from,
	// with MipLevels resolved.
	Description() TextureDescription
}
