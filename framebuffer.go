package pie

// FramebufferAttachment binds one texture subresource as a render
// target.
type FramebufferAttachment struct {
	// Texture is the attached texture. It must have been created with
	// TextureUsageFramebuffer and must outlive the framebuffer.
	Texture Texture

	// MipLevel is the attached mip level.
	MipLevel uint32

	// ArrayIndex is the attached array layer (or cube face).
	ArrayIndex uint32
}

// Framebuffer is an ordered set of color attachments plus an optional
// depth-stencil attachment, used as draw targets in place of the
// swapchain's default targets. A framebuffer owns only view handles
// into existing textures, never pixel data. Whether an attachment is a
// color or the depth-stencil target is decided by its texture's format.
type Framebuffer interface {
	Resource

	// Size returns the attachment extents in pixels.
	Size() (width, height int)
}
