package pie

import "image"

// GraphicsAPI identifies a native rendering backend.
type GraphicsAPI uint8

const (
	// APINull is a headless backend with a CPU-side default render
	// target. No native API is touched; useful for tests and servers.
	APINull GraphicsAPI = iota

	// APIVulkan is the Vulkan backend.
	APIVulkan

	// APID3D11 is the Direct3D 11 backend (Windows only).
	APID3D11

	// APIOpenGL is the OpenGL 3.3 core backend.
	APIOpenGL

	// APIWebGPU is the WebGPU backend, running on the pure Go
	// gogpu/wgpu implementation.
	APIWebGPU
)

// String returns the friendly name of the API.
func (a GraphicsAPI) String() string {
	switch a {
	case APINull:
		return "Null"
	case APIVulkan:
		return "Vulkan"
	case APID3D11:
		return "Direct3D 11"
	case APIOpenGL:
		return "OpenGL 3.3"
	case APIWebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// AdapterType classifies the physical device backing an adapter.
type AdapterType uint8

const (
	AdapterTypeUnknown AdapterType = iota
	AdapterTypeDiscrete
	AdapterTypeIntegrated
	AdapterTypeSoftware
)

// Adapter describes the physical device a Device was created on.
type Adapter struct {
	// Name is the adapter name (e.g. "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the adapter vendor, when the backend reports one.
	Vendor string
	// Type is the kind of device (discrete, integrated, software).
	Type AdapterType
}

// GraphicsDeviceOptions configures device creation. The zero value
// requests a non-debug device with an RGBA8 color buffer and no depth
// buffer.
type GraphicsDeviceOptions struct {
	// Debug enables the backend's validation/debug layer. If the layer
	// is requested but unavailable on the host, device creation
	// downgrades to non-debug mode and logs a warning instead of
	// failing.
	Debug bool

	// ColorBufferFormat is the pixel format of the default color
	// target. The zero value selects FormatR8G8B8A8UNorm.
	ColorBufferFormat Format

	// DepthStencilBufferFormat is the format of the default
	// depth-stencil target. FormatUnknown (the zero value) creates no
	// depth buffer.
	DepthStencilBufferFormat Format
}

// DeviceOption mutates GraphicsDeviceOptions during device creation.
//
// Example:
//
//	d, err := backend.NewDevice(pie.APIVulkan, surface,
//	    pie.WithDebug(), pie.WithDepthStencilFormat(pie.FormatD24UNormS8UInt))
type DeviceOption func(*GraphicsDeviceOptions)

// WithDebug enables the backend validation/debug layer.
func WithDebug() DeviceOption {
	return func(o *GraphicsDeviceOptions) { o.Debug = true }
}

// WithColorFormat sets the pixel format of the default color target.
func WithColorFormat(f Format) DeviceOption {
	return func(o *GraphicsDeviceOptions) { o.ColorBufferFormat = f }
}

// WithDepthStencilFormat sets the format of the default depth-stencil
// target. Pass FormatUnknown for no depth buffer.
func WithDepthStencilFormat(f Format) DeviceOption {
	return func(o *GraphicsDeviceOptions) { o.DepthStencilBufferFormat = f }
}

// DefaultOptions returns the options described by the zero value with
// the color format resolved, then applies opts in order.
func DefaultOptions(opts ...DeviceOption) *GraphicsDeviceOptions {
	o := &GraphicsDeviceOptions{
		ColorBufferFormat: FormatR8G8B8A8UNorm,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Device is the single entry point for all rendering operations. One
// Device exists per window/surface; it owns the native device, context
// and swapchain handles, the default render targets, and the currently
// bound state.
//
// All methods must be called from one thread. Binding setters issue the
// native bind immediately; invalid slot indices or capability
// violations are reported by the backend's own validation and may be
// fatal in non-debug mode.
type Device interface {
	// API reports which backend the device runs on.
	API() GraphicsAPI

	// Adapter describes the physical device in use.
	Adapter() Adapter

	// Viewport returns the current viewport rectangle in framebuffer
	// pixel coordinates.
	Viewport() image.Rectangle

	// SetViewport sets the viewport rectangle. Out-of-range values are
	// passed through to the backend, which may clamp or fail.
	SetViewport(rect image.Rectangle)

	// Scissor returns the current scissor rectangle.
	Scissor() image.Rectangle

	// SetScissor sets the scissor rectangle.
	SetScissor(rect image.Rectangle)

	// CreateBuffer creates a buffer of the given byte size with
	// undefined contents. Dynamic buffers permit CPU-side updates and
	// mapping for their whole lifetime; non-dynamic buffers are
	// GPU-optimized and reject updates.
	CreateBuffer(typ BufferType, sizeInBytes uint32, dynamic bool) (Buffer, error)

	// CreateBufferData creates a buffer initialized with data. The
	// buffer size is len(data) bytes; the data is copied.
	CreateBufferData(typ BufferType, data []byte, dynamic bool) (Buffer, error)

	// CreateTexture creates a texture. data holds the pixels of mip
	// level 0 of every array layer, tightly packed; pass nil to leave
	// contents undefined.
	CreateTexture(desc TextureDescription, data []byte) (Texture, error)

	// CreateShader compiles and links a shader program from one or more
	// stage attachments, applying the given specialization constants at
	// compile/link time.
	CreateShader(attachments []ShaderAttachment, constants []SpecializationConstant) (Shader, error)

	// CreateFramebuffer creates a framebuffer from existing texture
	// attachments. The framebuffer owns only view handles, never pixel
	// data; the textures must outlive it.
	CreateFramebuffer(attachments ...FramebufferAttachment) (Framebuffer, error)

	// CreateRasterizerState compiles an immutable rasterizer state
	// object from desc.
	CreateRasterizerState(desc RasterizerStateDescription) (RasterizerState, error)

	// CreateBlendState compiles an immutable blend state object.
	CreateBlendState(desc BlendStateDescription) (BlendState, error)

	// CreateDepthStencilState compiles an immutable depth-stencil state
	// object.
	CreateDepthStencilState(desc DepthStencilStateDescription) (DepthStencilState, error)

	// CreateSamplerState compiles an immutable sampler state object.
	CreateSamplerState(desc SamplerStateDescription) (SamplerState, error)

	// CreateInputLayout builds a vertex input layout from attribute
	// descriptions, in attribute-location order.
	CreateInputLayout(descriptions ...InputLayoutDescription) (InputLayout, error)

	// UpdateBuffer replaces sizeInBytes(data) bytes of buf starting at
	// offsetInBytes. buf must be dynamic.
	UpdateBuffer(buf Buffer, offsetInBytes uint32, data []byte) error

	// UpdateTexture replaces the texel region (x, y, z, width, height,
	// depth) of the given mip level and array index. data is tightly
	// packed in the texture's format.
	UpdateTexture(tex Texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error

	// MapResource grants direct CPU access to a dynamic resource's
	// backing memory. The returned slice is valid until UnmapResource.
	// Mapping must not overlap a draw that references the resource.
	MapResource(res MappableResource, mode MapMode) ([]byte, error)

	// UnmapResource releases a mapping obtained from MapResource.
	UnmapResource(res MappableResource) error

	// SetShader binds the shader program for subsequent draws.
	SetShader(s Shader)

	// SetTexture binds a texture and sampler pair to a shader slot.
	SetTexture(slot uint32, tex Texture, sampler SamplerState)

	// SetRasterizerState binds a rasterizer state object.
	SetRasterizerState(state RasterizerState)

	// SetBlendState binds a blend state object.
	SetBlendState(state BlendState)

	// SetDepthStencilState binds a depth-stencil state object with the
	// given stencil reference value.
	SetDepthStencilState(state DepthStencilState, stencilRef uint32)

	// SetPrimitiveType sets the primitive topology for draws.
	SetPrimitiveType(typ PrimitiveType)

	// SetVertexBuffer binds a vertex buffer to an input slot with the
	// given per-vertex stride and input layout.
	SetVertexBuffer(slot uint32, buf Buffer, stride uint32, layout InputLayout)

	// SetIndexBuffer binds the index buffer and its element format.
	SetIndexBuffer(buf Buffer, format IndexFormat)

	// SetUniformBuffer binds a uniform buffer to a shader binding slot.
	SetUniformBuffer(slot uint32, buf Buffer)

	// SetFramebuffer replaces the current render-target set. Passing
	// nil restores the swapchain's default color and depth-stencil
	// targets.
	SetFramebuffer(fb Framebuffer)

	// ClearColorBuffer clears every color target of the current
	// framebuffer to the given normalized color.
	ClearColorBuffer(r, g, b, a float32)

	// ClearDepthStencilBuffer clears the depth and/or stencil planes of
	// the current framebuffer to the given values.
	ClearDepthStencilBuffer(flags ClearFlags, depth float32, stencil uint8)

	// Draw issues a non-indexed draw of vertexCount vertices.
	Draw(vertexCount uint32)

	// DrawIndexed issues an indexed draw of indexCount indices.
	DrawIndexed(indexCount uint32)

	// DrawInstanced issues instanceCount instances of a non-indexed
	// draw of vertexCount vertices.
	DrawInstanced(vertexCount, instanceCount uint32)

	// DrawIndexedInstanced issues instanceCount instances of an indexed
	// draw of indexCount indices.
	DrawIndexedInstanced(indexCount, instanceCount uint32)

	// Dispatch issues a compute dispatch of the given workgroup counts
	// using the currently bound compute shader.
	Dispatch(groupCountX, groupCountY, groupCountZ uint32)

	// Present presents the swapchain. swapInterval 0 presents
	// immediately (tearing allowed where the backend supports it); 1
	// synchronizes to vertical blank. Present resets the per-frame
	// metrics after presenting.
	Present(swapInterval int) error

	// ResizeSwapchain flushes in-flight work, releases the old target
	// views, recreates the swapchain buffers and default depth-stencil
	// target at the new size, and rebinds the default framebuffer. A
	// resize failure is device-fatal.
	ResizeSwapchain(width, height int) error

	// Flush submits all pending native work without presenting.
	Flush() error

	// GenerateMipmaps populates the mip chain of a color-usage texture
	// from its level 0 contents.
	GenerateMipmaps(tex Texture) error

	// Metrics returns a snapshot of the per-frame metrics counters.
	Metrics() Metrics

	// SwapchainSize reports the current presentable surface size.
	SwapchainSize() (width, height int)

	// Dispose tears down every device-owned native handle: the default
	// render targets, swapchain, context, and device. Resources created
	// by the caller are not disposed. Dispose must be called exactly
	// once, after all per-resource Dispose calls.
	Dispose()
}
