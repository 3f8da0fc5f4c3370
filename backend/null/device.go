package null

import (
	"encoding/binary"
	"fmt"
	"image"
	"log/slog"
	"math"

	pie "github.com/IsometricSoftware/Pie"
)

// device implements pie.Device with CPU-side storage.
type device struct {
	opts   pie.GraphicsDeviceOptions
	width  int
	height int

	// Default render targets.
	backBuffer []byte
	depth      []float32
	stencil    []uint8

	viewport image.Rectangle
	scissor  image.Rectangle

	// Currently bound state; non-owning references kept for redundant
	// rebind elision, which is safe here because nothing observes the
	// native side.
	shader       *shader
	rasterizer   *rasterizerState
	blend        *blendState
	depthState   *depthStencilState
	stencilRef   uint32
	primitive    pie.PrimitiveType
	framebuffer  *framebuffer
	indexBuffer  *buffer
	indexFormat  pie.IndexFormat
	vertexSlots  map[uint32]*buffer
	uniformSlots map[uint32]*buffer
	textureSlots map[uint32]*texture

	metrics  pie.Metrics
	disposed bool
}

func newDevice(width, height int, opts *pie.GraphicsDeviceOptions) (*device, error) {
	switch opts.ColorBufferFormat {
	case pie.FormatR8G8B8A8UNorm, pie.FormatR8G8B8A8UNormSRGB,
		pie.FormatB8G8R8A8UNorm, pie.FormatB8G8R8A8UNormSRGB:
	default:
		return nil, fmt.Errorf("%w: color buffer format %s", pie.ErrUnsupportedFormat, opts.ColorBufferFormat)
	}
	if f := opts.DepthStencilBufferFormat; f != pie.FormatUnknown && !f.IsDepth() {
		return nil, fmt.Errorf("%w: depth buffer format %s", pie.ErrUnsupportedFormat, f)
	}
	if opts.Debug {
		// There is no validation layer to load; the null backend
		// validates unconditionally.
		pie.Logger().Warn("null: debug layer requested; null backend always validates")
	}

	d := &device{
		opts:         *opts,
		vertexSlots:  make(map[uint32]*buffer),
		uniformSlots: make(map[uint32]*buffer),
		textureSlots: make(map[uint32]*texture),
	}
	d.allocTargets(width, height)
	d.viewport = image.Rect(0, 0, width, height)
	d.scissor = image.Rect(0, 0, width, height)
	pie.Logger().Info("null: device created",
		slog.Int("width", width), slog.Int("height", height),
		slog.String("color", opts.ColorBufferFormat.String()))
	return d, nil
}

func (d *device) allocTargets(width, height int) {
	d.width, d.height = width, height
	d.backBuffer = make([]byte, width*height*int(d.opts.ColorBufferFormat.BytesPerTexel()))
	d.depth = nil
	d.stencil = nil
	if f := d.opts.DepthStencilBufferFormat; f != pie.FormatUnknown {
		d.depth = make([]float32, width*height)
		if f.HasStencil() {
			d.stencil = make([]uint8, width*height)
		}
	}
}

// BackBuffer returns the default color target's backing store, tightly
// packed in the device's color buffer format. Exposed for tests and
// headless readback.
func (d *device) BackBuffer() []byte { return d.backBuffer }

// DepthPlane returns the default depth plane, or nil when the device
// was created without a depth buffer.
func (d *device) DepthPlane() []float32 { return d.depth }

// StencilPlane returns the default stencil plane, or nil when the depth
// format has no stencil.
func (d *device) StencilPlane() []uint8 { return d.stencil }

var _ pie.Device = (*device)(nil)

func (d *device) API() pie.GraphicsAPI { return pie.APINull }

func (d *device) Adapter() pie.Adapter {
	return pie.Adapter{Name: "Null Device", Type: pie.AdapterTypeSoftware}
}

func (d *device) Viewport() image.Rectangle { return d.viewport }

func (d *device) SetViewport(rect image.Rectangle) { d.viewport = rect }

func (d *device) Scissor() image.Rectangle { return d.scissor }

func (d *device) SetScissor(rect image.Rectangle) { d.scissor = rect }

func (d *device) CreateBuffer(typ pie.BufferType, sizeInBytes uint32, dynamic bool) (pie.Buffer, error) {
	return &buffer{typ: typ, data: make([]byte, sizeInBytes), dynamic: dynamic}, nil
}

func (d *device) CreateBufferData(typ pie.BufferType, data []byte, dynamic bool) (pie.Buffer, error) {
	b := &buffer{typ: typ, data: make([]byte, len(data)), dynamic: dynamic}
	copy(b.data, data)
	return b, nil
}

func (d *device) CreateTexture(desc pie.TextureDescription, data []byte) (pie.Texture, error) {
	if desc.Width < 1 || desc.Height < 1 {
		return nil, fmt.Errorf("%w: texture extent %dx%d", pie.ErrResourceCreation, desc.Width, desc.Height)
	}
	if desc.Format == pie.FormatUnknown {
		return nil, fmt.Errorf("%w: texture format unknown", pie.ErrUnsupportedFormat)
	}
	t := newTexture(desc)
	if data != nil {
		// data covers level 0 of every layer, layer-major.
		layers := desc.ArraySize
		if layers < 1 {
			layers = 1
		}
		if desc.Type == pie.TextureTypeCube {
			layers *= 6
		}
		offset := 0
		for layer := 0; layer < layers && offset < len(data); layer++ {
			dst := t.level(0, uint32(layer))
			n := copy(dst, data[offset:])
			offset += n
		}
	}
	return t, nil
}

func (d *device) CreateShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (pie.Shader, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: shader needs at least one attachment", pie.ErrShaderCompile)
	}
	seen := make(map[pie.ShaderStage]bool, len(attachments))
	for _, a := range attachments {
		if seen[a.Stage] {
			return nil, fmt.Errorf("%w: duplicate %s attachment", pie.ErrShaderCompile, a.Stage)
		}
		seen[a.Stage] = true
		if a.Stage == pie.ShaderStageCompute && len(attachments) > 1 {
			return nil, fmt.Errorf("%w: compute attachment must be alone", pie.ErrShaderCompile)
		}
	}
	_ = constants // nothing to specialize without a compiler
	s := &shader{attachments: make([]pie.ShaderAttachment, len(attachments))}
	copy(s.attachments, attachments)
	return s, nil
}

func (d *device) CreateFramebuffer(attachments ...pie.FramebufferAttachment) (pie.Framebuffer, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: framebuffer needs at least one attachment", pie.ErrResourceCreation)
	}
	fb := &framebuffer{}
	for i, a := range attachments {
		t, ok := a.Texture.(*texture)
		if !ok || t.disposed {
			return nil, fmt.Errorf("%w: attachment %d", pie.ErrDisposed, i)
		}
		if t.desc.Usage&pie.TextureUsageFramebuffer == 0 {
			return nil, fmt.Errorf("%w: attachment %d lacks framebuffer usage", pie.ErrResourceCreation, i)
		}
		if t.desc.Format.IsCompressed() {
			return nil, fmt.Errorf("%w: attachment %d has block-compressed format %s",
				pie.ErrResourceCreation, i, t.desc.Format)
		}
		w, h, _ := mipExtent(t.desc, int(a.MipLevel))
		if fb.width == 0 {
			fb.width, fb.height = w, h
		}
		if t.desc.Format.IsDepth() {
			if fb.depthStencil != nil {
				return nil, fmt.Errorf("%w: multiple depth-stencil attachments", pie.ErrResourceCreation)
			}
			att := a
			fb.depthStencil = &att
		} else {
			fb.colors = append(fb.colors, a)
		}
	}
	return fb, nil
}

func (d *device) CreateRasterizerState(desc pie.RasterizerStateDescription) (pie.RasterizerState, error) {
	return &rasterizerState{desc: desc}, nil
}

func (d *device) CreateBlendState(desc pie.BlendStateDescription) (pie.BlendState, error) {
	return &blendState{desc: desc}, nil
}

func (d *device) CreateDepthStencilState(desc pie.DepthStencilStateDescription) (pie.DepthStencilState, error) {
	return &depthStencilState{desc: desc}, nil
}

func (d *device) CreateSamplerState(desc pie.SamplerStateDescription) (pie.SamplerState, error) {
	return &samplerState{desc: desc}, nil
}

func (d *device) CreateInputLayout(descriptions ...pie.InputLayoutDescription) (pie.InputLayout, error) {
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("%w: input layout needs at least one attribute", pie.ErrResourceCreation)
	}
	l := &inputLayout{descs: make([]pie.InputLayoutDescription, len(descriptions))}
	copy(l.descs, descriptions)
	return l, nil
}

func (d *device) UpdateBuffer(buf pie.Buffer, offsetInBytes uint32, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return pie.ErrNotMappable
	}
	if b.disposed {
		return pie.ErrDisposed
	}
	if !b.dynamic {
		return pie.ErrNotDynamic
	}
	if int(offsetInBytes)+len(data) > len(b.data) {
		return fmt.Errorf("%w: offset %d + %d bytes > buffer size %d",
			pie.ErrOutOfRange, offsetInBytes, len(data), len(b.data))
	}
	copy(b.data[offsetInBytes:], data)
	return nil
}

func (d *device) UpdateTexture(tex pie.Texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error {
	t, ok := tex.(*texture)
	if !ok {
		return pie.ErrNotMappable
	}
	if t.disposed {
		return pie.ErrDisposed
	}
	if !t.desc.Dynamic {
		return pie.ErrNotDynamic
	}
	dst := t.level(mipLevel, arrayIndex)
	if dst == nil {
		return fmt.Errorf("%w: mip %d layer %d", pie.ErrOutOfRange, mipLevel, arrayIndex)
	}
	lw, lh, ld := mipExtent(t.desc, int(mipLevel))
	if depth < 1 {
		depth = 1
	}
	if x < 0 || y < 0 || z < 0 || x+width > lw || y+height > lh || z+depth > ld {
		return fmt.Errorf("%w: region (%d,%d,%d)+(%dx%dx%d) exceeds %dx%dx%d",
			pie.ErrOutOfRange, x, y, z, width, height, depth, lw, lh, ld)
	}
	texel := int(t.desc.Format.BytesPerTexel())
	rowBytes := width * texel
	src := 0
	for dz := 0; dz < depth; dz++ {
		for dy := 0; dy < height; dy++ {
			off := (((z+dz)*lh+(y+dy))*lw + x) * texel
			if src+rowBytes > len(data) {
				return fmt.Errorf("%w: %d bytes for %d-byte region", pie.ErrOutOfRange, len(data), depth*height*rowBytes)
			}
			copy(dst[off:off+rowBytes], data[src:src+rowBytes])
			src += rowBytes
		}
	}
	return nil
}

func (d *device) MapResource(res pie.MappableResource, mode pie.MapMode) ([]byte, error) {
	switch r := res.(type) {
	case *buffer:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		if !r.dynamic && mode != pie.MapModeRead {
			return nil, pie.ErrNotDynamic
		}
		if r.mapped {
			return nil, pie.ErrAlreadyMapped
		}
		r.mapped = true
		return r.data, nil
	case *texture:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		if !r.desc.Dynamic && mode != pie.MapModeRead {
			return nil, pie.ErrNotDynamic
		}
		if r.mapped {
			return nil, pie.ErrAlreadyMapped
		}
		r.mapped = true
		return r.level(0, 0), nil
	default:
		return nil, pie.ErrNotMappable
	}
}

func (d *device) UnmapResource(res pie.MappableResource) error {
	switch r := res.(type) {
	case *buffer:
		if !r.mapped {
			return pie.ErrNotMapped
		}
		r.mapped = false
		return nil
	case *texture:
		if !r.mapped {
			return pie.ErrNotMapped
		}
		r.mapped = false
		return nil
	default:
		return pie.ErrNotMappable
	}
}

func (d *device) SetShader(s pie.Shader) {
	sh, _ := s.(*shader)
	if sh == d.shader {
		return
	}
	d.shader = sh
}

func (d *device) SetTexture(slot uint32, tex pie.Texture, sampler pie.SamplerState) {
	t, _ := tex.(*texture)
	if t == nil {
		delete(d.textureSlots, slot)
		return
	}
	d.textureSlots[slot] = t
}

func (d *device) SetRasterizerState(state pie.RasterizerState) {
	s, _ := state.(*rasterizerState)
	if s == d.rasterizer {
		return
	}
	d.rasterizer = s
}

func (d *device) SetBlendState(state pie.BlendState) {
	s, _ := state.(*blendState)
	if s == d.blend {
		return
	}
	d.blend = s
}

func (d *device) SetDepthStencilState(state pie.DepthStencilState, stencilRef uint32) {
	s, _ := state.(*depthStencilState)
	if s == d.depthState && stencilRef == d.stencilRef {
		return
	}
	d.depthState = s
	d.stencilRef = stencilRef
}

func (d *device) SetPrimitiveType(typ pie.PrimitiveType) { d.primitive = typ }

func (d *device) SetVertexBuffer(slot uint32, buf pie.Buffer, stride uint32, layout pie.InputLayout) {
	b, _ := buf.(*buffer)
	if b == nil {
		delete(d.vertexSlots, slot)
		return
	}
	d.vertexSlots[slot] = b
}

func (d *device) SetIndexBuffer(buf pie.Buffer, format pie.IndexFormat) {
	b, _ := buf.(*buffer)
	d.indexBuffer = b
	d.indexFormat = format
}

func (d *device) SetUniformBuffer(slot uint32, buf pie.Buffer) {
	b, _ := buf.(*buffer)
	if b == nil {
		delete(d.uniformSlots, slot)
		return
	}
	d.uniformSlots[slot] = b
}

func (d *device) SetFramebuffer(fb pie.Framebuffer) {
	f, _ := fb.(*framebuffer)
	d.framebuffer = f
}

func (d *device) ClearColorBuffer(r, g, b, a float32) {
	if d.framebuffer == nil {
		fillTexels(d.backBuffer, colorTexel(d.opts.ColorBufferFormat, r, g, b, a))
		return
	}
	for _, att := range d.framebuffer.colors {
		t := att.Texture.(*texture)
		dst := t.level(att.MipLevel, att.ArrayIndex)
		fillTexels(dst, colorTexel(t.desc.Format, r, g, b, a))
	}
}

func (d *device) ClearDepthStencilBuffer(flags pie.ClearFlags, depth float32, stencil uint8) {
	if d.framebuffer != nil {
		att := d.framebuffer.depthStencil
		if att == nil {
			return
		}
		t := att.Texture.(*texture)
		clearDepthTexels(t.level(att.MipLevel, att.ArrayIndex), t.desc.Format, flags, depth, stencil)
		return
	}
	if flags&pie.ClearDepth != 0 {
		for i := range d.depth {
			d.depth[i] = depth
		}
	}
	if flags&pie.ClearStencil != 0 {
		for i := range d.stencil {
			d.stencil[i] = stencil
		}
	}
}

func (d *device) Draw(vertexCount uint32) {
	d.metrics.AddDraw(vertexCount, 1)
}

func (d *device) DrawIndexed(indexCount uint32) {
	d.metrics.AddDraw(indexCount, 1)
}

func (d *device) DrawInstanced(vertexCount, instanceCount uint32) {
	d.metrics.AddDraw(vertexCount, instanceCount)
}

func (d *device) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	d.metrics.AddDraw(indexCount, instanceCount)
}

func (d *device) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {}

func (d *device) Present(swapInterval int) error {
	if d.disposed {
		return pie.ErrDisposed
	}
	d.metrics.Reset()
	return nil
}

func (d *device) ResizeSwapchain(width, height int) error {
	if d.disposed {
		return pie.ErrDisposed
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: size %dx%d", pie.ErrSwapchainCreation, width, height)
	}
	d.allocTargets(width, height)
	d.viewport = image.Rect(0, 0, width, height)
	d.scissor = image.Rect(0, 0, width, height)
	return nil
}

func (d *device) Flush() error { return nil }

func (d *device) GenerateMipmaps(tex pie.Texture) error {
	t, ok := tex.(*texture)
	if !ok || t.disposed {
		return pie.ErrDisposed
	}
	if t.desc.Usage&pie.TextureUsageGenerateMips == 0 {
		return fmt.Errorf("%w: texture lacks mip generation usage", pie.ErrResourceCreation)
	}
	if t.desc.Format.BytesPerTexel() != 4 || t.desc.Format.IsDepth() || t.desc.Format.IsCompressed() {
		return fmt.Errorf("%w: mip generation for %s", pie.ErrUnsupportedFormat, t.desc.Format)
	}
	layers := t.desc.ArraySize
	if t.desc.Type == pie.TextureTypeCube {
		layers *= 6
	}
	for layer := 0; layer < layers; layer++ {
		for mip := 1; mip < t.desc.MipLevels; mip++ {
			sw, sh, _ := mipExtent(t.desc, mip-1)
			dw, dh, _ := mipExtent(t.desc, mip)
			downsample(t.level(uint32(mip), uint32(layer)), t.level(uint32(mip-1), uint32(layer)), dw, dh, sw, sh)
		}
	}
	return nil
}

func (d *device) Metrics() pie.Metrics { return d.metrics }

func (d *device) SwapchainSize() (int, int) { return d.width, d.height }

func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.backBuffer = nil
	d.depth = nil
	d.stencil = nil
	pie.Logger().Info("null: device disposed")
}

// colorTexel packs a normalized color into one texel of the given
// color format, or returns nil for formats with no CPU packing.
func colorTexel(f pie.Format, r, g, b, a float32) []byte {
	switch f {
	case pie.FormatR8UNorm:
		return []byte{unorm8(r)}
	case pie.FormatR8G8UNorm:
		return []byte{unorm8(r), unorm8(g)}
	case pie.FormatR8G8B8A8UNorm, pie.FormatR8G8B8A8UNormSRGB:
		return []byte{unorm8(r), unorm8(g), unorm8(b), unorm8(a)}
	case pie.FormatB8G8R8A8UNorm, pie.FormatB8G8R8A8UNormSRGB:
		return []byte{unorm8(b), unorm8(g), unorm8(r), unorm8(a)}
	case pie.FormatR16Float:
		return putFloat16s(r)
	case pie.FormatR16G16Float:
		return putFloat16s(r, g)
	case pie.FormatR16G16B16A16Float:
		return putFloat16s(r, g, b, a)
	case pie.FormatR32Float:
		return putUint32s(math.Float32bits(r))
	case pie.FormatR32G32Float:
		return putUint32s(math.Float32bits(r), math.Float32bits(g))
	case pie.FormatR32G32B32Float:
		return putUint32s(math.Float32bits(r), math.Float32bits(g), math.Float32bits(b))
	case pie.FormatR32G32B32A32Float:
		return putUint32s(math.Float32bits(r), math.Float32bits(g),
			math.Float32bits(b), math.Float32bits(a))
	case pie.FormatR32UInt:
		return putUint32s(uint32(r))
	case pie.FormatR32G32B32A32UInt:
		return putUint32s(uint32(r), uint32(g), uint32(b), uint32(a))
	default:
		return nil
	}
}

// clearDepthTexels packs the clear values into a raw depth-stencil
// plane. The flags select which aspect of a packed format is written;
// the other aspect's bits are preserved.
func clearDepthTexels(dst []byte, f pie.Format, flags pie.ClearFlags, depth float32, stencil uint8) {
	switch f {
	case pie.FormatD16UNorm:
		if flags&pie.ClearDepth == 0 {
			return
		}
		v := uint16(clamp01(depth)*0xffff + 0.5)
		for i := 0; i+2 <= len(dst); i += 2 {
			binary.LittleEndian.PutUint16(dst[i:], v)
		}
	case pie.FormatD24UNormS8UInt:
		d24 := uint32(math.Min(float64(clamp01(depth))*0xffffff+0.5, 0xffffff))
		for i := 0; i+4 <= len(dst); i += 4 {
			v := binary.LittleEndian.Uint32(dst[i:])
			if flags&pie.ClearDepth != 0 {
				v = v&0xff000000 | d24
			}
			if flags&pie.ClearStencil != 0 {
				v = v&0x00ffffff | uint32(stencil)<<24
			}
			binary.LittleEndian.PutUint32(dst[i:], v)
		}
	case pie.FormatD32Float:
		if flags&pie.ClearDepth == 0 {
			return
		}
		v := math.Float32bits(depth)
		for i := 0; i+4 <= len(dst); i += 4 {
			binary.LittleEndian.PutUint32(dst[i:], v)
		}
	}
}

func unorm8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func clamp01(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// float16bits converts to IEEE 754 half-precision, truncating the
// mantissa and flushing denormals to zero.
func float16bits(v float32) uint16 {
	b := math.Float32bits(v)
	sign := uint16(b>>16) & 0x8000
	exp := int32(b>>23&0xff) - 127 + 15
	switch {
	case exp <= 0:
		return sign
	case exp >= 31:
		return sign | 0x7c00
	}
	return sign | uint16(exp)<<10 | uint16(b>>13&0x3ff)
}

func putFloat16s(vals ...float32) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[i*2:], float16bits(v))
	}
	return out
}

func putUint32s(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func fillTexels(dst, texel []byte) {
	n := len(texel)
	if n == 0 {
		return
	}
	for i := 0; i+n <= len(dst); i += n {
		copy(dst[i:i+n], texel)
	}
}

// downsample box-filters a 4-byte-per-texel image into the next mip.
func downsample(dst, src []byte, dw, dh, sw, sh int) {
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := x*2, y*2
			sx2, sy2 := min(sx+1, sw-1), min(sy+1, sh-1)
			for c := 0; c < 4; c++ {
				sum := int(src[(sy*sw+sx)*4+c]) +
					int(src[(sy*sw+sx2)*4+c]) +
					int(src[(sy2*sw+sx)*4+c]) +
					int(src[(sy2*sw+sx2)*4+c])
				dst[(y*dw+x)*4+c] = byte(sum / 4)
			}
		}
	}
}
