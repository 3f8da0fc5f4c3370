package opengl

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

// device implements pie.Device on a current OpenGL 3.3 core context.
// Binding setters issue the GL calls immediately; vertex attribute
// pointers are the one piece of state flushed lazily at draw time,
// because they need buffer, stride and layout together.
type device struct {
	surface *backend.Surface
	adapter pie.Adapter

	vao uint32

	viewport image.Rectangle
	scissor  image.Rectangle

	boundShader       *shader
	boundLayout       *inputLayout
	primitive         pie.PrimitiveType
	boundRasterizer   pie.RasterizerStateDescription
	boundDepthStencil pie.DepthStencilStateDescription
	stencilRef        uint32
	colorMask         pie.ColorWriteMask
	depthWrite        bool
	vertexBuffers     [8]*buffer
	vertexStrides     [8]uint32
	indexBuffer       *buffer
	indexFormat       pie.IndexFormat
	boundFramebuffer  *framebuffer
	attribsDirty      bool

	mappings map[pie.MappableResource][]byte

	metrics  pie.Metrics
	width    int
	height   int
	disposed bool
}

var _ pie.Device = (*device)(nil)

func (d *device) API() pie.GraphicsAPI { return pie.APIOpenGL }

func (d *device) Adapter() pie.Adapter { return d.adapter }

// targetHeight is the height of the current render target, needed to
// flip rectangles into GL's bottom-left origin.
func (d *device) targetHeight() int {
	if d.boundFramebuffer != nil {
		return d.boundFramebuffer.height
	}
	return d.height
}

func (d *device) Viewport() image.Rectangle { return d.viewport }

func (d *device) SetViewport(rect image.Rectangle) {
	d.viewport = rect
	flipped := d.targetHeight() - rect.Max.Y
	gl.Viewport(int32(rect.Min.X), int32(flipped), int32(rect.Dx()), int32(rect.Dy()))
}

func (d *device) Scissor() image.Rectangle { return d.scissor }

func (d *device) SetScissor(rect image.Rectangle) {
	d.scissor = rect
	flipped := d.targetHeight() - rect.Max.Y
	gl.Scissor(int32(rect.Min.X), int32(flipped), int32(rect.Dx()), int32(rect.Dy()))
}

func (d *device) CreateBuffer(typ pie.BufferType, sizeInBytes uint32, dynamic bool) (pie.Buffer, error) {
	return newBuffer(typ, sizeInBytes, dynamic, nil)
}

func (d *device) CreateBufferData(typ pie.BufferType, data []byte, dynamic bool) (pie.Buffer, error) {
	return newBuffer(typ, uint32(len(data)), dynamic, data)
}

func (d *device) CreateTexture(desc pie.TextureDescription, data []byte) (pie.Texture, error) {
	return newTexture(desc, data)
}

func (d *device) CreateShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (pie.Shader, error) {
	return newShader(attachments, constants)
}

func (d *device) CreateFramebuffer(attachments ...pie.FramebufferAttachment) (pie.Framebuffer, error) {
	fb, err := newFramebuffer(attachments)
	// Creation binds the new framebuffer to check completeness; restore
	// the active one.
	d.rebindFramebuffer()
	return fb, err
}

func (d *device) rebindFramebuffer() {
	if d.boundFramebuffer != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFramebuffer.handle)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
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
	return newSampler(desc)
}

func (d *device) CreateInputLayout(descriptions ...pie.InputLayoutDescription) (pie.InputLayout, error) {
	return &inputLayout{descs: descriptions}, nil
}

func (d *device) UpdateBuffer(buf pie.Buffer, offsetInBytes uint32, data []byte) error {
	b := buf.(*buffer)
	if b.disposed {
		return pie.ErrDisposed
	}
	if !b.dynamic {
		return pie.ErrNotDynamic
	}
	if offsetInBytes+uint32(len(data)) > b.size {
		return fmt.Errorf("%w: write of %d bytes at %d exceeds buffer size %d",
			pie.ErrOutOfRange, len(data), offsetInBytes, b.size)
	}
	gl.BindBuffer(b.target, b.handle)
	gl.BufferSubData(b.target, int(offsetInBytes), len(data), gl.Ptr(data))
	return nil
}

func (d *device) UpdateTexture(tex pie.Texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error {
	t := tex.(*texture)
	if t.disposed {
		return pie.ErrDisposed
	}
	if !t.desc.Dynamic {
		return pie.ErrNotDynamic
	}
	if int(mipLevel) >= t.desc.MipLevels {
		return pie.ErrOutOfRange
	}
	_, format, typ := glFormat(t.desc.Format)
	gl.BindTexture(t.target, t.handle)
	switch t.target {
	case gl.TEXTURE_2D:
		gl.TexSubImage2D(gl.TEXTURE_2D, int32(mipLevel), int32(x), int32(y),
			int32(width), int32(height), format, typ, gl.Ptr(data))
	case gl.TEXTURE_CUBE_MAP:
		gl.TexSubImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+arrayIndex, int32(mipLevel),
			int32(x), int32(y), int32(width), int32(height), format, typ, gl.Ptr(data))
	case gl.TEXTURE_3D:
		gl.TexSubImage3D(gl.TEXTURE_3D, int32(mipLevel), int32(x), int32(y), int32(z),
			int32(width), int32(height), int32(max(depth, 1)), format, typ, gl.Ptr(data))
	case gl.TEXTURE_2D_ARRAY:
		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, int32(mipLevel), int32(x), int32(y), int32(arrayIndex),
			int32(width), int32(height), 1, format, typ, gl.Ptr(data))
	}
	if err := gl.GetError(); err != gl.NO_ERROR {
		return fmt.Errorf("pie: glTexSubImage error 0x%04x", err)
	}
	return nil
}

func (d *device) MapResource(res pie.MappableResource, mode pie.MapMode) ([]byte, error) {
	if !res.Dynamic() {
		return nil, pie.ErrNotMappable
	}
	if _, ok := d.mappings[res]; ok {
		return nil, pie.ErrAlreadyMapped
	}
	switch r := res.(type) {
	case *buffer:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		var access uint32
		switch mode {
		case pie.MapModeRead:
			access = gl.MAP_READ_BIT
		case pie.MapModeReadWrite:
			access = gl.MAP_READ_BIT | gl.MAP_WRITE_BIT
		default:
			access = gl.MAP_WRITE_BIT
		}
		gl.BindBuffer(r.target, r.handle)
		ptr := gl.MapBufferRange(r.target, 0, int(r.size), access)
		if ptr == nil {
			return nil, fmt.Errorf("pie: glMapBufferRange failed")
		}
		s := unsafe.Slice((*byte)(ptr), r.size)
		d.mappings[res] = s
		r.mapped = true
		return s, nil
	case *texture:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		// GL cannot map texture storage; a shadow copy is uploaded on
		// unmap.
		size := r.desc.Width * r.desc.Height * int(r.desc.Format.BytesPerTexel())
		s := make([]byte, size)
		d.mappings[res] = s
		return s, nil
	default:
		return nil, pie.ErrNotMappable
	}
}

func (d *device) UnmapResource(res pie.MappableResource) error {
	s, ok := d.mappings[res]
	if !ok {
		return pie.ErrNotMapped
	}
	delete(d.mappings, res)
	switch r := res.(type) {
	case *buffer:
		gl.BindBuffer(r.target, r.handle)
		gl.UnmapBuffer(r.target)
		r.mapped = false
		return nil
	case *texture:
		return d.UpdateTexture(r, 0, 0, 0, 0, 0, r.desc.Width, r.desc.Height, 1, s)
	default:
		return pie.ErrNotMapped
	}
}

func (d *device) SetShader(s pie.Shader) {
	sh, _ := s.(*shader)
	if d.boundShader == sh {
		return
	}
	d.boundShader = sh
	if sh != nil {
		gl.UseProgram(sh.program)
	} else {
		gl.UseProgram(0)
	}
}

func (d *device) SetTexture(slot uint32, tex pie.Texture, sampler pie.SamplerState) {
	t, _ := tex.(*texture)
	s, _ := sampler.(*samplerState)
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	if t != nil {
		gl.BindTexture(t.target, t.handle)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	if s != nil {
		gl.BindSampler(slot, s.handle)
	} else {
		gl.BindSampler(slot, 0)
	}
}

func (d *device) SetRasterizerState(state pie.RasterizerState) {
	s, _ := state.(*rasterizerState)
	desc := pie.RasterizerStateCullClockwise
	if s != nil {
		desc = s.desc
	}
	d.boundRasterizer = desc

	switch desc.CullFace {
	case pie.CullNone:
		gl.Disable(gl.CULL_FACE)
	case pie.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case pie.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	if desc.FrontFaceCCW {
		gl.FrontFace(gl.CCW)
	} else {
		gl.FrontFace(gl.CW)
	}
	if desc.FillMode == pie.FillWireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	if desc.ScissorTest {
		gl.Enable(gl.SCISSOR_TEST)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
}

func (d *device) SetBlendState(state pie.BlendState) {
	s, _ := state.(*blendState)
	desc := pie.BlendStateDisabled
	if s != nil {
		desc = s.desc
	}
	if desc.Enabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.BlendFuncSeparate(
		glBlendFactor(desc.Source), glBlendFactor(desc.Destination),
		glBlendFactor(desc.SourceAlpha), glBlendFactor(desc.DestinationAlpha))
	gl.BlendEquationSeparate(glBlendOp(desc.Operation), glBlendOp(desc.AlphaOperation))
	d.colorMask = desc.WriteMask
	gl.ColorMask(
		desc.WriteMask&pie.ColorWriteRed != 0,
		desc.WriteMask&pie.ColorWriteGreen != 0,
		desc.WriteMask&pie.ColorWriteBlue != 0,
		desc.WriteMask&pie.ColorWriteAlpha != 0)
}

func (d *device) SetDepthStencilState(state pie.DepthStencilState, stencilRef uint32) {
	s, _ := state.(*depthStencilState)
	desc := pie.DepthStencilStateDisabled
	if s != nil {
		desc = s.desc
	}
	d.boundDepthStencil = desc
	d.stencilRef = stencilRef

	if desc.DepthEnabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthFunc(glComparison(desc.DepthFunc))
	d.depthWrite = desc.DepthWrite
	gl.DepthMask(desc.DepthWrite)

	if desc.StencilEnabled {
		gl.Enable(gl.STENCIL_TEST)
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}
	gl.StencilFuncSeparate(gl.FRONT, glComparison(desc.Front.Func),
		int32(stencilRef), uint32(desc.StencilReadMask))
	gl.StencilOpSeparate(gl.FRONT, glStencilOp(desc.Front.StencilFail),
		glStencilOp(desc.Front.DepthFail), glStencilOp(desc.Front.Pass))
	gl.StencilFuncSeparate(gl.BACK, glComparison(desc.Back.Func),
		int32(stencilRef), uint32(desc.StencilReadMask))
	gl.StencilOpSeparate(gl.BACK, glStencilOp(desc.Back.StencilFail),
		glStencilOp(desc.Back.DepthFail), glStencilOp(desc.Back.Pass))
	gl.StencilMask(uint32(desc.StencilWriteMask))
}

func (d *device) SetPrimitiveType(typ pie.PrimitiveType) { d.primitive = typ }

func (d *device) SetVertexBuffer(slot uint32, buf pie.Buffer, stride uint32, layout pie.InputLayout) {
	if int(slot) >= len(d.vertexBuffers) {
		pie.Logger().Error("opengl: vertex buffer slot out of range", "slot", slot)
		return
	}
	b, _ := buf.(*buffer)
	l, _ := layout.(*inputLayout)
	d.vertexBuffers[slot] = b
	d.vertexStrides[slot] = stride
	d.boundLayout = l
	d.attribsDirty = true
}

func (d *device) SetIndexBuffer(buf pie.Buffer, format pie.IndexFormat) {
	b, _ := buf.(*buffer)
	d.indexBuffer = b
	d.indexFormat = format
	if b != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.handle)
	}
}

func (d *device) SetUniformBuffer(slot uint32, buf pie.Buffer) {
	b, _ := buf.(*buffer)
	if b != nil {
		gl.BindBufferBase(gl.UNIFORM_BUFFER, slot, b.handle)
	} else {
		gl.BindBufferBase(gl.UNIFORM_BUFFER, slot, 0)
	}
}

func (d *device) SetFramebuffer(fb pie.Framebuffer) {
	f, _ := fb.(*framebuffer)
	if d.boundFramebuffer == f {
		return
	}
	d.boundFramebuffer = f
	d.rebindFramebuffer()
	if f != nil {
		d.SetViewport(image.Rect(0, 0, f.width, f.height))
		d.SetScissor(image.Rect(0, 0, f.width, f.height))
	} else {
		d.SetViewport(image.Rect(0, 0, d.width, d.height))
		d.SetScissor(image.Rect(0, 0, d.width, d.height))
	}
}

// clearGuard lifts the write masks and scissor for a clear and restores
// the bound state afterwards. glClear honors both.
func (d *device) clearGuard() func() {
	gl.Disable(gl.SCISSOR_TEST)
	gl.ColorMask(true, true, true, true)
	gl.DepthMask(true)
	gl.StencilMask(0xFF)
	return func() {
		if d.boundRasterizer.ScissorTest {
			gl.Enable(gl.SCISSOR_TEST)
		}
		gl.ColorMask(
			d.colorMask&pie.ColorWriteRed != 0,
			d.colorMask&pie.ColorWriteGreen != 0,
			d.colorMask&pie.ColorWriteBlue != 0,
			d.colorMask&pie.ColorWriteAlpha != 0)
		gl.DepthMask(d.depthWrite)
		gl.StencilMask(uint32(d.boundDepthStencil.StencilWriteMask))
	}
}

func (d *device) ClearColorBuffer(r, g, b, a float32) {
	restore := d.clearGuard()
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	restore()
}

func (d *device) ClearDepthStencilBuffer(flags pie.ClearFlags, depth float32, stencil uint8) {
	var mask uint32
	if flags&pie.ClearDepth != 0 {
		gl.ClearDepth(float64(depth))
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if flags&pie.ClearStencil != 0 {
		gl.ClearStencil(int32(stencil))
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask == 0 {
		return
	}
	restore := d.clearGuard()
	gl.Clear(mask)
	restore()
}

// applyVertexAttribs flushes the attribute pointer state from the bound
// layout, strides and buffers.
func (d *device) applyVertexAttribs() {
	if !d.attribsDirty || d.boundLayout == nil {
		return
	}
	for loc, a := range d.boundLayout.descs {
		b := d.vertexBuffers[a.Slot]
		if b == nil {
			gl.DisableVertexAttribArray(uint32(loc))
			continue
		}
		size, typ, normalized, integer := glAttribute(a.Type)
		if size == 0 {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, b.handle)
		gl.EnableVertexAttribArray(uint32(loc))
		stride := int32(d.vertexStrides[a.Slot])
		if integer {
			gl.VertexAttribIPointerWithOffset(uint32(loc), size, typ, stride, uintptr(a.Offset))
		} else {
			gl.VertexAttribPointerWithOffset(uint32(loc), size, typ, normalized, stride, uintptr(a.Offset))
		}
	}
	d.attribsDirty = false
}

func (d *device) Draw(vertexCount uint32) {
	d.applyVertexAttribs()
	gl.DrawArrays(glPrimitive(d.primitive), 0, int32(vertexCount))
	d.metrics.AddDraw(vertexCount, 1)
}

func (d *device) DrawIndexed(indexCount uint32) {
	d.applyVertexAttribs()
	gl.DrawElementsWithOffset(glPrimitive(d.primitive), int32(indexCount), glIndexType(d.indexFormat), 0)
	d.metrics.AddDraw(indexCount, 1)
}

func (d *device) DrawInstanced(vertexCount, instanceCount uint32) {
	d.applyVertexAttribs()
	gl.DrawArraysInstanced(glPrimitive(d.primitive), 0, int32(vertexCount), int32(instanceCount))
	d.metrics.AddDraw(vertexCount, instanceCount)
}

func (d *device) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	d.applyVertexAttribs()
	gl.DrawElementsInstanced(glPrimitive(d.primitive), int32(indexCount),
		glIndexType(d.indexFormat), gl.PtrOffset(0), int32(instanceCount))
	d.metrics.AddDraw(indexCount, instanceCount)
}

func (d *device) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	pie.Logger().Error("opengl: compute dispatch needs GL 4.3, not available on this backend")
}

func (d *device) Present(swapInterval int) error {
	if d.surface.GLSwapInterval != nil {
		d.surface.GLSwapInterval(swapInterval)
	}
	d.surface.GLSwapBuffers()
	d.metrics.Reset()
	return nil
}

func (d *device) ResizeSwapchain(width, height int) error {
	// The windowing layer resizes the default framebuffer; only the
	// cached size and derived rectangles change here.
	d.width, d.height = width, height
	if d.boundFramebuffer == nil {
		d.SetViewport(image.Rect(0, 0, width, height))
		d.SetScissor(image.Rect(0, 0, width, height))
	}
	return nil
}

func (d *device) Flush() error {
	gl.Flush()
	return nil
}

func (d *device) GenerateMipmaps(tex pie.Texture) error {
	t := tex.(*texture)
	if t.disposed {
		return pie.ErrDisposed
	}
	if t.desc.Usage&pie.TextureUsageGenerateMips == 0 {
		return fmt.Errorf("pie: texture was not created with TextureUsageGenerateMips")
	}
	gl.BindTexture(t.target, t.handle)
	gl.GenerateMipmap(t.target)
	return nil
}

func (d *device) Metrics() pie.Metrics { return d.metrics }

func (d *device) SwapchainSize() (int, int) { return d.width, d.height }

func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	gl.DeleteVertexArrays(1, &d.vao)
	pie.Logger().Debug("opengl: device disposed")
}
