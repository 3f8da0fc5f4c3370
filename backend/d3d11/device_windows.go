//go:build windows

package d3d11

import (
	"fmt"
	"image"
	"runtime"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend/d3d11/internal/com"
)

const maxVertexSlots = 8

// layoutKey pairs an input layout with the vertex shader whose bytecode
// validates it. D3D11 input layouts are created against a specific
// shader signature.
type layoutKey struct {
	layout *inputLayout
	shader *shader
}

type mapping struct {
	data []byte
	mode pie.MapMode
}

// device implements pie.Device on an immediate D3D11 context. Binding
// setters issue the native bind right away; the input layout is the one
// piece of state resolved lazily at draw time, because it needs the
// layout descriptions and the vertex shader bytecode together.
type device struct {
	dev       *com.Device
	ctx       *com.DeviceContext
	swapchain *com.SwapChain
	opts      *pie.GraphicsDeviceOptions
	adapter   pie.Adapter

	backTex  *com.Texture2D
	backRTV  *com.RenderTargetView
	depthTex *com.Texture2D
	backDSV  *com.DepthStencilView

	viewport image.Rectangle
	scissor  image.Rectangle

	boundShader      *shader
	boundLayout      *inputLayout
	nativeLayouts    map[layoutKey]*com.InputLayout
	layoutDirty      bool
	primitive        pie.PrimitiveType
	vertexBuffers    [maxVertexSlots]*buffer
	indexBuffer      *buffer
	boundFramebuffer *framebuffer

	defaultRasterizer   *rasterizerState
	defaultBlend        *blendState
	defaultDepthStencil *depthStencilState

	mappings map[pie.MappableResource]*mapping

	metrics  pie.Metrics
	width    int
	height   int
	disposed bool
}

var _ pie.Device = (*device)(nil)

func (d *device) API() pie.GraphicsAPI { return pie.APID3D11 }

func (d *device) Adapter() pie.Adapter { return d.adapter }

func (d *device) Viewport() image.Rectangle { return d.viewport }

func (d *device) SetViewport(rect image.Rectangle) {
	d.viewport = rect
	d.ctx.RSSetViewports(&com.VIEWPORT{
		TopLeftX: float32(rect.Min.X),
		TopLeftY: float32(rect.Min.Y),
		Width:    float32(rect.Dx()),
		Height:   float32(rect.Dy()),
		MinDepth: 0,
		MaxDepth: 1,
	})
}

func (d *device) Scissor() image.Rectangle { return d.scissor }

func (d *device) SetScissor(rect image.Rectangle) {
	d.scissor = rect
	d.ctx.RSSetScissorRects(&com.RECT{
		Left:   int32(rect.Min.X),
		Top:    int32(rect.Min.Y),
		Right:  int32(rect.Max.X),
		Bottom: int32(rect.Max.Y),
	})
}

func (d *device) CreateBuffer(typ pie.BufferType, sizeInBytes uint32, dynamic bool) (pie.Buffer, error) {
	return d.newBuffer(typ, sizeInBytes, dynamic, nil)
}

func (d *device) CreateBufferData(typ pie.BufferType, data []byte, dynamic bool) (pie.Buffer, error) {
	return d.newBuffer(typ, uint32(len(data)), dynamic, data)
}

func (d *device) CreateTexture(desc pie.TextureDescription, data []byte) (pie.Texture, error) {
	return d.newTexture(desc, data)
}

func (d *device) CreateShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (pie.Shader, error) {
	return d.newShader(attachments, constants)
}

func (d *device) CreateFramebuffer(attachments ...pie.FramebufferAttachment) (pie.Framebuffer, error) {
	return d.newFramebuffer(attachments)
}

func (d *device) CreateRasterizerState(desc pie.RasterizerStateDescription) (pie.RasterizerState, error) {
	return d.newRasterizerState(desc)
}

func (d *device) CreateBlendState(desc pie.BlendStateDescription) (pie.BlendState, error) {
	return d.newBlendState(desc)
}

func (d *device) CreateDepthStencilState(desc pie.DepthStencilStateDescription) (pie.DepthStencilState, error) {
	return d.newDepthStencilState(desc)
}

func (d *device) CreateSamplerState(desc pie.SamplerStateDescription) (pie.SamplerState, error) {
	return d.newSampler(desc)
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
	return b.write(offsetInBytes, data)
}

func (d *device) UpdateTexture(tex pie.Texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error {
	t := tex.(*texture)
	if t.disposed {
		return pie.ErrDisposed
	}
	if !t.desc.Dynamic {
		return pie.ErrNotDynamic
	}
	if int(mipLevel) >= t.desc.MipLevels || int(arrayIndex) >= t.layerCount() {
		return pie.ErrOutOfRange
	}
	return d.uploadTextureRegion(t, mipLevel, arrayIndex, x, y, z, width, height, depth, data)
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
		// Writes keep the shadow current, so mapping hands out a copy of
		// it and the unmap uploads whatever the caller changed.
		s := make([]byte, r.size)
		copy(s, r.shadow)
		d.mappings[res] = &mapping{data: s, mode: mode}
		return s, nil
	case *texture:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		s := make([]byte, r.level0Size())
		d.mappings[res] = &mapping{data: s, mode: mode}
		return s, nil
	default:
		return nil, pie.ErrNotMappable
	}
}

func (d *device) UnmapResource(res pie.MappableResource) error {
	m, ok := d.mappings[res]
	if !ok {
		return pie.ErrNotMapped
	}
	delete(d.mappings, res)
	if m.mode == pie.MapModeRead {
		return nil
	}
	switch r := res.(type) {
	case *buffer:
		return r.write(0, m.data)
	case *texture:
		return d.uploadTextureRegion(r, 0, 0, 0, 0, 0,
			r.desc.Width, r.desc.Height, max(r.desc.Depth, 1), m.data)
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
	d.layoutDirty = true
	if sh == nil {
		d.ctx.VSSetShader(nil)
		d.ctx.PSSetShader(nil)
		d.ctx.GSSetShader(nil)
		d.ctx.CSSetShader(nil)
		return
	}
	d.ctx.VSSetShader(sh.vs)
	d.ctx.PSSetShader(sh.ps)
	d.ctx.GSSetShader(sh.gs)
	d.ctx.CSSetShader(sh.cs)
}

func (d *device) SetTexture(slot uint32, tex pie.Texture, sampler pie.SamplerState) {
	t, _ := tex.(*texture)
	s, _ := sampler.(*samplerState)
	var srv *com.ShaderResource
	if t != nil {
		srv = t.srv
	}
	var native *com.SamplerState
	if s != nil {
		native = s.handle
	}
	d.ctx.PSSetShaderResources(slot, srv)
	d.ctx.PSSetSamplers(slot, native)
	d.ctx.VSSetShaderResources(slot, srv)
	d.ctx.VSSetSamplers(slot, native)
}

func (d *device) SetRasterizerState(state pie.RasterizerState) {
	s, _ := state.(*rasterizerState)
	if s == nil {
		s = d.defaultRasterizer
	}
	d.ctx.RSSetState(s.handle)
}

func (d *device) SetBlendState(state pie.BlendState) {
	s, _ := state.(*blendState)
	if s == nil {
		s = d.defaultBlend
	}
	d.ctx.OMSetBlendState(s.handle)
}

func (d *device) SetDepthStencilState(state pie.DepthStencilState, stencilRef uint32) {
	s, _ := state.(*depthStencilState)
	if s == nil {
		s = d.defaultDepthStencil
	}
	d.ctx.OMSetDepthStencilState(s.handle, stencilRef)
}

func (d *device) SetPrimitiveType(typ pie.PrimitiveType) {
	d.primitive = typ
	d.ctx.IASetPrimitiveTopology(dxTopology(typ))
}

func (d *device) SetVertexBuffer(slot uint32, buf pie.Buffer, stride uint32, layout pie.InputLayout) {
	if int(slot) >= maxVertexSlots {
		pie.Logger().Error("d3d11: vertex buffer slot out of range", "slot", slot)
		return
	}
	b, _ := buf.(*buffer)
	l, _ := layout.(*inputLayout)
	d.vertexBuffers[slot] = b
	if d.boundLayout != l {
		d.boundLayout = l
		d.layoutDirty = true
	}
	var handle *com.Buffer
	if b != nil {
		handle = b.handle
	}
	d.ctx.IASetVertexBuffers(slot, handle, stride, 0)
}

func (d *device) SetIndexBuffer(buf pie.Buffer, format pie.IndexFormat) {
	b, _ := buf.(*buffer)
	d.indexBuffer = b
	var handle *com.Buffer
	if b != nil {
		handle = b.handle
	}
	d.ctx.IASetIndexBuffer(handle, dxIndexFormat(format), 0)
}

func (d *device) SetUniformBuffer(slot uint32, buf pie.Buffer) {
	b, _ := buf.(*buffer)
	var handle *com.Buffer
	if b != nil {
		handle = b.handle
	}
	d.ctx.VSSetConstantBuffers(slot, handle)
	d.ctx.PSSetConstantBuffers(slot, handle)
	d.ctx.GSSetConstantBuffers(slot, handle)
	d.ctx.CSSetConstantBuffers(slot, handle)
}

func (d *device) SetFramebuffer(fb pie.Framebuffer) {
	f, _ := fb.(*framebuffer)
	if d.boundFramebuffer == f {
		return
	}
	d.boundFramebuffer = f
	d.bindTargets()
	if f != nil {
		d.SetViewport(image.Rect(0, 0, f.width, f.height))
		d.SetScissor(image.Rect(0, 0, f.width, f.height))
	} else {
		d.SetViewport(image.Rect(0, 0, d.width, d.height))
		d.SetScissor(image.Rect(0, 0, d.width, d.height))
	}
}

func (d *device) bindTargets() {
	if d.boundFramebuffer != nil {
		d.ctx.OMSetRenderTargets(d.boundFramebuffer.rtvs, d.boundFramebuffer.dsv)
		return
	}
	d.ctx.OMSetRenderTargets([]*com.RenderTargetView{d.backRTV}, d.backDSV)
}

func (d *device) currentTargets() ([]*com.RenderTargetView, *com.DepthStencilView) {
	if d.boundFramebuffer != nil {
		return d.boundFramebuffer.rtvs, d.boundFramebuffer.dsv
	}
	return []*com.RenderTargetView{d.backRTV}, d.backDSV
}

func (d *device) ClearColorBuffer(r, g, b, a float32) {
	rtvs, _ := d.currentTargets()
	color := [4]float32{r, g, b, a}
	for _, rtv := range rtvs {
		if rtv != nil {
			d.ctx.ClearRenderTargetView(rtv, &color)
		}
	}
}

func (d *device) ClearDepthStencilBuffer(flags pie.ClearFlags, depth float32, stencil uint8) {
	_, dsv := d.currentTargets()
	native := dxClearFlags(flags)
	if dsv == nil || native == 0 {
		return
	}
	d.ctx.ClearDepthStencilView(dsv, native, depth, stencil)
}

// semanticParts splits an attribute name like "TEXCOORD2" into the
// semantic name and index D3D11 expects.
func semanticParts(name string) (string, uint32) {
	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}
	if end == len(name) || end == 0 {
		return name, 0
	}
	var index uint32
	for _, c := range name[end:] {
		index = index*10 + uint32(c-'0')
	}
	return name[:end], index
}

// applyInputLayout resolves and binds the native input layout for the
// current layout/shader pair, creating and caching it on first use.
func (d *device) applyInputLayout() {
	if !d.layoutDirty {
		return
	}
	d.layoutDirty = false
	if d.boundLayout == nil || d.boundShader == nil || d.boundShader.vsBlob == nil {
		d.ctx.IASetInputLayout(nil)
		return
	}
	key := layoutKey{layout: d.boundLayout, shader: d.boundShader}
	native, ok := d.nativeLayouts[key]
	if !ok {
		names := make([][]byte, len(d.boundLayout.descs))
		elems := make([]com.INPUT_ELEMENT_DESC, len(d.boundLayout.descs))
		for i, a := range d.boundLayout.descs {
			semantic, index := semanticParts(a.Name)
			names[i] = append([]byte(semantic), 0)
			elems[i] = com.INPUT_ELEMENT_DESC{
				SemanticName:      &names[i][0],
				SemanticIndex:     index,
				Format:            dxVertexFormat(a.Type),
				InputSlot:         a.Slot,
				AlignedByteOffset: a.Offset,
				InputSlotClass:    com.INPUT_PER_VERTEX_DATA,
			}
		}
		var err error
		native, err = d.dev.CreateInputLayout(elems, d.boundShader.vsBlob)
		runtime.KeepAlive(names)
		if err != nil {
			pie.Logger().Error("d3d11: input layout creation failed", "err", err)
			return
		}
		d.nativeLayouts[key] = native
	}
	d.ctx.IASetInputLayout(native)
}

// dropShaderLayouts evicts cached input layouts built against a shader
// being disposed.
func (d *device) dropShaderLayouts(s *shader) {
	for key, native := range d.nativeLayouts {
		if key.shader == s {
			native.Release()
			delete(d.nativeLayouts, key)
		}
	}
	if d.boundShader == s {
		d.boundShader = nil
		d.layoutDirty = true
	}
}

func (d *device) Draw(vertexCount uint32) {
	d.applyInputLayout()
	d.ctx.Draw(vertexCount, 0)
	d.metrics.AddDraw(vertexCount, 1)
}

func (d *device) DrawIndexed(indexCount uint32) {
	d.applyInputLayout()
	d.ctx.DrawIndexed(indexCount, 0, 0)
	d.metrics.AddDraw(indexCount, 1)
}

func (d *device) DrawInstanced(vertexCount, instanceCount uint32) {
	d.applyInputLayout()
	d.ctx.DrawInstanced(vertexCount, instanceCount, 0, 0)
	d.metrics.AddDraw(vertexCount, instanceCount)
}

func (d *device) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	d.applyInputLayout()
	d.ctx.DrawIndexedInstanced(indexCount, instanceCount, 0, 0, 0)
	d.metrics.AddDraw(indexCount, instanceCount)
}

func (d *device) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	if d.boundShader == nil || d.boundShader.cs == nil {
		pie.Logger().Error("d3d11: dispatch without a bound compute shader")
		return
	}
	d.ctx.Dispatch(groupCountX, groupCountY, groupCountZ)
}

func (d *device) Present(swapInterval int) error {
	defer d.metrics.Reset()
	if d.swapchain == nil {
		d.ctx.Flush()
		return nil
	}
	err := d.swapchain.Present(uint32(swapInterval), 0)
	if code, ok := err.(com.ErrorCode); ok {
		if code.Code == com.DXGI_ERROR_DEVICE_REMOVED || code.Code == com.DXGI_ERROR_DEVICE_RESET {
			return fmt.Errorf("pie: device lost: %w", err)
		}
	}
	return err
}

func (d *device) ResizeSwapchain(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	d.ctx.OMSetRenderTargets(nil, nil)
	d.destroyTargets()
	d.width, d.height = width, height

	if d.swapchain != nil {
		if err := d.swapchain.ResizeBuffers(0, uint32(width), uint32(height), com.DXGI_FORMAT_UNKNOWN, 0); err != nil {
			return fmt.Errorf("%w: %v", pie.ErrSwapchainCreation, err)
		}
	}
	if err := d.createTargets(); err != nil {
		return err
	}
	d.bindTargets()
	if d.boundFramebuffer == nil {
		d.SetViewport(image.Rect(0, 0, width, height))
		d.SetScissor(image.Rect(0, 0, width, height))
	}
	return nil
}

func (d *device) Flush() error {
	d.ctx.Flush()
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
	d.ctx.GenerateMips(t.srv)
	return nil
}

func (d *device) Metrics() pie.Metrics { return d.metrics }

func (d *device) SwapchainSize() (int, int) { return d.width, d.height }

// createTargets builds the default color and depth-stencil views, from
// the swapchain backbuffer when presenting to a window or from an
// offscreen texture otherwise.
func (d *device) createTargets() error {
	colorFormat := dxFormat(d.opts.ColorBufferFormat)
	if d.swapchain != nil {
		backbuffer, err := d.swapchain.GetBuffer(0, &com.IIDTexture2D)
		if err != nil {
			return fmt.Errorf("%w: backbuffer: %v", pie.ErrSwapchainCreation, err)
		}
		rtv, err := d.dev.CreateRenderTargetView(backbuffer, nil)
		backbuffer.Release()
		if err != nil {
			return fmt.Errorf("%w: backbuffer view: %v", pie.ErrSwapchainCreation, err)
		}
		d.backRTV = rtv
	} else {
		tex, err := d.dev.CreateTexture2D(&com.TEXTURE2D_DESC{
			Width:      uint32(d.width),
			Height:     uint32(d.height),
			MipLevels:  1,
			ArraySize:  1,
			Format:     colorFormat,
			SampleDesc: com.DXGI_SAMPLE_DESC{Count: 1},
			Usage:      com.USAGE_DEFAULT,
			BindFlags:  com.BIND_RENDER_TARGET | com.BIND_SHADER_RESOURCE,
		}, nil)
		if err != nil {
			return fmt.Errorf("%w: offscreen color target: %v", pie.ErrSwapchainCreation, err)
		}
		rtv, err := d.dev.CreateRenderTargetView(tex, nil)
		if err != nil {
			tex.Release()
			return fmt.Errorf("%w: offscreen color view: %v", pie.ErrSwapchainCreation, err)
		}
		d.backTex = tex
		d.backRTV = rtv
	}

	if d.opts.DepthStencilBufferFormat != pie.FormatUnknown {
		depthFormat := dxFormat(d.opts.DepthStencilBufferFormat)
		tex, err := d.dev.CreateTexture2D(&com.TEXTURE2D_DESC{
			Width:      uint32(d.width),
			Height:     uint32(d.height),
			MipLevels:  1,
			ArraySize:  1,
			Format:     depthFormat,
			SampleDesc: com.DXGI_SAMPLE_DESC{Count: 1},
			Usage:      com.USAGE_DEFAULT,
			BindFlags:  com.BIND_DEPTH_STENCIL,
		}, nil)
		if err != nil {
			d.destroyTargets()
			return fmt.Errorf("%w: depth-stencil target: %v", pie.ErrSwapchainCreation, err)
		}
		dsv, err := d.dev.CreateDepthStencilView(tex, nil)
		if err != nil {
			tex.Release()
			d.destroyTargets()
			return fmt.Errorf("%w: depth-stencil view: %v", pie.ErrSwapchainCreation, err)
		}
		d.depthTex = tex
		d.backDSV = dsv
	}
	return nil
}

func (d *device) destroyTargets() {
	if d.backDSV != nil {
		d.backDSV.Release()
		d.backDSV = nil
	}
	if d.depthTex != nil {
		d.depthTex.Release()
		d.depthTex = nil
	}
	if d.backRTV != nil {
		d.backRTV.Release()
		d.backRTV = nil
	}
	if d.backTex != nil {
		d.backTex.Release()
		d.backTex = nil
	}
}

func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.ctx.ClearState()
	for _, native := range d.nativeLayouts {
		native.Release()
	}
	d.nativeLayouts = nil
	if d.defaultRasterizer != nil {
		d.defaultRasterizer.Dispose()
	}
	if d.defaultBlend != nil {
		d.defaultBlend.Dispose()
	}
	if d.defaultDepthStencil != nil {
		d.defaultDepthStencil.Dispose()
	}
	d.destroyTargets()
	if d.swapchain != nil {
		d.swapchain.Release()
	}
	d.ctx.Release()
	d.dev.Release()
	pie.Logger().Debug("d3d11: device disposed")
}
