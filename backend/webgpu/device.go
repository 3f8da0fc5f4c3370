package webgpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	pie "github.com/IsometricSoftware/Pie"
)

type textureBinding struct {
	tex     *texture
	sampler *samplerState
}

// mapping is one open MapResource session. Writes land in a shadow
// slice and are uploaded on unmap.
type mapping struct {
	data []byte
	mode pie.MapMode
}

// device implements pie.Device on the gogpu wgpu HAL with an offscreen
// default target. One command encoder is recorded lazily as state and
// draw calls arrive; Present submits it, drains the queue, and retires
// the per-draw bind groups.
type device struct {
	instance hal.Instance
	dev      hal.Device
	queue    hal.Queue
	opts     *pie.GraphicsDeviceOptions
	adapter  pie.Adapter

	backColor     hal.Texture
	backColorView hal.TextureView
	backFormat    gputypes.TextureFormat
	backDepth     hal.Texture
	backDepthView hal.TextureView
	depthFormat   gputypes.TextureFormat

	enc        hal.CommandEncoder
	encoding   bool
	pass       hal.RenderPassEncoder
	passOpen   bool
	passTarget *framebuffer // nil while the default target is open

	groupLayouts     map[layoutKey]*bindLayouts
	pipelines        map[pipelineKey]hal.RenderPipeline
	computePipelines map[computeKey]hal.ComputePipeline
	frameBindGroups  []hal.BindGroup
	boundPipeline    hal.RenderPipeline

	// Bound state.
	viewport          image.Rectangle
	scissor           image.Rectangle
	boundShader       *shader
	boundLayout       *inputLayout
	primitive         pie.PrimitiveType
	boundRasterizer   *rasterizerState
	boundBlend        *blendState
	boundDepthStencil *depthStencilState
	stencilRef        uint32
	vertexBuffers     [maxVertexSlots]*buffer
	vertexStrides     [maxVertexSlots]uint32
	indexBuffer       *buffer
	indexFormat       pie.IndexFormat
	uniformBuffers    [maxUniformSlots]*buffer
	textures          [maxTextureSlots]textureBinding
	boundFramebuffer  *framebuffer

	bindingsDirty bool
	groupsBound   bool
	uniformGroup  hal.BindGroup
	textureGroup  hal.BindGroup

	mappings map[pie.MappableResource]*mapping

	metrics      pie.Metrics
	width        int
	height       int
	swapInterval int
	wireWarned   bool
	disposed     bool
}

var _ pie.Device = (*device)(nil)

func (d *device) API() pie.GraphicsAPI { return pie.APIWebGPU }

func (d *device) Adapter() pie.Adapter { return d.adapter }

func (d *device) Viewport() image.Rectangle { return d.viewport }

func (d *device) SetViewport(rect image.Rectangle) { d.viewport = rect }

func (d *device) Scissor() image.Rectangle { return d.scissor }

func (d *device) SetScissor(rect image.Rectangle) { d.scissor = rect }

// createTargets builds the offscreen backbuffer for the given extent.
func (d *device) createTargets(width, height int) error {
	d.backFormat = wgFormat(d.opts.ColorBufferFormat)
	if d.backFormat == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: color format %s", pie.ErrSwapchainCreation, d.opts.ColorBufferFormat)
	}
	color, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: "pie_backbuffer",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.backFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("%w: backbuffer: %v", pie.ErrSwapchainCreation, err)
	}
	colorView, err := d.dev.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label:         "pie_backbuffer_view",
		Format:        d.backFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.dev.DestroyTexture(color)
		return fmt.Errorf("%w: backbuffer view: %v", pie.ErrSwapchainCreation, err)
	}
	d.backColor = color
	d.backColorView = colorView

	if d.opts.DepthStencilBufferFormat != pie.FormatUnknown {
		d.depthFormat = wgFormat(d.opts.DepthStencilBufferFormat)
		if d.depthFormat == gputypes.TextureFormatUndefined {
			d.destroyTargets()
			return fmt.Errorf("%w: depth-stencil format %s",
				pie.ErrSwapchainCreation, d.opts.DepthStencilBufferFormat)
		}
		depth, err := d.dev.CreateTexture(&hal.TextureDescriptor{
			Label: "pie_depth_stencil",
			Size: hal.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        d.depthFormat,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			d.destroyTargets()
			return fmt.Errorf("%w: depth-stencil buffer: %v", pie.ErrSwapchainCreation, err)
		}
		depthView, err := d.dev.CreateTextureView(depth, &hal.TextureViewDescriptor{
			Label:         "pie_depth_stencil_view",
			Format:        d.depthFormat,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			d.dev.DestroyTexture(depth)
			d.destroyTargets()
			return fmt.Errorf("%w: depth-stencil view: %v", pie.ErrSwapchainCreation, err)
		}
		d.backDepth = depth
		d.backDepthView = depthView
	}

	d.width = width
	d.height = height
	return nil
}

func (d *device) destroyTargets() {
	if d.backDepthView != nil {
		d.dev.DestroyTextureView(d.backDepthView)
		d.backDepthView = nil
	}
	if d.backDepth != nil {
		d.dev.DestroyTexture(d.backDepth)
		d.backDepth = nil
	}
	if d.backColorView != nil {
		d.dev.DestroyTextureView(d.backColorView)
		d.backColorView = nil
	}
	if d.backColor != nil {
		d.dev.DestroyTexture(d.backColor)
		d.backColor = nil
	}
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
	return &rasterizerState{desc: desc}, nil
}

func (d *device) CreateBlendState(desc pie.BlendStateDescription) (pie.BlendState, error) {
	return &blendState{desc: desc}, nil
}

func (d *device) CreateDepthStencilState(desc pie.DepthStencilStateDescription) (pie.DepthStencilState, error) {
	return &depthStencilState{desc: desc}, nil
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
	return d.writeTextureLevel(t, mipLevel, arrayIndex, x, y, z, width, height, depth, data)
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
		// The shadow starts as the buffer's current contents so that
		// write mappings preserve untouched bytes.
		s, err := d.readBuffer(r)
		if err != nil {
			return nil, err
		}
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
		return d.writeTextureLevel(r, 0, 0, 0, 0, 0, r.desc.Width, r.desc.Height, max(r.desc.Depth, 1), m.data)
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
	d.boundPipeline = nil
}

func (d *device) SetTexture(slot uint32, tex pie.Texture, sampler pie.SamplerState) {
	if slot >= maxTextureSlots {
		pie.Logger().Error("webgpu: texture slot out of range", "slot", slot)
		return
	}
	t, _ := tex.(*texture)
	s, _ := sampler.(*samplerState)
	b := textureBinding{tex: t, sampler: s}
	if d.textures[slot] == b {
		return
	}
	d.textures[slot] = b
	d.bindingsDirty = true
}

func (d *device) SetRasterizerState(state pie.RasterizerState) {
	s, _ := state.(*rasterizerState)
	if d.boundRasterizer == s {
		return
	}
	if s != nil && s.desc.FillMode == pie.FillWireframe && !d.wireWarned {
		pie.Logger().Warn("webgpu: wireframe fill is not available; rasterizing solid")
		d.wireWarned = true
	}
	d.boundRasterizer = s
	d.boundPipeline = nil
}

func (d *device) SetBlendState(state pie.BlendState) {
	s, _ := state.(*blendState)
	if d.boundBlend == s {
		return
	}
	d.boundBlend = s
	d.boundPipeline = nil
}

func (d *device) SetDepthStencilState(state pie.DepthStencilState, stencilRef uint32) {
	s, _ := state.(*depthStencilState)
	if d.boundDepthStencil == s && d.stencilRef == stencilRef {
		return
	}
	d.boundDepthStencil = s
	d.stencilRef = stencilRef
	d.boundPipeline = nil
}

func (d *device) SetPrimitiveType(typ pie.PrimitiveType) {
	if d.primitive == typ {
		return
	}
	d.primitive = typ
	d.boundPipeline = nil
}

func (d *device) SetVertexBuffer(slot uint32, buf pie.Buffer, stride uint32, layout pie.InputLayout) {
	if slot >= maxVertexSlots {
		pie.Logger().Error("webgpu: vertex buffer slot out of range", "slot", slot)
		return
	}
	b, _ := buf.(*buffer)
	l, _ := layout.(*inputLayout)
	d.vertexBuffers[slot] = b
	if d.vertexStrides[slot] != stride || d.boundLayout != l {
		d.vertexStrides[slot] = stride
		d.boundLayout = l
		d.boundPipeline = nil
	}
}

func (d *device) SetIndexBuffer(buf pie.Buffer, format pie.IndexFormat) {
	b, _ := buf.(*buffer)
	d.indexBuffer = b
	d.indexFormat = format
}

func (d *device) SetUniformBuffer(slot uint32, buf pie.Buffer) {
	if slot >= maxUniformSlots {
		pie.Logger().Error("webgpu: uniform slot out of range", "slot", slot)
		return
	}
	b, _ := buf.(*buffer)
	if d.uniformBuffers[slot] == b {
		return
	}
	d.uniformBuffers[slot] = b
	d.bindingsDirty = true
}

func (d *device) SetFramebuffer(fb pie.Framebuffer) {
	f, _ := fb.(*framebuffer)
	if d.boundFramebuffer == f {
		return
	}
	d.endPass()
	d.boundFramebuffer = f
	if f != nil {
		d.viewport = image.Rect(0, 0, f.width, f.height)
	} else {
		d.viewport = image.Rect(0, 0, d.width, d.height)
	}
	d.scissor = d.viewport
}

// targetFormats reports the attachment formats of the current render
// target set.
func (d *device) targetFormats() (colors []gputypes.TextureFormat, depth gputypes.TextureFormat) {
	if d.boundFramebuffer != nil {
		return d.boundFramebuffer.colorFormats, d.boundFramebuffer.depthFormat
	}
	return []gputypes.TextureFormat{d.backFormat}, d.depthFormat
}

// passOps selects the load operations for a render pass begin.
type passOps struct {
	clearColor   bool
	color        gputypes.Color
	clearDepth   bool
	depth        float32
	clearStencil bool
	stencil      uint32
}

func (o passOps) any() bool { return o.clearColor || o.clearDepth || o.clearStencil }

func (d *device) ClearColorBuffer(r, g, b, a float32) {
	ops := passOps{
		clearColor: true,
		color:      gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)},
	}
	if err := d.beginPass(ops); err != nil {
		pie.Logger().Error("webgpu: clear failed", "err", err)
		return
	}
	d.endPass()
}

func (d *device) ClearDepthStencilBuffer(flags pie.ClearFlags, depth float32, stencil uint8) {
	_, depthFormat := d.targetFormats()
	if depthFormat == gputypes.TextureFormatUndefined || flags == 0 {
		return
	}
	ops := passOps{
		clearDepth:   flags&pie.ClearDepth != 0,
		depth:        depth,
		clearStencil: flags&pie.ClearStencil != 0,
		stencil:      uint32(stencil),
	}
	if err := d.beginPass(ops); err != nil {
		pie.Logger().Error("webgpu: depth-stencil clear failed", "err", err)
		return
	}
	d.endPass()
}

func (d *device) Draw(vertexCount uint32) {
	d.DrawInstanced(vertexCount, 1)
}

func (d *device) DrawIndexed(indexCount uint32) {
	d.DrawIndexedInstanced(indexCount, 1)
}

func (d *device) DrawInstanced(vertexCount, instanceCount uint32) {
	if err := d.prepareDraw(); err != nil {
		pie.Logger().Error("webgpu: draw failed", "err", err)
		return
	}
	d.pass.Draw(vertexCount, instanceCount, 0, 0)
	d.metrics.AddDraw(vertexCount, instanceCount)
}

func (d *device) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	if d.indexBuffer == nil {
		pie.Logger().Error("webgpu: indexed draw with no index buffer bound")
		return
	}
	if err := d.prepareDraw(); err != nil {
		pie.Logger().Error("webgpu: draw failed", "err", err)
		return
	}
	d.pass.SetIndexBuffer(d.indexBuffer.handle, wgIndexFormat(d.indexFormat), 0)
	d.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
	d.metrics.AddDraw(indexCount, instanceCount)
}

func (d *device) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	if d.boundShader == nil || !d.boundShader.compute {
		pie.Logger().Error("webgpu: dispatch with no compute shader bound")
		return
	}
	d.endPass()
	if err := d.ensureEncoding(); err != nil {
		pie.Logger().Error("webgpu: dispatch failed", "err", err)
		return
	}
	binds := d.currentLayoutKey()
	layouts, err := d.layoutsFor(binds)
	if err != nil {
		pie.Logger().Error("webgpu: dispatch failed", "err", err)
		return
	}
	p, err := d.computePipelineFor(d.boundShader, layouts, binds)
	if err != nil {
		pie.Logger().Error("webgpu: dispatch failed", "err", err)
		return
	}
	uniformBG, textureBG, err := d.buildBindGroups(layouts, binds)
	if err != nil {
		pie.Logger().Error("webgpu: dispatch failed", "err", err)
		return
	}
	cp := d.enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "pie_dispatch"})
	cp.SetPipeline(p)
	cp.SetBindGroup(0, uniformBG, nil)
	cp.SetBindGroup(1, textureBG, nil)
	cp.Dispatch(groupCountX, groupCountY, groupCountZ)
	cp.End()
}

// prepareDraw opens the render pass on the current target, binds the
// pipeline for the bound state, and flushes bind groups, dynamic state
// and vertex buffers.
func (d *device) prepareDraw() error {
	// Textures rendered into earlier in the frame need a barrier
	// before they are sampled.
	for _, tb := range d.textures {
		if tb.tex != nil && tb.tex.usage == gputypes.TextureUsageRenderAttachment {
			d.endPass()
			if err := d.ensureEncoding(); err != nil {
				return err
			}
			d.enc.TransitionTextures([]hal.TextureBarrier{{
				Texture: tb.tex.handle,
				Usage: hal.TextureUsageTransition{
					OldUsage: gputypes.TextureUsageRenderAttachment,
					NewUsage: gputypes.TextureUsageTextureBinding,
				},
			}})
			tb.tex.usage = gputypes.TextureUsageTextureBinding
		}
	}

	if !d.passOpen || d.passTarget != d.boundFramebuffer {
		if err := d.beginPass(passOps{}); err != nil {
			return err
		}
	}

	binds := d.currentLayoutKey()
	layouts, err := d.layoutsFor(binds)
	if err != nil {
		return err
	}

	colors, depth := d.targetFormats()
	p, err := d.pipelineFor(colors, depth, layouts, binds)
	if err != nil {
		return err
	}
	if p != d.boundPipeline {
		d.pass.SetPipeline(p)
		d.boundPipeline = p
	}

	vp := d.viewport
	d.pass.SetViewport(float32(vp.Min.X), float32(vp.Min.Y),
		float32(vp.Dx()), float32(vp.Dy()), 0, 1)
	sc := d.scissor
	d.pass.SetScissorRect(uint32(sc.Min.X), uint32(sc.Min.Y),
		uint32(sc.Dx()), uint32(sc.Dy()))
	d.pass.SetStencilReference(d.stencilRef)

	if d.bindingsDirty || !d.groupsBound {
		uniformBG, textureBG, err := d.buildBindGroups(layouts, binds)
		if err != nil {
			return err
		}
		d.uniformGroup, d.textureGroup = uniformBG, textureBG
		d.bindingsDirty = false
		d.groupsBound = false
	}
	if !d.groupsBound {
		d.pass.SetBindGroup(0, d.uniformGroup, nil)
		d.pass.SetBindGroup(1, d.textureGroup, nil)
		d.groupsBound = true
	}

	for slot, b := range d.vertexBuffers {
		if b != nil {
			d.pass.SetVertexBuffer(uint32(slot), b.handle, 0)
		}
	}
	return nil
}

// ensureEncoding begins the frame command encoder on first use after a
// submit.
func (d *device) ensureEncoding() error {
	if d.encoding {
		return nil
	}
	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "pie_frame"})
	if err != nil {
		return fmt.Errorf("pie: command encoder: %w", err)
	}
	if err := enc.BeginEncoding("pie_frame"); err != nil {
		return fmt.Errorf("pie: begin encoding: %w", err)
	}
	d.enc = enc
	d.encoding = true
	d.boundPipeline = nil
	return nil
}

// beginPass opens a render pass on the current target with the given
// load ops.
func (d *device) beginPass(ops passOps) error {
	if err := d.ensureEncoding(); err != nil {
		return err
	}
	if d.passOpen {
		if d.passTarget == d.boundFramebuffer && !ops.any() {
			return nil
		}
		d.endPass()
	}

	var colorViews []hal.TextureView
	var depthView hal.TextureView
	if d.boundFramebuffer == nil {
		colorViews = []hal.TextureView{d.backColorView}
		depthView = d.backDepthView
	} else {
		fb := d.boundFramebuffer
		// Attachments sampled earlier move back to render-attachment
		// usage before the pass opens.
		for _, t := range fb.colors {
			if t.usage != gputypes.TextureUsageRenderAttachment {
				d.enc.TransitionTextures([]hal.TextureBarrier{{
					Texture: t.handle,
					Usage: hal.TextureUsageTransition{
						OldUsage: t.usage,
						NewUsage: gputypes.TextureUsageRenderAttachment,
					},
				}})
				t.usage = gputypes.TextureUsageRenderAttachment
			}
		}
		if fb.depth != nil && fb.depth.usage != gputypes.TextureUsageRenderAttachment {
			d.enc.TransitionTextures([]hal.TextureBarrier{{
				Texture: fb.depth.handle,
				Usage: hal.TextureUsageTransition{
					OldUsage: fb.depth.usage,
					NewUsage: gputypes.TextureUsageRenderAttachment,
				},
			}})
			fb.depth.usage = gputypes.TextureUsageRenderAttachment
		}
		colorViews = fb.colorViews
		depthView = fb.depthView
	}

	colorLoad := gputypes.LoadOpLoad
	if ops.clearColor {
		colorLoad = gputypes.LoadOpClear
	}
	attachments := make([]hal.RenderPassColorAttachment, len(colorViews))
	for i, v := range colorViews {
		attachments[i] = hal.RenderPassColorAttachment{
			View:       v,
			LoadOp:     colorLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: ops.color,
		}
	}

	desc := &hal.RenderPassDescriptor{
		Label:            "pie_pass",
		ColorAttachments: attachments,
	}
	if depthView != nil {
		depthLoad := gputypes.LoadOpLoad
		if ops.clearDepth {
			depthLoad = gputypes.LoadOpClear
		}
		stencilLoad := gputypes.LoadOpLoad
		if ops.clearStencil {
			stencilLoad = gputypes.LoadOpClear
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depthView,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   ops.depth,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: ops.stencil,
		}
	}

	d.pass = d.enc.BeginRenderPass(desc)
	d.passOpen = true
	d.passTarget = d.boundFramebuffer
	d.boundPipeline = nil
	d.groupsBound = false
	return nil
}

func (d *device) endPass() {
	if d.passOpen {
		d.pass.End()
		d.pass = nil
		d.passOpen = false
	}
}

// submitFrame ends the frame encoder, submits it, and drains the
// queue. The hal tracks its own submission fences; with one frame in
// flight, WaitIdle is the completion point. Per-draw bind groups
// retire once the queue is idle.
func (d *device) submitFrame() error {
	d.endPass()
	if !d.encoding {
		return nil
	}
	cmdBuf, err := d.enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("pie: end encoding: %w", err)
	}
	d.enc = nil
	d.encoding = false

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		d.dev.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("pie: queue submit: %w", err)
	}
	err = d.dev.WaitIdle()
	d.dev.FreeCommandBuffer(cmdBuf)
	if err != nil {
		return fmt.Errorf("pie: wait for frame: %w", err)
	}

	for _, g := range d.frameBindGroups {
		d.dev.DestroyBindGroup(g)
	}
	d.frameBindGroups = d.frameBindGroups[:0]
	d.groupsBound = false
	d.bindingsDirty = true
	return nil
}

// readBuffer copies a buffer's contents back to the CPU through a
// map-readable staging buffer. Pending frame work is submitted first
// so the copy observes every prior write.
func (d *device) readBuffer(b *buffer) ([]byte, error) {
	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "pie_readback",
		Size:  uint64(b.size),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("pie: readback staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	d.endPass()
	if err := d.ensureEncoding(); err != nil {
		return nil, err
	}
	d.enc.CopyBufferToBuffer(b.handle, staging, []hal.BufferCopy{{Size: uint64(b.size)}})
	if err := d.submitFrame(); err != nil {
		return nil, err
	}

	m, err := d.dev.MapBuffer(staging, 0, uint64(b.size))
	if err != nil {
		return nil, fmt.Errorf("pie: failed to map readback buffer: %w", err)
	}
	out := make([]byte, b.size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), b.size))
	if err := d.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("pie: failed to unmap readback buffer: %w", err)
	}
	return out, nil
}

func (d *device) Present(swapInterval int) error {
	// There is no swapchain to pace; the interval is recorded only so
	// SwapchainSize/Present keep the same contract as the windowed
	// backends.
	d.swapInterval = swapInterval
	if err := d.submitFrame(); err != nil {
		return err
	}
	d.metrics.Reset()
	return nil
}

func (d *device) Flush() error {
	if !d.encoding {
		return nil
	}
	return d.submitFrame()
}

func (d *device) ResizeSwapchain(width, height int) error {
	if err := d.Flush(); err != nil {
		return err
	}
	d.destroyTargets()
	if err := d.createTargets(width, height); err != nil {
		return err
	}
	d.viewport = image.Rect(0, 0, width, height)
	d.scissor = d.viewport
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
	// The hal command surface has no blit or texture-to-texture copy
	// entry point to walk the mip chain with.
	return fmt.Errorf("pie: mipmap generation is not available on the webgpu backend")
}

func (d *device) Metrics() pie.Metrics { return d.metrics }

func (d *device) SwapchainSize() (int, int) { return d.width, d.height }

func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true

	d.endPass()
	if d.encoding {
		d.enc.DiscardEncoding()
		d.enc = nil
		d.encoding = false
	}
	for _, g := range d.frameBindGroups {
		d.dev.DestroyBindGroup(g)
	}
	d.frameBindGroups = nil
	for _, p := range d.pipelines {
		d.dev.DestroyRenderPipeline(p)
	}
	for _, p := range d.computePipelines {
		d.dev.DestroyComputePipeline(p)
	}
	for _, l := range d.groupLayouts {
		d.dev.DestroyPipelineLayout(l.pipeline)
		d.dev.DestroyBindGroupLayout(l.texture)
		d.dev.DestroyBindGroupLayout(l.uniform)
	}
	d.destroyTargets()
	d.dev.Destroy()
	d.instance.Destroy()
	pie.Logger().Debug("webgpu: device disposed")
}
