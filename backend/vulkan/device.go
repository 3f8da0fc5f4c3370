package vulkan

import (
	"fmt"
	"image"
	"math"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

type textureBinding struct {
	tex     *texture
	sampler *samplerState
}

// device implements pie.Device on Vulkan 1.1. Rendering uses a single
// frame in flight: one primary command buffer is recorded lazily as
// state/draw calls arrive and submitted on Present, which waits for the
// frame fence before returning.
type device struct {
	instance  vk.Instance
	surface   vk.Surface
	physical  *physicalDevice
	device    vk.Device
	graphicsQ vk.Queue
	presentQ  vk.Queue
	opts      *pie.GraphicsDeviceOptions

	sc                  *swapchain
	defaultFramebuffers []vk.Framebuffer
	swapLayouts         []vk.ImageLayout

	commandPool    vk.CommandPool
	cmd            vk.CommandBuffer
	frameFence     vk.Fence
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore

	uniformLayout  vk.DescriptorSetLayout
	textureLayout  vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	descriptorPool vk.DescriptorPool

	renderPasses     map[renderPassKey]vk.RenderPass
	pipelines        map[pipelineKey]vk.Pipeline
	computePipelines map[*shader]vk.Pipeline

	// Frame bookkeeping.
	imageIndex       uint32
	acquired         bool
	recording        bool
	passOpen         bool
	passTarget       *framebuffer // nil while the default target is open
	imageWaitPending bool
	boundPipeline    vk.Pipeline

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
	uniformSet    vk.DescriptorSet
	textureSet    vk.DescriptorSet

	mappings map[pie.MappableResource][]byte

	metrics      pie.Metrics
	width        int
	height       int
	swapInterval int
	disposed     bool
}

var _ pie.Device = (*device)(nil)

func (d *device) API() pie.GraphicsAPI { return pie.APIVulkan }

func (d *device) Adapter() pie.Adapter { return d.physical.adapter() }

func (d *device) Viewport() image.Rectangle { return d.viewport }

func (d *device) SetViewport(rect image.Rectangle) { d.viewport = rect }

func (d *device) Scissor() image.Rectangle { return d.scissor }

func (d *device) SetScissor(rect image.Rectangle) { d.scissor = rect }

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
		var ptr unsafe.Pointer
		if err := vk.Error(vk.MapMemory(d.device, r.memory, 0, vk.DeviceSize(r.size), 0, &ptr)); err != nil {
			return nil, fmt.Errorf("pie: failed to map buffer: %w", err)
		}
		s := unsafe.Slice((*byte)(ptr), r.size)
		d.mappings[res] = s
		r.mapped = true
		return s, nil
	case *texture:
		if r.disposed {
			return nil, pie.ErrDisposed
		}
		// Device-local images cannot be mapped directly; writes land in
		// a shadow copy uploaded on unmap.
		s := make([]byte, r.level0Size())
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
		vk.UnmapMemory(d.device, r.memory)
		r.mapped = false
		return nil
	case *texture:
		return d.uploadToTexture(r, s)
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
	d.boundPipeline = vk.NullPipeline
}

func (d *device) SetTexture(slot uint32, tex pie.Texture, sampler pie.SamplerState) {
	if slot >= maxTextureSlots {
		pie.Logger().Error("vulkan: texture slot out of range", "slot", slot)
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
	d.boundRasterizer = s
	d.boundPipeline = vk.NullPipeline
}

func (d *device) SetBlendState(state pie.BlendState) {
	s, _ := state.(*blendState)
	if d.boundBlend == s {
		return
	}
	d.boundBlend = s
	d.boundPipeline = vk.NullPipeline
}

func (d *device) SetDepthStencilState(state pie.DepthStencilState, stencilRef uint32) {
	s, _ := state.(*depthStencilState)
	if d.boundDepthStencil == s && d.stencilRef == stencilRef {
		return
	}
	d.boundDepthStencil = s
	d.stencilRef = stencilRef
	d.boundPipeline = vk.NullPipeline
}

func (d *device) SetPrimitiveType(typ pie.PrimitiveType) {
	if d.primitive == typ {
		return
	}
	d.primitive = typ
	d.boundPipeline = vk.NullPipeline
}

func (d *device) SetVertexBuffer(slot uint32, buf pie.Buffer, stride uint32, layout pie.InputLayout) {
	if slot >= maxVertexSlots {
		pie.Logger().Error("vulkan: vertex buffer slot out of range", "slot", slot)
		return
	}
	b, _ := buf.(*buffer)
	l, _ := layout.(*inputLayout)
	d.vertexBuffers[slot] = b
	if d.vertexStrides[slot] != stride || d.boundLayout != l {
		d.vertexStrides[slot] = stride
		d.boundLayout = l
		d.boundPipeline = vk.NullPipeline
	}
}

func (d *device) SetIndexBuffer(buf pie.Buffer, format pie.IndexFormat) {
	b, _ := buf.(*buffer)
	d.indexBuffer = b
	d.indexFormat = format
}

func (d *device) SetUniformBuffer(slot uint32, buf pie.Buffer) {
	if slot >= maxUniformSlots {
		pie.Logger().Error("vulkan: uniform slot out of range", "slot", slot)
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
		d.scissor = d.viewport
	} else {
		d.viewport = image.Rect(0, 0, d.width, d.height)
		d.scissor = d.viewport
	}
}

// targetFormats reports the attachment formats of the current render
// target set.
func (d *device) targetFormats() (colors []vk.Format, depth vk.Format) {
	if d.boundFramebuffer != nil {
		return d.boundFramebuffer.colorFormats, d.boundFramebuffer.depthFormat
	}
	return []vk.Format{d.sc.format}, d.sc.depthFormat
}

func (d *device) ClearColorBuffer(r, g, b, a float32) {
	colors, depth := d.targetFormats()
	var clears []vk.ClearValue
	for range colors {
		clears = append(clears, vk.NewClearValue([]float32{r, g, b, a}))
	}
	if depth != vk.FormatUndefined {
		clears = append(clears, vk.NewClearDepthStencil(1, 0))
	}
	if err := d.beginPass(loadOps{color: true}, clears); err != nil {
		pie.Logger().Error("vulkan: clear failed", "err", err)
		return
	}
	d.endPass()
}

func (d *device) ClearDepthStencilBuffer(flags pie.ClearFlags, depth float32, stencil uint8) {
	colors, depthFormat := d.targetFormats()
	if depthFormat == vk.FormatUndefined || flags == 0 {
		return
	}
	var clears []vk.ClearValue
	for range colors {
		clears = append(clears, vk.NewClearValue([]float32{0, 0, 0, 0}))
	}
	clears = append(clears, vk.NewClearDepthStencil(depth, uint32(stencil)))
	ops := loadOps{
		depth:   flags&pie.ClearDepth != 0,
		stencil: flags&pie.ClearStencil != 0,
	}
	if err := d.beginPass(ops, clears); err != nil {
		pie.Logger().Error("vulkan: depth-stencil clear failed", "err", err)
		return
	}
	d.endPass()
}

func (d *device) Draw(vertexCount uint32) {
	if err := d.prepareDraw(); err != nil {
		pie.Logger().Error("vulkan: draw failed", "err", err)
		return
	}
	vk.CmdDraw(d.cmd, vertexCount, 1, 0, 0)
	d.metrics.AddDraw(vertexCount, 1)
}

func (d *device) DrawIndexed(indexCount uint32) {
	d.DrawIndexedInstanced(indexCount, 1)
}

func (d *device) DrawInstanced(vertexCount, instanceCount uint32) {
	if err := d.prepareDraw(); err != nil {
		pie.Logger().Error("vulkan: draw failed", "err", err)
		return
	}
	vk.CmdDraw(d.cmd, vertexCount, instanceCount, 0, 0)
	d.metrics.AddDraw(vertexCount, instanceCount)
}

func (d *device) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	if err := d.prepareDraw(); err != nil {
		pie.Logger().Error("vulkan: draw failed", "err", err)
		return
	}
	if d.indexBuffer == nil {
		pie.Logger().Error("vulkan: indexed draw with no index buffer bound")
		return
	}
	vk.CmdBindIndexBuffer(d.cmd, d.indexBuffer.handle, 0, vkIndexType(d.indexFormat))
	vk.CmdDrawIndexed(d.cmd, indexCount, instanceCount, 0, 0, 0)
	d.metrics.AddDraw(indexCount, instanceCount)
}

func (d *device) Dispatch(groupCountX, groupCountY, groupCountZ uint32) {
	if d.boundShader == nil || !d.boundShader.compute {
		pie.Logger().Error("vulkan: dispatch with no compute shader bound")
		return
	}
	if err := d.ensureRecording(); err != nil {
		pie.Logger().Error("vulkan: dispatch failed", "err", err)
		return
	}
	d.endPass()
	p, err := d.computePipelineFor(d.boundShader)
	if err != nil {
		pie.Logger().Error("vulkan: dispatch failed", "err", err)
		return
	}
	vk.CmdBindPipeline(d.cmd, vk.PipelineBindPointCompute, p)
	if err := d.bindDescriptors(vk.PipelineBindPointCompute); err != nil {
		pie.Logger().Error("vulkan: dispatch failed", "err", err)
		return
	}
	vk.CmdDispatch(d.cmd, groupCountX, groupCountY, groupCountZ)
}

// prepareDraw opens the render pass on the current target, binds the
// pipeline for the bound state, and flushes dynamic state and
// descriptors.
func (d *device) prepareDraw() error {
	// Sampled textures need their layout settled before the pass opens.
	for _, tb := range d.textures {
		if tb.tex != nil && tb.tex.layout != vk.ImageLayoutShaderReadOnlyOptimal {
			d.endPass()
			if err := d.ensureRecording(); err != nil {
				return err
			}
			d.transition(d.cmd, tb.tex.image, tb.tex.aspect(), tb.tex.layout,
				vk.ImageLayoutShaderReadOnlyOptimal, uint32(tb.tex.desc.MipLevels), uint32(tb.tex.layerCount()))
			tb.tex.layout = vk.ImageLayoutShaderReadOnlyOptimal
		}
	}

	if !d.passOpen || d.passTarget != d.boundFramebuffer {
		colors, depth := d.targetFormats()
		var clears []vk.ClearValue
		for range colors {
			clears = append(clears, vk.NewClearValue([]float32{0, 0, 0, 0}))
		}
		if depth != vk.FormatUndefined {
			clears = append(clears, vk.NewClearDepthStencil(1, 0))
		}
		if err := d.beginPass(loadOps{}, clears); err != nil {
			return err
		}
	}

	colors, depth := d.targetFormats()
	rp, err := d.renderPassFor(colors, depth, loadOps{})
	if err != nil {
		return err
	}
	p, err := d.pipelineFor(rp)
	if err != nil {
		return err
	}
	if p != d.boundPipeline {
		vk.CmdBindPipeline(d.cmd, vk.PipelineBindPointGraphics, p)
		d.boundPipeline = p
	}

	vp := d.viewport
	vk.CmdSetViewport(d.cmd, 0, 1, []vk.Viewport{{
		X:        float32(vp.Min.X),
		Y:        float32(vp.Min.Y),
		Width:    float32(vp.Dx()),
		Height:   float32(vp.Dy()),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	sc := d.scissor
	vk.CmdSetScissor(d.cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: int32(sc.Min.X), Y: int32(sc.Min.Y)},
		Extent: vk.Extent2D{Width: uint32(sc.Dx()), Height: uint32(sc.Dy())},
	}})
	vk.CmdSetStencilReference(d.cmd, vk.StencilFaceFlags(vk.StencilFrontAndBack), d.stencilRef)

	if err := d.bindDescriptors(vk.PipelineBindPointGraphics); err != nil {
		return err
	}

	for slot, b := range d.vertexBuffers {
		if b != nil {
			vk.CmdBindVertexBuffers(d.cmd, uint32(slot), 1,
				[]vk.Buffer{b.handle}, []vk.DeviceSize{0})
		}
	}
	return nil
}

// bindDescriptors allocates and writes the per-draw descriptor sets
// when bindings changed since the last draw, then binds them.
func (d *device) bindDescriptors(bindPoint vk.PipelineBindPoint) error {
	if d.bindingsDirty || d.uniformSet == vk.NullDescriptorSet {
		allocInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     d.descriptorPool,
			DescriptorSetCount: 2,
			PSetLayouts:        []vk.DescriptorSetLayout{d.uniformLayout, d.textureLayout},
		}
		sets := make([]vk.DescriptorSet, 2)
		if err := vk.Error(vk.AllocateDescriptorSets(d.device, &allocInfo, &sets[0])); err != nil {
			return fmt.Errorf("pie: descriptor allocation failed: %w", err)
		}
		d.uniformSet, d.textureSet = sets[0], sets[1]

		var writes []vk.WriteDescriptorSet
		for slot, b := range d.uniformBuffers {
			if b == nil {
				continue
			}
			writes = append(writes, vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.uniformSet,
				DstBinding:      uint32(slot),
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				PBufferInfo: []vk.DescriptorBufferInfo{{
					Buffer: b.handle,
					Range:  vk.DeviceSize(b.size),
				}},
			})
		}
		for slot, tb := range d.textures {
			if tb.tex == nil || tb.sampler == nil {
				continue
			}
			writes = append(writes, vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.textureSet,
				DstBinding:      uint32(slot),
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				PImageInfo: []vk.DescriptorImageInfo{{
					Sampler:     tb.sampler.handle,
					ImageView:   tb.tex.view,
					ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				}},
			})
		}
		if len(writes) > 0 {
			vk.UpdateDescriptorSets(d.device, uint32(len(writes)), writes, 0, nil)
		}
		d.bindingsDirty = false
	}
	vk.CmdBindDescriptorSets(d.cmd, bindPoint, d.pipelineLayout, 0, 2,
		[]vk.DescriptorSet{d.uniformSet, d.textureSet}, 0, nil)
	return nil
}

// ensureRecording begins the frame command buffer on first use after a
// submit.
func (d *device) ensureRecording() error {
	if d.recording {
		return nil
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(d.cmd, &beginInfo)); err != nil {
		return fmt.Errorf("pie: begin command buffer: %w", err)
	}
	d.recording = true
	d.boundPipeline = vk.NullPipeline
	return nil
}

// ensureAcquired acquires the next swapchain image on first use of the
// default target in a frame.
func (d *device) ensureAcquired() error {
	if d.acquired {
		return nil
	}
	res := vk.AcquireNextImage(d.device, d.sc.handle, math.MaxUint64,
		d.imageAvailable, vk.NullFence, &d.imageIndex)
	if res == vk.ErrorOutOfDate {
		if err := d.recreateSwapchain(d.width, d.height); err != nil {
			return err
		}
		res = vk.AcquireNextImage(d.device, d.sc.handle, math.MaxUint64,
			d.imageAvailable, vk.NullFence, &d.imageIndex)
	}
	if err := vk.Error(res); err != nil && res != vk.Suboptimal {
		return fmt.Errorf("pie: swapchain image acquire: %w", err)
	}
	d.acquired = true
	d.imageWaitPending = true
	// Image content from previous frames is discarded.
	d.swapLayouts[d.imageIndex] = vk.ImageLayoutUndefined
	return nil
}

// beginPass opens a render pass on the current target with the given
// load ops.
func (d *device) beginPass(ops loadOps, clears []vk.ClearValue) error {
	if err := d.ensureRecording(); err != nil {
		return err
	}
	if d.passOpen {
		if d.passTarget == d.boundFramebuffer && ops == (loadOps{}) {
			return nil
		}
		d.endPass()
	}

	var handle vk.Framebuffer
	var extent vk.Extent2D
	colors, depth := d.targetFormats()

	if d.boundFramebuffer == nil {
		if err := d.ensureAcquired(); err != nil {
			return err
		}
		// Preserving passes declare attachment-optimal initial layout;
		// settle the image there first.
		if !ops.color && d.swapLayouts[d.imageIndex] != vk.ImageLayoutColorAttachmentOptimal {
			d.transition(d.cmd, d.sc.images[d.imageIndex], vk.ImageAspectFlags(vk.ImageAspectColorBit),
				d.swapLayouts[d.imageIndex], vk.ImageLayoutColorAttachmentOptimal, 1, 1)
		}
		handle = d.defaultFramebuffers[d.imageIndex]
		extent = d.sc.extent
		d.swapLayouts[d.imageIndex] = vk.ImageLayoutColorAttachmentOptimal
	} else {
		fb := d.boundFramebuffer
		for _, t := range fb.colors {
			if !ops.color && t.layout != vk.ImageLayoutColorAttachmentOptimal {
				d.transition(d.cmd, t.image, t.aspect(), t.layout,
					vk.ImageLayoutColorAttachmentOptimal, uint32(t.desc.MipLevels), uint32(t.layerCount()))
			}
			t.layout = vk.ImageLayoutColorAttachmentOptimal
		}
		if ds := fb.depthStencil; ds != nil {
			if ds.layout != vk.ImageLayoutDepthStencilAttachmentOptimal {
				d.transition(d.cmd, ds.image, ds.aspect(), ds.layout,
					vk.ImageLayoutDepthStencilAttachmentOptimal, uint32(ds.desc.MipLevels), uint32(ds.layerCount()))
				ds.layout = vk.ImageLayoutDepthStencilAttachmentOptimal
			}
		}
		handle = fb.handle
		w, h := fb.Size()
		extent = vk.Extent2D{Width: uint32(w), Height: uint32(h)}
	}

	rp, err := d.renderPassFor(colors, depth, ops)
	if err != nil {
		return err
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      rp,
		Framebuffer:     handle,
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}
	vk.CmdBeginRenderPass(d.cmd, &beginInfo, vk.SubpassContentsInline)
	d.passOpen = true
	d.passTarget = d.boundFramebuffer
	d.boundPipeline = vk.NullPipeline
	return nil
}

func (d *device) endPass() {
	if d.passOpen {
		vk.CmdEndRenderPass(d.cmd)
		d.passOpen = false
	}
}

// submitFrame ends and submits the frame command buffer, waiting the
// acquire semaphore on the first submit of the frame. present selects
// whether the submit signals the present semaphore.
func (d *device) submitFrame(present bool) error {
	d.endPass()
	if err := vk.Error(vk.EndCommandBuffer(d.cmd)); err != nil {
		return fmt.Errorf("pie: end command buffer: %w", err)
	}
	d.recording = false

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{d.cmd},
	}
	if d.imageWaitPending {
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{d.imageAvailable}
		submit.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
		d.imageWaitPending = false
	}
	if present {
		submit.SignalSemaphoreCount = 1
		submit.PSignalSemaphores = []vk.Semaphore{d.renderFinished}
	}
	if err := vk.Error(vk.QueueSubmit(d.graphicsQ, 1, []vk.SubmitInfo{submit}, d.frameFence)); err != nil {
		return fmt.Errorf("pie: queue submit: %w", err)
	}
	vk.WaitForFences(d.device, 1, []vk.Fence{d.frameFence}, vk.True, math.MaxUint64)
	vk.ResetFences(d.device, 1, []vk.Fence{d.frameFence})
	vk.ResetCommandBuffer(d.cmd, 0)
	return nil
}

func (d *device) Present(swapInterval int) error {
	if err := d.ensureRecording(); err != nil {
		return err
	}
	if err := d.ensureAcquired(); err != nil {
		return err
	}
	d.endPass()
	d.transition(d.cmd, d.sc.images[d.imageIndex], vk.ImageAspectFlags(vk.ImageAspectColorBit),
		d.swapLayouts[d.imageIndex], vk.ImageLayoutPresentSrc, 1, 1)
	d.swapLayouts[d.imageIndex] = vk.ImageLayoutPresentSrc

	if err := d.submitFrame(true); err != nil {
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{d.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.sc.handle},
		PImageIndices:      []uint32{d.imageIndex},
	}
	res := vk.QueuePresent(d.presentQ, &presentInfo)
	d.acquired = false
	vk.ResetDescriptorPool(d.device, d.descriptorPool, 0)
	d.uniformSet = vk.NullDescriptorSet
	d.textureSet = vk.NullDescriptorSet
	d.metrics.Reset()

	switch {
	case res == vk.ErrorOutOfDate || res == vk.Suboptimal:
		if err := d.recreateSwapchain(d.width, d.height); err != nil {
			return err
		}
	case res != vk.Success:
		return fmt.Errorf("pie: present failed: %w", vk.Error(res))
	}

	if swapInterval != d.swapInterval {
		d.swapInterval = swapInterval
		if err := d.recreateSwapchain(d.width, d.height); err != nil {
			return err
		}
	}
	return nil
}

func (d *device) Flush() error {
	if !d.recording {
		return nil
	}
	return d.submitFrame(false)
}

func (d *device) ResizeSwapchain(width, height int) error {
	if d.recording {
		if err := d.submitFrame(false); err != nil {
			return err
		}
	}
	d.acquired = false
	if err := d.recreateSwapchain(width, height); err != nil {
		return err
	}
	d.viewport = image.Rect(0, 0, width, height)
	d.scissor = d.viewport
	return nil
}

func (d *device) recreateSwapchain(width, height int) error {
	vk.DeviceWaitIdle(d.device)
	d.destroyDefaultFramebuffers()
	old := d.sc
	sc, err := d.createSwapchain(width, height, d.swapInterval, old.handle)
	if err != nil {
		return err
	}
	old.destroy(d)
	d.sc = sc
	d.swapLayouts = make([]vk.ImageLayout, len(sc.images))
	d.width = int(sc.extent.Width)
	d.height = int(sc.extent.Height)
	d.acquired = false
	return d.createDefaultFramebuffers()
}

func (d *device) GenerateMipmaps(tex pie.Texture) error {
	t := tex.(*texture)
	if t.disposed {
		return pie.ErrDisposed
	}
	if t.desc.Usage&pie.TextureUsageGenerateMips == 0 {
		return fmt.Errorf("pie: texture was not created with TextureUsageGenerateMips")
	}
	return d.blitMipChain(t)
}

func (d *device) Metrics() pie.Metrics { return d.metrics }

func (d *device) SwapchainSize() (int, int) { return d.width, d.height }

func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	if d.device == nil {
		vk.DestroySurface(d.instance, d.surface, nil)
		vk.DestroyInstance(d.instance, nil)
		return
	}
	vk.DeviceWaitIdle(d.device)

	for _, p := range d.pipelines {
		vk.DestroyPipeline(d.device, p, nil)
	}
	for _, p := range d.computePipelines {
		vk.DestroyPipeline(d.device, p, nil)
	}
	vk.DestroyDescriptorPool(d.device, d.descriptorPool, nil)
	vk.DestroyPipelineLayout(d.device, d.pipelineLayout, nil)
	vk.DestroyDescriptorSetLayout(d.device, d.uniformLayout, nil)
	vk.DestroyDescriptorSetLayout(d.device, d.textureLayout, nil)
	d.destroyDefaultFramebuffers()
	for _, rp := range d.renderPasses {
		vk.DestroyRenderPass(d.device, rp, nil)
	}
	if d.sc != nil {
		d.sc.destroy(d)
	}
	vk.DestroySemaphore(d.device, d.imageAvailable, nil)
	vk.DestroySemaphore(d.device, d.renderFinished, nil)
	vk.DestroyFence(d.device, d.frameFence, nil)
	vk.DestroyCommandPool(d.device, d.commandPool, nil)
	vk.DestroyDevice(d.device, nil)
	vk.DestroySurface(d.instance, d.surface, nil)
	vk.DestroyInstance(d.instance, nil)
	pie.Logger().Debug("vulkan: device disposed")
}
