package webgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	pie "github.com/IsometricSoftware/Pie"
)

// Binding model: bind group 0 carries uniform buffers, one binding per
// pie uniform slot; group 1 carries textures and samplers, texture at
// binding slot*2 and sampler at slot*2+1. wgpu requires a bind group to
// match its layout entry for entry, so layouts are built per occupancy
// mask and cached rather than declared once with every slot.
const (
	maxUniformSlots = 8
	maxTextureSlots = 16
	maxVertexSlots  = 8
	maxColorTargets = 8
)

// layoutKey is the occupancy of the two bind groups: one bit per bound
// uniform slot and texture slot.
type layoutKey struct {
	uniforms uint16
	textures uint32
}

// bindLayouts is the cached layout set for one occupancy.
type bindLayouts struct {
	uniform  hal.BindGroupLayout
	texture  hal.BindGroupLayout
	pipeline hal.PipelineLayout
}

func (d *device) currentLayoutKey() layoutKey {
	var key layoutKey
	for slot, b := range d.uniformBuffers {
		if b != nil {
			key.uniforms |= 1 << slot
		}
	}
	for slot, tb := range d.textures {
		if tb.tex != nil && tb.sampler != nil {
			key.textures |= 1 << slot
		}
	}
	return key
}

func (d *device) layoutsFor(key layoutKey) (*bindLayouts, error) {
	if l, ok := d.groupLayouts[key]; ok {
		return l, nil
	}

	allStages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute

	var uniformEntries []gputypes.BindGroupLayoutEntry
	for slot := 0; slot < maxUniformSlots; slot++ {
		if key.uniforms&(1<<slot) == 0 {
			continue
		}
		uniformEntries = append(uniformEntries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(slot),
			Visibility: allStages,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	uniform, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "pie_uniform_layout",
		Entries: uniformEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("pie: uniform bind group layout: %w", err)
	}

	var textureEntries []gputypes.BindGroupLayoutEntry
	for slot := 0; slot < maxTextureSlots; slot++ {
		if key.textures&(1<<slot) == 0 {
			continue
		}
		textureEntries = append(textureEntries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(slot * 2),
				Visibility: gputypes.ShaderStageFragment | gputypes.ShaderStageCompute,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(slot*2 + 1),
				Visibility: gputypes.ShaderStageFragment | gputypes.ShaderStageCompute,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	texture, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "pie_texture_layout",
		Entries: textureEntries,
	})
	if err != nil {
		d.dev.DestroyBindGroupLayout(uniform)
		return nil, fmt.Errorf("pie: texture bind group layout: %w", err)
	}

	pipeline, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "pie_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{uniform, texture},
	})
	if err != nil {
		d.dev.DestroyBindGroupLayout(texture)
		d.dev.DestroyBindGroupLayout(uniform)
		return nil, fmt.Errorf("pie: pipeline layout: %w", err)
	}

	l := &bindLayouts{uniform: uniform, texture: texture, pipeline: pipeline}
	d.groupLayouts[key] = l
	return l, nil
}

// buildBindGroups creates the per-draw bind groups for the currently
// bound resources. The groups are retired after the frame's submit
// completes.
func (d *device) buildBindGroups(l *bindLayouts, key layoutKey) (uniformBG, textureBG hal.BindGroup, err error) {
	var uniformEntries []gputypes.BindGroupEntry
	for slot, b := range d.uniformBuffers {
		if key.uniforms&(1<<slot) == 0 || b == nil {
			continue
		}
		uniformEntries = append(uniformEntries, gputypes.BindGroupEntry{
			Binding: uint32(slot),
			Resource: gputypes.BufferBinding{
				Buffer: b.handle.NativeHandle(),
				Offset: 0,
				Size:   uint64(b.size),
			},
		})
	}
	uniformBG, err = d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "pie_uniforms",
		Layout:  l.uniform,
		Entries: uniformEntries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("pie: uniform bind group: %w", err)
	}

	var textureEntries []gputypes.BindGroupEntry
	for slot, tb := range d.textures {
		if key.textures&(1<<slot) == 0 || tb.tex == nil || tb.sampler == nil {
			continue
		}
		textureEntries = append(textureEntries,
			gputypes.BindGroupEntry{
				Binding:  uint32(slot * 2),
				Resource: gputypes.TextureViewBinding{TextureView: tb.tex.view.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(slot*2 + 1),
				Resource: gputypes.SamplerBinding{Sampler: tb.sampler.handle.NativeHandle()},
			},
		)
	}
	textureBG, err = d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "pie_textures",
		Layout:  l.texture,
		Entries: textureEntries,
	})
	if err != nil {
		d.dev.DestroyBindGroup(uniformBG)
		return nil, nil, fmt.Errorf("pie: texture bind group: %w", err)
	}

	d.frameBindGroups = append(d.frameBindGroups, uniformBG, textureBG)
	return uniformBG, textureBG, nil
}

// pipelineKey identifies one baked render pipeline by everything that
// feeds its creation. Viewport, scissor and stencil reference are
// dynamic and stay out of the key.
type pipelineKey struct {
	shader       *shader
	layout       *inputLayout
	primitive    pie.PrimitiveType
	rasterizer   *rasterizerState
	blend        *blendState
	depthStencil *depthStencilState
	strides      [maxVertexSlots]uint32
	colors       [maxColorTargets]gputypes.TextureFormat
	colorCount   uint8
	depth        gputypes.TextureFormat
	binds        layoutKey
}

func (d *device) pipelineFor(colors []gputypes.TextureFormat, depth gputypes.TextureFormat, l *bindLayouts, binds layoutKey) (hal.RenderPipeline, error) {
	key := pipelineKey{
		shader:       d.boundShader,
		layout:       d.boundLayout,
		primitive:    d.primitive,
		rasterizer:   d.boundRasterizer,
		blend:        d.boundBlend,
		depthStencil: d.boundDepthStencil,
		strides:      d.vertexStrides,
		colorCount:   uint8(len(colors)),
		depth:        depth,
		binds:        binds,
	}
	copy(key.colors[:], colors)
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	p, err := d.buildPipeline(key, colors, l)
	if err != nil {
		return nil, err
	}
	d.pipelines[key] = p
	return p, nil
}

func (d *device) buildPipeline(key pipelineKey, colors []gputypes.TextureFormat, l *bindLayouts) (hal.RenderPipeline, error) {
	if key.shader == nil {
		return nil, fmt.Errorf("pie: draw with no shader bound")
	}
	vs, ok := key.shader.stageFor(pie.ShaderStageVertex)
	if !ok {
		return nil, fmt.Errorf("pie: bound shader has no vertex stage")
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  "pie_pipeline",
		Layout: l.pipeline,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: vs.entry,
			Buffers:    vertexLayouts(key.layout, key.strides),
		},
		Primitive: primitiveState(key.primitive, key.rasterizer),
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if fs, ok := key.shader.stageFor(pie.ShaderStageFragment); ok {
		bsDesc := pie.BlendStateDisabled
		if key.blend != nil {
			bsDesc = key.blend.desc
		}
		var blend *gputypes.BlendState
		if bsDesc.Enabled {
			blend = &gputypes.BlendState{
				Color: gputypes.BlendComponent{
					SrcFactor: wgBlendFactor(bsDesc.Source),
					DstFactor: wgBlendFactor(bsDesc.Destination),
					Operation: wgBlendOp(bsDesc.Operation),
				},
				Alpha: gputypes.BlendComponent{
					SrcFactor: wgBlendFactor(bsDesc.SourceAlpha),
					DstFactor: wgBlendFactor(bsDesc.DestinationAlpha),
					Operation: wgBlendOp(bsDesc.AlphaOperation),
				},
			}
		}
		targets := make([]gputypes.ColorTargetState, len(colors))
		for i, f := range colors {
			targets[i] = gputypes.ColorTargetState{
				Format:    f,
				Blend:     blend,
				WriteMask: wgWriteMask(bsDesc.WriteMask),
			}
		}
		desc.Fragment = &hal.FragmentState{
			Module:     fs.module,
			EntryPoint: fs.entry,
			Targets:    targets,
		}
	}

	if key.depth != gputypes.TextureFormatUndefined {
		desc.DepthStencil = depthStencilFor(key.depth, key.depthStencil)
	}

	p, err := d.dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("pie: pipeline creation failed: %w", err)
	}
	return p, nil
}

// vertexLayouts expands the pie input layout into one wgpu vertex
// buffer layout per slot. Attribute locations follow description order.
func vertexLayouts(layout *inputLayout, strides [maxVertexSlots]uint32) []gputypes.VertexBufferLayout {
	if layout == nil || len(layout.descs) == 0 {
		return nil
	}
	maxSlot := uint32(0)
	for _, a := range layout.descs {
		if a.Slot > maxSlot {
			maxSlot = a.Slot
		}
	}
	buffers := make([]gputypes.VertexBufferLayout, maxSlot+1)
	for slot := range buffers {
		buffers[slot] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(strides[slot]),
			StepMode:    gputypes.VertexStepModeVertex,
		}
	}
	for loc, a := range layout.descs {
		buffers[a.Slot].Attributes = append(buffers[a.Slot].Attributes, gputypes.VertexAttribute{
			Format:         wgVertexFormat(a.Type),
			Offset:         uint64(a.Offset),
			ShaderLocation: uint32(loc),
		})
	}
	return buffers
}

func primitiveState(primitive pie.PrimitiveType, rs *rasterizerState) gputypes.PrimitiveState {
	rsDesc := pie.RasterizerStateCullClockwise
	if rs != nil {
		rsDesc = rs.desc
	}
	frontFace := gputypes.FrontFaceCW
	if rsDesc.FrontFaceCCW {
		frontFace = gputypes.FrontFaceCCW
	}
	return gputypes.PrimitiveState{
		Topology:  wgPrimitive(primitive),
		FrontFace: frontFace,
		CullMode:  wgCullMode(rsDesc.CullFace),
	}
}

func depthStencilFor(format gputypes.TextureFormat, ds *depthStencilState) *hal.DepthStencilState {
	dsDesc := pie.DepthStencilStateDisabled
	if ds != nil {
		dsDesc = ds.desc
	}
	state := &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: dsDesc.DepthEnabled && dsDesc.DepthWrite,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      stencilFace(pie.StencilFace{Func: pie.ComparisonAlways}),
		StencilBack:       stencilFace(pie.StencilFace{Func: pie.ComparisonAlways}),
		StencilReadMask:   uint32(dsDesc.StencilReadMask),
		StencilWriteMask:  uint32(dsDesc.StencilWriteMask),
	}
	if dsDesc.DepthEnabled {
		state.DepthCompare = wgCompare(dsDesc.DepthFunc)
	}
	if dsDesc.StencilEnabled {
		state.StencilFront = stencilFace(dsDesc.Front)
		state.StencilBack = stencilFace(dsDesc.Back)
	}
	return state
}

func stencilFace(f pie.StencilFace) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     wgCompare(f.Func),
		FailOp:      wgStencilOp(f.StencilFail),
		DepthFailOp: wgStencilOp(f.DepthFail),
		PassOp:      wgStencilOp(f.Pass),
	}
}

// computeKey identifies a cached compute pipeline.
type computeKey struct {
	shader *shader
	binds  layoutKey
}

func (d *device) computePipelineFor(s *shader, l *bindLayouts, binds layoutKey) (hal.ComputePipeline, error) {
	key := computeKey{shader: s, binds: binds}
	if p, ok := d.computePipelines[key]; ok {
		return p, nil
	}
	cs, ok := s.stageFor(pie.ShaderStageCompute)
	if !ok {
		return nil, fmt.Errorf("pie: dispatch with no compute stage bound")
	}
	p, err := d.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "pie_compute",
		Layout: l.pipeline,
		Compute: hal.ComputeState{
			Module:     cs.module,
			EntryPoint: cs.entry,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pie: compute pipeline creation failed: %w", err)
	}
	d.computePipelines[key] = p
	return p, nil
}

// dropShaderPipelines evicts cached pipelines built from a shader that
// is being disposed.
func (d *device) dropShaderPipelines(s *shader) {
	for key, p := range d.pipelines {
		if key.shader == s {
			d.dev.DestroyRenderPipeline(p)
			delete(d.pipelines, key)
		}
	}
	for key, p := range d.computePipelines {
		if key.shader == s {
			d.dev.DestroyComputePipeline(p)
			delete(d.computePipelines, key)
		}
	}
	if d.boundShader == s {
		d.boundShader = nil
		d.boundPipeline = nil
	}
}
