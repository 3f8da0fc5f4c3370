package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// Binding model: descriptor set 0 carries uniform buffers, one binding
// per pie uniform slot; set 1 carries combined image samplers, one
// binding per pie texture slot. Every binding is visible to all stages
// so the slot numbers in shaders line up with SetUniformBuffer and
// SetTexture regardless of stage.
const (
	maxUniformSlots = 8
	maxTextureSlots = 16
	maxVertexSlots  = 8

	uniformSet = 0
	textureSet = 1
)

func (d *device) createDescriptorLayouts() error {
	allStages := vk.ShaderStageFlags(vk.ShaderStageAllGraphics | vk.ShaderStageComputeBit)

	uniformBindings := make([]vk.DescriptorSetLayoutBinding, maxUniformSlots)
	for i := range uniformBindings {
		uniformBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      allStages,
		}
	}
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(uniformBindings)),
		PBindings:    uniformBindings,
	}
	if err := vk.Error(vk.CreateDescriptorSetLayout(d.device, &info, nil, &d.uniformLayout)); err != nil {
		return fmt.Errorf("%w: uniform set layout: %v", pie.ErrDeviceCreation, err)
	}

	textureBindings := make([]vk.DescriptorSetLayoutBinding, maxTextureSlots)
	for i := range textureBindings {
		textureBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      allStages,
		}
	}
	info = vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(textureBindings)),
		PBindings:    textureBindings,
	}
	if err := vk.Error(vk.CreateDescriptorSetLayout(d.device, &info, nil, &d.textureLayout)); err != nil {
		return fmt.Errorf("%w: texture set layout: %v", pie.ErrDeviceCreation, err)
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 2,
		PSetLayouts:    []vk.DescriptorSetLayout{d.uniformLayout, d.textureLayout},
	}
	if err := vk.Error(vk.CreatePipelineLayout(d.device, &layoutInfo, nil, &d.pipelineLayout)); err != nil {
		return fmt.Errorf("%w: pipeline layout: %v", pie.ErrDeviceCreation, err)
	}

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxUniformSlots * descriptorSetsPerFrame},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: maxTextureSlots * descriptorSetsPerFrame},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       2 * descriptorSetsPerFrame,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	if err := vk.Error(vk.CreateDescriptorPool(d.device, &poolInfo, nil, &d.descriptorPool)); err != nil {
		return fmt.Errorf("%w: descriptor pool: %v", pie.ErrDeviceCreation, err)
	}
	return nil
}

// descriptorSetsPerFrame bounds how many draw-time descriptor set pairs
// can be allocated between presents. The pool is reset wholesale every
// Present.
const descriptorSetsPerFrame = 256

// pipelineKey identifies one baked pipeline by everything that feeds
// graphics pipeline creation. Viewport, scissor, and stencil reference
// are dynamic state and stay out of the key.
type pipelineKey struct {
	shader       *shader
	layout       *inputLayout
	primitive    pie.PrimitiveType
	rasterizer   *rasterizerState
	blend        *blendState
	depthStencil *depthStencilState
	renderPass   vk.RenderPass
	strides      [maxVertexSlots]uint32
}

// pipelineFor returns the pipeline for the currently bound state,
// building and caching it on first use.
func (d *device) pipelineFor(renderPass vk.RenderPass) (vk.Pipeline, error) {
	key := pipelineKey{
		shader:       d.boundShader,
		layout:       d.boundLayout,
		primitive:    d.primitive,
		rasterizer:   d.boundRasterizer,
		blend:        d.boundBlend,
		depthStencil: d.boundDepthStencil,
		renderPass:   renderPass,
		strides:      d.vertexStrides,
	}
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	p, err := d.buildPipeline(key)
	if err != nil {
		return vk.NullPipeline, err
	}
	d.pipelines[key] = p
	return p, nil
}

func (d *device) buildPipeline(key pipelineKey) (vk.Pipeline, error) {
	if key.shader == nil {
		return vk.NullPipeline, fmt.Errorf("pie: draw with no shader bound")
	}

	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(key.shader.stages))
	for _, st := range key.shader.stages {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  st.stage,
			Module: st.module,
			PName:  safeString(st.entry),
		})
	}

	var bindings []vk.VertexInputBindingDescription
	var attrs []vk.VertexInputAttributeDescription
	if key.layout != nil {
		seen := map[uint32]bool{}
		for loc, a := range key.layout.descs {
			if !seen[a.Slot] {
				seen[a.Slot] = true
				bindings = append(bindings, vk.VertexInputBindingDescription{
					Binding:   a.Slot,
					Stride:    key.strides[a.Slot],
					InputRate: vk.VertexInputRateVertex,
				})
			}
			attrs = append(attrs, vk.VertexInputAttributeDescription{
				Location: uint32(loc),
				Binding:  a.Slot,
				Format:   vkAttributeFormat(a.Type),
				Offset:   a.Offset,
			})
		}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vkPrimitive(key.primitive),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rsDesc := pie.RasterizerStateCullClockwise
	if key.rasterizer != nil {
		rsDesc = key.rasterizer.desc
	}
	frontFace := vk.FrontFaceClockwise
	if rsDesc.FrontFaceCCW {
		frontFace = vk.FrontFaceCounterClockwise
	}
	rasterization := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vkPolygonMode(rsDesc.FillMode),
		CullMode:    vk.CullModeFlags(vkCullMode(rsDesc.CullFace)),
		FrontFace:   frontFace,
		LineWidth:   1,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	dsDesc := pie.DepthStencilStateDisabled
	if key.depthStencil != nil {
		dsDesc = key.depthStencil.desc
	}
	depthEnable := vk.Bool32(vk.False)
	if dsDesc.DepthEnabled {
		depthEnable = vk.True
	}
	depthWrite := vk.Bool32(vk.False)
	if dsDesc.DepthWrite {
		depthWrite = vk.True
	}
	stencilEnable := vk.Bool32(vk.False)
	if dsDesc.StencilEnabled {
		stencilEnable = vk.True
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   depthEnable,
		DepthWriteEnable:  depthWrite,
		DepthCompareOp:    vkCompareOp(dsDesc.DepthFunc),
		StencilTestEnable: stencilEnable,
		Front:             stencilFace(dsDesc.Front, dsDesc.StencilReadMask, dsDesc.StencilWriteMask),
		Back:              stencilFace(dsDesc.Back, dsDesc.StencilReadMask, dsDesc.StencilWriteMask),
	}

	bsDesc := pie.BlendStateDisabled
	if key.blend != nil {
		bsDesc = key.blend.desc
	}
	blendEnable := vk.Bool32(vk.False)
	if bsDesc.Enabled {
		blendEnable = vk.True
	}
	attachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         blendEnable,
		SrcColorBlendFactor: vkBlendFactor(bsDesc.Source),
		DstColorBlendFactor: vkBlendFactor(bsDesc.Destination),
		ColorBlendOp:        vkBlendOp(bsDesc.Operation),
		SrcAlphaBlendFactor: vkBlendFactor(bsDesc.SourceAlpha),
		DstAlphaBlendFactor: vkBlendFactor(bsDesc.DestinationAlpha),
		AlphaBlendOp:        vkBlendOp(bsDesc.AlphaOperation),
		ColorWriteMask:      colorWriteMask(bsDesc.WriteMask),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{attachment},
	}

	dynamics := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateStencilReference,
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamics)),
		PDynamicStates:    dynamics,
	}

	createInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterization,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              d.pipelineLayout,
		RenderPass:          key.renderPass,
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)
	if err := vk.Error(res); err != nil {
		return vk.NullPipeline, fmt.Errorf("pie: pipeline creation failed: %w", err)
	}
	return pipelines[0], nil
}

func stencilFace(f pie.StencilFace, readMask, writeMask uint8) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:      vkStencilOp(f.StencilFail),
		PassOp:      vkStencilOp(f.Pass),
		DepthFailOp: vkStencilOp(f.DepthFail),
		CompareOp:   vkCompareOp(f.Func),
		CompareMask: uint32(readMask),
		WriteMask:   uint32(writeMask),
	}
}

// computePipelineFor caches compute pipelines by shader.
func (d *device) computePipelineFor(s *shader) (vk.Pipeline, error) {
	if p, ok := d.computePipelines[s]; ok {
		return p, nil
	}
	var stage vk.PipelineShaderStageCreateInfo
	found := false
	for _, st := range s.stages {
		if st.stage == vk.ShaderStageComputeBit {
			stage = vk.PipelineShaderStageCreateInfo{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  st.stage,
				Module: st.module,
				PName:  safeString(st.entry),
			}
			found = true
		}
	}
	if !found {
		return vk.NullPipeline, fmt.Errorf("pie: dispatch with no compute stage bound")
	}
	createInfo := vk.ComputePipelineCreateInfo{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  stage,
		Layout: d.pipelineLayout,
	}
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateComputePipelines(d.device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.ComputePipelineCreateInfo{createInfo}, nil, pipelines)
	if err := vk.Error(res); err != nil {
		return vk.NullPipeline, fmt.Errorf("pie: compute pipeline creation failed: %w", err)
	}
	d.computePipelines[s] = pipelines[0]
	return pipelines[0], nil
}
