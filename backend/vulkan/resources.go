package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/shaderc"
)

// buffer owns one vk.Buffer and its memory. Dynamic buffers live in
// host-visible coherent memory and stay mappable; static buffers live
// in device-local memory and are filled through a staging copy.
type buffer struct {
	d        *device
	typ      pie.BufferType
	size     uint32
	dynamic  bool
	handle   vk.Buffer
	memory   vk.DeviceMemory
	mapped   bool
	disposed bool
}

func (d *device) newBuffer(typ pie.BufferType, size uint32, dynamic bool, data []byte) (*buffer, error) {
	usage := vkBufferUsage(typ) | vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)

	b := &buffer{d: d, typ: typ, size: size, dynamic: dynamic}
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if err := vk.Error(vk.CreateBuffer(d.device, &createInfo, nil, &b.handle)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateBuffer: %v", pie.ErrResourceCreation, err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, b.handle, &memReqs)
	memReqs.Deref()

	props := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	if dynamic {
		props = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	}
	memType, err := findMemoryType(d.physical.handle, memReqs.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(d.device, b.handle, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	if err := vk.Error(vk.AllocateMemory(d.device, &allocInfo, nil, &b.memory)); err != nil {
		vk.DestroyBuffer(d.device, b.handle, nil)
		return nil, fmt.Errorf("%w: vkAllocateMemory: %v", pie.ErrResourceCreation, err)
	}
	if err := vk.Error(vk.BindBufferMemory(d.device, b.handle, b.memory, 0)); err != nil {
		b.destroyNative()
		return nil, fmt.Errorf("%w: vkBindBufferMemory: %v", pie.ErrResourceCreation, err)
	}

	if data != nil {
		if dynamic {
			if err := b.write(0, data); err != nil {
				b.destroyNative()
				return nil, err
			}
		} else if err := d.uploadToBuffer(b, data); err != nil {
			b.destroyNative()
			return nil, err
		}
	}
	return b, nil
}

// write maps host-visible memory and copies data at offset.
func (b *buffer) write(offset uint32, data []byte) error {
	var ptr unsafe.Pointer
	if err := vk.Error(vk.MapMemory(b.d.device, b.memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr)); err != nil {
		return fmt.Errorf("pie: failed to map buffer memory: %w", err)
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	vk.UnmapMemory(b.d.device, b.memory)
	return nil
}

func (b *buffer) destroyNative() {
	vk.FreeMemory(b.d.device, b.memory, nil)
	vk.DestroyBuffer(b.d.device, b.handle, nil)
}

func (b *buffer) Type() pie.BufferType { return b.typ }

func (b *buffer) SizeInBytes() uint32 { return b.size }

func (b *buffer) Dynamic() bool { return b.dynamic }

func (b *buffer) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.destroyNative()
}

// texture owns one vk.Image, its memory, and a full-resource view.
type texture struct {
	d        *device
	desc     pie.TextureDescription
	image    vk.Image
	memory   vk.DeviceMemory
	view     vk.ImageView
	layout   vk.ImageLayout
	disposed bool
}

func (d *device) newTexture(desc pie.TextureDescription, data []byte) (*texture, error) {
	format := vkFormat(desc.Format)
	if format == vk.FormatUndefined {
		return nil, fmt.Errorf("%w: %s", pie.ErrUnsupportedFormat, desc.Format)
	}
	desc.MipLevels = desc.ResolvedMipLevels()
	if desc.ArraySize < 1 {
		desc.ArraySize = 1
	}
	layers := uint32(desc.ArraySize)
	imageType := vk.ImageType2d
	flags := vk.ImageCreateFlags(0)
	depth := uint32(1)
	switch desc.Type {
	case pie.TextureType3D:
		imageType = vk.ImageType3d
		depth = uint32(max(desc.Depth, 1))
	case pie.TextureTypeCube:
		layers *= 6
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	usage := vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit)
	if desc.Usage&pie.TextureUsageGenerateMips != 0 {
		usage |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	if desc.Usage&pie.TextureUsageFramebuffer != 0 {
		if desc.Format.IsDepth() {
			usage |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
		} else {
			usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
		}
	}

	t := &texture{d: d, desc: desc, layout: vk.ImageLayoutUndefined}
	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: imageType,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  uint32(desc.Width),
			Height: uint32(desc.Height),
			Depth:  depth,
		},
		MipLevels:     uint32(desc.MipLevels),
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if err := vk.Error(vk.CreateImage(d.device, &createInfo, nil, &t.image)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateImage: %v", pie.ErrResourceCreation, err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, t.image, &memReqs)
	memReqs.Deref()
	memType, err := findMemoryType(d.physical.handle, memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(d.device, t.image, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	if err := vk.Error(vk.AllocateMemory(d.device, &allocInfo, nil, &t.memory)); err != nil {
		vk.DestroyImage(d.device, t.image, nil)
		return nil, fmt.Errorf("%w: vkAllocateMemory: %v", pie.ErrResourceCreation, err)
	}
	if err := vk.Error(vk.BindImageMemory(d.device, t.image, t.memory, 0)); err != nil {
		t.destroyNative()
		return nil, fmt.Errorf("%w: vkBindImageMemory: %v", pie.ErrResourceCreation, err)
	}

	viewType := vk.ImageViewType2d
	switch desc.Type {
	case pie.TextureType3D:
		viewType = vk.ImageViewType3d
	case pie.TextureTypeCube:
		viewType = vk.ImageViewTypeCube
	default:
		if desc.ArraySize > 1 {
			viewType = vk.ImageViewType2dArray
		}
	}
	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if desc.Format.IsDepth() {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if desc.Format.HasStencil() {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    t.image,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: uint32(desc.MipLevels),
			LayerCount: layers,
		},
	}
	if err := vk.Error(vk.CreateImageView(d.device, &viewInfo, nil, &t.view)); err != nil {
		t.destroyNative()
		return nil, fmt.Errorf("%w: vkCreateImageView: %v", pie.ErrResourceCreation, err)
	}

	if data != nil {
		if err := d.uploadToTexture(t, data); err != nil {
			t.Dispose()
			return nil, err
		}
	}
	return t, nil
}

func (t *texture) destroyNative() {
	vk.FreeMemory(t.d.device, t.memory, nil)
	vk.DestroyImage(t.d.device, t.image, nil)
}

func (t *texture) Description() pie.TextureDescription { return t.desc }

func (t *texture) Dynamic() bool { return t.desc.Dynamic }

func (t *texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	vk.DestroyImageView(t.d.device, t.view, nil)
	t.destroyNative()
}

// shader holds one compiled module per stage.
type shader struct {
	d        *device
	stages   []shaderStage
	compute  bool
	disposed bool
}

type shaderStage struct {
	stage  vk.ShaderStageFlagBits
	module vk.ShaderModule
	entry  string
}

func (d *device) newShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (*shader, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: shader needs at least one attachment", pie.ErrShaderCompile)
	}
	s := &shader{d: d}
	for _, a := range attachments {
		var code []byte
		switch a.Language {
		case pie.LanguageSPIRV:
			code = a.Source
		case pie.LanguageWGSL:
			var err error
			code, err = shaderc.CompileWGSL(string(a.Source))
			if err != nil {
				s.Dispose()
				return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
			}
		default:
			s.Dispose()
			return nil, fmt.Errorf("%w: vulkan cannot consume language %d", pie.ErrShaderCompile, a.Language)
		}

		words, err := shaderc.Words(code)
		if err != nil {
			s.Dispose()
			return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
		}
		words = shaderc.Specialize(words, constants)
		code = shaderc.Bytes(words)

		createInfo := vk.ShaderModuleCreateInfo{
			SType:    vk.StructureTypeShaderModuleCreateInfo,
			CodeSize: uint(len(code)),
			PCode:    words,
		}
		var module vk.ShaderModule
		if err := vk.Error(vk.CreateShaderModule(d.device, &createInfo, nil, &module)); err != nil {
			s.Dispose()
			return nil, fmt.Errorf("%w: vkCreateShaderModule (%s): %v", pie.ErrShaderCompile, a.Stage, err)
		}
		s.stages = append(s.stages, shaderStage{
			stage:  vkShaderStage(a.Stage),
			module: module,
			entry:  a.Entry(),
		})
		if a.Stage == pie.ShaderStageCompute {
			s.compute = true
		}
	}
	return s, nil
}

func (s *shader) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, st := range s.stages {
		vk.DestroyShaderModule(s.d.device, st.module, nil)
	}
	s.stages = nil
}

// State objects store their descriptions; pipeline assembly consumes
// them. Only samplers compile to a native handle up front.

type rasterizerState struct {
	desc     pie.RasterizerStateDescription
	disposed bool
}

func (s *rasterizerState) Description() pie.RasterizerStateDescription { return s.desc }

func (s *rasterizerState) Dispose() { s.disposed = true }

type blendState struct {
	desc     pie.BlendStateDescription
	disposed bool
}

func (s *blendState) Description() pie.BlendStateDescription { return s.desc }

func (s *blendState) Dispose() { s.disposed = true }

type depthStencilState struct {
	desc     pie.DepthStencilStateDescription
	disposed bool
}

func (s *depthStencilState) Description() pie.DepthStencilStateDescription { return s.desc }

func (s *depthStencilState) Dispose() { s.disposed = true }

type samplerState struct {
	d        *device
	desc     pie.SamplerStateDescription
	handle   vk.Sampler
	disposed bool
}

func (d *device) newSampler(desc pie.SamplerStateDescription) (*samplerState, error) {
	filter, mip, aniso := vkFilter(desc.Filter)
	anisoEnable := vk.Bool32(vk.False)
	maxAniso := float32(1)
	if aniso && desc.MaxAnisotropy > 0 {
		anisoEnable = vk.True
		maxAniso = float32(desc.MaxAnisotropy)
	}
	createInfo := vk.SamplerCreateInfo{
		SType:            vk.StructureTypeSamplerCreateInfo,
		MagFilter:        filter,
		MinFilter:        filter,
		MipmapMode:       mip,
		AddressModeU:     vkAddressMode(desc.AddressU),
		AddressModeV:     vkAddressMode(desc.AddressV),
		AddressModeW:     vkAddressMode(desc.AddressW),
		AnisotropyEnable: anisoEnable,
		MaxAnisotropy:    maxAniso,
		MinLod:           desc.MinLOD,
		MaxLod:           desc.MaxLOD,
		BorderColor:      vk.BorderColorFloatOpaqueBlack,
	}
	s := &samplerState{d: d, desc: desc}
	if err := vk.Error(vk.CreateSampler(d.device, &createInfo, nil, &s.handle)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateSampler: %v", pie.ErrResourceCreation, err)
	}
	return s, nil
}

func (s *samplerState) Description() pie.SamplerStateDescription { return s.desc }

func (s *samplerState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	vk.DestroySampler(s.d.device, s.handle, nil)
}

type inputLayout struct {
	descs    []pie.InputLayoutDescription
	disposed bool
}

func (l *inputLayout) Descriptions() []pie.InputLayoutDescription { return l.descs }

func (l *inputLayout) Dispose() { l.disposed = true }

// framebuffer binds existing texture views as render targets. Render
// passes come from the device cache; the vk.Framebuffer is created
// against the load-preserving variant, with which the clear variants
// are compatible. The attached textures are referenced, never owned.
type framebuffer struct {
	d            *device
	handle       vk.Framebuffer
	colors       []*texture
	depthStencil *texture
	colorFormats []vk.Format
	depthFormat  vk.Format
	width        int
	height       int
	disposed     bool
}

func (d *device) newFramebuffer(attachments []pie.FramebufferAttachment) (*framebuffer, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: framebuffer needs at least one attachment", pie.ErrResourceCreation)
	}
	fb := &framebuffer{d: d}

	var views []vk.ImageView
	for _, a := range attachments {
		t, ok := a.Texture.(*texture)
		if !ok || t.disposed {
			return nil, pie.ErrDisposed
		}
		if fb.width == 0 {
			fb.width, fb.height = t.desc.Width, t.desc.Height
		}
		if t.desc.Format.IsDepth() {
			if fb.depthStencil != nil {
				return nil, fmt.Errorf("%w: multiple depth-stencil attachments", pie.ErrResourceCreation)
			}
			fb.depthStencil = t
			fb.depthFormat = vkFormat(t.desc.Format)
		} else {
			fb.colors = append(fb.colors, t)
			fb.colorFormats = append(fb.colorFormats, vkFormat(t.desc.Format))
		}
	}
	// Attachment order in the render pass is colors first, then depth.
	for _, t := range fb.colors {
		views = append(views, t.view)
	}
	if fb.depthStencil != nil {
		views = append(views, fb.depthStencil.view)
	}

	rp, err := d.renderPassFor(fb.colorFormats, fb.depthFormat, loadOps{})
	if err != nil {
		return nil, err
	}
	fbInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           uint32(fb.width),
		Height:          uint32(fb.height),
		Layers:          1,
	}
	if err := vk.Error(vk.CreateFramebuffer(d.device, &fbInfo, nil, &fb.handle)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateFramebuffer: %v", pie.ErrResourceCreation, err)
	}
	return fb, nil
}

func (f *framebuffer) Size() (int, int) { return f.width, f.height }

func (f *framebuffer) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	vk.DestroyFramebuffer(f.d.device, f.handle, nil)
}
