package webgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/shaderc"
)

type buffer struct {
	d        *device
	handle   hal.Buffer
	typ      pie.BufferType
	size     uint32
	dynamic  bool
	disposed bool
}

func (d *device) newBuffer(typ pie.BufferType, size uint32, dynamic bool, data []byte) (*buffer, error) {
	usage := wgBufferUsage(typ) | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	handle, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "pie_" + typ.String(),
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s buffer of %d bytes: %v", pie.ErrResourceCreation, typ, size, err)
	}
	b := &buffer{d: d, handle: handle, typ: typ, size: size, dynamic: dynamic}
	if data != nil {
		d.queue.WriteBuffer(handle, 0, data)
	}
	return b, nil
}

func (b *buffer) write(offset uint32, data []byte) error {
	b.d.queue.WriteBuffer(b.handle, uint64(offset), data)
	return nil
}

func (b *buffer) Type() pie.BufferType { return b.typ }

func (b *buffer) SizeInBytes() uint32 { return b.size }

func (b *buffer) Dynamic() bool { return b.dynamic }

func (b *buffer) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.d.dev.DestroyBuffer(b.handle)
}

type texture struct {
	d      *device
	handle hal.Texture
	view   hal.TextureView
	desc   pie.TextureDescription
	format gputypes.TextureFormat

	// usage tracks the texture's current access for barrier insertion.
	usage    gputypes.TextureUsage
	disposed bool
}

func (d *device) newTexture(desc pie.TextureDescription, data []byte) (*texture, error) {
	format := wgFormat(desc.Format)
	if format == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: %s", pie.ErrUnsupportedFormat, desc.Format)
	}
	desc.MipLevels = desc.ResolvedMipLevels()
	if desc.ArraySize < 1 {
		desc.ArraySize = 1
	}

	layers := uint32(desc.ArraySize)
	dimension := gputypes.TextureDimension2D
	viewDimension := gputypes.TextureViewDimension2D
	depth := uint32(1)
	switch desc.Type {
	case pie.TextureType3D:
		dimension = gputypes.TextureDimension3D
		viewDimension = gputypes.TextureViewDimension3D
		depth = uint32(max(desc.Depth, 1))
		layers = 1
	case pie.TextureTypeCube:
		layers *= 6
		viewDimension = gputypes.TextureViewDimensionCube
	default:
		if desc.ArraySize > 1 {
			viewDimension = gputypes.TextureViewDimension2DArray
		}
	}
	depthOrLayers := depth
	if dimension == gputypes.TextureDimension2D {
		depthOrLayers = layers
	}

	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if desc.Usage&pie.TextureUsageFramebuffer != 0 {
		usage |= gputypes.TextureUsageRenderAttachment
	}

	handle, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: "pie_texture",
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: depthOrLayers,
		},
		MipLevelCount: uint32(desc.MipLevels),
		SampleCount:   1,
		Dimension:     dimension,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %dx%d %s: %v",
			pie.ErrResourceCreation, desc.Width, desc.Height, desc.Format, err)
	}

	view, err := d.dev.CreateTextureView(handle, &hal.TextureViewDescriptor{
		Label:         "pie_texture_view",
		Format:        format,
		Dimension:     viewDimension,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: uint32(desc.MipLevels),
	})
	if err != nil {
		d.dev.DestroyTexture(handle)
		return nil, fmt.Errorf("%w: texture view: %v", pie.ErrResourceCreation, err)
	}

	t := &texture{d: d, handle: handle, view: view, desc: desc, format: format,
		usage: gputypes.TextureUsageCopyDst}
	if data != nil {
		if err := d.writeTextureLevel(t, 0, 0, 0, 0, 0, desc.Width, desc.Height, max(desc.Depth, 1), data); err != nil {
			t.Dispose()
			return nil, err
		}
	}
	return t, nil
}

// writeTextureLevel uploads a region of one mip level through the
// queue.
func (d *device) writeTextureLevel(t *texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error {
	bytesPerRow := uint32(width) * t.desc.Format.BytesPerTexel()
	origin := hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)}
	if t.desc.Type != pie.TextureType3D {
		origin.Z = arrayIndex
		depth = 1
	}
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.handle,
			MipLevel: mipLevel,
			Origin:   origin,
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: uint32(max(depth, 1)),
		},
	)
	return nil
}

func (t *texture) level0Size() uint32 {
	size := uint32(t.desc.Width) * uint32(t.desc.Height) * t.desc.Format.BytesPerTexel()
	if t.desc.Type == pie.TextureType3D {
		size *= uint32(max(t.desc.Depth, 1))
	}
	return size
}

func (t *texture) layerCount() int {
	n := max(t.desc.ArraySize, 1)
	if t.desc.Type == pie.TextureTypeCube {
		n *= 6
	}
	return n
}

func (t *texture) Description() pie.TextureDescription { return t.desc }

func (t *texture) Dynamic() bool { return t.desc.Dynamic }

func (t *texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.d.dev.DestroyTextureView(t.view)
	t.d.dev.DestroyTexture(t.handle)
}

// stageModule is one compiled stage of a shader program.
type stageModule struct {
	stage  pie.ShaderStage
	module hal.ShaderModule
	entry  string
}

type shader struct {
	d        *device
	stages   []stageModule
	compute  bool
	disposed bool
}

func (d *device) newShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (*shader, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: shader with no attachments", pie.ErrShaderCompile)
	}
	s := &shader{d: d}
	for _, a := range attachments {
		if a.Stage == pie.ShaderStageGeometry {
			s.destroyModules()
			return nil, fmt.Errorf("%w: geometry stage is not available on webgpu", pie.ErrShaderCompile)
		}

		var code []byte
		var err error
		switch a.Language {
		case pie.LanguageSPIRV:
			code = a.Source
		case pie.LanguageWGSL:
			code, err = shaderc.CompileWGSL(string(a.Source))
			if err != nil {
				s.destroyModules()
				return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
			}
		default:
			s.destroyModules()
			return nil, fmt.Errorf("%w: webgpu consumes SPIR-V or WGSL, got language %d",
				pie.ErrShaderCompile, a.Language)
		}

		words, err := shaderc.Words(code)
		if err != nil {
			s.destroyModules()
			return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
		}
		words = shaderc.Specialize(words, constants)

		module, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "pie_" + a.Stage.String(),
			Source: hal.ShaderSource{SPIRV: words},
		})
		if err != nil {
			s.destroyModules()
			return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
		}
		s.stages = append(s.stages, stageModule{stage: a.Stage, module: module, entry: a.Entry()})
		if a.Stage == pie.ShaderStageCompute {
			s.compute = true
		}
	}
	if s.compute && len(s.stages) != 1 {
		s.destroyModules()
		return nil, fmt.Errorf("%w: a compute attachment must be the only attachment", pie.ErrShaderCompile)
	}
	return s, nil
}

func (s *shader) stageFor(stage pie.ShaderStage) (stageModule, bool) {
	for _, st := range s.stages {
		if st.stage == stage {
			return st, true
		}
	}
	return stageModule{}, false
}

func (s *shader) destroyModules() {
	for _, st := range s.stages {
		s.d.dev.DestroyShaderModule(st.module)
	}
	s.stages = nil
}

func (s *shader) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.d.dropShaderPipelines(s)
	s.destroyModules()
}

type samplerState struct {
	d        *device
	handle   hal.Sampler
	desc     pie.SamplerStateDescription
	disposed bool
}

func (d *device) newSampler(desc pie.SamplerStateDescription) (*samplerState, error) {
	mag, min, mip := wgFilters(desc.Filter)
	handle, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        "pie_sampler",
		AddressModeU: wgAddressMode(desc.AddressU),
		AddressModeV: wgAddressMode(desc.AddressV),
		AddressModeW: wgAddressMode(desc.AddressW),
		MagFilter:    mag,
		MinFilter:    min,
		MipmapFilter: mip,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sampler: %v", pie.ErrResourceCreation, err)
	}
	return &samplerState{d: d, handle: handle, desc: desc}, nil
}

func (s *samplerState) Description() pie.SamplerStateDescription { return s.desc }

func (s *samplerState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.d.dev.DestroySampler(s.handle)
}

type framebuffer struct {
	d            *device
	colors       []*texture
	colorViews   []hal.TextureView
	colorFormats []gputypes.TextureFormat
	depth        *texture
	depthView    hal.TextureView
	depthFormat  gputypes.TextureFormat
	width        int
	height       int
	disposed     bool
}

func (d *device) newFramebuffer(attachments []pie.FramebufferAttachment) (*framebuffer, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: framebuffer with no attachments", pie.ErrResourceCreation)
	}
	fb := &framebuffer{d: d}
	for _, a := range attachments {
		t, ok := a.Texture.(*texture)
		if !ok || t.disposed {
			fb.Dispose()
			return nil, fmt.Errorf("%w: invalid framebuffer attachment texture", pie.ErrResourceCreation)
		}
		if t.desc.Usage&pie.TextureUsageFramebuffer == 0 {
			fb.Dispose()
			return nil, fmt.Errorf("%w: attachment texture lacks TextureUsageFramebuffer", pie.ErrResourceCreation)
		}
		view, err := d.dev.CreateTextureView(t.handle, &hal.TextureViewDescriptor{
			Label:           "pie_attachment",
			Format:          t.format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			BaseMipLevel:    a.MipLevel,
			MipLevelCount:   1,
			BaseArrayLayer:  a.ArrayIndex,
			ArrayLayerCount: 1,
		})
		if err != nil {
			fb.Dispose()
			return nil, fmt.Errorf("%w: attachment view: %v", pie.ErrResourceCreation, err)
		}

		w := max(t.desc.Width>>a.MipLevel, 1)
		h := max(t.desc.Height>>a.MipLevel, 1)
		if fb.width == 0 {
			fb.width, fb.height = w, h
		}

		if t.desc.Format.IsDepth() {
			if fb.depth != nil {
				d.dev.DestroyTextureView(view)
				fb.Dispose()
				return nil, fmt.Errorf("%w: more than one depth-stencil attachment", pie.ErrResourceCreation)
			}
			fb.depth = t
			fb.depthView = view
			fb.depthFormat = t.format
		} else {
			fb.colors = append(fb.colors, t)
			fb.colorViews = append(fb.colorViews, view)
			fb.colorFormats = append(fb.colorFormats, t.format)
		}
	}
	return fb, nil
}

func (f *framebuffer) Size() (int, int) { return f.width, f.height }

func (f *framebuffer) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	if f.d.boundFramebuffer == f {
		f.d.SetFramebuffer(nil)
	}
	for _, v := range f.colorViews {
		f.d.dev.DestroyTextureView(v)
	}
	if f.depthView != nil {
		f.d.dev.DestroyTextureView(f.depthView)
	}
}

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

type inputLayout struct {
	descs    []pie.InputLayoutDescription
	disposed bool
}

func (l *inputLayout) Descriptions() []pie.InputLayoutDescription { return l.descs }

func (l *inputLayout) Dispose() { l.disposed = true }
