//go:build windows

package d3d11

import (
	"fmt"
	"runtime"
	"unsafe"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend/d3d11/internal/com"
)

func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

type buffer struct {
	d      *device
	handle *com.Buffer
	typ    pie.BufferType
	size   uint32
	// nativeSize is the created resource size; constant buffers round
	// up to a 16-byte multiple.
	nativeSize uint32

	// shadow mirrors the buffer contents for dynamic buffers so that
	// mapping can expose them without a staging readback.
	shadow   []byte
	dynamic  bool
	disposed bool
}

func (d *device) newBuffer(typ pie.BufferType, size uint32, dynamic bool, data []byte) (*buffer, error) {
	byteWidth := size
	var bind uint32
	switch typ {
	case pie.BufferTypeIndex:
		bind = com.BIND_INDEX_BUFFER
	case pie.BufferTypeUniform:
		bind = com.BIND_CONSTANT_BUFFER
		// Constant buffer sizes must be a multiple of 16.
		byteWidth = (byteWidth + 15) &^ 15
	case pie.BufferTypeShaderStorage:
		bind = com.BIND_SHADER_RESOURCE
	default:
		bind = com.BIND_VERTEX_BUFFER
	}

	var init []byte
	if data != nil && byteWidth == size {
		init = data
	}
	handle, err := d.dev.CreateBuffer(&com.BUFFER_DESC{
		ByteWidth: byteWidth,
		Usage:     com.USAGE_DEFAULT,
		BindFlags: bind,
	}, init)
	if err != nil {
		return nil, fmt.Errorf("%w: %s buffer of %d bytes: %v", pie.ErrResourceCreation, typ, size, err)
	}

	b := &buffer{d: d, handle: handle, typ: typ, size: size, nativeSize: byteWidth, dynamic: dynamic}
	if dynamic {
		b.shadow = make([]byte, size)
		copy(b.shadow, data)
	}
	if data != nil && init == nil {
		if err := b.write(0, data); err != nil {
			b.Dispose()
			return nil, err
		}
	}
	return b, nil
}

func (b *buffer) write(offset uint32, data []byte) error {
	if b.dynamic {
		copy(b.shadow[offset:], data)
	}
	if b.typ == pie.BufferTypeUniform {
		// Partial constant buffer updates are rejected by the runtime;
		// write the whole resource, padded to the rounded size.
		if !b.dynamic && (offset != 0 || uint32(len(data)) != b.size) {
			return fmt.Errorf("pie: partial update of a non-dynamic uniform buffer")
		}
		full := make([]byte, b.nativeSize)
		if b.dynamic {
			copy(full, b.shadow)
		} else {
			copy(full, data)
		}
		b.d.ctx.UpdateSubresource(b.handle, 0, nil, full, 0, 0)
		return nil
	}
	box := &com.BOX{
		Left:   offset,
		Right:  offset + uint32(len(data)),
		Bottom: 1,
		Back:   1,
	}
	b.d.ctx.UpdateSubresource(b.handle, 0, box, data, 0, 0)
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
	b.handle.Release()
}

type texture struct {
	d      *device
	res    *com.Object
	srv    *com.ShaderResource
	desc   pie.TextureDescription
	format uint32

	disposed bool
}

func (d *device) newTexture(desc pie.TextureDescription, data []byte) (*texture, error) {
	format := dxFormat(desc.Format)
	if format == com.DXGI_FORMAT_UNKNOWN {
		return nil, fmt.Errorf("%w: %s", pie.ErrUnsupportedFormat, desc.Format)
	}
	desc.MipLevels = desc.ResolvedMipLevels()
	if desc.ArraySize < 1 {
		desc.ArraySize = 1
	}
	isDepth := desc.Format.IsDepth()

	bind := uint32(0)
	if !isDepth {
		bind |= com.BIND_SHADER_RESOURCE
	}
	var misc uint32
	if desc.Usage&pie.TextureUsageFramebuffer != 0 {
		if isDepth {
			bind |= com.BIND_DEPTH_STENCIL
		} else {
			bind |= com.BIND_RENDER_TARGET
		}
	}
	if desc.Usage&pie.TextureUsageGenerateMips != 0 {
		bind |= com.BIND_RENDER_TARGET
		misc |= com.RESOURCE_MISC_GENERATE_MIPS
	}

	var init []com.SUBRESOURCE_DATA
	if data != nil && desc.MipLevels == 1 && desc.Type != pie.TextureType3D {
		layers := desc.ArraySize
		if desc.Type == pie.TextureTypeCube {
			layers *= 6
		}
		pitch := uint32(desc.Width) * desc.Format.BytesPerTexel()
		layerSize := pitch * uint32(desc.Height)
		if desc.Format.IsCompressed() {
			pitch = uint32((desc.Width+3)/4) * desc.Format.BytesPerTexel()
			layerSize = pitch * uint32((desc.Height+3)/4)
		}
		init = make([]com.SUBRESOURCE_DATA, layers)
		for i := range init {
			layer := data[uint32(i)*layerSize:]
			init[i] = com.SUBRESOURCE_DATA{
				PSysMem:     sliceAddr(layer),
				SysMemPitch: pitch,
			}
		}
	}

	var (
		res *com.Object
		err error
	)
	srvDesc := &com.SHADER_RESOURCE_VIEW_DESC{Format: format}
	switch desc.Type {
	case pie.TextureType3D:
		res, err = d.dev.CreateTexture3D(&com.TEXTURE3D_DESC{
			Width:     uint32(desc.Width),
			Height:    uint32(desc.Height),
			Depth:     uint32(max(desc.Depth, 1)),
			MipLevels: uint32(desc.MipLevels),
			Format:    format,
			Usage:     com.USAGE_DEFAULT,
			BindFlags: bind,
			MiscFlags: misc,
		}, nil)
		srvDesc.ViewDimension = com.SRV_DIMENSION_TEXTURE3D
		srvDesc.U = [4]uint32{0, uint32(desc.MipLevels)}
	default:
		layers := uint32(desc.ArraySize)
		if desc.Type == pie.TextureTypeCube {
			layers *= 6
			misc |= com.RESOURCE_MISC_TEXTURECUBE
			srvDesc.ViewDimension = com.SRV_DIMENSION_TEXTURECUBE
			srvDesc.U = [4]uint32{0, uint32(desc.MipLevels)}
		} else if desc.ArraySize > 1 {
			srvDesc.ViewDimension = com.SRV_DIMENSION_TEXTURE2DARRAY
			srvDesc.U = [4]uint32{0, uint32(desc.MipLevels), 0, layers}
		} else {
			srvDesc.ViewDimension = com.SRV_DIMENSION_TEXTURE2D
			srvDesc.U = [4]uint32{0, uint32(desc.MipLevels)}
		}
		res, err = d.dev.CreateTexture2D(&com.TEXTURE2D_DESC{
			Width:      uint32(desc.Width),
			Height:     uint32(desc.Height),
			MipLevels:  uint32(desc.MipLevels),
			ArraySize:  layers,
			Format:     format,
			SampleDesc: com.DXGI_SAMPLE_DESC{Count: 1},
			Usage:      com.USAGE_DEFAULT,
			BindFlags:  bind,
			MiscFlags:  misc,
		}, init)
	}
	runtime.KeepAlive(data)
	if err != nil {
		return nil, fmt.Errorf("%w: texture %dx%d %s: %v",
			pie.ErrResourceCreation, desc.Width, desc.Height, desc.Format, err)
	}

	t := &texture{d: d, res: res, desc: desc, format: format}
	if !isDepth {
		srv, err := d.dev.CreateShaderResourceView(res, srvDesc)
		if err != nil {
			res.Release()
			return nil, fmt.Errorf("%w: shader resource view: %v", pie.ErrResourceCreation, err)
		}
		t.srv = srv
	}
	if data != nil && init == nil {
		if err := d.uploadTextureRegion(t, 0, 0, 0, 0, 0, desc.Width, desc.Height, max(desc.Depth, 1), data); err != nil {
			t.Dispose()
			return nil, err
		}
	}
	return t, nil
}

func (t *texture) layerCount() int {
	n := max(t.desc.ArraySize, 1)
	if t.desc.Type == pie.TextureTypeCube {
		n *= 6
	}
	return n
}

func (t *texture) level0Size() uint32 {
	size := uint32(t.desc.Width) * uint32(t.desc.Height) * t.desc.Format.BytesPerTexel()
	if t.desc.Type == pie.TextureType3D {
		size *= uint32(max(t.desc.Depth, 1))
	}
	return size
}

func (t *texture) Description() pie.TextureDescription { return t.desc }

func (t *texture) Dynamic() bool { return t.desc.Dynamic }

func (t *texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	if t.srv != nil {
		t.srv.Release()
	}
	t.res.Release()
}

// uploadTextureRegion writes a texel region of one subresource through
// UpdateSubresource.
func (d *device) uploadTextureRegion(t *texture, mipLevel, arrayIndex uint32, x, y, z, width, height, depth int, data []byte) error {
	pitch := uint32(width) * t.desc.Format.BytesPerTexel()
	if t.desc.Format.IsCompressed() {
		pitch = uint32((width+3)/4) * t.desc.Format.BytesPerTexel()
	}
	subresource := mipLevel + arrayIndex*uint32(t.desc.MipLevels)
	box := &com.BOX{
		Left:   uint32(x),
		Top:    uint32(y),
		Front:  uint32(z),
		Right:  uint32(x + width),
		Bottom: uint32(y + height),
		Back:   uint32(z + max(depth, 1)),
	}
	if t.desc.Type != pie.TextureType3D {
		box.Front, box.Back = 0, 1
	}
	d.ctx.UpdateSubresource(t.res, subresource, box, data, pitch, pitch*uint32(height))
	return nil
}

// shader holds the per-stage native shaders of one program.
type shader struct {
	d        *device
	vs       *com.VertexShader
	ps       *com.PixelShader
	gs       *com.GeometryShader
	cs       *com.ComputeShader
	vsBlob   []byte // retained for input layout creation
	compute  bool
	disposed bool
}

func stageProfile(stage pie.ShaderStage) string {
	switch stage {
	case pie.ShaderStageVertex:
		return "vs_5_0"
	case pie.ShaderStageFragment:
		return "ps_5_0"
	case pie.ShaderStageGeometry:
		return "gs_5_0"
	default:
		return "cs_5_0"
	}
}

func (d *device) newShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (*shader, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: shader with no attachments", pie.ErrShaderCompile)
	}
	s := &shader{d: d}
	for _, a := range attachments {
		if a.Language != pie.LanguageHLSL {
			s.release()
			return nil, fmt.Errorf("%w: d3d11 consumes HLSL source, got language %d",
				pie.ErrShaderCompile, a.Language)
		}
		src := a.Source
		if len(constants) > 0 {
			// Specialization constants become preprocessor defines; the
			// HLSL references them as PIE_CONSTANT_<id>.
			var header []byte
			for _, c := range constants {
				header = fmt.Appendf(header, "#define PIE_CONSTANT_%d %d\n", c.ID, c.Value)
			}
			src = append(header, src...)
		}
		code, err := com.Compile(src, a.Entry(), stageProfile(a.Stage), d.opts.Debug)
		if err != nil {
			s.release()
			return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
		}
		switch a.Stage {
		case pie.ShaderStageVertex:
			s.vs, err = d.dev.CreateVertexShader(code)
			s.vsBlob = code
		case pie.ShaderStageFragment:
			s.ps, err = d.dev.CreatePixelShader(code)
		case pie.ShaderStageGeometry:
			s.gs, err = d.dev.CreateGeometryShader(code)
		case pie.ShaderStageCompute:
			s.cs, err = d.dev.CreateComputeShader(code)
			s.compute = true
		}
		if err != nil {
			s.release()
			return nil, fmt.Errorf("%w: %s stage: %v", pie.ErrShaderCompile, a.Stage, err)
		}
	}
	if s.compute && (s.vs != nil || s.ps != nil || s.gs != nil) {
		s.release()
		return nil, fmt.Errorf("%w: a compute attachment must be the only attachment", pie.ErrShaderCompile)
	}
	return s, nil
}

func (s *shader) release() {
	if s.vs != nil {
		s.vs.Release()
		s.vs = nil
	}
	if s.ps != nil {
		s.ps.Release()
		s.ps = nil
	}
	if s.gs != nil {
		s.gs.Release()
		s.gs = nil
	}
	if s.cs != nil {
		s.cs.Release()
		s.cs = nil
	}
}

func (s *shader) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.d.dropShaderLayouts(s)
	s.release()
}

type samplerState struct {
	d        *device
	handle   *com.SamplerState
	desc     pie.SamplerStateDescription
	disposed bool
}

func (d *device) newSampler(desc pie.SamplerStateDescription) (*samplerState, error) {
	handle, err := d.dev.CreateSamplerState(&com.SAMPLER_DESC{
		Filter:         dxFilter(desc.Filter),
		AddressU:       dxAddressMode(desc.AddressU),
		AddressV:       dxAddressMode(desc.AddressV),
		AddressW:       dxAddressMode(desc.AddressW),
		MaxAnisotropy:  max(desc.MaxAnisotropy, 1),
		ComparisonFunc: com.COMPARISON_NEVER,
		BorderColor:    desc.BorderColor,
		MinLOD:         desc.MinLOD,
		MaxLOD:         desc.MaxLOD,
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
	s.handle.Release()
}

type rasterizerState struct {
	d        *device
	handle   *com.RasterizerState
	desc     pie.RasterizerStateDescription
	disposed bool
}

func (d *device) newRasterizerState(desc pie.RasterizerStateDescription) (*rasterizerState, error) {
	ccw := uint32(0)
	if desc.FrontFaceCCW {
		ccw = 1
	}
	scissor := uint32(0)
	if desc.ScissorTest {
		scissor = 1
	}
	handle, err := d.dev.CreateRasterizerState(&com.RASTERIZER_DESC{
		FillMode:              dxFillMode(desc.FillMode),
		CullMode:              dxCullMode(desc.CullFace),
		FrontCounterClockwise: ccw,
		DepthClipEnable:       1,
		ScissorEnable:         scissor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rasterizer state: %v", pie.ErrResourceCreation, err)
	}
	return &rasterizerState{d: d, handle: handle, desc: desc}, nil
}

func (s *rasterizerState) Description() pie.RasterizerStateDescription { return s.desc }

func (s *rasterizerState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.handle.Release()
}

type blendState struct {
	d        *device
	handle   *com.BlendState
	desc     pie.BlendStateDescription
	disposed bool
}

func (d *device) newBlendState(desc pie.BlendStateDescription) (*blendState, error) {
	enabled := uint32(0)
	if desc.Enabled {
		enabled = 1
	}
	target := com.RENDER_TARGET_BLEND_DESC{
		BlendEnable:           enabled,
		SrcBlend:              dxBlendFactor(desc.Source),
		DestBlend:             dxBlendFactor(desc.Destination),
		BlendOp:               dxBlendOp(desc.Operation),
		SrcBlendAlpha:         dxBlendFactor(desc.SourceAlpha),
		DestBlendAlpha:        dxBlendFactor(desc.DestinationAlpha),
		BlendOpAlpha:          dxBlendOp(desc.AlphaOperation),
		RenderTargetWriteMask: dxWriteMask(desc.WriteMask),
	}
	var native com.BLEND_DESC
	for i := range native.RenderTarget {
		native.RenderTarget[i] = target
	}
	handle, err := d.dev.CreateBlendState(&native)
	if err != nil {
		return nil, fmt.Errorf("%w: blend state: %v", pie.ErrResourceCreation, err)
	}
	return &blendState{d: d, handle: handle, desc: desc}, nil
}

func (s *blendState) Description() pie.BlendStateDescription { return s.desc }

func (s *blendState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.handle.Release()
}

type depthStencilState struct {
	d        *device
	handle   *com.DepthStencilState
	desc     pie.DepthStencilStateDescription
	disposed bool
}

func dxStencilFace(f pie.StencilFace) com.DEPTH_STENCILOP_DESC {
	return com.DEPTH_STENCILOP_DESC{
		StencilFailOp:      dxStencilOp(f.StencilFail),
		StencilDepthFailOp: dxStencilOp(f.DepthFail),
		StencilPassOp:      dxStencilOp(f.Pass),
		StencilFunc:        dxComparison(f.Func),
	}
}

func (d *device) newDepthStencilState(desc pie.DepthStencilStateDescription) (*depthStencilState, error) {
	native := com.DEPTH_STENCIL_DESC{
		DepthFunc:        dxComparison(desc.DepthFunc),
		StencilReadMask:  desc.StencilReadMask,
		StencilWriteMask: desc.StencilWriteMask,
		FrontFace:        dxStencilFace(desc.Front),
		BackFace:         dxStencilFace(desc.Back),
	}
	if desc.DepthEnabled {
		native.DepthEnable = 1
	}
	if desc.DepthWrite {
		native.DepthWriteMask = 1
	}
	if desc.StencilEnabled {
		native.StencilEnable = 1
	}
	handle, err := d.dev.CreateDepthStencilState(&native)
	if err != nil {
		return nil, fmt.Errorf("%w: depth-stencil state: %v", pie.ErrResourceCreation, err)
	}
	return &depthStencilState{d: d, handle: handle, desc: desc}, nil
}

func (s *depthStencilState) Description() pie.DepthStencilStateDescription { return s.desc }

func (s *depthStencilState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.handle.Release()
}

type inputLayout struct {
	descs    []pie.InputLayoutDescription
	disposed bool
}

func (l *inputLayout) Descriptions() []pie.InputLayoutDescription { return l.descs }

func (l *inputLayout) Dispose() { l.disposed = true }

type framebuffer struct {
	d      *device
	rtvs   []*com.RenderTargetView
	dsv    *com.DepthStencilView
	width  int
	height int

	disposed bool
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
		w := max(t.desc.Width>>a.MipLevel, 1)
		h := max(t.desc.Height>>a.MipLevel, 1)
		if fb.width == 0 {
			fb.width, fb.height = w, h
		}
		if t.desc.Format.IsDepth() {
			if fb.dsv != nil {
				fb.Dispose()
				return nil, fmt.Errorf("%w: more than one depth-stencil attachment", pie.ErrResourceCreation)
			}
			dsv, err := d.dev.CreateDepthStencilView(t.res, &com.DEPTH_STENCIL_VIEW_DESC{
				Format:        t.format,
				ViewDimension: com.DSV_DIMENSION_TEXTURE2DARRAY,
				U:             [3]uint32{a.MipLevel, a.ArrayIndex, 1},
			})
			if err != nil {
				fb.Dispose()
				return nil, fmt.Errorf("%w: depth-stencil view: %v", pie.ErrResourceCreation, err)
			}
			fb.dsv = dsv
		} else {
			rtv, err := d.dev.CreateRenderTargetView(t.res, &com.RENDER_TARGET_VIEW_DESC{
				Format:        t.format,
				ViewDimension: com.RTV_DIMENSION_TEXTURE2DARRAY,
				U:             [3]uint32{a.MipLevel, a.ArrayIndex, 1},
			})
			if err != nil {
				fb.Dispose()
				return nil, fmt.Errorf("%w: render target view: %v", pie.ErrResourceCreation, err)
			}
			fb.rtvs = append(fb.rtvs, rtv)
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
	for _, rtv := range f.rtvs {
		rtv.Release()
	}
	if f.dsv != nil {
		f.dsv.Release()
	}
}
