package null

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

func newTestDevice(t *testing.T, opts ...pie.DeviceOption) pie.Device {
	t.Helper()
	d, err := backend.NewDevice(pie.APINull, &backend.Surface{Width: 64, Height: 48}, opts...)
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	t.Cleanup(d.Dispose)
	return d
}

func TestDriverRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.DriverNull) {
		t.Fatal("null driver should be registered on import")
	}
	drv := backend.Get(backend.DriverNull)
	if drv == nil {
		t.Fatal("Get(null) returned nil")
	}
	if drv.Name() != backend.DriverNull {
		t.Errorf("Name() = %q, want %q", drv.Name(), backend.DriverNull)
	}
	if drv.API() != pie.APINull {
		t.Errorf("API() = %v, want %v", drv.API(), pie.APINull)
	}
}

func TestNewDeviceDefaults(t *testing.T) {
	d := newTestDevice(t)
	if d.API() != pie.APINull {
		t.Errorf("API() = %v, want APINull", d.API())
	}
	if a := d.Adapter(); a.Type != pie.AdapterTypeSoftware {
		t.Errorf("Adapter().Type = %v, want AdapterTypeSoftware", a.Type)
	}
	if w, h := d.SwapchainSize(); w != 64 || h != 48 {
		t.Errorf("SwapchainSize() = %dx%d, want 64x48", w, h)
	}
	want := image.Rect(0, 0, 64, 48)
	if d.Viewport() != want {
		t.Errorf("Viewport() = %v, want %v", d.Viewport(), want)
	}
	if d.Scissor() != want {
		t.Errorf("Scissor() = %v, want %v", d.Scissor(), want)
	}
}

func TestNewDeviceRejectsNonColorFormat(t *testing.T) {
	_, err := backend.NewDevice(pie.APINull, nil, pie.WithColorFormat(pie.FormatD32Float))
	if !errors.Is(err, pie.ErrUnsupportedFormat) {
		t.Fatalf("NewDevice(depth color format) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestClearColorBuffer(t *testing.T) {
	d := newTestDevice(t)
	d.ClearColorBuffer(1, 0, 0, 1)

	back := d.(*device).BackBuffer()
	if len(back) != 64*48*4 {
		t.Fatalf("backbuffer size = %d, want %d", len(back), 64*48*4)
	}
	if back[0] != 255 || back[1] != 0 || back[2] != 0 || back[3] != 255 {
		t.Errorf("texel 0 = %v, want [255 0 0 255]", back[:4])
	}
}

func TestClearColorBufferBGRA(t *testing.T) {
	d := newTestDevice(t, pie.WithColorFormat(pie.FormatB8G8R8A8UNorm))
	d.ClearColorBuffer(1, 0.5, 0, 1)

	back := d.(*device).BackBuffer()
	if back[0] != 0 || back[2] != 255 {
		t.Errorf("BGRA texel 0 = %v, want blue first, red third", back[:4])
	}
}

func TestClearDepthStencilBuffer(t *testing.T) {
	d := newTestDevice(t, pie.WithDepthStencilFormat(pie.FormatD24UNormS8UInt))
	d.ClearDepthStencilBuffer(pie.ClearDepth|pie.ClearStencil, 0.5, 7)

	nd := d.(*device)
	if nd.DepthPlane()[0] != 0.5 {
		t.Errorf("depth[0] = %v, want 0.5", nd.DepthPlane()[0])
	}
	if nd.StencilPlane()[0] != 7 {
		t.Errorf("stencil[0] = %d, want 7", nd.StencilPlane()[0])
	}
}

func TestNoDepthPlaneWithoutFormat(t *testing.T) {
	d := newTestDevice(t)
	if d.(*device).DepthPlane() != nil {
		t.Error("device without depth format should have no depth plane")
	}
}

func TestMetricsAccumulateAndResetOnPresent(t *testing.T) {
	d := newTestDevice(t)
	d.Draw(9)
	d.DrawIndexed(6)
	d.DrawInstanced(3, 4)

	m := d.Metrics()
	if m.DrawCalls != 3 {
		t.Errorf("DrawCalls = %d, want 3", m.DrawCalls)
	}
	// 9/3 + 6/3 + 3/3*4 triangles.
	if m.TriCount != 3+2+4 {
		t.Errorf("TriCount = %d, want 9", m.TriCount)
	}

	if err := d.Present(1); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	m = d.Metrics()
	if m.DrawCalls != 0 || m.TriCount != 0 {
		t.Errorf("metrics after Present = %+v, want zero", m)
	}
}

func TestUpdateBuffer(t *testing.T) {
	d := newTestDevice(t)
	buf, err := d.CreateBufferData(pie.BufferTypeVertex, []byte{1, 2, 3, 4}, true)
	if err != nil {
		t.Fatalf("CreateBufferData() error = %v", err)
	}
	defer buf.Dispose()

	if err := d.UpdateBuffer(buf, 2, []byte{9, 9}); err != nil {
		t.Fatalf("UpdateBuffer() error = %v", err)
	}
	data, err := d.MapResource(buf, pie.MapModeRead)
	if err != nil {
		t.Fatalf("MapResource() error = %v", err)
	}
	if data[2] != 9 || data[3] != 9 || data[0] != 1 {
		t.Errorf("buffer contents = %v, want [1 2 9 9]", data)
	}
	if err := d.UnmapResource(buf); err != nil {
		t.Fatalf("UnmapResource() error = %v", err)
	}
}

func TestUpdateBufferStatic(t *testing.T) {
	d := newTestDevice(t)
	buf, _ := d.CreateBuffer(pie.BufferTypeVertex, 16, false)
	defer buf.Dispose()

	if err := d.UpdateBuffer(buf, 0, []byte{1}); !errors.Is(err, pie.ErrNotDynamic) {
		t.Errorf("UpdateBuffer(static) error = %v, want ErrNotDynamic", err)
	}
}

func TestUpdateBufferOutOfRange(t *testing.T) {
	d := newTestDevice(t)
	buf, _ := d.CreateBuffer(pie.BufferTypeUniform, 8, true)
	defer buf.Dispose()

	if err := d.UpdateBuffer(buf, 4, make([]byte, 8)); !errors.Is(err, pie.ErrOutOfRange) {
		t.Errorf("UpdateBuffer(overrun) error = %v, want ErrOutOfRange", err)
	}
}

func TestUpdateBufferDisposed(t *testing.T) {
	d := newTestDevice(t)
	buf, _ := d.CreateBuffer(pie.BufferTypeVertex, 8, true)
	buf.Dispose()

	if err := d.UpdateBuffer(buf, 0, []byte{1}); !errors.Is(err, pie.ErrDisposed) {
		t.Errorf("UpdateBuffer(disposed) error = %v, want ErrDisposed", err)
	}
}

func TestMapResourceDoubleMap(t *testing.T) {
	d := newTestDevice(t)
	buf, _ := d.CreateBuffer(pie.BufferTypeVertex, 8, true)
	defer buf.Dispose()

	if _, err := d.MapResource(buf, pie.MapModeWrite); err != nil {
		t.Fatalf("MapResource() error = %v", err)
	}
	if _, err := d.MapResource(buf, pie.MapModeWrite); !errors.Is(err, pie.ErrAlreadyMapped) {
		t.Errorf("second MapResource() error = %v, want ErrAlreadyMapped", err)
	}
	if err := d.UnmapResource(buf); err != nil {
		t.Fatalf("UnmapResource() error = %v", err)
	}
	if err := d.UnmapResource(buf); !errors.Is(err, pie.ErrNotMapped) {
		t.Errorf("second UnmapResource() error = %v, want ErrNotMapped", err)
	}
}

func TestMapResourceStaticWrite(t *testing.T) {
	d := newTestDevice(t)
	buf, _ := d.CreateBuffer(pie.BufferTypeVertex, 8, false)
	defer buf.Dispose()

	if _, err := d.MapResource(buf, pie.MapModeWrite); !errors.Is(err, pie.ErrNotDynamic) {
		t.Errorf("MapResource(static, write) error = %v, want ErrNotDynamic", err)
	}
}

func TestUpdateTexture(t *testing.T) {
	d := newTestDevice(t)
	tex, err := d.CreateTexture(pie.NewTexture2D(4, 4, pie.FormatR8G8B8A8UNorm, 1, true), nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()

	region := make([]byte, 2*2*4)
	for i := range region {
		region[i] = 0xAB
	}
	if err := d.UpdateTexture(tex, 0, 0, 1, 1, 0, 2, 2, 1, region); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}

	data, err := d.MapResource(tex, pie.MapModeRead)
	if err != nil {
		t.Fatalf("MapResource() error = %v", err)
	}
	defer d.UnmapResource(tex)
	// Texel (1,1) of a 4-wide level.
	off := (1*4 + 1) * 4
	if data[off] != 0xAB {
		t.Errorf("texel (1,1) = %#x, want 0xAB", data[off])
	}
	if data[0] != 0 {
		t.Errorf("texel (0,0) = %#x, want untouched 0", data[0])
	}
}

func TestUpdateTextureOutOfRange(t *testing.T) {
	d := newTestDevice(t)
	tex, _ := d.CreateTexture(pie.NewTexture2D(4, 4, pie.FormatR8G8B8A8UNorm, 1, true), nil)
	defer tex.Dispose()

	err := d.UpdateTexture(tex, 0, 0, 3, 3, 0, 2, 2, 1, make([]byte, 16))
	if !errors.Is(err, pie.ErrOutOfRange) {
		t.Errorf("UpdateTexture(overrun) error = %v, want ErrOutOfRange", err)
	}
}

func TestCreateTextureInitialData(t *testing.T) {
	d := newTestDevice(t)
	pix := make([]byte, 2*2*4)
	for i := range pix {
		pix[i] = byte(i)
	}
	tex, err := d.CreateTexture(pie.NewTexture2D(2, 2, pie.FormatR8G8B8A8UNorm, 1, true), pix)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()

	data, _ := d.MapResource(tex, pie.MapModeRead)
	defer d.UnmapResource(tex)
	for i := range pix {
		if data[i] != pix[i] {
			t.Fatalf("texel byte %d = %d, want %d", i, data[i], pix[i])
		}
	}
}

func TestResolvedMipChain(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(16, 8, pie.FormatR8G8B8A8UNorm, 0, false)
	tex, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()

	if got := tex.Description().MipLevels; got != 5 {
		t.Errorf("MipLevels = %d, want 5 for 16x8", got)
	}
}

func TestGenerateMipmaps(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(4, 4, pie.FormatR8G8B8A8UNorm, 0, false)
	desc.Usage |= pie.TextureUsageGenerateMips
	pix := make([]byte, 4*4*4)
	for i := range pix {
		pix[i] = 200
	}
	tex, err := d.CreateTexture(desc, pix)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()

	if err := d.GenerateMipmaps(tex); err != nil {
		t.Fatalf("GenerateMipmaps() error = %v", err)
	}
	// A constant image box-filters to the same constant.
	level2 := tex.(*texture).level(2, 0)
	if len(level2) != 4 {
		t.Fatalf("level 2 size = %d, want 4 bytes (1x1)", len(level2))
	}
	if level2[0] != 200 {
		t.Errorf("level 2 texel = %d, want 200", level2[0])
	}
}

func TestGenerateMipmapsWithoutUsage(t *testing.T) {
	d := newTestDevice(t)
	tex, _ := d.CreateTexture(pie.NewTexture2D(4, 4, pie.FormatR8G8B8A8UNorm, 0, false), nil)
	defer tex.Dispose()

	if err := d.GenerateMipmaps(tex); !errors.Is(err, pie.ErrResourceCreation) {
		t.Errorf("GenerateMipmaps(no usage) error = %v, want ErrResourceCreation", err)
	}
}

func TestFramebufferLifecycle(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(8, 8, pie.FormatR8G8B8A8UNorm, 1, false)
	desc.Usage |= pie.TextureUsageFramebuffer
	color, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer color.Dispose()

	fb, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: color})
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	defer fb.Dispose()

	if w, h := fb.Size(); w != 8 || h != 8 {
		t.Errorf("Size() = %dx%d, want 8x8", w, h)
	}

	d.SetFramebuffer(fb)
	d.ClearColorBuffer(0, 1, 0, 1)
	d.SetFramebuffer(nil)

	// The clear must land in the attachment, not the backbuffer.
	level := color.(*texture).level(0, 0)
	if level[1] != 255 {
		t.Errorf("attachment green = %d, want 255", level[1])
	}
	back := d.(*device).BackBuffer()
	if back[1] != 0 {
		t.Errorf("backbuffer green = %d, want untouched 0", back[1])
	}
}

func TestCreateFramebufferRequiresUsage(t *testing.T) {
	d := newTestDevice(t)
	tex, _ := d.CreateTexture(pie.NewTexture2D(8, 8, pie.FormatR8G8B8A8UNorm, 1, false), nil)
	defer tex.Dispose()

	if _, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: tex}); !errors.Is(err, pie.ErrResourceCreation) {
		t.Errorf("CreateFramebuffer(no usage) error = %v, want ErrResourceCreation", err)
	}
}

func TestCreateFramebufferRejectsCompressed(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(8, 8, pie.FormatBC1UNorm, 1, false)
	desc.Usage |= pie.TextureUsageFramebuffer
	tex, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()

	if _, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: tex}); !errors.Is(err, pie.ErrResourceCreation) {
		t.Errorf("CreateFramebuffer(BC1) error = %v, want ErrResourceCreation", err)
	}
}

// bindDepthFramebuffer creates an 8x8 framebuffer-usage texture of the
// given depth format, wraps it in a framebuffer, and binds it.
func bindDepthFramebuffer(t *testing.T, d pie.Device, format pie.Format) pie.Texture {
	t.Helper()
	desc := pie.NewTexture2D(8, 8, format, 1, false)
	desc.Usage |= pie.TextureUsageFramebuffer
	ds, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture(%s) error = %v", format, err)
	}
	t.Cleanup(ds.Dispose)
	fb, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: ds})
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	t.Cleanup(fb.Dispose)
	d.SetFramebuffer(fb)
	return ds
}

func TestClearDepthStencilFramebufferAttachment(t *testing.T) {
	d := newTestDevice(t)
	ds := bindDepthFramebuffer(t, d, pie.FormatD24UNormS8UInt)

	d.ClearDepthStencilBuffer(pie.ClearDepth|pie.ClearStencil, 1, 0xff)
	level := ds.(*texture).level(0, 0)
	for i := 0; i < len(level); i += 4 {
		if got := binary.LittleEndian.Uint32(level[i:]); got != 0xffffffff {
			t.Fatalf("texel %d = %#x, want 0xffffffff", i/4, got)
		}
	}

	// A stencil-only clear keeps the depth bits.
	d.ClearDepthStencilBuffer(pie.ClearStencil, 0, 3)
	if got := binary.LittleEndian.Uint32(level); got != 0x03ffffff {
		t.Errorf("after stencil-only clear texel = %#x, want 0x03ffffff", got)
	}

	// A depth-only clear keeps the stencil bits.
	d.ClearDepthStencilBuffer(pie.ClearDepth, 0, 0)
	if got := binary.LittleEndian.Uint32(level); got != 0x03000000 {
		t.Errorf("after depth-only clear texel = %#x, want 0x03000000", got)
	}
}

func TestClearDepthFramebufferD32Float(t *testing.T) {
	d := newTestDevice(t)
	ds := bindDepthFramebuffer(t, d, pie.FormatD32Float)

	d.ClearDepthStencilBuffer(pie.ClearDepth, 0.5, 0)
	level := ds.(*texture).level(0, 0)
	want := math.Float32bits(0.5)
	for i := 0; i < len(level); i += 4 {
		if got := binary.LittleEndian.Uint32(level[i:]); got != want {
			t.Fatalf("texel %d = %#x, want %#x", i/4, got, want)
		}
	}
}

func TestClearColorFramebufferR8(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(4, 4, pie.FormatR8UNorm, 1, false)
	desc.Usage |= pie.TextureUsageFramebuffer
	tex, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()
	fb, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: tex})
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	defer fb.Dispose()

	d.SetFramebuffer(fb)
	d.ClearColorBuffer(0.5, 0, 0, 1)
	d.SetFramebuffer(nil)

	level := tex.(*texture).level(0, 0)
	if len(level) != 16 {
		t.Fatalf("level size = %d, want 16", len(level))
	}
	for i, b := range level {
		if b != 128 {
			t.Fatalf("texel %d = %d, want 128", i, b)
		}
	}
}

func TestClearColorFramebufferR32Float(t *testing.T) {
	d := newTestDevice(t)
	desc := pie.NewTexture2D(4, 4, pie.FormatR32Float, 1, false)
	desc.Usage |= pie.TextureUsageFramebuffer
	tex, err := d.CreateTexture(desc, nil)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	defer tex.Dispose()
	fb, err := d.CreateFramebuffer(pie.FramebufferAttachment{Texture: tex})
	if err != nil {
		t.Fatalf("CreateFramebuffer() error = %v", err)
	}
	defer fb.Dispose()

	d.SetFramebuffer(fb)
	d.ClearColorBuffer(0.25, 0, 0, 1)
	d.SetFramebuffer(nil)

	level := tex.(*texture).level(0, 0)
	want := math.Float32bits(0.25)
	for i := 0; i < len(level); i += 4 {
		if got := binary.LittleEndian.Uint32(level[i:]); got != want {
			t.Fatalf("texel %d = %#x, want %#x", i/4, got, want)
		}
	}
}

func TestCreateShaderValidation(t *testing.T) {
	d := newTestDevice(t)

	if _, err := d.CreateShader(nil, nil); !errors.Is(err, pie.ErrShaderCompile) {
		t.Errorf("CreateShader(empty) error = %v, want ErrShaderCompile", err)
	}

	dup := []pie.ShaderAttachment{
		{Stage: pie.ShaderStageVertex},
		{Stage: pie.ShaderStageVertex},
	}
	if _, err := d.CreateShader(dup, nil); !errors.Is(err, pie.ErrShaderCompile) {
		t.Errorf("CreateShader(duplicate stage) error = %v, want ErrShaderCompile", err)
	}

	mixed := []pie.ShaderAttachment{
		{Stage: pie.ShaderStageCompute},
		{Stage: pie.ShaderStageVertex},
	}
	if _, err := d.CreateShader(mixed, nil); !errors.Is(err, pie.ErrShaderCompile) {
		t.Errorf("CreateShader(compute+vertex) error = %v, want ErrShaderCompile", err)
	}

	ok := []pie.ShaderAttachment{
		{Stage: pie.ShaderStageVertex, Language: pie.LanguageGLSL},
		{Stage: pie.ShaderStageFragment, Language: pie.LanguageGLSL},
	}
	s, err := d.CreateShader(ok, nil)
	if err != nil {
		t.Fatalf("CreateShader() error = %v", err)
	}
	s.Dispose()
}

func TestResizeSwapchain(t *testing.T) {
	d := newTestDevice(t)
	if err := d.ResizeSwapchain(128, 96); err != nil {
		t.Fatalf("ResizeSwapchain() error = %v", err)
	}
	if w, h := d.SwapchainSize(); w != 128 || h != 96 {
		t.Errorf("SwapchainSize() = %dx%d, want 128x96", w, h)
	}
	if got := len(d.(*device).BackBuffer()); got != 128*96*4 {
		t.Errorf("backbuffer size = %d, want %d", got, 128*96*4)
	}
	if err := d.Present(0); err != nil {
		t.Fatalf("Present() after resize error = %v", err)
	}
}

func TestResizeSwapchainInvalid(t *testing.T) {
	d := newTestDevice(t)
	if err := d.ResizeSwapchain(0, 10); !errors.Is(err, pie.ErrSwapchainCreation) {
		t.Errorf("ResizeSwapchain(0, 10) error = %v, want ErrSwapchainCreation", err)
	}
}

func TestDisposeIdempotent(t *testing.T) {
	d, err := backend.NewDevice(pie.APINull, nil)
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	d.Dispose()
	d.Dispose()
	if err := d.Present(0); !errors.Is(err, pie.ErrDisposed) {
		t.Errorf("Present() after Dispose error = %v, want ErrDisposed", err)
	}
}

func TestStateObjectsCarryDescriptions(t *testing.T) {
	d := newTestDevice(t)

	rs, err := d.CreateRasterizerState(pie.RasterizerStateWireframe)
	if err != nil {
		t.Fatalf("CreateRasterizerState() error = %v", err)
	}
	defer rs.Dispose()
	if rs.Description().FillMode != pie.FillWireframe {
		t.Error("rasterizer description not preserved")
	}

	bs, err := d.CreateBlendState(pie.BlendStateAlphaBlend)
	if err != nil {
		t.Fatalf("CreateBlendState() error = %v", err)
	}
	defer bs.Dispose()
	if !bs.Description().Enabled {
		t.Error("blend description not preserved")
	}

	ds, err := d.CreateDepthStencilState(pie.DepthStencilStateLessEqual)
	if err != nil {
		t.Fatalf("CreateDepthStencilState() error = %v", err)
	}
	defer ds.Dispose()
	if !ds.Description().DepthEnabled {
		t.Error("depth-stencil description not preserved")
	}

	ss, err := d.CreateSamplerState(pie.SamplerStateLinearClamp)
	if err != nil {
		t.Fatalf("CreateSamplerState() error = %v", err)
	}
	defer ss.Dispose()
	if ss.Description().AddressU != pie.AddressClampToEdge {
		t.Error("sampler description not preserved")
	}

	layout, err := d.CreateInputLayout(
		pie.InputLayoutDescription{Name: "POSITION", Type: pie.AttributeFloat3},
		pie.InputLayoutDescription{Name: "TEXCOORD", Type: pie.AttributeFloat2, Offset: 12},
	)
	if err != nil {
		t.Fatalf("CreateInputLayout() error = %v", err)
	}
	defer layout.Dispose()
	if len(layout.Descriptions()) != 2 {
		t.Errorf("Descriptions() len = %d, want 2", len(layout.Descriptions()))
	}
}

func TestNewTextureFromImage(t *testing.T) {
	d := newTestDevice(t)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	tex, err := pie.NewTextureFromImage(d, img, true)
	if err != nil {
		t.Fatalf("NewTextureFromImage() error = %v", err)
	}
	defer tex.Dispose()

	desc := tex.Description()
	if desc.MipLevels != 4 {
		t.Errorf("MipLevels = %d, want 4 for 8x8", desc.MipLevels)
	}
	// Every mip of a constant image stays constant.
	level3 := tex.(*texture).level(3, 0)
	if len(level3) != 4 || level3[0] != 128 {
		t.Errorf("level 3 = %v, want 1x1 texel of 128", level3)
	}
}
