package pie

import (
	"bytes"
	"image"
	"log/slog"
	"testing"
)

func TestFormatTable(t *testing.T) {
	tests := []struct {
		format     Format
		name       string
		bytes      uint32
		depth      bool
		stencil    bool
		compressed bool
	}{
		{FormatUnknown, "Unknown", 0, false, false, false},
		{FormatR8UNorm, "R8_UNorm", 1, false, false, false},
		{FormatR8G8B8A8UNorm, "R8G8B8A8_UNorm", 4, false, false, false},
		{FormatB8G8R8A8UNormSRGB, "B8G8R8A8_UNorm_SRGB", 4, false, false, false},
		{FormatR16G16B16A16Float, "R16G16B16A16_Float", 8, false, false, false},
		{FormatR32G32B32Float, "R32G32B32_Float", 12, false, false, false},
		{FormatD16UNorm, "D16_UNorm", 2, true, false, false},
		{FormatD24UNormS8UInt, "D24_UNorm_S8_UInt", 4, true, true, false},
		{FormatD32Float, "D32_Float", 4, true, false, false},
		{FormatBC1UNorm, "BC1_UNorm", 8, false, false, true},
		{FormatBC3UNorm, "BC3_UNorm", 16, false, false, true},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.name {
			t.Errorf("%v.String() = %q, want %q", tt.format, got, tt.name)
		}
		if got := tt.format.BytesPerTexel(); got != tt.bytes {
			t.Errorf("%s.BytesPerTexel() = %d, want %d", tt.name, got, tt.bytes)
		}
		if got := tt.format.IsDepth(); got != tt.depth {
			t.Errorf("%s.IsDepth() = %v, want %v", tt.name, got, tt.depth)
		}
		if got := tt.format.HasStencil(); got != tt.stencil {
			t.Errorf("%s.HasStencil() = %v, want %v", tt.name, got, tt.stencil)
		}
		if got := tt.format.IsCompressed(); got != tt.compressed {
			t.Errorf("%s.IsCompressed() = %v, want %v", tt.name, got, tt.compressed)
		}
	}
}

func TestFormatOutOfRange(t *testing.T) {
	f := Format(200)
	if f.String() != "Unknown" {
		t.Errorf("out-of-range String() = %q, want Unknown", f.String())
	}
	if f.BytesPerTexel() != 0 || f.IsDepth() || f.HasStencil() || f.IsCompressed() {
		t.Error("out-of-range format should report zero layout facts")
	}
}

func TestAttributeTypeSizes(t *testing.T) {
	tests := []struct {
		typ        AttributeType
		size       uint32
		components int
	}{
		{AttributeFloat, 4, 1},
		{AttributeFloat2, 8, 2},
		{AttributeFloat3, 12, 3},
		{AttributeFloat4, 16, 4},
		{AttributeInt, 4, 1},
		{AttributeInt4, 16, 4},
		{AttributeByte4Norm, 4, 4},
	}
	for _, tt := range tests {
		if got := tt.typ.SizeInBytes(); got != tt.size {
			t.Errorf("SizeInBytes(%d) = %d, want %d", tt.typ, got, tt.size)
		}
		if got := tt.typ.ComponentCount(); got != tt.components {
			t.Errorf("ComponentCount(%d) = %d, want %d", tt.typ, got, tt.components)
		}
	}
}

func TestIndexFormatSizes(t *testing.T) {
	if IndexFormatU16.SizeInBytes() != 2 {
		t.Error("IndexFormatU16 should be 2 bytes")
	}
	if IndexFormatU32.SizeInBytes() != 4 {
		t.Error("IndexFormatU32 should be 4 bytes")
	}
}

func TestResolvedMipLevels(t *testing.T) {
	tests := []struct {
		w, h, declared, want int
	}{
		{1, 1, 0, 1},
		{2, 2, 0, 2},
		{256, 256, 0, 9},
		{16, 8, 0, 5},
		{640, 480, 0, 10},
		{256, 256, 3, 3},
	}
	for _, tt := range tests {
		desc := NewTexture2D(tt.w, tt.h, FormatR8G8B8A8UNorm, tt.declared, false)
		if got := desc.ResolvedMipLevels(); got != tt.want {
			t.Errorf("ResolvedMipLevels(%dx%d, declared %d) = %d, want %d",
				tt.w, tt.h, tt.declared, got, tt.want)
		}
	}
}

func TestMetricsAddDraw(t *testing.T) {
	var m Metrics
	m.AddDraw(36, 1)
	m.AddDraw(6, 10)
	if m.DrawCalls != 2 {
		t.Errorf("DrawCalls = %d, want 2", m.DrawCalls)
	}
	if m.TriCount != 12+20 {
		t.Errorf("TriCount = %d, want 32", m.TriCount)
	}
	m.Reset()
	if m.DrawCalls != 0 || m.TriCount != 0 {
		t.Errorf("after Reset = %+v, want zero", m)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.ColorBufferFormat != FormatR8G8B8A8UNorm {
		t.Errorf("default color format = %v, want FormatR8G8B8A8UNorm", o.ColorBufferFormat)
	}
	if o.Debug || o.DepthStencilBufferFormat != FormatUnknown {
		t.Errorf("default options = %+v, want non-debug with no depth", o)
	}

	o = DefaultOptions(WithDebug(), WithDepthStencilFormat(FormatD32Float), WithColorFormat(FormatB8G8R8A8UNorm))
	if !o.Debug {
		t.Error("WithDebug() not applied")
	}
	if o.DepthStencilBufferFormat != FormatD32Float {
		t.Error("WithDepthStencilFormat() not applied")
	}
	if o.ColorBufferFormat != FormatB8G8R8A8UNorm {
		t.Error("WithColorFormat() not applied")
	}
}

func TestShaderAttachmentEntry(t *testing.T) {
	a := ShaderAttachment{}
	if a.Entry() != "main" {
		t.Errorf("empty Entry() = %q, want main", a.Entry())
	}
	a.EntryPoint = "vs_main"
	if a.Entry() != "vs_main" {
		t.Errorf("Entry() = %q, want vs_main", a.Entry())
	}
}

func TestTextureDataFromImageFastPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Pix[0] = 0x7F

	pix, w, h := TextureDataFromImage(img)
	if w != 4 || h != 2 {
		t.Fatalf("size = %dx%d, want 4x2", w, h)
	}
	if &pix[0] != &img.Pix[0] {
		t.Error("tightly packed RGBA should reuse pixel storage")
	}
}

func TestTextureDataFromImageRedraw(t *testing.T) {
	// A subimage with a nonzero origin must take the redraw path.
	base := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range base.Pix {
		base.Pix[i] = 0xFF
	}
	sub := base.SubImage(image.Rect(2, 2, 6, 6)).(*image.RGBA)

	pix, w, h := TextureDataFromImage(sub)
	if w != 4 || h != 4 {
		t.Fatalf("size = %dx%d, want 4x4", w, h)
	}
	if len(pix) != 4*4*4 {
		t.Fatalf("len(pix) = %d, want 64", len(pix))
	}
	if pix[0] != 0xFF {
		t.Errorf("pix[0] = %#x, want 0xFF", pix[0])
	}
}

func TestGraphicsAPIString(t *testing.T) {
	tests := []struct {
		api  GraphicsAPI
		want string
	}{
		{APINull, "Null"},
		{APIVulkan, "Vulkan"},
		{APID3D11, "Direct3D 11"},
		{APIOpenGL, "OpenGL 3.3"},
		{APIWebGPU, "WebGPU"},
		{GraphicsAPI(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.api.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.api, got, tt.want)
		}
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello")
	if buf.Len() == 0 {
		t.Error("configured logger received no output")
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Info("silent")
	if buf.Len() != 0 {
		t.Error("nil logger should restore the silent default")
	}
}

func TestStatePresets(t *testing.T) {
	if BlendStateDisabled.Enabled {
		t.Error("BlendStateDisabled should not enable blending")
	}
	if BlendStateDisabled.WriteMask != ColorWriteAll {
		t.Error("BlendStateDisabled should write all channels")
	}
	if !BlendStateAlphaBlend.Enabled || BlendStateAlphaBlend.Source != BlendOne {
		t.Error("BlendStateAlphaBlend should be premultiplied source-over")
	}
	if !DepthStencilStateLessEqual.DepthEnabled || !DepthStencilStateLessEqual.DepthWrite {
		t.Error("DepthStencilStateLessEqual should test and write depth")
	}
	if DepthStencilStateLessEqual.DepthFunc != ComparisonLessEqual {
		t.Error("DepthStencilStateLessEqual should use LessEqual")
	}
	if RasterizerStateWireframe.FillMode != FillWireframe {
		t.Error("RasterizerStateWireframe should fill wireframe")
	}
	if SamplerStateLinearClamp.AddressU != AddressClampToEdge {
		t.Error("SamplerStateLinearClamp should clamp to edge")
	}
	if SamplerStateAnisotropicWrap.Filter != FilterAnisotropic {
		t.Error("SamplerStateAnisotropicWrap should filter anisotropically")
	}
}
