package null

import (
	pie "github.com/IsometricSoftware/Pie"
)

// buffer is a CPU-backed pie.Buffer.
type buffer struct {
	typ      pie.BufferType
	data     []byte
	dynamic  bool
	mapped   bool
	disposed bool
}

func (b *buffer) Type() pie.BufferType { return b.typ }

func (b *buffer) SizeInBytes() uint32 { return uint32(len(b.data)) }

func (b *buffer) Dynamic() bool { return b.dynamic }

func (b *buffer) Dispose() { b.disposed = true }

// texture is a CPU-backed pie.Texture. levels holds one tightly packed
// byte slice per (arrayLayer, mipLevel) pair, layer-major.
type texture struct {
	desc     pie.TextureDescription
	levels   [][]byte
	mapped   bool
	disposed bool
}

func newTexture(desc pie.TextureDescription) *texture {
	desc.MipLevels = desc.ResolvedMipLevels()
	if desc.ArraySize < 1 {
		desc.ArraySize = 1
	}
	if desc.Depth < 1 {
		desc.Depth = 1
	}
	layers := desc.ArraySize
	if desc.Type == pie.TextureTypeCube {
		layers *= 6
	}
	t := &texture{
		desc:   desc,
		levels: make([][]byte, layers*desc.MipLevels),
	}
	for layer := 0; layer < layers; layer++ {
		for mip := 0; mip < desc.MipLevels; mip++ {
			w, h, d := mipExtent(desc, mip)
			t.levels[layer*desc.MipLevels+mip] = make([]byte, w*h*d*int(desc.Format.BytesPerTexel()))
		}
	}
	return t
}

// level returns the backing store for one subresource.
func (t *texture) level(mip, layer uint32) []byte {
	idx := int(layer)*t.desc.MipLevels + int(mip)
	if idx < 0 || idx >= len(t.levels) {
		return nil
	}
	return t.levels[idx]
}

func mipExtent(desc pie.TextureDescription, mip int) (w, h, d int) {
	w, h, d = desc.Width, desc.Height, desc.Depth
	if d < 1 {
		d = 1
	}
	for i := 0; i < mip; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if desc.Type == pie.TextureType3D {
			d = max(d/2, 1)
		}
	}
	return w, h, d
}

func (t *texture) Description() pie.TextureDescription { return t.desc }

func (t *texture) Dynamic() bool { return t.desc.Dynamic }

func (t *texture) Dispose() { t.disposed = true }

// shader is an opaque linked program. The null backend keeps only the
// attachments for introspection in tests.
type shader struct {
	attachments []pie.ShaderAttachment
	disposed    bool
}

func (s *shader) Dispose() { s.disposed = true }

// State objects carry their descriptions verbatim; the null backend has
// no native state to compile.

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
	desc     pie.SamplerStateDescription
	disposed bool
}

func (s *samplerState) Description() pie.SamplerStateDescription { return s.desc }

func (s *samplerState) Dispose() { s.disposed = true }

type inputLayout struct {
	descs    []pie.InputLayoutDescription
	disposed bool
}

func (l *inputLayout) Descriptions() []pie.InputLayoutDescription { return l.descs }

func (l *inputLayout) Dispose() { l.disposed = true }

// framebuffer holds non-owning references to its attached textures.
type framebuffer struct {
	colors       []pie.FramebufferAttachment
	depthStencil *pie.FramebufferAttachment
	width        int
	height       int
	disposed     bool
}

func (f *framebuffer) Size() (int, int) { return f.width, f.height }

func (f *framebuffer) Dispose() { f.disposed = true }
