package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	pie "github.com/IsometricSoftware/Pie"
)

// TEXTURE_MAX_ANISOTROPY_EXT; ubiquitous but not in the core loader.
const textureMaxAnisotropy = 0x84FE

type buffer struct {
	typ      pie.BufferType
	target   uint32
	handle   uint32
	size     uint32
	dynamic  bool
	mapped   bool
	disposed bool
}

func newBuffer(typ pie.BufferType, size uint32, dynamic bool, data []byte) (*buffer, error) {
	b := &buffer{typ: typ, target: glBufferTarget(typ), size: size, dynamic: dynamic}
	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
	}
	gl.GenBuffers(1, &b.handle)
	gl.BindBuffer(b.target, b.handle)
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(b.target, int(size), ptr, usage)
	if err := gl.GetError(); err != gl.NO_ERROR {
		gl.DeleteBuffers(1, &b.handle)
		return nil, fmt.Errorf("%w: glBufferData error 0x%04x", pie.ErrResourceCreation, err)
	}
	return b, nil
}

func (b *buffer) Type() pie.BufferType { return b.typ }

func (b *buffer) SizeInBytes() uint32 { return b.size }

func (b *buffer) Dynamic() bool { return b.dynamic }

func (b *buffer) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	gl.DeleteBuffers(1, &b.handle)
}

type texture struct {
	desc     pie.TextureDescription
	target   uint32
	handle   uint32
	disposed bool
}

func newTexture(desc pie.TextureDescription, data []byte) (*texture, error) {
	internal, format, typ := glFormat(desc.Format)
	if internal == 0 {
		return nil, fmt.Errorf("%w: %s", pie.ErrUnsupportedFormat, desc.Format)
	}
	desc.MipLevels = desc.ResolvedMipLevels()
	if desc.ArraySize < 1 {
		desc.ArraySize = 1
	}

	t := &texture{desc: desc}
	switch {
	case desc.Type == pie.TextureTypeCube:
		t.target = gl.TEXTURE_CUBE_MAP
	case desc.Type == pie.TextureType3D:
		t.target = gl.TEXTURE_3D
	case desc.ArraySize > 1:
		t.target = gl.TEXTURE_2D_ARRAY
	default:
		t.target = gl.TEXTURE_2D
	}

	gl.GenTextures(1, &t.handle)
	gl.BindTexture(t.target, t.handle)
	gl.TexParameteri(t.target, gl.TEXTURE_MAX_LEVEL, int32(desc.MipLevels-1))

	texelBytes := int(desc.Format.BytesPerTexel())
	layerSize := desc.Width * desc.Height * texelBytes
	layerData := func(i int) unsafe.Pointer {
		if data == nil {
			return nil
		}
		return gl.Ptr(data[i*layerSize:])
	}

	w, h := int32(desc.Width), int32(desc.Height)
	for level := 0; level < desc.MipLevels; level++ {
		switch t.target {
		case gl.TEXTURE_2D:
			var ptr unsafe.Pointer
			if level == 0 {
				ptr = layerData(0)
			}
			gl.TexImage2D(gl.TEXTURE_2D, int32(level), internal, w, h, 0, format, typ, ptr)
		case gl.TEXTURE_CUBE_MAP:
			for face := 0; face < 6; face++ {
				var ptr unsafe.Pointer
				if level == 0 {
					ptr = layerData(face)
				}
				gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face),
					int32(level), internal, w, h, 0, format, typ, ptr)
			}
		case gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY:
			depth := int32(desc.ArraySize)
			if t.target == gl.TEXTURE_3D {
				depth = int32(max(desc.Depth, 1))
			}
			var ptr unsafe.Pointer
			if level == 0 {
				ptr = layerData(0)
			}
			gl.TexImage3D(t.target, int32(level), internal, w, h, depth, 0, format, typ, ptr)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}
	if err := gl.GetError(); err != gl.NO_ERROR {
		gl.DeleteTextures(1, &t.handle)
		return nil, fmt.Errorf("%w: glTexImage error 0x%04x", pie.ErrResourceCreation, err)
	}
	return t, nil
}

func (t *texture) Description() pie.TextureDescription { return t.desc }

func (t *texture) Dynamic() bool { return t.desc.Dynamic }

func (t *texture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	gl.DeleteTextures(1, &t.handle)
}

type shader struct {
	program  uint32
	compute  bool
	disposed bool
}

// specializeGLSL injects the specialization constants as preprocessor
// defines right after the #version line, matching the SPIR-V path's
// constant IDs by convention: constant n is SPEC_CONSTANT_n.
func specializeGLSL(src string, constants []pie.SpecializationConstant) string {
	if len(constants) == 0 {
		return src
	}
	var defines strings.Builder
	for _, c := range constants {
		fmt.Fprintf(&defines, "#define SPEC_CONSTANT_%d %d\n", c.ID, c.Value)
	}
	if idx := strings.Index(src, "\n"); idx >= 0 && strings.HasPrefix(strings.TrimSpace(src), "#version") {
		return src[:idx+1] + defines.String() + src[idx+1:]
	}
	return defines.String() + src
}

func newShader(attachments []pie.ShaderAttachment, constants []pie.SpecializationConstant) (*shader, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: shader needs at least one attachment", pie.ErrShaderCompile)
	}
	program := gl.CreateProgram()
	var stages []uint32
	cleanup := func() {
		for _, s := range stages {
			gl.DeleteShader(s)
		}
		gl.DeleteProgram(program)
	}

	for _, a := range attachments {
		if a.Language != pie.LanguageGLSL {
			cleanup()
			return nil, fmt.Errorf("%w: opengl consumes GLSL only", pie.ErrShaderCompile)
		}
		if a.Stage == pie.ShaderStageCompute {
			cleanup()
			return nil, fmt.Errorf("%w: compute stages need GL 4.3", pie.ErrShaderCompile)
		}
		h := gl.CreateShader(glShaderType(a.Stage))
		src, free := gl.Strs(specializeGLSL(string(a.Source), constants) + "\x00")
		gl.ShaderSource(h, 1, src, nil)
		free()
		gl.CompileShader(h)

		var status int32
		gl.GetShaderiv(h, gl.COMPILE_STATUS, &status)
		if status == gl.FALSE {
			log := shaderLog(h, gl.GetShaderiv, gl.GetShaderInfoLog)
			gl.DeleteShader(h)
			cleanup()
			return nil, fmt.Errorf("%w: %s stage: %s", pie.ErrShaderCompile, a.Stage, log)
		}
		gl.AttachShader(program, h)
		stages = append(stages, h)
	}

	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := shaderLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		cleanup()
		return nil, fmt.Errorf("%w: link: %s", pie.ErrShaderCompile, log)
	}
	for _, s := range stages {
		gl.DetachShader(program, s)
		gl.DeleteShader(s)
	}

	s := &shader{program: program}
	s.bindResourceSlots()
	return s, nil
}

func shaderLog(handle uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8)) string {
	var length int32
	getiv(handle, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return "unknown error"
	}
	log := make([]byte, length+1)
	getLog(handle, length, nil, &log[0])
	return strings.TrimRight(string(log[:length]), "\x00\n")
}

// bindResourceSlots maps the program's uniform blocks and sampler
// uniforms onto pie slot numbers: block index n binds to uniform slot
// n, and sampler uniforms take texture units in declaration order.
func (s *shader) bindResourceSlots() {
	var blocks int32
	gl.GetProgramiv(s.program, gl.ACTIVE_UNIFORM_BLOCKS, &blocks)
	for i := int32(0); i < blocks; i++ {
		gl.UniformBlockBinding(s.program, uint32(i), uint32(i))
	}

	gl.UseProgram(s.program)
	var uniforms int32
	gl.GetProgramiv(s.program, gl.ACTIVE_UNIFORMS, &uniforms)
	unit := int32(0)
	var name [256]byte
	for i := int32(0); i < uniforms; i++ {
		var length, size int32
		var typ uint32
		gl.GetActiveUniform(s.program, uint32(i), int32(len(name)), &length, &size, &typ, &name[0])
		switch typ {
		case gl.SAMPLER_2D, gl.SAMPLER_3D, gl.SAMPLER_CUBE, gl.SAMPLER_2D_ARRAY, gl.SAMPLER_2D_SHADOW:
			loc := gl.GetUniformLocation(s.program, &name[0])
			if loc >= 0 {
				gl.Uniform1i(loc, unit)
				unit++
			}
		}
	}
}

func (s *shader) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	gl.DeleteProgram(s.program)
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

type samplerState struct {
	desc     pie.SamplerStateDescription
	handle   uint32
	disposed bool
}

func newSampler(desc pie.SamplerStateDescription) (*samplerState, error) {
	s := &samplerState{desc: desc}
	gl.GenSamplers(1, &s.handle)
	minFilter, magFilter := glFilter(desc.Filter, true)
	gl.SamplerParameteri(s.handle, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.SamplerParameteri(s.handle, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.SamplerParameteri(s.handle, gl.TEXTURE_WRAP_S, glAddressMode(desc.AddressU))
	gl.SamplerParameteri(s.handle, gl.TEXTURE_WRAP_T, glAddressMode(desc.AddressV))
	gl.SamplerParameteri(s.handle, gl.TEXTURE_WRAP_R, glAddressMode(desc.AddressW))
	gl.SamplerParameterf(s.handle, gl.TEXTURE_MIN_LOD, desc.MinLOD)
	gl.SamplerParameterf(s.handle, gl.TEXTURE_MAX_LOD, desc.MaxLOD)
	if desc.Filter == pie.FilterAnisotropic && desc.MaxAnisotropy > 0 {
		gl.SamplerParameterf(s.handle, textureMaxAnisotropy, float32(desc.MaxAnisotropy))
	}
	gl.SamplerParameterfv(s.handle, gl.TEXTURE_BORDER_COLOR, &desc.BorderColor[0])
	return s, nil
}

func (s *samplerState) Description() pie.SamplerStateDescription { return s.desc }

func (s *samplerState) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	gl.DeleteSamplers(1, &s.handle)
}

type inputLayout struct {
	descs    []pie.InputLayoutDescription
	disposed bool
}

func (l *inputLayout) Descriptions() []pie.InputLayoutDescription { return l.descs }

func (l *inputLayout) Dispose() { l.disposed = true }

type framebuffer struct {
	handle   uint32
	width    int
	height   int
	disposed bool
}

func newFramebuffer(attachments []pie.FramebufferAttachment) (*framebuffer, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: framebuffer needs at least one attachment", pie.ErrResourceCreation)
	}
	fb := &framebuffer{}
	gl.GenFramebuffers(1, &fb.handle)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.handle)

	var drawBuffers []uint32
	colorIndex := uint32(0)
	for _, a := range attachments {
		t, ok := a.Texture.(*texture)
		if !ok || t.disposed {
			gl.DeleteFramebuffers(1, &fb.handle)
			return nil, pie.ErrDisposed
		}
		if fb.width == 0 {
			fb.width, fb.height = t.desc.Width, t.desc.Height
		}
		var attachment uint32
		switch {
		case t.desc.Format.HasStencil():
			attachment = gl.DEPTH_STENCIL_ATTACHMENT
		case t.desc.Format.IsDepth():
			attachment = gl.DEPTH_ATTACHMENT
		default:
			attachment = gl.COLOR_ATTACHMENT0 + colorIndex
			drawBuffers = append(drawBuffers, attachment)
			colorIndex++
		}
		switch t.target {
		case gl.TEXTURE_2D, gl.TEXTURE_CUBE_MAP:
			target := t.target
			if t.target == gl.TEXTURE_CUBE_MAP {
				target = gl.TEXTURE_CUBE_MAP_POSITIVE_X + a.ArrayIndex
			}
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, target, t.handle, int32(a.MipLevel))
		default:
			gl.FramebufferTextureLayer(gl.FRAMEBUFFER, attachment, t.handle, int32(a.MipLevel), int32(a.ArrayIndex))
		}
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fb.handle)
		return nil, fmt.Errorf("%w: framebuffer incomplete 0x%04x", pie.ErrResourceCreation, status)
	}
	return fb, nil
}

func (f *framebuffer) Size() (int, int) { return f.width, f.height }

func (f *framebuffer) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	gl.DeleteFramebuffers(1, &f.handle)
}
