package opengl

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

func init() {
	backend.Register(backend.DriverOpenGL, func() backend.Driver {
		return driver{}
	})
}

type driver struct{}

func (driver) Name() string { return backend.DriverOpenGL }

func (driver) API() pie.GraphicsAPI { return pie.APIOpenGL }

func (driver) NewDevice(surface *backend.Surface, opts *pie.GraphicsDeviceOptions) (pie.Device, error) {
	if surface == nil || surface.GLProcAddr == nil || surface.GLSwapBuffers == nil {
		return nil, backend.ErrNoSurface
	}
	if opts == nil {
		opts = pie.DefaultOptions()
	}
	if err := gl.InitWithProcAddrFunc(surface.GLProcAddr); err != nil {
		return nil, fmt.Errorf("%w: loading GL functions: %v", pie.ErrDeviceCreation, err)
	}
	if opts.Debug {
		pie.Logger().Warn("opengl: no validation layer on GL 3.3; continuing without debug")
	}

	d := &device{
		surface: surface,
		adapter: pie.Adapter{
			Name:   gl.GoStr(gl.GetString(gl.RENDERER)),
			Vendor: gl.GoStr(gl.GetString(gl.VENDOR)),
		},
		mappings: map[pie.MappableResource][]byte{},
		width:    surface.Width,
		height:   surface.Height,
	}

	// Core profile requires a bound VAO for any vertex work.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	if opts.ColorBufferFormat == pie.FormatR8G8B8A8UNormSRGB ||
		opts.ColorBufferFormat == pie.FormatB8G8R8A8UNormSRGB {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	}

	d.SetViewport(image.Rect(0, 0, d.width, d.height))
	d.SetScissor(image.Rect(0, 0, d.width, d.height))
	d.SetRasterizerState(nil)
	d.SetBlendState(nil)
	d.SetDepthStencilState(nil, 0)

	pie.Logger().Info("opengl: device created",
		"renderer", d.adapter.Name,
		"vendor", d.adapter.Vendor,
		"version", gl.GoStr(gl.GetString(gl.VERSION)))
	return d, nil
}
