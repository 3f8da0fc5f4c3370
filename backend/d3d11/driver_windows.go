//go:build windows

package d3d11

import (
	"fmt"
	"image"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
	"github.com/IsometricSoftware/Pie/backend/d3d11/internal/com"
)

// driver implements backend.Driver for Direct3D 11.
type driver struct{}

// init registers the d3d11 driver on package import.
func init() {
	backend.Register(backend.DriverD3D11, func() backend.Driver {
		return driver{}
	})
}

func (driver) Name() string { return backend.DriverD3D11 }

func (driver) API() pie.GraphicsAPI { return pie.APID3D11 }

func (driver) NewDevice(surface *backend.Surface, opts *pie.GraphicsDeviceOptions) (pie.Device, error) {
	if opts == nil {
		opts = pie.DefaultOptions()
	}
	if err := com.CheckAvailable(); err != nil {
		return nil, fmt.Errorf("%w: d3d11.dll: %v", pie.ErrBackendNotAvailable, err)
	}
	width, height := 1, 1
	var hwnd uintptr
	if surface != nil {
		width, height = max(surface.Width, 1), max(surface.Height, 1)
		hwnd = surface.HWND
	}
	return newDevice(hwnd, width, height, opts)
}

func newDevice(hwnd uintptr, width, height int, opts *pie.GraphicsDeviceOptions) (*device, error) {
	colorFormat := dxFormat(opts.ColorBufferFormat)
	if colorFormat == com.DXGI_FORMAT_UNKNOWN {
		return nil, fmt.Errorf("%w: color buffer format %s", pie.ErrUnsupportedFormat, opts.ColorBufferFormat)
	}

	var desc *com.DXGI_SWAP_CHAIN_DESC
	if hwnd != 0 {
		desc = &com.DXGI_SWAP_CHAIN_DESC{
			BufferDesc: com.DXGI_MODE_DESC{
				Width:       uint32(width),
				Height:      uint32(height),
				RefreshRate: com.DXGI_RATIONAL{Numerator: 60, Denominator: 1},
				Format:      colorFormat,
			},
			SampleDesc:   com.DXGI_SAMPLE_DESC{Count: 1},
			BufferUsage:  com.DXGI_USAGE_RENDER_TARGET_OUTPUT,
			BufferCount:  1,
			OutputWindow: hwnd,
			Windowed:     1,
			SwapEffect:   com.DXGI_SWAP_EFFECT_DISCARD,
		}
	}

	flags := uint32(com.CREATE_DEVICE_SINGLETHREADED | com.CREATE_DEVICE_BGRA_SUPPORT)
	if opts.Debug {
		flags |= com.CREATE_DEVICE_DEBUG
	}
	dev, ctx, swapchain, err := com.CreateDeviceAndSwapChain(flags, desc)
	if err != nil && opts.Debug {
		// The debug layer needs the SDK installed; fall back to a
		// non-debug device when it is missing.
		pie.Logger().Warn("d3d11: debug layer not available, creating non-debug device")
		flags &^= com.CREATE_DEVICE_DEBUG
		dev, ctx, swapchain, err = com.CreateDeviceAndSwapChain(flags, desc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pie.ErrDeviceCreation, err)
	}

	d := &device{
		dev:       dev,
		ctx:       ctx,
		swapchain: swapchain,
		opts:      opts,
		adapter: pie.Adapter{
			Name: "Direct3D 11 hardware device",
			Type: pie.AdapterTypeUnknown,
		},
		nativeLayouts: map[layoutKey]*com.InputLayout{},
		mappings:      map[pie.MappableResource]*mapping{},
		layoutDirty:   true,
		width:         width,
		height:        height,
	}

	if err := d.createTargets(); err != nil {
		d.destroyTargets()
		if swapchain != nil {
			swapchain.Release()
		}
		ctx.Release()
		dev.Release()
		return nil, err
	}

	d.defaultRasterizer, err = d.newRasterizerState(pie.RasterizerStateCullClockwise)
	if err == nil {
		d.defaultBlend, err = d.newBlendState(pie.BlendStateDisabled)
	}
	if err == nil {
		d.defaultDepthStencil, err = d.newDepthStencilState(pie.DepthStencilStateDisabled)
	}
	if err != nil {
		d.Dispose()
		return nil, err
	}

	d.bindTargets()
	d.SetRasterizerState(nil)
	d.SetBlendState(nil)
	d.SetDepthStencilState(nil, 0)
	d.SetPrimitiveType(pie.PrimitiveTriangleList)
	d.SetViewport(image.Rect(0, 0, width, height))
	d.SetScissor(image.Rect(0, 0, width, height))

	pie.Logger().Info("d3d11: device created",
		"size", fmt.Sprintf("%dx%d", width, height),
		"presentable", hwnd != 0,
		"debug", flags&com.CREATE_DEVICE_DEBUG != 0)
	return d, nil
}
