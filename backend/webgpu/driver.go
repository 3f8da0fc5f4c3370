package webgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

// driver implements backend.Driver for the webgpu backend.
type driver struct{}

func init() {
	backend.Register(backend.DriverWebGPU, func() backend.Driver {
		return driver{}
	})
}

func (driver) Name() string { return backend.DriverWebGPU }

func (driver) API() pie.GraphicsAPI { return pie.APIWebGPU }

func (driver) NewDevice(surface *backend.Surface, opts *pie.GraphicsDeviceOptions) (pie.Device, error) {
	if opts == nil {
		opts = pie.DefaultOptions()
	}
	width, height := 1, 1
	if surface != nil {
		if surface.Width > 0 {
			width = surface.Width
		}
		if surface.Height > 0 {
			height = surface.Height
		}
	}
	return newDevice(width, height, opts)
}

func newDevice(width, height int, opts *pie.GraphicsDeviceOptions) (pie.Device, error) {
	hb, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: no wgpu hal backend compiled in", pie.ErrBackendNotAvailable)
	}

	if opts.Debug {
		// The hal instance descriptor has no validation toggle; debug
		// devices downgrade rather than fail.
		pie.Logger().Warn("webgpu: debug layer not available, creating non-debug device")
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pie.ErrBackendNotAvailable, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters", pie.ErrBackendNotAvailable)
	}
	selected := adapters[0]
	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = a
			break
		}
		if a.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU &&
			selected.Info.DeviceType != gputypes.DeviceTypeIntegratedGPU {
			selected = a
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("pie: failed to open adapter %q: %w", selected.Info.Name, err)
	}

	d := &device{
		instance:         instance,
		dev:              open.Device,
		queue:            open.Queue,
		opts:             opts,
		adapter:          adapterInfo(selected),
		groupLayouts:     make(map[layoutKey]*bindLayouts),
		pipelines:        make(map[pipelineKey]hal.RenderPipeline),
		computePipelines: make(map[computeKey]hal.ComputePipeline),
		mappings:         make(map[pie.MappableResource]*mapping),
		bindingsDirty:    true,
	}

	if err := d.createTargets(width, height); err != nil {
		d.dev.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.viewport = image.Rect(0, 0, width, height)
	d.scissor = d.viewport

	pie.Logger().Info("webgpu: device created",
		"adapter", d.adapter.Name,
		"color", opts.ColorBufferFormat.String(),
		"depth", opts.DepthStencilBufferFormat.String(),
		"size", fmt.Sprintf("%dx%d", width, height))
	return d, nil
}

func adapterInfo(a hal.ExposedAdapter) pie.Adapter {
	t := pie.AdapterTypeUnknown
	switch a.Info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = pie.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = pie.AdapterTypeIntegrated
	}
	return pie.Adapter{Name: a.Info.Name, Vendor: a.Info.Vendor, Type: t}
}
