package null

import (
	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

// driver implements backend.Driver for the null backend.
type driver struct{}

// init registers the null driver on package import.
func init() {
	backend.Register(backend.DriverNull, func() backend.Driver {
		return driver{}
	})
}

func (driver) Name() string { return backend.DriverNull }

func (driver) API() pie.GraphicsAPI { return pie.APINull }

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
