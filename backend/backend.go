// Package backend defines the driver contract pie backends implement
// and a registry through which applications select one.
//
// Backends register themselves on import:
//
//	import _ "github.com/IsometricSoftware/Pie/backend/null"
//
// and are selected by API through NewDevice, or by priority through
// Default.
package backend

import (
	"errors"
	"fmt"
	"unsafe"

	pie "github.com/IsometricSoftware/Pie"
)

// Common backend errors.
var (
	// ErrBackendNotRegistered is returned when a requested backend has
	// not been registered (its package was not imported).
	ErrBackendNotRegistered = errors.New("backend: not registered")

	// ErrNoSurface is returned when a driver that requires a native
	// surface is given none.
	ErrNoSurface = errors.New("backend: no native surface")
)

// Surface carries the native window handles and initial size a driver
// needs to create a presentable swapchain. Only the fields relevant to
// the host platform and chosen backend need to be set; the windowing
// toolkit that produced the handles stays outside pie.
type Surface struct {
	// Width and Height are the initial drawable size in pixels.
	Width  int
	Height int

	// HWND and HInstance identify a Win32 window (D3D11, Vulkan,
	// OpenGL on Windows).
	HWND      uintptr
	HInstance uintptr

	// X11Display and X11Window identify an Xlib window.
	X11Display unsafe.Pointer
	X11Window  uintptr

	// WaylandDisplay and WaylandSurface identify a Wayland surface.
	WaylandDisplay unsafe.Pointer
	WaylandSurface unsafe.Pointer

	// MetalLayer is a CAMetalLayer pointer (darwin).
	MetalLayer unsafe.Pointer

	// InstanceExtensions lists the Vulkan instance extensions the
	// windowing layer requires (e.g. from glfw
	// GetRequiredInstanceExtensions).
	InstanceExtensions []string

	// CreateVulkanSurface creates a VkSurfaceKHR for the window on the
	// given VkInstance. Required by the Vulkan driver; for glfw this is
	// a thin wrapper over window.CreateWindowSurface.
	CreateVulkanSurface func(instance uintptr) (surface uint64, err error)

	// GLProcAddr resolves OpenGL functions in the current context.
	// Required by the OpenGL driver; typically glfw's GetProcAddress.
	GLProcAddr func(name string) unsafe.Pointer

	// GLSwapBuffers presents the OpenGL default framebuffer. Required
	// by the OpenGL driver.
	GLSwapBuffers func()

	// GLSwapInterval sets the OpenGL swap interval, when the windowing
	// layer supports it. Optional.
	GLSwapInterval func(interval int)
}

// Driver is the bootstrap contract of one backend. NewDevice performs
// the one-time setup: adapter selection, native device/context
// creation, swapchain and default render-target creation. Any failure
// during bootstrap is fatal and aborts construction.
type Driver interface {
	// Name returns the registry identifier (e.g. "vulkan").
	Name() string

	// API reports the pie API the driver implements.
	API() pie.GraphicsAPI

	// NewDevice creates a device on the given surface. opts may be nil,
	// meaning pie.DefaultOptions().
	NewDevice(surface *Surface, opts *pie.GraphicsDeviceOptions) (pie.Device, error)
}

// NewDevice creates a device on the backend implementing api, applying
// opts over the defaults. The backend's package must have been
// imported.
func NewDevice(api pie.GraphicsAPI, surface *Surface, opts ...pie.DeviceOption) (pie.Device, error) {
	d := byAPI(api)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotRegistered, api)
	}
	return d.NewDevice(surface, pie.DefaultOptions(opts...))
}
