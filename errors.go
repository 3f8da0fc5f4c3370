package pie

import "errors"

// Package errors.
//
// Construction-time failures (device, swapchain, resource creation) and
// per-call capability violations are distinguished by sentinel identity:
// test with errors.Is. Backends wrap these with operation context using
// fmt.Errorf("...: %w", err).
var (
	// ErrBackendNotAvailable is returned when the requested backend is
	// not registered or cannot run on the host.
	ErrBackendNotAvailable = errors.New("pie: backend not available")

	// ErrDeviceCreation is returned when native device or context
	// creation fails during bootstrap. Fatal; the device is unusable.
	ErrDeviceCreation = errors.New("pie: device creation failed")

	// ErrSwapchainCreation is returned when swapchain or default render
	// target creation fails, at bootstrap or during a resize. A failed
	// resize may leave the device without a valid render target;
	// callers must treat it as device-fatal.
	ErrSwapchainCreation = errors.New("pie: swapchain creation failed")

	// ErrResourceCreation is returned when a buffer, texture, shader,
	// state object, or framebuffer cannot be created.
	ErrResourceCreation = errors.New("pie: resource creation failed")

	// ErrShaderCompile is returned when shader compilation or
	// cross-compilation fails at shader construction.
	ErrShaderCompile = errors.New("pie: shader compilation failed")

	// ErrNotDynamic is returned when UpdateBuffer, UpdateTexture, or
	// MapResource is invoked on a resource whose dynamic/usage flags do
	// not permit CPU writes. Capability violation, not recoverable.
	ErrNotDynamic = errors.New("pie: resource is not dynamic")

	// ErrDisposed is returned when an operation references a resource
	// whose backend handle has already been released.
	ErrDisposed = errors.New("pie: resource is disposed")

	// ErrOutOfRange is returned when an update range exceeds the
	// resource's extent.
	ErrOutOfRange = errors.New("pie: update range out of bounds")

	// ErrUnsupportedFormat is returned when a pixel format is not
	// supported by the active backend.
	ErrUnsupportedFormat = errors.New("pie: unsupported format")

	// ErrNotMappable is returned when MapResource is called on a
	// resource kind the backend cannot expose to the CPU.
	ErrNotMappable = errors.New("pie: resource is not mappable")

	// ErrAlreadyMapped is returned when MapResource is called on a
	// resource that is currently mapped.
	ErrAlreadyMapped = errors.New("pie: resource is already mapped")

	// ErrNotMapped is returned when UnmapResource is called on a
	// resource that is not mapped.
	ErrNotMapped = errors.New("pie: resource is not mapped")
)
