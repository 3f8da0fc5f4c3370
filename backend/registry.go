package backend

import (
	"sync"

	pie "github.com/IsometricSoftware/Pie"
)

// DriverFactory creates a new driver instance.
type DriverFactory func() Driver

// Driver name constants.
const (
	// DriverNull is the headless backend with a CPU default target.
	DriverNull = "null"
	// DriverVulkan is the Vulkan backend.
	DriverVulkan = "vulkan"
	// DriverD3D11 is the Direct3D 11 backend (Windows only).
	DriverD3D11 = "d3d11"
	// DriverOpenGL is the OpenGL 3.3 core backend.
	DriverOpenGL = "opengl"
	// DriverWebGPU is the pure Go WebGPU backend.
	DriverWebGPU = "webgpu"
)

// registry holds registered drivers.
var (
	registryMu sync.RWMutex
	drivers    = make(map[string]DriverFactory)
	// Priority order for driver selection (first available wins).
	driverPriority = []string{DriverVulkan, DriverD3D11, DriverOpenGL, DriverWebGPU, DriverNull}
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in backend packages.
// If a driver with the same name is already registered, it is replaced.
func Register(name string, factory DriverFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[name] = factory
}

// Unregister removes a driver from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(drivers, name)
}

// Available returns a list of registered driver names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a driver with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := drivers[name]
	return ok
}

// Get returns a driver instance by name.
// Returns nil if the driver is not registered.
func Get(name string) Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := drivers[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available driver based on priority.
// Priority order: vulkan > d3d11 > opengl > webgpu > null.
// Returns nil if no drivers are registered.
func Default() Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range driverPriority {
		if factory, ok := drivers[name]; ok {
			if d := factory(); d != nil {
				return d
			}
		}
	}
	// Fall back to any registered driver.
	for _, factory := range drivers {
		if d := factory(); d != nil {
			return d
		}
	}
	return nil
}

// byAPI returns a registered driver implementing the given API, or nil.
func byAPI(api pie.GraphicsAPI) Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, factory := range drivers {
		if d := factory(); d != nil && d.API() == api {
			return d
		}
	}
	return nil
}
