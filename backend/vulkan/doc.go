// Package vulkan provides the Vulkan backend for pie.
//
// The driver creates an instance (with the Khronos validation layer
// when debug is requested and available), selects a physical device
// preferring discrete GPUs, creates a logical device with graphics and
// present queues, and builds a swapchain sized to the surface. Graphics
// pipelines are assembled lazily from the bound pie state objects and
// cached by state; descriptor sets are allocated per frame from a
// pool that is reset on Present.
//
// Shader binding model: uniform buffers occupy set 0 at the binding
// equal to their pie slot; combined image samplers occupy set 1 the
// same way. SPIR-V attachments are consumed directly; WGSL attachments
// are cross-compiled through the shaderc package.
//
// The windowing layer owns surface creation: set
// backend.Surface.InstanceExtensions to the extensions it requires and
// CreateVulkanSurface to its surface constructor (for glfw,
// window.CreateWindowSurface).
//
// Importing the package registers the driver:
//
//	import _ "github.com/IsometricSoftware/Pie/backend/vulkan"
package vulkan
