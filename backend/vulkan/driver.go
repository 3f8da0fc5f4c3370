package vulkan

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
	"github.com/IsometricSoftware/Pie/backend"
)

func init() {
	backend.Register(backend.DriverVulkan, func() backend.Driver {
		return driver{}
	})
}

type driver struct{}

func (driver) Name() string { return backend.DriverVulkan }

func (driver) API() pie.GraphicsAPI { return pie.APIVulkan }

var loadOnce sync.Once

// loadVulkan binds the loader entry points. Process-wide, done once.
func loadVulkan() error {
	var err error
	loadOnce.Do(func() {
		if err = vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return
		}
		err = vk.Init()
	})
	if err != nil {
		return fmt.Errorf("%w: vulkan loader: %v", pie.ErrDeviceCreation, err)
	}
	return nil
}

func (driver) NewDevice(surface *backend.Surface, opts *pie.GraphicsDeviceOptions) (pie.Device, error) {
	if surface == nil || surface.CreateVulkanSurface == nil {
		return nil, backend.ErrNoSurface
	}
	if opts == nil {
		opts = pie.DefaultOptions()
	}
	if err := loadVulkan(); err != nil {
		return nil, err
	}

	instance, err := createInstance(surface.InstanceExtensions, opts.Debug)
	if err != nil {
		return nil, err
	}

	raw, err := surface.CreateVulkanSurface(uintptr(unsafe.Pointer(instance)))
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("%w: surface creation: %v", pie.ErrDeviceCreation, err)
	}
	surf := vk.SurfaceFromPointer(uintptr(raw))

	phys, err := pickPhysicalDevice(instance, surf)
	if err != nil {
		vk.DestroySurface(instance, surf, nil)
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	d := &device{
		instance:         instance,
		surface:          surf,
		physical:         phys,
		opts:             opts,
		renderPasses:     map[renderPassKey]vk.RenderPass{},
		pipelines:        map[pipelineKey]vk.Pipeline{},
		computePipelines: map[*shader]vk.Pipeline{},
		mappings:         map[pie.MappableResource][]byte{},
		swapInterval:     1,
	}
	if err := d.bootstrap(surface.Width, surface.Height); err != nil {
		d.Dispose()
		return nil, err
	}
	pie.Logger().Info("vulkan: device created",
		"adapter", phys.name,
		"color", opts.ColorBufferFormat,
		"depthStencil", opts.DepthStencilBufferFormat,
		"debug", opts.Debug)
	return d, nil
}

// bootstrap creates the logical device, queues, command machinery,
// descriptor layouts, swapchain and default render targets. Any failure
// here is fatal; the caller disposes the partial device.
func (d *device) bootstrap(width, height int) error {
	var supported vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(d.physical.handle, &supported)
	supported.Deref()
	features := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: supported.SamplerAnisotropy,
		FillModeNonSolid:  supported.FillModeNonSolid,
		GeometryShader:    supported.GeometryShader,
	}

	queuePriorities := []float32{1}
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.physical.graphicsQueue,
		QueueCount:       1,
		PQueuePriorities: queuePriorities,
	}}
	if d.physical.presentQueue != d.physical.graphicsQueue {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: d.physical.presentQueue,
			QueueCount:       1,
			PQueuePriorities: queuePriorities,
		})
	}

	extensions := safeStrings([]string{"VK_KHR_swapchain"})
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}
	if err := vk.Error(vk.CreateDevice(d.physical.handle, &createInfo, nil, &d.device)); err != nil {
		return fmt.Errorf("%w: vkCreateDevice: %v", pie.ErrDeviceCreation, err)
	}

	var q vk.Queue
	vk.GetDeviceQueue(d.device, d.physical.graphicsQueue, 0, &q)
	d.graphicsQ = q
	vk.GetDeviceQueue(d.device, d.physical.presentQueue, 0, &q)
	d.presentQ = q

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.physical.graphicsQueue,
	}
	if err := vk.Error(vk.CreateCommandPool(d.device, &poolInfo, nil, &d.commandPool)); err != nil {
		return fmt.Errorf("%w: vkCreateCommandPool: %v", pie.ErrDeviceCreation, err)
	}
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(d.device, &allocInfo, cmds)); err != nil {
		return fmt.Errorf("%w: frame command buffer: %v", pie.ErrDeviceCreation, err)
	}
	d.cmd = cmds[0]

	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if err := vk.Error(vk.CreateFence(d.device, &fenceInfo, nil, &d.frameFence)); err != nil {
		return fmt.Errorf("%w: frame fence: %v", pie.ErrDeviceCreation, err)
	}
	semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if err := vk.Error(vk.CreateSemaphore(d.device, &semInfo, nil, &d.imageAvailable)); err != nil {
		return fmt.Errorf("%w: semaphore: %v", pie.ErrDeviceCreation, err)
	}
	if err := vk.Error(vk.CreateSemaphore(d.device, &semInfo, nil, &d.renderFinished)); err != nil {
		return fmt.Errorf("%w: semaphore: %v", pie.ErrDeviceCreation, err)
	}

	if err := d.createDescriptorLayouts(); err != nil {
		return err
	}

	sc, err := d.createSwapchain(width, height, d.swapInterval, vk.NullSwapchain)
	if err != nil {
		return err
	}
	d.sc = sc
	d.swapLayouts = make([]vk.ImageLayout, len(sc.images))
	d.width = int(sc.extent.Width)
	d.height = int(sc.extent.Height)
	if err := d.createDefaultFramebuffers(); err != nil {
		return err
	}

	// The depth image lives in attachment-optimal layout for its whole
	// life; settle it there now.
	if sc.depthImage != vk.NullImage {
		cmd, err := d.beginOneTime()
		if err != nil {
			return err
		}
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if d.opts.DepthStencilBufferFormat.HasStencil() {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		d.transition(cmd, sc.depthImage, aspect, vk.ImageLayoutUndefined,
			vk.ImageLayoutDepthStencilAttachmentOptimal, 1, 1)
		if err := d.endOneTime(cmd); err != nil {
			return err
		}
	}

	d.viewport = image.Rect(0, 0, d.width, d.height)
	d.scissor = d.viewport
	return nil
}
