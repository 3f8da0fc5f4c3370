package vulkan

import (
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// swapchain owns the presentable images, their views, and the shared
// depth-stencil image for the default render target.
type swapchain struct {
	handle      vk.Swapchain
	format      vk.Format
	extent      vk.Extent2D
	images      []vk.Image
	views       []vk.ImageView
	depthFormat vk.Format
	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView
}

// presentMode maps the requested swap interval onto an available mode.
// Interval 0 asks for immediate (falling back to mailbox, then FIFO);
// anything else uses FIFO, which is always available.
func presentMode(modes []vk.PresentMode, swapInterval int) vk.PresentMode {
	if swapInterval == 0 {
		for _, m := range modes {
			if m == vk.PresentModeImmediate {
				return m
			}
		}
		for _, m := range modes {
			if m == vk.PresentModeMailbox {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

func (d *device) createSwapchain(width, height, swapInterval int, old vk.Swapchain) (*swapchain, error) {
	phys := d.physical.handle

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(phys, d.surface, &caps)); err != nil {
		return nil, fmt.Errorf("%w: surface capabilities: %v", pie.ErrSwapchainCreation, err)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(phys, d.surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(phys, d.surface, &formatCount, formats)

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(phys, d.surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(phys, d.surface, &modeCount, modes)

	wanted := vkFormat(d.opts.ColorBufferFormat)
	surfaceFormat := formats[0]
	surfaceFormat.Deref()
	for _, f := range formats {
		f.Deref()
		if f.Format == wanted && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			surfaceFormat = f
			break
		}
	}

	extent := caps.CurrentExtent
	if extent.Width == math.MaxUint32 {
		extent = vk.Extent2D{
			Width:  clampU32(uint32(width), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
			Height: clampU32(uint32(height), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
		}
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         d.surface,
		MinImageCount:   imageCount,
		ImageFormat:     surfaceFormat.Format,
		ImageColorSpace: surfaceFormat.ColorSpace,
		ImageExtent:     extent,
		ImageArrayLayers: 1,
		ImageUsage: vk.ImageUsageFlags(
			vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		PreTransform:   caps.CurrentTransform,
		CompositeAlpha: vk.CompositeAlphaOpaqueBit,
		PresentMode:    presentMode(modes, swapInterval),
		Clipped:        vk.True,
		OldSwapchain:   old,
	}
	if d.physical.graphicsQueue != d.physical.presentQueue {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{d.physical.graphicsQueue, d.physical.presentQueue}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	sc := &swapchain{format: surfaceFormat.Format, extent: extent}
	if err := vk.Error(vk.CreateSwapchain(d.device, &createInfo, nil, &sc.handle)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateSwapchainKHR: %v", pie.ErrSwapchainCreation, err)
	}

	var count uint32
	vk.GetSwapchainImages(d.device, sc.handle, &count, nil)
	sc.images = make([]vk.Image, count)
	vk.GetSwapchainImages(d.device, sc.handle, &count, sc.images)

	sc.views = make([]vk.ImageView, count)
	for i, img := range sc.images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   sc.format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if err := vk.Error(vk.CreateImageView(d.device, &viewInfo, nil, &sc.views[i])); err != nil {
			sc.destroy(d)
			return nil, fmt.Errorf("%w: swapchain image view: %v", pie.ErrSwapchainCreation, err)
		}
	}

	if d.opts.DepthStencilBufferFormat != pie.FormatUnknown {
		if err := sc.createDepth(d); err != nil {
			sc.destroy(d)
			return nil, err
		}
	}
	return sc, nil
}

// createDepth creates the shared depth-stencil image matching the
// swapchain extent.
func (sc *swapchain) createDepth(d *device) error {
	sc.depthFormat = vkFormat(d.opts.DepthStencilBufferFormat)
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    sc.depthFormat,
		Extent: vk.Extent3D{
			Width:  sc.extent.Width,
			Height: sc.extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit | vk.ImageUsageTransferDstBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if err := vk.Error(vk.CreateImage(d.device, &imageInfo, nil, &sc.depthImage)); err != nil {
		return fmt.Errorf("%w: depth image: %v", pie.ErrSwapchainCreation, err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, sc.depthImage, &memReqs)
	memReqs.Deref()
	memType, err := findMemoryType(d.physical.handle, memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	if err := vk.Error(vk.AllocateMemory(d.device, &allocInfo, nil, &sc.depthMemory)); err != nil {
		return fmt.Errorf("%w: depth memory: %v", pie.ErrSwapchainCreation, err)
	}
	if err := vk.Error(vk.BindImageMemory(d.device, sc.depthImage, sc.depthMemory, 0)); err != nil {
		return fmt.Errorf("%w: depth bind: %v", pie.ErrSwapchainCreation, err)
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if d.opts.DepthStencilBufferFormat.HasStencil() {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    sc.depthImage,
		ViewType: vk.ImageViewType2d,
		Format:   sc.depthFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	if err := vk.Error(vk.CreateImageView(d.device, &viewInfo, nil, &sc.depthView)); err != nil {
		return fmt.Errorf("%w: depth view: %v", pie.ErrSwapchainCreation, err)
	}
	return nil
}

func (sc *swapchain) destroy(d *device) {
	if sc.depthView != vk.NullImageView {
		vk.DestroyImageView(d.device, sc.depthView, nil)
	}
	if sc.depthImage != vk.NullImage {
		vk.DestroyImage(d.device, sc.depthImage, nil)
	}
	if sc.depthMemory != vk.NullDeviceMemory {
		vk.FreeMemory(d.device, sc.depthMemory, nil)
	}
	for _, v := range sc.views {
		vk.DestroyImageView(d.device, v, nil)
	}
	sc.views = nil
	if sc.handle != vk.NullSwapchain {
		vk.DestroySwapchain(d.device, sc.handle, nil)
		sc.handle = vk.NullSwapchain
	}
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
