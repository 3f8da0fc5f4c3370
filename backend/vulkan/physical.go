package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// physicalDevice bundles the selected GPU with its queue family
// indices.
type physicalDevice struct {
	handle        vk.PhysicalDevice
	name          string
	deviceType    vk.PhysicalDeviceType
	graphicsQueue uint32
	presentQueue  uint32
}

// pickPhysicalDevice scores every adapter and returns the best one that
// exposes a graphics queue and can present to surface. Discrete GPUs
// win over integrated, integrated over everything else.
func pickPhysicalDevice(instance vk.Instance, surface vk.Surface) (*physicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, fmt.Errorf("%w: enumerate adapters: %v", pie.ErrDeviceCreation, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no Vulkan-capable adapters", pie.ErrDeviceCreation)
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, fmt.Errorf("%w: enumerate adapters: %v", pie.ErrDeviceCreation, err)
	}

	var best *physicalDevice
	bestScore := -1
	for _, dev := range devices {
		pd, ok := queueIndices(dev, surface)
		if !ok {
			continue
		}

		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()
		pd.name = vk.ToString(props.DeviceName[:])
		pd.deviceType = props.DeviceType

		score := 0
		switch props.DeviceType {
		case vk.PhysicalDeviceTypeDiscreteGpu:
			score = 2
		case vk.PhysicalDeviceTypeIntegratedGpu:
			score = 1
		}
		if score > bestScore {
			best = pd
			bestScore = score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no adapter with graphics+present queues", pie.ErrDeviceCreation)
	}
	return best, nil
}

// queueIndices finds graphics and present queue families on dev.
func queueIndices(dev vk.PhysicalDevice, surface vk.Surface) (*physicalDevice, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, families)

	graphics, present := -1, -1
	for i, f := range families {
		f.Deref()
		if f.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 && graphics < 0 {
			graphics = i
		}
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(dev, uint32(i), surface, &supported)
		if supported == vk.True && present < 0 {
			present = i
		}
	}
	if graphics < 0 || present < 0 {
		return nil, false
	}
	return &physicalDevice{
		handle:        dev,
		graphicsQueue: uint32(graphics),
		presentQueue:  uint32(present),
	}, true
}

// adapter converts the physical device info to the pie descriptor.
func (p *physicalDevice) adapter() pie.Adapter {
	t := pie.AdapterTypeUnknown
	switch p.deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		t = pie.AdapterTypeDiscrete
	case vk.PhysicalDeviceTypeIntegratedGpu:
		t = pie.AdapterTypeIntegrated
	case vk.PhysicalDeviceTypeCpu:
		t = pie.AdapterTypeSoftware
	}
	return pie.Adapter{Name: p.name, Type: t}
}

// findMemoryType selects a memory type index satisfying typeBits and
// the requested properties.
func findMemoryType(dev vk.PhysicalDevice, typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(dev, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		mt := memProps.MemoryTypes[i]
		mt.Deref()
		if typeBits&(1<<i) != 0 && mt.PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no suitable memory type", pie.ErrResourceCreation)
}
