package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// validationLayer is the layer requested when debug is enabled.
const validationLayer = "VK_LAYER_KHRONOS_validation"

// supportedLayers enumerates the instance layers available on the host.
func supportedLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, p := range props {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, nil
}

// createInstance creates the Vulkan instance. When debug is requested
// the Khronos validation layer is enabled if present; when absent the
// instance downgrades to non-debug with a warning, per the abstraction
// contract.
func createInstance(extensions []string, debug bool) (vk.Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString("pie"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeString("pie"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}

	var layers []string
	if debug {
		available, err := supportedLayers()
		if err != nil {
			pie.Logger().Warn("vulkan: failed to enumerate layers; debug disabled", "err", err)
		} else if contains(available, validationLayer) {
			layers = append(layers, validationLayer)
		} else {
			pie.Logger().Warn("vulkan: validation layer unavailable; continuing without debug")
		}
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateInstance: %v", pie.ErrDeviceCreation, err)
	}
	vk.InitInstance(instance)
	return instance, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// safeString null-terminates a string for the C side.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}
