package backend

import (
	"errors"
	"testing"

	pie "github.com/IsometricSoftware/Pie"
)

// stubDriver is a minimal driver for registry tests.
type stubDriver struct {
	name string
	api  pie.GraphicsAPI
}

func (d stubDriver) Name() string { return d.name }

func (d stubDriver) API() pie.GraphicsAPI { return d.api }

func (d stubDriver) NewDevice(*Surface, *pie.GraphicsDeviceOptions) (pie.Device, error) {
	return nil, errors.New("stub")
}

func register(t *testing.T, name string, api pie.GraphicsAPI) {
	t.Helper()
	Register(name, func() Driver { return stubDriver{name: name, api: api} })
	t.Cleanup(func() { Unregister(name) })
}

func TestRegisterAndGet(t *testing.T) {
	register(t, "test-stub", pie.APINull)

	if !IsRegistered("test-stub") {
		t.Fatal("IsRegistered(test-stub) = false after Register")
	}
	drv := Get("test-stub")
	if drv == nil {
		t.Fatal("Get(test-stub) returned nil")
	}
	if drv.Name() != "test-stub" {
		t.Errorf("Name() = %q, want %q", drv.Name(), "test-stub")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("no-such-driver") != nil {
		t.Error("Get(no-such-driver) should return nil")
	}
	if IsRegistered("no-such-driver") {
		t.Error("IsRegistered(no-such-driver) should be false")
	}
}

func TestUnregister(t *testing.T) {
	Register("transient", func() Driver { return stubDriver{name: "transient"} })
	Unregister("transient")
	if IsRegistered("transient") {
		t.Error("transient should be unregistered")
	}
}

func TestAvailable(t *testing.T) {
	register(t, "avail-stub", pie.APINull)

	found := false
	for _, name := range Available() {
		if name == "avail-stub" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Available() should include avail-stub")
	}
}

func TestDefaultHonorsPriority(t *testing.T) {
	register(t, DriverWebGPU, pie.APIWebGPU)
	register(t, DriverVulkan, pie.APIVulkan)

	drv := Default()
	if drv == nil {
		t.Fatal("Default() returned nil")
	}
	if drv.Name() != DriverVulkan {
		t.Errorf("Default().Name() = %q, want %q (highest priority)", drv.Name(), DriverVulkan)
	}
}

func TestDefaultFallsBackToAnyRegistered(t *testing.T) {
	register(t, "off-priority", pie.APINull)

	drv := Default()
	if drv == nil {
		t.Fatal("Default() returned nil with a registered driver")
	}
}

func TestNewDeviceUnregisteredAPI(t *testing.T) {
	_, err := NewDevice(pie.APID3D11, nil)
	if !errors.Is(err, ErrBackendNotRegistered) {
		t.Errorf("NewDevice(unregistered) error = %v, want ErrBackendNotRegistered", err)
	}
}

func TestNewDeviceSelectsByAPI(t *testing.T) {
	register(t, "api-stub", pie.APIOpenGL)

	_, err := NewDevice(pie.APIOpenGL, nil)
	// The stub's NewDevice fails, proving it was selected.
	if err == nil || errors.Is(err, ErrBackendNotRegistered) {
		t.Errorf("NewDevice(APIOpenGL) error = %v, want stub error", err)
	}
}
