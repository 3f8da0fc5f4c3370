// Package pie provides a backend-agnostic graphics device abstraction.
//
// # Overview
//
// Pie exposes a single [Device] interface backed by interchangeable
// native rendering backends: Vulkan, Direct3D 11, OpenGL, WebGPU, and a
// headless null backend. Applications issue backend-agnostic calls —
// create buffers, textures, shaders and pipeline state objects, bind
// them, issue draws — and pie dispatches to whichever native API was
// selected at device creation. No backend type ever crosses the
// abstraction boundary.
//
// # Quick Start
//
//	import (
//	    pie "github.com/IsometricSoftware/Pie"
//	    "github.com/IsometricSoftware/Pie/backend"
//	    _ "github.com/IsometricSoftware/Pie/backend/null"
//	)
//
//	surface := &backend.Surface{Width: 1280, Height: 720}
//	device, err := backend.NewDevice(pie.APINull, surface)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer device.Dispose()
//
//	device.ClearColorBuffer(1, 0, 0, 1)
//	device.Present(1)
//
// # Threading
//
// A Device and every resource created from it are confined to a single
// thread. Pie spawns no goroutines and performs no internal locking;
// callers that need cross-thread access must serialize it themselves.
//
// # Backends
//
// Backends register themselves on import, following the pattern used by
// database/sql drivers. Import the backend packages you want available
// and select one through backend.NewDevice, or let backend.Default pick
// the best registered one.
package pie
