// Package null provides a headless pie backend.
//
// The null backend touches no native graphics API. The default color
// and depth-stencil targets are CPU-side pixel stores, resource
// contents live in ordinary byte slices, and draws only update the
// device metrics. The backend enforces the full abstraction contract —
// dynamic/usage validation, map/unmap lifecycle, default-framebuffer
// restore — which makes it suitable for tests, CI, and servers without
// a GPU.
//
// Importing the package registers the driver:
//
//	import _ "github.com/IsometricSoftware/Pie/backend/null"
package null
