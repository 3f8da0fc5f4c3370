// Package d3d11 implements the pie device on Direct3D 11.
//
// The driver registers itself on import and creates the device with
// D3D11_CREATE_DEVICE_SINGLETHREADED, matching the package's
// single-threaded contract. When the surface carries an HWND the
// default target is a DXGI swapchain backbuffer; without one the
// backend renders to an offscreen texture. Shaders are consumed as
// HLSL source and compiled through d3dcompiler_47.
//
// Windows only. On other platforms the package compiles to nothing and
// registers no driver.
package d3d11
