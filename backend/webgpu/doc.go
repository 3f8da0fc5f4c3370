// Package webgpu implements the pie device on the gogpu wgpu HAL.
//
// The backend is headless: there is no OS swapchain, and the Surface
// only supplies the backbuffer dimensions. Rendering lands in an
// internal color texture (plus a depth-stencil texture when the device
// options ask for one); Present completes the frame offscreen and
// resets the per-frame metrics. This makes the backend suitable for
// server-side and test rendering where no window exists.
//
// Shaders are consumed as SPIR-V; WGSL attachments are cross-compiled
// through the shaderc package at construction. Geometry stages and
// block-compressed texture formats are not available on this backend.
package webgpu
