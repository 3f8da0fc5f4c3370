// Package opengl implements the pie device on OpenGL 3.3 core.
//
// The driver needs a current GL context on the calling goroutine and
// resolves function pointers through Surface.GLProcAddr. Presentation
// goes through Surface.GLSwapBuffers, so the windowing layer keeps
// ownership of the default framebuffer, including its depth-stencil
// configuration; GraphicsDeviceOptions.DepthStencilBufferFormat only
// records intent here.
//
// OpenGL 3.3 has no validation layer equivalent; requesting a debug
// device logs a warning and continues, per the device creation
// contract. Shaders must be supplied as GLSL; compute dispatch is not
// available on this backend.
package opengl
