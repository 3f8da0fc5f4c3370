//go:build windows

package com

import (
	"math"
	"runtime"
	"syscall"
	"unsafe"
)

func float32bits(f float32) uint32 { return math.Float32bits(f) }

type Device struct {
	Vtbl *DeviceVtbl
}

type DeviceVtbl struct {
	IUnknownVtbl
	CreateBuffer                         uintptr
	CreateTexture1D                      uintptr
	CreateTexture2D                      uintptr
	CreateTexture3D                      uintptr
	CreateShaderResourceView             uintptr
	CreateUnorderedAccessView            uintptr
	CreateRenderTargetView               uintptr
	CreateDepthStencilView               uintptr
	CreateInputLayout                    uintptr
	CreateVertexShader                   uintptr
	CreateGeometryShader                 uintptr
	CreateGeometryShaderWithStreamOutput uintptr
	CreatePixelShader                    uintptr
	CreateHullShader                     uintptr
	CreateDomainShader                   uintptr
	CreateComputeShader                  uintptr
	CreateClassLinkage                   uintptr
	CreateBlendState                     uintptr
	CreateDepthStencilState              uintptr
	CreateRasterizerState                uintptr
	CreateSamplerState                   uintptr
	CreateQuery                          uintptr
	CreatePredicate                      uintptr
	CreateCounter                        uintptr
	CreateDeferredContext                uintptr
	OpenSharedResource                   uintptr
	CheckFormatSupport                   uintptr
	CheckMultisampleQualityLevels        uintptr
	CheckCounterInfo                     uintptr
	CheckCounter                         uintptr
	CheckFeatureSupport                  uintptr
	GetPrivateData                       uintptr
	SetPrivateData                       uintptr
	SetPrivateDataInterface              uintptr
	GetFeatureLevel                      uintptr
	GetCreationFlags                     uintptr
	GetDeviceRemovedReason               uintptr
	GetImmediateContext                  uintptr
	SetExceptionMode                     uintptr
	GetExceptionMode                     uintptr
}

type DeviceContext struct {
	Vtbl *DeviceContextVtbl
}

type DeviceContextVtbl struct {
	IUnknownVtbl
	GetDevice                                 uintptr
	GetPrivateData                            uintptr
	SetPrivateData                            uintptr
	SetPrivateDataInterface                   uintptr
	VSSetConstantBuffers                      uintptr
	PSSetShaderResources                      uintptr
	PSSetShader                               uintptr
	PSSetSamplers                             uintptr
	VSSetShader                               uintptr
	DrawIndexed                               uintptr
	Draw                                      uintptr
	Map                                       uintptr
	Unmap                                     uintptr
	PSSetConstantBuffers                      uintptr
	IASetInputLayout                          uintptr
	IASetVertexBuffers                        uintptr
	IASetIndexBuffer                          uintptr
	DrawIndexedInstanced                      uintptr
	DrawInstanced                             uintptr
	GSSetConstantBuffers                      uintptr
	GSSetShader                               uintptr
	IASetPrimitiveTopology                    uintptr
	VSSetShaderResources                      uintptr
	VSSetSamplers                             uintptr
	Begin                                     uintptr
	End                                       uintptr
	GetData                                   uintptr
	SetPredication                            uintptr
	GSSetShaderResources                      uintptr
	GSSetSamplers                             uintptr
	OMSetRenderTargets                        uintptr
	OMSetRenderTargetsAndUnorderedAccessViews uintptr
	OMSetBlendState                           uintptr
	OMSetDepthStencilState                    uintptr
	SOSetTargets                              uintptr
	DrawAuto                                  uintptr
	DrawIndexedInstancedIndirect              uintptr
	DrawInstancedIndirect                     uintptr
	Dispatch                                  uintptr
	DispatchIndirect                          uintptr
	RSSetState                                uintptr
	RSSetViewports                            uintptr
	RSSetScissorRects                         uintptr
	CopySubresourceRegion                     uintptr
	CopyResource                              uintptr
	UpdateSubresource                         uintptr
	CopyStructureCount                        uintptr
	ClearRenderTargetView                     uintptr
	ClearUnorderedAccessViewUint              uintptr
	ClearUnorderedAccessViewFloat             uintptr
	ClearDepthStencilView                     uintptr
	GenerateMips                              uintptr
	SetResourceMinLOD                         uintptr
	GetResourceMinLOD                         uintptr
	ResolveSubresource                        uintptr
	ExecuteCommandList                        uintptr
	HSSetShaderResources                      uintptr
	HSSetShader                               uintptr
	HSSetSamplers                             uintptr
	HSSetConstantBuffers                      uintptr
	DSSetShaderResources                      uintptr
	DSSetShader                               uintptr
	DSSetSamplers                             uintptr
	DSSetConstantBuffers                      uintptr
	CSSetShaderResources                      uintptr
	CSSetUnorderedAccessViews                 uintptr
	CSSetShader                               uintptr
	CSSetSamplers                             uintptr
	CSSetConstantBuffers                      uintptr
	VSGetConstantBuffers                      uintptr
	PSGetShaderResources                      uintptr
	PSGetShader                               uintptr
	PSGetSamplers                             uintptr
	VSGetShader                               uintptr
	PSGetConstantBuffers                      uintptr
	IAGetInputLayout                          uintptr
	IAGetVertexBuffers                        uintptr
	IAGetIndexBuffer                          uintptr
	GSGetConstantBuffers                      uintptr
	GSGetShader                               uintptr
	IAGetPrimitiveTopology                    uintptr
	VSGetShaderResources                      uintptr
	VSGetSamplers                             uintptr
	GetPredication                            uintptr
	GSGetShaderResources                      uintptr
	GSGetSamplers                             uintptr
	OMGetRenderTargets                        uintptr
	OMGetRenderTargetsAndUnorderedAccessViews uintptr
	OMGetBlendState                           uintptr
	OMGetDepthStencilState                    uintptr
	SOGetTargets                              uintptr
	RSGetState                                uintptr
	RSGetViewports                            uintptr
	RSGetScissorRects                         uintptr
	HSGetShaderResources                      uintptr
	HSGetShader                               uintptr
	HSGetSamplers                             uintptr
	HSGetConstantBuffers                      uintptr
	DSGetShaderResources                      uintptr
	DSGetShader                               uintptr
	DSGetSamplers                             uintptr
	DSGetConstantBuffers                      uintptr
	CSGetShaderResources                      uintptr
	CSGetUnorderedAccessViews                 uintptr
	CSGetShader                               uintptr
	CSGetSamplers                             uintptr
	CSGetConstantBuffers                      uintptr
	ClearState                                uintptr
	Flush                                     uintptr
	GetType                                   uintptr
	GetContextFlags                           uintptr
	FinishCommandList                         uintptr
}

type SwapChain struct {
	Vtbl *SwapChainVtbl
}

type SwapChainVtbl struct {
	IUnknownVtbl
	SetPrivateData          uintptr
	SetPrivateDataInterface uintptr
	GetPrivateData          uintptr
	GetParent               uintptr
	GetDevice               uintptr
	Present                 uintptr
	GetBuffer               uintptr
	SetFullscreenState      uintptr
	GetFullscreenState      uintptr
	GetDesc                 uintptr
	ResizeBuffers           uintptr
	ResizeTarget            uintptr
	GetContainingOutput     uintptr
	GetFrameStatistics      uintptr
	GetLastPresentCount     uintptr
}

// Object is any COM object the backend only ever releases: resources,
// views, shaders, state objects.
type Object struct {
	Vtbl *IUnknownVtbl
}

func (o *Object) Release() {
	if o != nil {
		IUnknownRelease(unsafe.Pointer(o), o.Vtbl.Release)
	}
}

type (
	Buffer            = Object
	Texture2D         = Object
	Texture3D         = Object
	GeometryShader    = Object
	RenderTargetView  = Object
	DepthStencilView  = Object
	ShaderResource    = Object
	VertexShader      = Object
	PixelShader       = Object
	ComputeShader     = Object
	InputLayout       = Object
	RasterizerState   = Object
	BlendState        = Object
	DepthStencilState = Object
	SamplerState      = Object
)

type Blob struct {
	Vtbl *BlobVtbl
}

type BlobVtbl struct {
	IUnknownVtbl
	GetBufferPointer uintptr
	GetBufferSize    uintptr
}

func (b *Blob) Bytes() []byte {
	ptr, _, _ := syscall.SyscallN(b.Vtbl.GetBufferPointer, uintptr(unsafe.Pointer(b)))
	size, _, _ := syscall.SyscallN(b.Vtbl.GetBufferSize, uintptr(unsafe.Pointer(b)))
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	return out
}

func (b *Blob) Release() {
	IUnknownRelease(unsafe.Pointer(b), b.Vtbl.Release)
}

// CreateDeviceAndSwapChain creates the device, immediate context and,
// when desc is non-nil, a swapchain on the window it names.
func CreateDeviceAndSwapChain(flags uint32, desc *DXGI_SWAP_CHAIN_DESC) (*Device, *DeviceContext, *SwapChain, error) {
	var (
		dev       *Device
		ctx       *DeviceContext
		swchain   *SwapChain
		featLevel = uint32(FEATURE_LEVEL_11_0)
		gotLevel  uint32
	)
	if desc == nil {
		hr, _, _ := procD3D11CreateDevice.Call(
			0,
			DRIVER_TYPE_HARDWARE,
			0,
			uintptr(flags),
			uintptr(unsafe.Pointer(&featLevel)),
			1,
			SDK_VERSION,
			uintptr(unsafe.Pointer(&dev)),
			uintptr(unsafe.Pointer(&gotLevel)),
			uintptr(unsafe.Pointer(&ctx)),
		)
		if err := hresult("D3D11CreateDevice", hr); err != nil {
			return nil, nil, nil, err
		}
		return dev, ctx, nil, nil
	}
	hr, _, _ := procD3D11CreateDeviceAndSwapChain.Call(
		0,
		DRIVER_TYPE_HARDWARE,
		0,
		uintptr(flags),
		uintptr(unsafe.Pointer(&featLevel)),
		1,
		SDK_VERSION,
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&swchain)),
		uintptr(unsafe.Pointer(&dev)),
		uintptr(unsafe.Pointer(&gotLevel)),
		uintptr(unsafe.Pointer(&ctx)),
	)
	if err := hresult("D3D11CreateDeviceAndSwapChain", hr); err != nil {
		return nil, nil, nil, err
	}
	return dev, ctx, swchain, nil
}

// Compile invokes D3DCompile on HLSL source for the given target
// profile (e.g. "vs_5_0").
func Compile(src []byte, entryPoint, target string, debug bool) ([]byte, error) {
	entry := append([]byte(entryPoint), 0)
	prof := append([]byte(target), 0)
	flags := uint32(D3DCOMPILE_OPTIMIZATION_LEVEL3)
	if debug {
		flags = D3DCOMPILE_DEBUG
	}
	var code, errors *Blob
	hr, _, _ := procD3DCompile.Call(
		uintptr(unsafe.Pointer(&src[0])),
		uintptr(len(src)),
		0, // pSourceName
		0, // pDefines
		0, // pInclude
		uintptr(unsafe.Pointer(&entry[0])),
		uintptr(unsafe.Pointer(&prof[0])),
		uintptr(flags),
		0, // Flags2
		uintptr(unsafe.Pointer(&code)),
		uintptr(unsafe.Pointer(&errors)),
	)
	if int32(hr) < 0 {
		if errors != nil {
			msg := errors.Bytes()
			errors.Release()
			return nil, ErrorCode{Name: "D3DCompile: " + string(msg), Code: uint32(hr)}
		}
		return nil, ErrorCode{Name: "D3DCompile", Code: uint32(hr)}
	}
	if errors != nil {
		errors.Release()
	}
	out := code.Bytes()
	code.Release()
	return out, nil
}

func (d *Device) Release() {
	IUnknownRelease(unsafe.Pointer(d), d.Vtbl.Release)
}

func (d *Device) CreateBuffer(desc *BUFFER_DESC, data []byte) (*Buffer, error) {
	var init *SUBRESOURCE_DATA
	if len(data) > 0 {
		init = &SUBRESOURCE_DATA{PSysMem: uintptr(unsafe.Pointer(&data[0]))}
	}
	var buf *Buffer
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateBuffer,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(init)),
		uintptr(unsafe.Pointer(&buf)),
	)
	runtime.KeepAlive(data)
	if err := hresult("ID3D11Device::CreateBuffer", hr); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Device) CreateTexture2D(desc *TEXTURE2D_DESC, init []SUBRESOURCE_DATA) (*Texture2D, error) {
	var initPtr *SUBRESOURCE_DATA
	if len(init) > 0 {
		initPtr = &init[0]
	}
	var tex *Texture2D
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateTexture2D,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(initPtr)),
		uintptr(unsafe.Pointer(&tex)),
	)
	if err := hresult("ID3D11Device::CreateTexture2D", hr); err != nil {
		return nil, err
	}
	return tex, nil
}

func (d *Device) CreateTexture3D(desc *TEXTURE3D_DESC, init []SUBRESOURCE_DATA) (*Texture3D, error) {
	var initPtr *SUBRESOURCE_DATA
	if len(init) > 0 {
		initPtr = &init[0]
	}
	var tex *Texture3D
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateTexture3D,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(initPtr)),
		uintptr(unsafe.Pointer(&tex)),
	)
	if err := hresult("ID3D11Device::CreateTexture3D", hr); err != nil {
		return nil, err
	}
	return tex, nil
}

func (d *Device) CreateShaderResourceView(res *Object, desc *SHADER_RESOURCE_VIEW_DESC) (*ShaderResource, error) {
	var srv *ShaderResource
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateShaderResourceView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&srv)),
	)
	if err := hresult("ID3D11Device::CreateShaderResourceView", hr); err != nil {
		return nil, err
	}
	return srv, nil
}

func (d *Device) CreateRenderTargetView(res *Object, desc *RENDER_TARGET_VIEW_DESC) (*RenderTargetView, error) {
	var rtv *RenderTargetView
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateRenderTargetView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&rtv)),
	)
	if err := hresult("ID3D11Device::CreateRenderTargetView", hr); err != nil {
		return nil, err
	}
	return rtv, nil
}

func (d *Device) CreateDepthStencilView(res *Object, desc *DEPTH_STENCIL_VIEW_DESC) (*DepthStencilView, error) {
	var dsv *DepthStencilView
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateDepthStencilView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&dsv)),
	)
	if err := hresult("ID3D11Device::CreateDepthStencilView", hr); err != nil {
		return nil, err
	}
	return dsv, nil
}

func (d *Device) CreateInputLayout(elems []INPUT_ELEMENT_DESC, vsBytecode []byte) (*InputLayout, error) {
	var layout *InputLayout
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateInputLayout,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&elems[0])),
		uintptr(len(elems)),
		uintptr(unsafe.Pointer(&vsBytecode[0])),
		uintptr(len(vsBytecode)),
		uintptr(unsafe.Pointer(&layout)),
	)
	if err := hresult("ID3D11Device::CreateInputLayout", hr); err != nil {
		return nil, err
	}
	return layout, nil
}

func (d *Device) CreateVertexShader(bytecode []byte) (*VertexShader, error) {
	var sh *VertexShader
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateVertexShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0,
		uintptr(unsafe.Pointer(&sh)),
	)
	if err := hresult("ID3D11Device::CreateVertexShader", hr); err != nil {
		return nil, err
	}
	return sh, nil
}

func (d *Device) CreatePixelShader(bytecode []byte) (*PixelShader, error) {
	var sh *PixelShader
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreatePixelShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0,
		uintptr(unsafe.Pointer(&sh)),
	)
	if err := hresult("ID3D11Device::CreatePixelShader", hr); err != nil {
		return nil, err
	}
	return sh, nil
}

func (d *Device) CreateGeometryShader(bytecode []byte) (*GeometryShader, error) {
	var sh *GeometryShader
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateGeometryShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0,
		uintptr(unsafe.Pointer(&sh)),
	)
	if err := hresult("ID3D11Device::CreateGeometryShader", hr); err != nil {
		return nil, err
	}
	return sh, nil
}

func (d *Device) CreateComputeShader(bytecode []byte) (*ComputeShader, error) {
	var sh *ComputeShader
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateComputeShader,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&bytecode[0])),
		uintptr(len(bytecode)),
		0,
		uintptr(unsafe.Pointer(&sh)),
	)
	if err := hresult("ID3D11Device::CreateComputeShader", hr); err != nil {
		return nil, err
	}
	return sh, nil
}

func (d *Device) CreateBlendState(desc *BLEND_DESC) (*BlendState, error) {
	var state *BlendState
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateBlendState,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&state)),
	)
	if err := hresult("ID3D11Device::CreateBlendState", hr); err != nil {
		return nil, err
	}
	return state, nil
}

func (d *Device) CreateDepthStencilState(desc *DEPTH_STENCIL_DESC) (*DepthStencilState, error) {
	var state *DepthStencilState
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateDepthStencilState,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&state)),
	)
	if err := hresult("ID3D11Device::CreateDepthStencilState", hr); err != nil {
		return nil, err
	}
	return state, nil
}

func (d *Device) CreateRasterizerState(desc *RASTERIZER_DESC) (*RasterizerState, error) {
	var state *RasterizerState
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateRasterizerState,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&state)),
	)
	if err := hresult("ID3D11Device::CreateRasterizerState", hr); err != nil {
		return nil, err
	}
	return state, nil
}

func (d *Device) CreateSamplerState(desc *SAMPLER_DESC) (*SamplerState, error) {
	var state *SamplerState
	hr, _, _ := syscall.SyscallN(d.Vtbl.CreateSamplerState,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&state)),
	)
	if err := hresult("ID3D11Device::CreateSamplerState", hr); err != nil {
		return nil, err
	}
	return state, nil
}

func (c *DeviceContext) Release() {
	IUnknownRelease(unsafe.Pointer(c), c.Vtbl.Release)
}

func (c *DeviceContext) ClearState() {
	syscall.SyscallN(c.Vtbl.ClearState, uintptr(unsafe.Pointer(c)))
}

func (c *DeviceContext) Flush() {
	syscall.SyscallN(c.Vtbl.Flush, uintptr(unsafe.Pointer(c)))
}

func (c *DeviceContext) OMSetRenderTargets(rtvs []*RenderTargetView, dsv *DepthStencilView) {
	var first **RenderTargetView
	if len(rtvs) > 0 {
		first = &rtvs[0]
	}
	syscall.SyscallN(c.Vtbl.OMSetRenderTargets,
		uintptr(unsafe.Pointer(c)),
		uintptr(len(rtvs)),
		uintptr(unsafe.Pointer(first)),
		uintptr(unsafe.Pointer(dsv)),
	)
}

func (c *DeviceContext) ClearRenderTargetView(rtv *RenderTargetView, color *[4]float32) {
	syscall.SyscallN(c.Vtbl.ClearRenderTargetView,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(rtv)),
		uintptr(unsafe.Pointer(color)),
	)
}

func (c *DeviceContext) ClearDepthStencilView(dsv *DepthStencilView, flags uint32, depth float32, stencil uint8) {
	syscall.SyscallN(c.Vtbl.ClearDepthStencilView,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(dsv)),
		uintptr(flags),
		uintptr(float32bits(depth)),
		uintptr(stencil),
	)
}

func (c *DeviceContext) RSSetViewports(vp *VIEWPORT) {
	syscall.SyscallN(c.Vtbl.RSSetViewports,
		uintptr(unsafe.Pointer(c)),
		1,
		uintptr(unsafe.Pointer(vp)),
	)
}

func (c *DeviceContext) RSSetScissorRects(r *RECT) {
	syscall.SyscallN(c.Vtbl.RSSetScissorRects,
		uintptr(unsafe.Pointer(c)),
		1,
		uintptr(unsafe.Pointer(r)),
	)
}

func (c *DeviceContext) RSSetState(state *RasterizerState) {
	syscall.SyscallN(c.Vtbl.RSSetState,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(state)),
	)
}

func (c *DeviceContext) OMSetBlendState(state *BlendState) {
	syscall.SyscallN(c.Vtbl.OMSetBlendState,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(state)),
		0, // BlendFactor
		0xffffffff,
	)
}

func (c *DeviceContext) OMSetDepthStencilState(state *DepthStencilState, stencilRef uint32) {
	syscall.SyscallN(c.Vtbl.OMSetDepthStencilState,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(state)),
		uintptr(stencilRef),
	)
}

func (c *DeviceContext) IASetPrimitiveTopology(topology uint32) {
	syscall.SyscallN(c.Vtbl.IASetPrimitiveTopology,
		uintptr(unsafe.Pointer(c)),
		uintptr(topology),
	)
}

func (c *DeviceContext) IASetInputLayout(layout *InputLayout) {
	syscall.SyscallN(c.Vtbl.IASetInputLayout,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(layout)),
	)
}

func (c *DeviceContext) IASetVertexBuffers(slot uint32, buf *Buffer, stride, offset uint32) {
	syscall.SyscallN(c.Vtbl.IASetVertexBuffers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&buf)),
		uintptr(unsafe.Pointer(&stride)),
		uintptr(unsafe.Pointer(&offset)),
	)
}

func (c *DeviceContext) IASetIndexBuffer(buf *Buffer, format, offset uint32) {
	syscall.SyscallN(c.Vtbl.IASetIndexBuffer,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(buf)),
		uintptr(format),
		uintptr(offset),
	)
}

func (c *DeviceContext) VSSetShader(sh *VertexShader) {
	syscall.SyscallN(c.Vtbl.VSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(sh)),
		0, 0,
	)
}

func (c *DeviceContext) PSSetShader(sh *PixelShader) {
	syscall.SyscallN(c.Vtbl.PSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(sh)),
		0, 0,
	)
}

func (c *DeviceContext) GSSetShader(sh *GeometryShader) {
	syscall.SyscallN(c.Vtbl.GSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(sh)),
		0, 0,
	)
}

func (c *DeviceContext) GSSetConstantBuffers(slot uint32, buf *Buffer) {
	syscall.SyscallN(c.Vtbl.GSSetConstantBuffers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&buf)),
	)
}

func (c *DeviceContext) CSSetShader(sh *ComputeShader) {
	syscall.SyscallN(c.Vtbl.CSSetShader,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(sh)),
		0, 0,
	)
}

func (c *DeviceContext) VSSetConstantBuffers(slot uint32, buf *Buffer) {
	syscall.SyscallN(c.Vtbl.VSSetConstantBuffers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&buf)),
	)
}

func (c *DeviceContext) PSSetConstantBuffers(slot uint32, buf *Buffer) {
	syscall.SyscallN(c.Vtbl.PSSetConstantBuffers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&buf)),
	)
}

func (c *DeviceContext) CSSetConstantBuffers(slot uint32, buf *Buffer) {
	syscall.SyscallN(c.Vtbl.CSSetConstantBuffers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&buf)),
	)
}

func (c *DeviceContext) VSSetShaderResources(slot uint32, srv *ShaderResource) {
	syscall.SyscallN(c.Vtbl.VSSetShaderResources,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&srv)),
	)
}

func (c *DeviceContext) PSSetShaderResources(slot uint32, srv *ShaderResource) {
	syscall.SyscallN(c.Vtbl.PSSetShaderResources,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&srv)),
	)
}

func (c *DeviceContext) CSSetShaderResources(slot uint32, srv *ShaderResource) {
	syscall.SyscallN(c.Vtbl.CSSetShaderResources,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&srv)),
	)
}

func (c *DeviceContext) VSSetSamplers(slot uint32, s *SamplerState) {
	syscall.SyscallN(c.Vtbl.VSSetSamplers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&s)),
	)
}

func (c *DeviceContext) PSSetSamplers(slot uint32, s *SamplerState) {
	syscall.SyscallN(c.Vtbl.PSSetSamplers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&s)),
	)
}

func (c *DeviceContext) CSSetSamplers(slot uint32, s *SamplerState) {
	syscall.SyscallN(c.Vtbl.CSSetSamplers,
		uintptr(unsafe.Pointer(c)),
		uintptr(slot),
		1,
		uintptr(unsafe.Pointer(&s)),
	)
}

func (c *DeviceContext) Draw(count, start uint32) {
	syscall.SyscallN(c.Vtbl.Draw,
		uintptr(unsafe.Pointer(c)),
		uintptr(count),
		uintptr(start),
	)
}

func (c *DeviceContext) DrawIndexed(count, start uint32, base int32) {
	syscall.SyscallN(c.Vtbl.DrawIndexed,
		uintptr(unsafe.Pointer(c)),
		uintptr(count),
		uintptr(start),
		uintptr(base),
	)
}

func (c *DeviceContext) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32) {
	syscall.SyscallN(c.Vtbl.DrawInstanced,
		uintptr(unsafe.Pointer(c)),
		uintptr(vertexCount),
		uintptr(instanceCount),
		uintptr(startVertex),
		uintptr(startInstance),
	)
}

func (c *DeviceContext) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	syscall.SyscallN(c.Vtbl.DrawIndexedInstanced,
		uintptr(unsafe.Pointer(c)),
		uintptr(indexCount),
		uintptr(instanceCount),
		uintptr(startIndex),
		uintptr(baseVertex),
		uintptr(startInstance),
	)
}

func (c *DeviceContext) Dispatch(x, y, z uint32) {
	syscall.SyscallN(c.Vtbl.Dispatch,
		uintptr(unsafe.Pointer(c)),
		uintptr(x),
		uintptr(y),
		uintptr(z),
	)
}

// UpdateSubresource writes data into a region of a DEFAULT-usage
// resource. box may be nil to cover the whole subresource.
func (c *DeviceContext) UpdateSubresource(res *Object, subresource uint32, box *BOX, data []byte, rowPitch, depthPitch uint32) {
	syscall.SyscallN(c.Vtbl.UpdateSubresource,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(res)),
		uintptr(subresource),
		uintptr(unsafe.Pointer(box)),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(rowPitch),
		uintptr(depthPitch),
	)
}

func (c *DeviceContext) CopyResource(dst, src *Object) {
	syscall.SyscallN(c.Vtbl.CopyResource,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(dst)),
		uintptr(unsafe.Pointer(src)),
	)
}

func (c *DeviceContext) Map(res *Object, subresource, mapType uint32) (MAPPED_SUBRESOURCE, error) {
	var mapped MAPPED_SUBRESOURCE
	hr, _, _ := syscall.SyscallN(c.Vtbl.Map,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(res)),
		uintptr(subresource),
		uintptr(mapType),
		0, // MapFlags
		uintptr(unsafe.Pointer(&mapped)),
	)
	if err := hresult("ID3D11DeviceContext::Map", hr); err != nil {
		return MAPPED_SUBRESOURCE{}, err
	}
	return mapped, nil
}

func (c *DeviceContext) Unmap(res *Object, subresource uint32) {
	syscall.SyscallN(c.Vtbl.Unmap,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(res)),
		uintptr(subresource),
	)
}

func (c *DeviceContext) GenerateMips(srv *ShaderResource) {
	syscall.SyscallN(c.Vtbl.GenerateMips,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(srv)),
	)
}

func (s *SwapChain) Release() {
	IUnknownRelease(unsafe.Pointer(s), s.Vtbl.Release)
}

func (s *SwapChain) Present(interval, flags uint32) error {
	hr, _, _ := syscall.SyscallN(s.Vtbl.Present,
		uintptr(unsafe.Pointer(s)),
		uintptr(interval),
		uintptr(flags),
	)
	return hresult("IDXGISwapChain::Present", hr)
}

func (s *SwapChain) GetBuffer(index uint32, iid *GUID) (*Texture2D, error) {
	var tex *Texture2D
	hr, _, _ := syscall.SyscallN(s.Vtbl.GetBuffer,
		uintptr(unsafe.Pointer(s)),
		uintptr(index),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&tex)),
	)
	if err := hresult("IDXGISwapChain::GetBuffer", hr); err != nil {
		return nil, err
	}
	return tex, nil
}

func (s *SwapChain) ResizeBuffers(count, width, height, format, flags uint32) error {
	hr, _, _ := syscall.SyscallN(s.Vtbl.ResizeBuffers,
		uintptr(unsafe.Pointer(s)),
		uintptr(count),
		uintptr(width),
		uintptr(height),
		uintptr(format),
		uintptr(flags),
	)
	return hresult("IDXGISwapChain::ResizeBuffers", hr)
}
