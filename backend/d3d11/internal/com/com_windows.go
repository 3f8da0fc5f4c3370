//go:build windows

package com

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3d11DLL       = windows.NewLazySystemDLL("d3d11.dll")
	d3dcompilerDLL = windows.NewLazySystemDLL("d3dcompiler_47.dll")

	procD3D11CreateDeviceAndSwapChain = d3d11DLL.NewProc("D3D11CreateDeviceAndSwapChain")
	procD3D11CreateDevice             = d3d11DLL.NewProc("D3D11CreateDevice")
	procD3DCompile                    = d3dcompilerDLL.NewProc("D3DCompile")
)

// GUID is a COM interface or class identifier.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// Interface identifiers used by the backend.
var (
	IIDTexture2D = GUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)

// ErrorCode is a failed HRESULT together with the call that produced
// it.
type ErrorCode struct {
	Name string
	Code uint32
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, e.Code)
}

// hresult wraps a raw syscall return into an error when negative.
func hresult(name string, hr uintptr) error {
	if int32(hr) < 0 {
		return ErrorCode{Name: name, Code: uint32(hr)}
	}
	return nil
}

// IUnknownVtbl is the root COM vtable.
type IUnknownVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

// IUnknownRelease releases one reference on any COM object.
func IUnknownRelease(obj unsafe.Pointer, releaseAddr uintptr) {
	syscall.SyscallN(releaseAddr, uintptr(obj))
}

// CheckAvailable reports whether d3d11.dll can be loaded on this host.
func CheckAvailable() error {
	return d3d11DLL.Load()
}
