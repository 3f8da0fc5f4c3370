// Package com holds the Direct3D 11, DXGI and d3dcompiler COM bindings
// the d3d11 backend calls through. Interfaces are modeled as structs
// whose first field is the vtable pointer; methods dispatch with
// syscall.SyscallN on the vtable slot. Windows only; on other platforms
// the package is empty.
package com
