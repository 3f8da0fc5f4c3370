package pie

// BufferType identifies what a buffer will be bound as.
type BufferType uint8

const (
	// BufferTypeVertex is a vertex buffer.
	BufferTypeVertex BufferType = iota

	// BufferTypeIndex is an index buffer.
	BufferTypeIndex

	// BufferTypeUniform is a uniform (constant) buffer.
	BufferTypeUniform

	// BufferTypeShaderStorage is a shader storage buffer, writable from
	// compute shaders.
	BufferTypeShaderStorage
)

// String returns the buffer type name.
func (t BufferType) String() string {
	switch t {
	case BufferTypeVertex:
		return "Vertex"
	case BufferTypeIndex:
		return "Index"
	case BufferTypeUniform:
		return "Uniform"
	case BufferTypeShaderStorage:
		return "ShaderStorage"
	default:
		return "Unknown"
	}
}

// IndexFormat is the element format of an index buffer.
type IndexFormat uint8

const (
	// IndexFormatU16 is 16-bit unsigned indices.
	IndexFormatU16 IndexFormat = iota

	// IndexFormatU32 is 32-bit unsigned indices.
	IndexFormatU32
)

// SizeInBytes returns the byte size of one index element.
func (f IndexFormat) SizeInBytes() uint32 {
	if f == IndexFormatU32 {
		return 4
	}
	return 2
}

// MapMode controls CPU access to a mapped resource.
type MapMode uint8

const (
	// MapModeWrite maps for writing; prior contents are preserved.
	MapModeWrite MapMode = iota

	// MapModeRead maps for reading.
	MapModeRead

	// MapModeReadWrite maps for both reading and writing.
	MapModeReadWrite
)

// Resource is the common lifecycle surface of every device-created
// object. Dispose releases the underlying backend handle exactly once;
// using a resource after Dispose is an error surfaced as ErrDisposed
// (or native validation, per backend).
type Resource interface {
	Dispose()
}

// MappableResource is a resource whose backing memory may be exposed to
// the CPU via Device.MapResource. Buffers and dynamic textures
// implement it; only resources created dynamic can actually be mapped.
type MappableResource interface {
	Resource

	// Dynamic reports whether the resource permits CPU access.
	Dynamic() bool
}

// Buffer is an opaque region of backend memory, typed by usage.
// Contents may be replaced via Device.UpdateBuffer for dynamic buffers;
// the byte size is fixed at creation.
type Buffer interface {
	MappableResource

	// Type reports what the buffer binds as.
	Type() BufferType

	// SizeInBytes reports the fixed buffer size.
	SizeInBytes() uint32
}
