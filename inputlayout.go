package pie

// AttributeType is the data type of one vertex attribute.
type AttributeType uint8

const (
	AttributeFloat AttributeType = iota
	AttributeFloat2
	AttributeFloat3
	AttributeFloat4
	AttributeInt
	AttributeInt2
	AttributeInt3
	AttributeInt4
	AttributeByte4Norm
)

// SizeInBytes returns the byte size of one attribute of this type.
func (t AttributeType) SizeInBytes() uint32 {
	switch t {
	case AttributeFloat, AttributeInt, AttributeByte4Norm:
		return 4
	case AttributeFloat2, AttributeInt2:
		return 8
	case AttributeFloat3, AttributeInt3:
		return 12
	case AttributeFloat4, AttributeInt4:
		return 16
	default:
		return 0
	}
}

// ComponentCount returns the number of scalar components.
func (t AttributeType) ComponentCount() int {
	switch t {
	case AttributeFloat, AttributeInt:
		return 1
	case AttributeFloat2, AttributeInt2:
		return 2
	case AttributeFloat3, AttributeInt3:
		return 3
	case AttributeFloat4, AttributeInt4, AttributeByte4Norm:
		return 4
	default:
		return 0
	}
}

// InputLayoutDescription describes one vertex attribute of an input
// layout: its shader-facing name, type, byte offset within the vertex,
// and source vertex-buffer slot.
type InputLayoutDescription struct {
	// Name is the attribute name (GLSL attribute / HLSL semantic).
	Name string

	// Type is the attribute data type.
	Type AttributeType

	// Offset is the byte offset of the attribute within one vertex.
	Offset uint32

	// Slot is the vertex-buffer input slot the attribute reads from.
	Slot uint32
}

// InputLayout is the backend representation of the mapping between
// vertex buffers and shader attributes. Attribute locations follow the
// order of the descriptions the layout was created from.
type InputLayout interface {
	Resource

	// Descriptions returns the attribute descriptions, in location
	// order.
	Descriptions() []InputLayoutDescription
}
