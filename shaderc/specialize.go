package shaderc

import pie "github.com/IsometricSoftware/Pie"

// SPIR-V opcodes and decorations needed for specialization-constant
// patching. Patching works on raw words so modules produced by any
// front end can be specialized without a full decode/encode round trip.
const (
	opDecorate            = 71
	opSpecConstantTrue    = 48
	opSpecConstantFalse   = 49
	opSpecConstant        = 50
	decorationSpecID      = 1
	headerWords           = 5
	wordCountShift        = 16
	opcodeMask            = 0xffff
	opSpecConstantBoolLen = 3
)

// Specialize bakes the given constants into a SPIR-V module by
// rewriting OpSpecConstant default values in place. Constants whose ID
// is not declared by the module are ignored, matching native
// specialization semantics. The input slice is not modified.
func Specialize(words []uint32, constants []pie.SpecializationConstant) []uint32 {
	if len(constants) == 0 || len(words) <= headerWords {
		return words
	}

	byID := make(map[uint32]uint32, len(constants))
	for _, c := range constants {
		byID[c.ID] = c.Value
	}

	out := make([]uint32, len(words))
	copy(out, words)

	// First pass: map result-id -> spec-id from OpDecorate SpecId.
	specIDs := make(map[uint32]uint32)
	for i := headerWords; i < len(out); {
		n := int(out[i] >> wordCountShift)
		op := out[i] & opcodeMask
		if n == 0 || i+n > len(out) {
			break
		}
		if op == opDecorate && n == 4 && out[i+2] == decorationSpecID {
			specIDs[out[i+1]] = out[i+3]
		}
		i += n
	}

	// Second pass: patch the constants themselves.
	for i := headerWords; i < len(out); {
		n := int(out[i] >> wordCountShift)
		op := out[i] & opcodeMask
		if n == 0 || i+n > len(out) {
			break
		}
		switch op {
		case opSpecConstant:
			// %result = OpSpecConstant %type value
			if n >= 4 {
				if specID, ok := specIDs[out[i+2]]; ok {
					if v, ok := byID[specID]; ok {
						out[i+3] = v
					}
				}
			}
		case opSpecConstantTrue, opSpecConstantFalse:
			if n == opSpecConstantBoolLen {
				if specID, ok := specIDs[out[i+2]]; ok {
					if v, ok := byID[specID]; ok {
						newOp := uint32(opSpecConstantFalse)
						if v != 0 {
							newOp = opSpecConstantTrue
						}
						out[i] = uint32(n)<<wordCountShift | newOp
					}
				}
			}
		}
		i += n
	}
	return out
}
