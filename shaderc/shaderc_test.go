package shaderc

import (
	"errors"
	"testing"

	pie "github.com/IsometricSoftware/Pie"
)

// module assembles a SPIR-V word stream with a valid header in front of
// the given instructions.
func module(instructions ...uint32) []uint32 {
	header := []uint32{spirvMagic, 0x00010000, 0, 100, 0}
	return append(header, instructions...)
}

func TestWordsRoundTrip(t *testing.T) {
	words := module(
		(4<<wordCountShift)|opDecorate, 10, decorationSpecID, 0,
	)
	code := Bytes(words)
	got, err := Words(code)
	if err != nil {
		t.Fatalf("Words() error = %v", err)
	}
	if len(got) != len(words) {
		t.Fatalf("Words() len = %d, want %d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d = %#x, want %#x", i, got[i], words[i])
		}
	}
}

func TestWordsBadMagic(t *testing.T) {
	if _, err := Words([]byte{1, 2, 3, 4}); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Words(bad magic) error = %v, want ErrBadMagic", err)
	}
	if _, err := Words(nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Words(empty) error = %v, want ErrBadMagic", err)
	}
}

func TestWordsTruncated(t *testing.T) {
	if _, err := Words([]byte{3, 2, 35, 7, 0}); !errors.Is(err, ErrTruncated) {
		t.Errorf("Words(5 bytes) error = %v, want ErrTruncated", err)
	}
}

func TestSpecializeScalar(t *testing.T) {
	// %5 carries SpecId 3 and defaults to 111.
	words := module(
		(4<<wordCountShift)|opDecorate, 5, decorationSpecID, 3,
		(4<<wordCountShift)|opSpecConstant, 2, 5, 111,
	)
	out := Specialize(words, []pie.SpecializationConstant{{ID: 3, Value: 42}})

	if got := out[len(out)-1]; got != 42 {
		t.Errorf("specialized value = %d, want 42", got)
	}
	if words[len(words)-1] != 111 {
		t.Error("Specialize modified its input slice")
	}
}

func TestSpecializeBool(t *testing.T) {
	words := module(
		(4<<wordCountShift)|opDecorate, 5, decorationSpecID, 0,
		(opSpecConstantBoolLen<<wordCountShift)|opSpecConstantFalse, 2, 5,
	)
	out := Specialize(words, []pie.SpecializationConstant{{ID: 0, Value: 1}})

	last := out[len(out)-3]
	if last&opcodeMask != opSpecConstantTrue {
		t.Errorf("opcode = %d, want OpSpecConstantTrue", last&opcodeMask)
	}

	// And back to false.
	out = Specialize(out, []pie.SpecializationConstant{{ID: 0, Value: 0}})
	last = out[len(out)-3]
	if last&opcodeMask != opSpecConstantFalse {
		t.Errorf("opcode = %d, want OpSpecConstantFalse", last&opcodeMask)
	}
}

func TestSpecializeUnknownIDIgnored(t *testing.T) {
	words := module(
		(4<<wordCountShift)|opDecorate, 5, decorationSpecID, 3,
		(4<<wordCountShift)|opSpecConstant, 2, 5, 111,
	)
	out := Specialize(words, []pie.SpecializationConstant{{ID: 9, Value: 42}})
	if got := out[len(out)-1]; got != 111 {
		t.Errorf("value with unknown ID = %d, want untouched 111", got)
	}
}

func TestSpecializeNoConstants(t *testing.T) {
	words := module((4<<wordCountShift)|opSpecConstant, 2, 5, 111)
	out := Specialize(words, nil)
	if &out[0] != &words[0] {
		t.Error("Specialize(nil constants) should return the input unchanged")
	}
}
