// ABOUTME: Unit tests for float32/int16 PCM sample conversion helpers
// ABOUTME: Asserts round-trip fidelity and clamping at the [-1, 1] boundary
package codec

import "testing"

func TestFloat32Int16RoundTrip(t *testing.T) {
	tests := []float32{0, 0.5, -0.5, 1, -1, 0.999}

	for _, s := range tests {
		got := int16ToFloat32(float32ToInt16(s))
		diff := got - s
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("round trip of %v = %v, diff %v exceeds tolerance", s, got, diff)
		}
	}
}

func TestFloat32ToInt16Clamps(t *testing.T) {
	if got := float32ToInt16(2.0); got != 32767 {
		t.Errorf("float32ToInt16(2.0) = %d, want 32767", got)
	}
	if got := float32ToInt16(-2.0); got != -32767 {
		t.Errorf("float32ToInt16(-2.0) = %d, want -32767", got)
	}
}
