// ABOUTME: Normalized float32 <-> int16 PCM sample conversion
// ABOUTME: The format boundary between this package's float32 API and Opus's int16 input
package codec

// float32ToInt16 converts a normalized [-1, 1] float32 sample to int16 PCM,
// the format the Opus C library operates on (mirrors
// pkg/audio/types.go's SampleToInt16/SampleFromInt16 pair, generalized
// from the teacher's fixed-point int32 convention to normalized float32
// samples, which is how a Web Audio-style front end delivers mic frames).
func float32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}

func int16ToFloat32(s int16) float32 {
	return float32(s) / 32767
}

func float32SliceToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		out[i] = float32ToInt16(s)
	}
	return out
}

func int16SliceToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = int16ToFloat32(s)
	}
	return out
}
