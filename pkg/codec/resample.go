// ABOUTME: Linear-interpolation resampler used internally by the codec workers
// ABOUTME: Stand-in for the "external resampler" spec section 1 treats as a black box
package codec

// linearResampler performs linear-interpolation sample rate conversion for
// a single-channel float32 stream, carrying its fractional position across
// calls. It is the internal, black-box resampling step a real codec
// worker performs before handing frames to Opus (spec §1 explicitly
// treats "the resampler implementation" as an external collaborator; this
// is the toy stand-in for it), grounded on the ratio/position bookkeeping
// of pkg/audio/resample/resampler.go, generalized from int32 to float32.
type linearResampler struct {
	ratio    float64 // inputRate / outputRate
	position float64
	prev     float32 // last input sample of the previous call
}

func newLinearResampler(inputRate, outputRate int) *linearResampler {
	return &linearResampler{ratio: float64(inputRate) / float64(outputRate)}
}

// resample appends the resampled output of input to dst and returns the
// extended slice. Trailing input that doesn't yet reach the next output
// sample is retained via r.position and r.prev for the next call, so
// calling resample repeatedly on a contiguous stream produces (up to
// floating-point rounding) the same output as one call on the whole stream.
func (r *linearResampler) resample(input []float32, dst []float32) []float32 {
	if r.ratio == 1 {
		return append(dst, input...)
	}
	if len(input) == 0 {
		return dst
	}

	for r.position < float64(len(input)-1) {
		a, b := r.prev, input[0]
		frac := r.position + 1
		if r.position >= 0 {
			idx := int(r.position)
			a, b = input[idx], input[idx+1]
			frac = r.position - float64(idx)
		}
		v := float64(a)*(1-frac) + float64(b)*frac
		dst = append(dst, float32(v))
		r.position += r.ratio
	}

	r.prev = input[len(input)-1]
	r.position -= float64(len(input))
	return dst
}
