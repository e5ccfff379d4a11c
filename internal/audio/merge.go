package audio

import "math"

// DownmixMono collapses a multi-channel quantum into one mono sequence by
// averaging, per sample index, every channel whose value at that index is
// finite. NaN and Inf samples are skipped; an index with no finite
// contribution yields 0 rather than NaN. Channel lengths are nominally equal
// (the render quantum size); shorter channels simply stop contributing.
//
// A single-channel input is copied, never aliased: the host owns the channel
// storage and may reuse it after the callback returns.
func DownmixMono(channels [][]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}

	if len(channels) == 1 {
		mono := make([]float32, len(channels[0]))
		copy(mono, channels[0])
		return mono
	}

	length := 0
	for _, ch := range channels {
		if len(ch) > length {
			length = len(ch)
		}
	}

	mono := make([]float32, length)
	for i := 0; i < length; i++ {
		var sum float32
		valid := 0
		for _, ch := range channels {
			if i >= len(ch) {
				continue
			}
			s := ch[i]
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				continue
			}
			sum += s
			valid++
		}
		if valid > 0 {
			mono[i] = sum / float32(valid)
		}
	}

	return mono
}
