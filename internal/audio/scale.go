package audio

// The suppression engine operates on 16-bit-integer-equivalent magnitudes
// while the host delivers unit-normalized floats, so samples are scaled by
// 2^15 on the way in and divided back out (with clamping) on the way out.
const engineScale = 32768.0

// ToEngineDomain writes src scaled into the engine's numeric domain into dst.
// dst and src must be the same length.
func ToEngineDomain(dst, src []float32) {
	for i, s := range src {
		dst[i] = s * engineScale
	}
}

// FromEngineDomain writes src converted back to normalized floats into dst,
// clamping to [-1, 1]. The clamp guards against engine output exceeding the
// nominal 16-bit range. dst and src must be the same length.
func FromEngineDomain(dst, src []float32) {
	for i, s := range src {
		v := s / engineScale
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		dst[i] = v
	}
}
