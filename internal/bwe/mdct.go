package bwe

import "math"

// mdct/imdct implement a direct (O(n^2)) Modified Discrete Cosine
// Transform. At MDCTLen=80 this is cheap enough to run per-frame without
// needing the teacher's Kiss-FFT-based fast MDCT (celt/mdct.go). The transform
// shape (windowed overlap, N in / N/2 out. N/2 in / N out on the inverse)
// matches the standard MDCT definition the teacher's celt/mdct.go also
// implements.
func mdct(in []float64) []float64 {
	n := len(in)
	half := n / 2
	out := make([]float64, half)
	for k := 0; k < half; k++ {
		var sum float64
		for nIdx := 0; nIdx < n; nIdx++ {
			angle := math.Pi / float64(half) * (float64(nIdx) + 0.5 + float64(half)/2) * (float64(k) + 0.5)
			sum += in[nIdx] * math.Cos(angle)
		}
		out[k] = sum
	}
	return out
}

// imdct is the inverse transform producing N time-domain samples (to be
// overlap-added with the previous block) from N/2 coefficients.
func imdct(coef []float64) []float64 {
	half := len(coef)
	n := half * 2
	out := make([]float64, n)
	for nIdx := 0; nIdx < n; nIdx++ {
		var sum float64
		for k := 0; k < half; k++ {
			angle := math.Pi / float64(half) * (float64(nIdx) + 0.5 + float64(half)/2) * (float64(k) + 0.5)
			sum += coef[k] * math.Cos(angle)
		}
		out[nIdx] = sum * (2.0 / float64(half))
	}
	return out
}

// sineWindow returns a length-n sine analysis/synthesis window, the
// standard MDCT window shape used to ensure overlap-add perfect
// reconstruction for stationary signals.
func sineWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = math.Sin(math.Pi / float64(n) * (float64(i) + 0.5))
	}
	return w
}
