package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided magnitude spectrum of a series.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of values, applies a Hann window, zero
// pads to a power of two and returns bins from DC up to Nyquist. dt is the
// sample spacing in seconds.
func PowerSpectrum(values []float64, dt float64) Spectrum {
	if len(values) < 2 || dt <= 0 {
		return Spectrum{}
	}

	n := 1
	for n < len(values) {
		n *= 2
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	buf := make([]float64, n)
	last := float64(len(values) - 1)
	for i, v := range values {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/last))
		buf[i] = (v - mean) * window
	}

	out := fft.FFTReal(buf)
	half := n/2 + 1
	s := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	df := 1 / (float64(n) * dt)
	for i := 0; i < half; i++ {
		s.Freqs[i] = float64(i) * df
		s.Power[i] = cmplx.Abs(out[i])
	}
	return s
}

// Dominant returns the strongest bin above DC. ok is false for a flat or
// empty spectrum.
func (s Spectrum) Dominant() (freq, power float64, ok bool) {
	best := 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[best] || best == 0 {
			best = i
		}
	}
	if best == 0 || s.Power[best] <= 1e-12 {
		return 0, 0, false
	}
	return s.Freqs[best], s.Power[best], true
}

// Band trims the spectrum to frequencies at or below maxHz.
func (s Spectrum) Band(maxHz float64) Spectrum {
	n := len(s.Freqs)
	for n > 0 && s.Freqs[n-1] > maxHz {
		n--
	}
	return Spectrum{Freqs: s.Freqs[:n], Power: s.Power[:n]}
}

// SettleTime is the time after the last sample above threshold, or the
// first time when the series never exceeds it. It returns -1 when the final
// sample is still above threshold.
func SettleTime(times, values []float64, threshold float64) float64 {
	n := min(len(times), len(values))
	if n == 0 {
		return -1
	}
	if values[n-1] > threshold {
		return -1
	}
	for i := n - 2; i >= 0; i-- {
		if values[i] > threshold {
			return times[i+1]
		}
	}
	return times[0]
}
