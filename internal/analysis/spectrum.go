package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Bin is one frequency of a one-sided power spectrum.
type Bin struct {
	Freq  float64
	Power float64
}

// PowerSpectrum returns the one-sided spectrum of evenly spaced samples,
// with the mean removed so the DC bin does not swamp the rest.
func PowerSpectrum(data []float64, dt float64) []Bin {
	n := len(data)
	if n < 2 || !(dt > 0) {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	bins := make([]Bin, n/2+1)
	for k := range bins {
		mag := cmplx.Abs(spectrum[k]) / float64(n)
		bins[k] = Bin{Freq: float64(k) / (float64(n) * dt), Power: mag * mag}
	}
	return bins
}

// ErrorSpectrum is PowerSpectrum of the tracking error.
func ErrorSpectrum(readings []dynamo.Reading, dt float64) []Bin {
	errs := make([]float64, len(readings))
	for i, r := range readings {
		errs[i] = r.Error
	}
	return PowerSpectrum(errs, dt)
}

// Dominant returns the strongest bin above DC.
func Dominant(bins []Bin) (Bin, bool) {
	if len(bins) < 2 {
		return Bin{}, false
	}
	best := bins[1]
	for _, b := range bins[2:] {
		if b.Power > best.Power {
			best = b
		}
	}
	return best, true
}
