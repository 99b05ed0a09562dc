// Package analysis inspects finished runs.
//
//   - [ErrorSpectrum]: power spectrum of the tracking error via FFT
//   - [Track]: tracking statistics and the lag of position behind target
//   - [StepResponse]: overshoot and settling of a run with a still target
//   - [NewPhasePortrait]: position against velocity
//
// A well tuned loop leaves most error power at the reference frequency:
//
//	bins := analysis.ErrorSpectrum(result.Readings, result.Dt)
//	peak, _ := analysis.Dominant(bins)
package analysis
