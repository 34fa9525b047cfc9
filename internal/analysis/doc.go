// Package analysis characterises recorded metric series.
//
//   - [PowerSpectrum]: windowed magnitude spectrum of a uniformly sampled series
//   - [Spectrum.Dominant]: strongest non-DC frequency, i.e. the sway rate
//   - [SettleTime]: when a series last crossed above a threshold
//
// A run stored by the headless runner can be analysed like this:
//
//	s := analysis.PowerSpectrum(series.Values["strain"], dt)
//	f, _ := s.Dominant()
//	fmt.Printf("sway %.2f Hz\n", f)
package analysis
