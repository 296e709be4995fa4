package stages

import "math"

// konnoOhmachiAt smooths the spectrum at the single center frequency fc
// using the Konno-Ohmachi window
//
//	w(f) = (sin(b log10(f/fc)) / (b log10(f/fc)))^4
//
// and returns the weighted average of the amplitudes. Zero frequency is
// excluded; the window value at f == fc is 1.
func konnoOhmachiAt(spec Spectrum, fc, bandwidth float64) float64 {
	var num, den float64
	for i, f := range spec.Freqs {
		if f <= 0 {
			continue
		}
		w := koWindow(f, fc, bandwidth)
		num += w * spec.Amps[i]
		den += w
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func koWindow(f, fc, bandwidth float64) float64 {
	if f == fc {
		return 1
	}
	x := bandwidth * math.Log10(f/fc)
	s := math.Sin(x) / x
	return s * s * s * s
}
