package stages

import (
	"fmt"
	"math"
)

type nullCombination struct{}

func (nullCombination) Combine(in Value) (Value, error) {
	return in, nil
}

// meanCombination folds the two horizontal entries of a scalar or spectrum
// value into one combined entry: geometric, arithmetic, or quadratic mean.
type meanCombination struct {
	kind string
}

func (m meanCombination) Combine(in Value) (Value, error) {
	switch {
	case in.Scalars != nil:
		h1, h2, err := horizontalScalars(in.Scalars)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", m.kind, err)
		}
		return ScalarValue(m.fold(h1, h2)), nil
	case in.Spectra != nil:
		s1, s2, err := horizontalSpectra(in.Spectra)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", m.kind, err)
		}
		amps := make([]float64, len(s1.Amps))
		for i := range amps {
			amps[i] = m.fold(s1.Amps[i], s2.Amps[i])
		}
		combined := Spectrum{Freqs: s1.Freqs, Amps: amps}
		return Value{Spectra: map[string]Spectrum{Combined: combined}}, nil
	}
	return Value{}, errShape(m.kind, in)
}

func (m meanCombination) fold(a, b float64) float64 {
	switch m.kind {
	case GeometricMean:
		return math.Sqrt(a * b)
	case ArithmeticMean:
		return 0.5 * (a + b)
	case QuadraticMean:
		return math.Sqrt((a*a + b*b) / 2)
	}
	return math.NaN()
}

// greaterOfTwo picks the larger of the two horizontal scalar entries.
type greaterOfTwo struct{}

func (greaterOfTwo) Combine(in Value) (Value, error) {
	if in.Scalars == nil {
		return Value{}, errShape(GreaterOfTwo, in)
	}
	h1, h2, err := horizontalScalars(in.Scalars)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", GreaterOfTwo, err)
	}
	return ScalarValue(math.Max(h1, h2)), nil
}
