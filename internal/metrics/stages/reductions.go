package stages

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// gravity in m/s^2, used for Arias intensity and the gal to percent-g
// conversion.
const gravityMS2 = 9.80665

// GalToPctG converts acceleration in gal (cm/s^2) to percent of gravity.
const GalToPctG = 1 / gravityMS2

// maxReduction collapses each channel's series to its absolute maximum.
type maxReduction struct{}

func (maxReduction) Reduce(in Value, _ Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape(Max, in)
	}
	out := make(map[string]float64, len(in.Record.Channels))
	for _, ch := range in.Record.Channels {
		out[ch.Name] = absMax(ch.Data)
	}
	return Value{Scalars: out}, nil
}

// percentileReduction collapses rotation matrices to the requested
// percentile of the per-angle maxima. A single matrix (rotd) uses absolute
// maxima per angle; a matrix pair (gmrotd) takes the per-angle geometric
// mean of the two maxima.
type percentileReduction struct{}

func (percentileReduction) Reduce(in Value, p Params) (Value, error) {
	if math.IsNaN(p.Percentile) {
		return Value{}, errors.New("percentile: a percentile value is required")
	}
	if in.Matrices == nil {
		return Value{}, errShape(Percentile, in)
	}
	switch len(in.Matrices) {
	case 1:
		maxima := rowAbsMaxima(in.Matrices[0])
		return ScalarValue(percentileLinear(maxima, p.Percentile)), nil
	case 2:
		m1 := rowMaxima(in.Matrices[0])
		m2 := rowMaxima(in.Matrices[1])
		gm := make([]float64, len(m1))
		for i := range gm {
			gm[i] = math.Sqrt(m1[i] * m2[i])
		}
		return ScalarValue(percentileLinear(gm, p.Percentile)), nil
	}
	return Value{}, fmt.Errorf("percentile: unexpected matrix count %d", len(in.Matrices))
}

// ariasReduction computes the Arias intensity of each acceleration channel
// in m/s, assuming input in gal.
type ariasReduction struct{}

func (ariasReduction) Reduce(in Value, _ Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape(AriasReduce, in)
	}
	out := make(map[string]float64, len(in.Record.Channels))
	for _, ch := range in.Record.Channels {
		series := ariasSeries(ch.Data, ch.Delta)
		out[ch.Name] = math.Abs(floats.Max(series))
	}
	return Value{Scalars: out}, nil
}

// durationReduction computes significant duration: the time between the
// interval start and end percentages of the normalized Arias intensity
// build-up.
type durationReduction struct{}

func (durationReduction) Reduce(in Value, p Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape(DurationReduce, in)
	}
	lo, hi := p.Interval[0], p.Interval[1]
	if lo <= 0 && hi <= 0 {
		lo, hi = 5, 95
	}
	out := make(map[string]float64, len(in.Record.Channels))
	for _, ch := range in.Record.Channels {
		series := ariasSeries(ch.Data, ch.Delta)
		total := floats.Max(series)
		if total <= 0 {
			out[ch.Name] = 0
			continue
		}
		times := ch.Times()
		i0 := nearestIndex(series, total*lo/100)
		i1 := nearestIndex(series, total*hi/100)
		out[ch.Name] = math.Abs(times[i1] - times[i0])
	}
	return Value{Scalars: out}, nil
}

// smoothSelect smooths a combined Fourier amplitude spectrum with a
// Konno-Ohmachi window and picks the value at the frequency corresponding
// to the requested period.
type smoothSelect struct{}

func (smoothSelect) Reduce(in Value, p Params) (Value, error) {
	if math.IsNaN(p.Period) || p.Period <= 0 {
		return Value{}, errors.New("smooth_select: a positive period is required")
	}
	if p.Bandwidth <= 0 {
		return Value{}, errors.New("smooth_select: a positive bandwidth is required")
	}
	if in.Spectra == nil {
		return Value{}, errShape(SmoothSelect, in)
	}
	spec, ok := in.Spectra[Combined]
	if !ok {
		if len(in.Spectra) != 1 {
			return Value{}, fmt.Errorf("smooth_select: expected one combined spectrum, got %d", len(in.Spectra))
		}
		for _, s := range in.Spectra {
			spec = s
		}
	}
	fc := 1 / p.Period
	return ScalarValue(konnoOhmachiAt(spec, fc, p.Bandwidth)), nil
}

// ariasSeries returns the running Arias intensity in m/s for an
// acceleration series in gal.
func ariasSeries(data []float64, dt float64) []float64 {
	// gal to m/s^2
	sq := make([]float64, len(data))
	for i, v := range data {
		a := v * 0.01
		sq[i] = a * a
	}
	integral := cumTrapz(sq, dt)
	floats.Scale(math.Pi/(2*gravityMS2), integral)
	return integral
}

func nearestIndex(series []float64, target float64) int {
	best := 0
	bestDiff := math.Inf(1)
	for i, v := range series {
		if d := math.Abs(v - target); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}

func absMax(data []float64) float64 {
	var max float64
	for _, v := range data {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max
}

func rowMaxima(matrix [][]float64) []float64 {
	out := make([]float64, len(matrix))
	for i, row := range matrix {
		out[i] = floats.Max(row)
	}
	return out
}

func rowAbsMaxima(matrix [][]float64) []float64 {
	out := make([]float64, len(matrix))
	for i, row := range matrix {
		out[i] = absMax(row)
	}
	return out
}

// percentileLinear computes the p-th percentile with linear interpolation
// between order statistics, matching the conventional definition used by
// numerical libraries.
func percentileLinear(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
