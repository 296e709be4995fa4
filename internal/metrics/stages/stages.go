// Package stages defines the processing-stage contracts the metrics pipeline
// composes: transforms, rotations, combinations, and reductions, plus the
// capability registry used to resolve stage names to implementations.
//
// A stage receives and returns a Value, the tagged union of intermediate
// shapes that flow through a step chain: a waveform record, one or two
// rotation matrices, a per-channel scalar map, or a per-channel spectrum map.
package stages

import (
	"errors"
	"fmt"

	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// Combined is the map key used for results that have been folded across
// channels and no longer belong to a single physical channel.
const Combined = ""

// Spectrum is a Fourier amplitude spectrum for one channel.
type Spectrum struct {
	Freqs []float64
	Amps  []float64
}

// Value is the intermediate value passed between stages. Exactly one field
// group is populated at any point in a chain.
type Value struct {
	// Record carries per-channel time series (input and null/unit/oscillator
	// transform output).
	Record *waveform.Record
	// Matrices carries rotated horizontal series: one matrix of combined
	// rotations (rotd) or two orthogonal matrices (gmrotd). Each row is the
	// series at one rotation angle.
	Matrices [][][]float64
	// Scalars carries per-channel scalar results keyed by channel name, or a
	// single Combined entry.
	Scalars map[string]float64
	// Spectra carries per-channel Fourier amplitude spectra.
	Spectra map[string]Spectrum
}

// RecordValue wraps a record as a stage value.
func RecordValue(r *waveform.Record) Value { return Value{Record: r} }

// ScalarValue wraps a single combined scalar as a stage value.
func ScalarValue(v float64) Value {
	return Value{Scalars: map[string]float64{Combined: v}}
}

// Params carries the numeric configuration a stage may need. Fields a stage
// does not use are ignored. Period and Percentile are NaN when the requested
// measure or component carries none.
type Params struct {
	Damping    float64
	Period     float64
	Percentile float64
	Bandwidth  float64
	Smoothing  string
	// Interval is the normalized-Arias start/end pair for significant
	// duration, in percent (e.g. 5, 95).
	Interval [2]float64
	// Times is the horizontal-channel time base used by the oscillator when
	// operating on rotation matrices.
	Times []float64
}

// Transform reshapes a value without changing its channel structure:
// unit conversion, oscillator response, or spectrum computation.
type Transform interface {
	Transform(in Value, p Params) (Value, error)
}

// Rotation produces one or two horizontal series per the requested
// component, or passes through for components that need no rotation.
type Rotation interface {
	Rotate(in Value, ev *event.Event) (Value, error)
}

// Combination folds multiple channels or series into one.
type Combination interface {
	Combine(in Value) (Value, error)
}

// Reduction collapses series to scalars: max, percentile, duration, Arias
// intensity, or a smoothed-spectrum pick.
type Reduction interface {
	Reduce(in Value, p Params) (Value, error)
}

// errShape is returned when a stage receives a value shape it cannot
// operate on; the executor degrades the pair to NaN.
func errShape(stage string, in Value) error {
	switch {
	case in.Record != nil:
		return fmt.Errorf("%s: unexpected record input", stage)
	case in.Matrices != nil:
		return fmt.Errorf("%s: unexpected rotation-matrix input", stage)
	case in.Scalars != nil:
		return fmt.Errorf("%s: unexpected scalar input", stage)
	case in.Spectra != nil:
		return fmt.Errorf("%s: unexpected spectrum input", stage)
	}
	return errors.New(stage + ": empty input")
}

// horizontalScalars returns the two non-vertical entries of a scalar map.
func horizontalScalars(scalars map[string]float64) (float64, float64, error) {
	var vals []float64
	for name, v := range scalars {
		if !isVerticalName(name) {
			vals = append(vals, v)
		}
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("need exactly two horizontal values, got %d", len(vals))
	}
	return vals[0], vals[1], nil
}

// horizontalSpectra returns the two non-vertical entries of a spectrum map.
func horizontalSpectra(spectra map[string]Spectrum) (Spectrum, Spectrum, error) {
	var out []Spectrum
	for name, s := range spectra {
		if !isVerticalName(name) {
			out = append(out, s)
		}
	}
	if len(out) != 2 {
		return Spectrum{}, Spectrum{}, fmt.Errorf("need exactly two horizontal spectra, got %d", len(out))
	}
	if len(out[0].Amps) != len(out[1].Amps) {
		return Spectrum{}, Spectrum{}, errors.New("horizontal spectra have different lengths")
	}
	return out[0], out[1], nil
}

func isVerticalName(name string) bool {
	return (waveform.Channel{Name: name}).Vertical()
}
