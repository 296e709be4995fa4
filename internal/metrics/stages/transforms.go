package stages

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

type nullTransform struct{}

func (nullTransform) Transform(in Value, _ Params) (Value, error) {
	return in, nil
}

// integrate converts an acceleration record to velocity with cumulative
// trapezoid integration.
type integrate struct{}

func (integrate) Transform(in Value, _ Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape("integrate", in)
	}
	out := in.Record.Clone()
	for i := range out.Channels {
		ch := &out.Channels[i]
		ch.Data = cumTrapz(ch.Data, ch.Delta)
		if ch.Units == waveform.UnitsAcc {
			ch.Units = waveform.UnitsVel
		}
	}
	return RecordValue(out), nil
}

// cumTrapz returns the cumulative trapezoid integral of data sampled at dx,
// starting from zero.
func cumTrapz(data []float64, dx float64) []float64 {
	out := make([]float64, len(data))
	for i := 1; i < len(data); i++ {
		out[i] = out[i-1] + 0.5*dx*(data[i-1]+data[i])
	}
	return out
}

// differentiate converts a velocity record to acceleration using central
// differences (forward/backward at the endpoints).
type differentiate struct{}

func (differentiate) Transform(in Value, _ Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape("differentiate", in)
	}
	out := in.Record.Clone()
	for i := range out.Channels {
		ch := &out.Channels[i]
		ch.Data = gradient(ch.Data, ch.Delta)
		if ch.Units == waveform.UnitsVel {
			ch.Units = waveform.UnitsAcc
		}
	}
	return RecordValue(out), nil
}

func gradient(data []float64, dx float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (data[1] - data[0]) / dx
	out[n-1] = (data[n-1] - data[n-2]) / dx
	for i := 1; i < n-1; i++ {
		out[i] = (data[i+1] - data[i-1]) / (2 * dx)
	}
	return out
}

// oscillatorTransform computes the absolute acceleration response of a
// single-degree-of-freedom oscillator at the requested period and damping.
// It accepts either a record (one response per channel) or rotation matrices
// (one response per rotation angle row).
type oscillatorTransform struct{}

func (oscillatorTransform) Transform(in Value, p Params) (Value, error) {
	if math.IsNaN(p.Period) || p.Period <= 0 {
		return Value{}, errors.New("oscillator: a positive period is required")
	}
	switch {
	case in.Record != nil:
		out := in.Record.Clone()
		for i := range out.Channels {
			ch := &out.Channels[i]
			ch.Data = sdofResponse(ch.Data, ch.Delta, p.Period, p.Damping)
			scale(ch.Data, GalToPctG)
		}
		return RecordValue(out), nil
	case in.Matrices != nil:
		if len(p.Times) < 2 {
			return Value{}, errors.New("oscillator: a horizontal time base is required for rotated input")
		}
		dt := p.Times[1] - p.Times[0]
		out := make([][][]float64, len(in.Matrices))
		for m, matrix := range in.Matrices {
			res := make([][]float64, len(matrix))
			for row, series := range matrix {
				res[row] = sdofResponse(series, dt, p.Period, p.Damping)
				scale(res[row], GalToPctG)
			}
			out[m] = res
		}
		return Value{Matrices: out}, nil
	}
	return Value{}, errShape("oscillator", in)
}

// scale multiplies data in place. The oscillator uses it to report
// spectral response in percent of gravity rather than gal.
func scale(data []float64, factor float64) {
	for i := range data {
		data[i] *= factor
	}
}

// sdofResponse computes the absolute acceleration response of a damped
// single-degree-of-freedom oscillator to the input acceleration series,
// using the exact piecewise-linear (Nigam-Jennings) recursion.
func sdofResponse(acc []float64, dt, period, damping float64) []float64 {
	n := len(acc)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	w := 2 * math.Pi / period
	d := damping
	wd := w * math.Sqrt(1-d*d)
	w2 := w * w
	w3 := w2 * w

	e := math.Exp(-d * w * dt)
	sine := math.Sin(wd * dt)
	cosine := math.Cos(wd * dt)

	// Exact solution over each interval for piecewise-linear excitation:
	// u'' + 2dw u' + w^2 u = f(t), f(t) = -ground acceleration.
	var u, v float64 // relative displacement and velocity
	for i := 0; i < n-1; i++ {
		f := -acc[i]
		df := -(acc[i+1] - acc[i])

		// Particular solution constants at the interval start.
		c0 := f/w2 - 2*d*df/(w3*dt)
		c1 := df / (w2 * dt)

		p := u - c0
		q := (v - c1 + d*w*p) / wd

		u = e*(p*cosine+q*sine) + c0 + df/w2
		v = e*((wd*q-d*w*p)*cosine-(wd*p+d*w*q)*sine) + c1

		// Absolute acceleration from the equation of motion.
		out[i+1] = -(2*d*w*v + w2*u)
	}
	return out
}

// fftTransform computes the Fourier amplitude spectrum of each channel,
// zero-padded to the next power of two, with amplitudes scaled by the
// sampling interval.
type fftTransform struct{}

func (fftTransform) Transform(in Value, _ Params) (Value, error) {
	if in.Record == nil {
		return Value{}, errShape("fft", in)
	}
	spectra := make(map[string]Spectrum, len(in.Record.Channels))
	for _, ch := range in.Record.Channels {
		nfft := nextPow2(len(ch.Data))
		padded := make([]float64, nfft)
		copy(padded, ch.Data)

		fft := fourier.NewFFT(nfft)
		coeffs := fft.Coefficients(nil, padded)

		amps := make([]float64, len(coeffs))
		freqs := make([]float64, len(coeffs))
		for i, c := range coeffs {
			amps[i] = cmplxAbs(c) * ch.Delta
			freqs[i] = float64(i) / (float64(nfft) * ch.Delta)
		}
		spectra[ch.Name] = Spectrum{Freqs: freqs, Amps: amps}
	}
	return Value{Spectra: spectra}, nil
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
