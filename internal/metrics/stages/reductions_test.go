package stages

import (
	"math"
	"testing"
)

func TestPercentileLinear(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		{"median of four", []float64{1, 2, 3, 4}, 50, 2.5},
		{"median of three", []float64{3, 1, 2}, 50, 2},
		{"zeroth", []float64{5, 1, 3}, 0, 1},
		{"hundredth", []float64{5, 1, 3}, 100, 5},
		{"interpolated", []float64{0, 10}, 25, 2.5},
		{"single value", []float64{7}, 50, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentileLinear(tt.data, tt.p)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("percentile(%v, %v) = %v, want %v", tt.data, tt.p, got, tt.want)
			}
		})
	}
	if !math.IsNaN(percentileLinear(nil, 50)) {
		t.Error("empty input should yield NaN")
	}
}

func TestMaxReduction(t *testing.T) {
	rec := accRecord([]float64{0, 1, -3, 2}, []float64{0, -5, 4, 1}, []float64{0, 2, -1, 0})
	out, err := maxReduction{}.Reduce(RecordValue(rec), Params{})
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	want := map[string]float64{"HN1": 3, "HN2": 5, "HNZ": 2}
	for name, w := range want {
		if got := out.Scalars[name]; got != w {
			t.Errorf("max[%s] = %v, want %v", name, got, w)
		}
	}
}

func TestPercentileReductionSingleMatrix(t *testing.T) {
	in := Value{Matrices: [][][]float64{{
		{1, -2}, {3, 0}, {0, -4},
	}}}
	out, err := percentileReduction{}.Reduce(in, Params{Percentile: 50})
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	// Per-row absolute maxima are 2, 3, 4; their median is 3.
	if got := out.Scalars[Combined]; got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestPercentileReductionMatrixPair(t *testing.T) {
	in := Value{Matrices: [][][]float64{
		{{1, 4}, {9, 2}},
		{{4, 1}, {2, 4}},
	}}
	out, err := percentileReduction{}.Reduce(in, Params{Percentile: 100})
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	// Per-angle geometric means of the row maxima: sqrt(4*4)=4, sqrt(9*4)=6.
	if got := out.Scalars[Combined]; got != 6 {
		t.Errorf("got %v, want 6", got)
	}
}

func TestPercentileReductionRequiresPercentile(t *testing.T) {
	in := Value{Matrices: [][][]float64{{{1}}}}
	if _, err := (percentileReduction{}).Reduce(in, Params{Percentile: math.NaN()}); err == nil {
		t.Error("expected error for NaN percentile")
	}
}

func TestAriasReduction(t *testing.T) {
	// Constant 100 gal (1 m/s^2) over 1 second: the squared-acceleration
	// integral is 1, so Arias intensity is pi/(2g).
	n := 101
	data := make([]float64, n)
	for i := range data {
		data[i] = 100
	}
	rec := accRecord(data)

	out, err := ariasReduction{}.Reduce(RecordValue(rec), Params{})
	if err != nil {
		t.Fatalf("arias: %v", err)
	}
	want := math.Pi / (2 * gravityMS2)
	if got := out.Scalars["HN1"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("arias = %v, want %v", got, want)
	}
}

func TestDurationReduction(t *testing.T) {
	// Uniform intensity: the normalized Arias build-up is linear, so the
	// 5-95 interval spans 90 percent of the record.
	n := 101
	data := make([]float64, n)
	for i := range data {
		data[i] = 100
	}
	rec := accRecord(data)

	out, err := durationReduction{}.Reduce(RecordValue(rec), Params{Interval: [2]float64{5, 95}})
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if got := out.Scalars["HN1"]; math.Abs(got-0.90) > 1e-9 {
		t.Errorf("duration = %v, want 0.90", got)
	}
}

func TestDurationReductionQuietChannel(t *testing.T) {
	rec := accRecord([]float64{0, 0, 0, 0})
	out, err := durationReduction{}.Reduce(RecordValue(rec), Params{Interval: [2]float64{5, 95}})
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if got := out.Scalars["HN1"]; got != 0 {
		t.Errorf("duration of a quiet channel = %v, want 0", got)
	}
}

func TestSmoothSelectFlatSpectrum(t *testing.T) {
	freqs := make([]float64, 50)
	amps := make([]float64, 50)
	for i := range freqs {
		freqs[i] = float64(i) * 0.5
		amps[i] = 7
	}
	in := Value{Spectra: map[string]Spectrum{Combined: {Freqs: freqs, Amps: amps}}}

	out, err := smoothSelect{}.Reduce(in, Params{Period: 1.0, Bandwidth: 20})
	if err != nil {
		t.Fatalf("smooth_select: %v", err)
	}
	if got := out.Scalars[Combined]; math.Abs(got-7) > 1e-9 {
		t.Errorf("smoothed flat spectrum = %v, want 7", got)
	}
}

func TestSmoothSelectValidation(t *testing.T) {
	in := Value{Spectra: map[string]Spectrum{Combined: {Freqs: []float64{1}, Amps: []float64{1}}}}
	if _, err := (smoothSelect{}).Reduce(in, Params{Period: math.NaN(), Bandwidth: 20}); err == nil {
		t.Error("expected error for NaN period")
	}
	if _, err := (smoothSelect{}).Reduce(in, Params{Period: 1, Bandwidth: 0}); err == nil {
		t.Error("expected error for zero bandwidth")
	}
}

func TestKonnoOhmachiWindow(t *testing.T) {
	if got := koWindow(2, 2, 20); got != 1 {
		t.Errorf("window at center = %v, want 1", got)
	}
	if got := koWindow(4, 2, 20); got >= 0.1 {
		t.Errorf("window far from center = %v, want near zero", got)
	}
}
