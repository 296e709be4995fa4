// Package report renders computed metrics as PNG figures: response
// spectra, Fourier amplitude spectra, and raw waveform traces.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/groundmotion.report/internal/metrics"
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
	"github.com/banshee-data/groundmotion.report/internal/station"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// ResponseSpectrum extracts the period/value series for one component
// from a summary's spectral acceleration rows, sorted by period.
func ResponseSpectrum(s *station.Summary, component string) (periods, values []float64) {
	reg := stages.DefaultRegistry()
	type point struct{ period, value float64 }
	var pts []point
	for _, row := range s.Table.Rows() {
		if row.Component != component {
			continue
		}
		spec, ok := metrics.ParseMeasure(reg, row.Measure)
		if !ok || spec.Kind != stages.MeasureSA {
			continue
		}
		pts = append(pts, point{spec.Period, row.Value})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].period < pts[j].period })
	for _, p := range pts {
		periods = append(periods, p.period)
		values = append(values, p.value)
	}
	return periods, values
}

// SaveResponseSpectrum plots spectral acceleration against period for the
// given components, one line each, on a log period axis.
func SaveResponseSpectrum(s *station.Summary, components []string, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Response Spectrum (%.0f%% damping)", s.StationCode, s.Damping*100)
	p.X.Label.Text = "Period (s)"
	p.Y.Label.Text = "SA (%g)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	colors := palette(len(components))
	added := 0
	for i, component := range components {
		periods, values := ResponseSpectrum(s, component)
		pts := make(plotter.XYs, 0, len(periods))
		for j := range periods {
			if periods[j] <= 0 || math.IsNaN(values[j]) {
				continue
			}
			pts = append(pts, plotter.XY{X: periods[j], Y: values[j]})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(component, line)
		added++
	}
	if added == 0 {
		return fmt.Errorf("no spectral acceleration values for station %s", s.StationCode)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return savePlot(p, path)
}

// SaveAmplitudeSpectrum plots a Fourier amplitude spectrum on log-log
// axes. Non-positive bins are skipped so the log axes stay finite.
func SaveAmplitudeSpectrum(title string, spectrum stages.Spectrum, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Amplitude (cm/s)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	pts := make(plotter.XYs, 0, len(spectrum.Freqs))
	for i := range spectrum.Freqs {
		if spectrum.Freqs[i] <= 0 || spectrum.Amps[i] <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: spectrum.Freqs[i], Y: spectrum.Amps[i]})
	}
	if len(pts) == 0 {
		return fmt.Errorf("spectrum has no positive bins")
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)
	return savePlot(p, path)
}

// SaveTraces plots each channel of a record as a stacked set of PNG
// files named <prefix>_<channel>.png in dir.
func SaveTraces(rec *waveform.Record, dir, prefix string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for _, ch := range rec.Channels {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s %s", rec.StationCode, ch.Name)
		p.X.Label.Text = "Time (s)"
		switch ch.Units {
		case waveform.UnitsVel:
			p.Y.Label.Text = "Velocity (cm/s)"
		default:
			p.Y.Label.Text = "Acceleration (cm/s²)"
		}

		pts := make(plotter.XYs, len(ch.Data))
		for i, v := range ch.Data {
			pts[i] = plotter.XY{X: float64(i) * ch.Delta, Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		line.Width = vg.Points(0.5)
		p.Add(line)

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, ch.Name))
		if err := savePlot(p, path); err != nil {
			return err
		}
	}
	return nil
}

func savePlot(p *plot.Plot, path string) error {
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// palette returns n distinct line colors spread around the hue circle.
func palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		h := float64(i) / float64(n)
		r, g, b := hslToRGB(h, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// OutputDir builds a timestamped directory for a plotting run, keyed by
// the input file's basename.
func OutputDir(baseDir, inputFile string) string {
	ts := time.Now().Format("20060102_150405")
	if inputFile != "" {
		base := filepath.Base(inputFile)
		name := base[:len(base)-len(filepath.Ext(base))]
		return filepath.Join(baseDir, name, ts)
	}
	return filepath.Join(baseDir, ts)
}
