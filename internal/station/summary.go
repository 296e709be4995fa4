// Package station wraps the metrics pipeline for one station: it runs the
// controller over a waveform record, holds the station-level scalars
// computed by the distance collaborator, and defines the XML contract the
// archive uses to round-trip summaries.
package station

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/groundmotion.report/internal/config"
	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/metrics"
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// Distances holds the station-to-source scalars. Values that were not
// computed are NaN and are omitted from serialization. Rupture and
// Joyner-Boore distances come from an external rupture model; only the
// point-source distances are computed locally.
type Distances struct {
	Epicentral     float64
	Hypocentral    float64
	Rupture        float64
	RuptureVar     float64
	JoynerBoore    float64
	JoynerBooreVar float64
}

// NoDistances returns a Distances with every field NaN.
func NoDistances() Distances {
	nan := math.NaN()
	return Distances{
		Epicentral:     nan,
		Hypocentral:    nan,
		Rupture:        nan,
		RuptureVar:     nan,
		JoynerBoore:    nan,
		JoynerBooreVar: nan,
	}
}

// StationMetrics are the non-waveform station scalars held and serialized
// by the summary. They are computed by collaborators, never by the
// pipeline.
type StationMetrics struct {
	Distances   Distances
	BackAzimuth float64
	Vs30        float64
}

// Options configures summary construction from a record.
type Options struct {
	Event  *event.Event
	Config *config.MetricsConfig
	// Provider computes the point-source distance scalars. Nil skips them.
	Provider DistanceProvider
	// DisableCache is passed through to the controller.
	DisableCache bool
}

// Summary is the per-station result facade: the metric table plus station
// scalars and the serialization contract.
type Summary struct {
	// ID is a provenance identifier assigned at construction.
	ID          string
	StationCode string
	Damping     float64
	Table       *metrics.Table
	Station     StationMetrics
	// OriginalChannels maps the stable H1/H2/Z labels back to the physical
	// channel names they were assigned from.
	OriginalChannels map[string]string
}

// FromRecord runs the full pipeline over the record and wraps the result.
// Structural validation errors and a missing event for radial_transverse
// surface here, before any metric is computed.
func FromRecord(rec *waveform.Record, measures, components []string, opts Options) (*Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.EmptyMetricsConfig()
	}
	if len(measures) == 0 {
		measures = cfg.GetOutputMeasures()
	}
	if len(components) == 0 {
		components = cfg.GetOutputComponents()
	}

	// A bare duration request takes its interval from the config.
	expanded := make([]string, len(measures))
	for i, m := range measures {
		if strings.ToLower(strings.TrimSpace(m)) == stages.MeasureDuration {
			iv := cfg.GetDurationInterval()
			m = fmt.Sprintf("%s%g-%g", stages.MeasureDuration, iv[0], iv[1])
		}
		expanded[i] = m
	}
	measures = expanded

	ctrl, err := metrics.NewController(rec, measures, components, metrics.Options{
		Event:        opts.Event,
		Damping:      cfg.GetSADamping(),
		Bandwidth:    cfg.GetFASBandwidth(),
		Smoothing:    cfg.GetFASSmoothing(),
		DisableCache: opts.DisableCache,
	})
	if err != nil {
		return nil, err
	}

	table := ctrl.Execute()
	originals := make(map[string]string)
	for name, label := range ctrl.ChannelLabels() {
		originals[label] = name
	}

	s := &Summary{
		ID:               uuid.NewString(),
		StationCode:      rec.StationCode,
		Damping:          cfg.GetSADamping(),
		Table:            table,
		OriginalChannels: originals,
		Station: StationMetrics{
			Distances:   NoDistances(),
			BackAzimuth: math.NaN(),
			Vs30:        math.NaN(),
		},
	}
	if opts.Provider != nil && opts.Event != nil {
		s.Station.Distances, s.Station.BackAzimuth = opts.Provider.Distances(rec, opts.Event)
	}
	return s, nil
}

// FromValues builds a summary from a flat measure to component to value
// mapping, as produced by an external catalog.
func FromValues(stationCode string, values map[string]map[string]float64) *Summary {
	table := metrics.NewTable()
	for _, measure := range sortedKeys(values) {
		comps := values[measure]
		for _, comp := range sortedKeys(comps) {
			table.Add(measure, comp, comps[comp])
		}
	}
	return &Summary{
		ID:          uuid.NewString(),
		StationCode: stationCode,
		Damping:     0.05,
		Table:       table,
		Station: StationMetrics{
			Distances:   NoDistances(),
			BackAzimuth: math.NaN(),
			Vs30:        math.NaN(),
		},
	}
}

// Measures returns the distinct measure labels present.
func (s *Summary) Measures() []string { return s.Table.Measures() }

// Components returns the distinct component labels present.
func (s *Summary) Components() []string { return s.Table.Components() }

// Value looks up one cell; absent pairs are NaN.
func (s *Summary) Value(measure, component string) float64 {
	if v, ok := s.Table.Value(measure, component); ok {
		return v
	}
	return math.NaN()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
