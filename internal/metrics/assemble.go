package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
)

// Fixed sub-channel label sets used when a multi-channel component's raw
// output is a placeholder: the table keeps a predictable shape with NaN
// fill rather than dropping rows.
var (
	channelLabels          = []string{"H1", "H2", "Z"}
	radialTransverseLabels = []string{"HNR", "HNT"}
)

// Label is the canonical display string for the measure, reconstructed
// from the parsed spec: "SA(1.000)", "DURATION(5-95)", "PGA".
func (s MeasureSpec) Label() string {
	switch s.Kind {
	case stages.MeasureSA, stages.MeasureFAS:
		return fmt.Sprintf("%s(%.3f)", strings.ToUpper(s.Kind), s.Period)
	case stages.MeasureDuration:
		return fmt.Sprintf("%s(%g-%g)", strings.ToUpper(s.Kind), s.Interval[0], s.Interval[1])
	}
	return strings.ToUpper(s.Kind)
}

// Label is the canonical display string for the component: "ROTD(50.0)",
// "GEOMETRIC_MEAN".
func (s ComponentSpec) Label() string {
	if !math.IsNaN(s.Percentile) {
		return fmt.Sprintf("%s(%.1f)", strings.ToUpper(s.Kind), s.Percentile)
	}
	return strings.ToUpper(s.Kind)
}

// assemble inserts the raw per-pair output into the table under canonical
// labels. Peak ground acceleration is scaled from gal to percent of
// gravity; multi-channel components always contribute their full fixed
// label set, NaN-filled where a sub-channel is absent.
func (c *Controller) assemble(table *Table, ss StepSet, scalars map[string]float64) {
	measure := ss.Measure.Label()
	scale := 1.0
	if ss.Measure.Kind == stages.MeasurePGA {
		scale = stages.GalToPctG
	}

	var sublabels []string
	switch ss.Component.Kind {
	case stages.ComponentChannels:
		sublabels = channelLabels
	case stages.ComponentRadialTransverse:
		sublabels = radialTransverseLabels
	}

	if sublabels != nil {
		for _, label := range sublabels {
			value := math.NaN()
			if v, ok := scalars[label]; ok {
				value = v * scale
			}
			table.Add(measure, label, value)
		}
		return
	}

	value, ok := scalars[stages.Combined]
	if !ok && len(scalars) == 1 {
		for _, v := range scalars {
			value = v
		}
		ok = true
	}
	if !ok {
		value = math.NaN()
	}
	table.Add(measure, ss.Component.Label(), value*scale)
}
