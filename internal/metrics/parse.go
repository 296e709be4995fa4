// Package metrics implements the intensity-measure computation pipeline:
// parsing requested measure/component names, resolving each valid pair to an
// ordered stage chain, executing the chains with a shared prefix cache, and
// assembling the uniform result table.
package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
)

// MeasureSpec is a parsed measure-type request: the base kind plus the
// period (sa, fas) or interval (duration) carried in the name string.
// Period and Percentile values that do not apply are NaN.
type MeasureSpec struct {
	// Source is the requested string, used as the step-set key part.
	Source   string
	Kind     string
	Period   float64
	Interval [2]float64
}

// ComponentSpec is a parsed component request: the base kind plus the
// percentile (rotd, gmrotd) carried in the name string.
type ComponentSpec struct {
	Source     string
	Kind       string
	Percentile float64
}

// ParseMeasure parses a measure-type string such as "pga", "sa(1.0)",
// "fas2.5" or "duration5-95". The kind must be known to the registry; a
// period-bearing kind whose period does not parse is reported as not ok and
// silently dropped by the resolver.
func ParseMeasure(reg *stages.Registry, s string) (MeasureSpec, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	spec := MeasureSpec{Source: lower, Period: math.NaN()}

	switch {
	case strings.HasPrefix(lower, stages.MeasureSA):
		spec.Kind = stages.MeasureSA
	case strings.HasPrefix(lower, stages.MeasureFAS):
		spec.Kind = stages.MeasureFAS
	case strings.HasPrefix(lower, stages.MeasureDuration):
		spec.Kind = stages.MeasureDuration
	default:
		spec.Kind = lower
	}

	def, ok := reg.Measure(spec.Kind)
	if !ok {
		return spec, false
	}
	if def.UsesPeriod {
		period, ok := parseNumericName(lower)
		if !ok {
			return spec, false
		}
		spec.Period = period
	}
	if def.UsesInterval {
		interval, ok := parseInterval(lower)
		if !ok {
			return spec, false
		}
		spec.Interval = interval
	}
	return spec, true
}

// ParseComponent parses a component string such as "channels", "rotd50.0"
// or "gmrotd(50)". A percentile-bearing kind whose percentile does not
// parse is reported as not ok.
func ParseComponent(reg *stages.Registry, s string) (ComponentSpec, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	spec := ComponentSpec{Source: lower, Percentile: math.NaN()}

	switch {
	case strings.HasPrefix(lower, stages.ComponentGMRotD):
		spec.Kind = stages.ComponentGMRotD
	case strings.HasPrefix(lower, stages.ComponentRotD):
		spec.Kind = stages.ComponentRotD
	default:
		spec.Kind = lower
	}

	def, ok := reg.Component(spec.Kind)
	if !ok {
		return spec, false
	}
	if def.UsesPercentile {
		percentile, ok := parseNumericName(lower)
		if !ok {
			return spec, false
		}
		spec.Percentile = percentile
	}
	return spec, true
}

// parseNumericName extracts the numeric parameter embedded in a measure or
// component name by collecting digit runs and joining them with a single
// decimal point: "sa(1.0)" and "sa1.0" both yield 1.0, "rotd50" yields 50.
//
// Two digit runs always reconstruct one decimal point, so a name carrying
// digits in an unrelated suffix would be misparsed; the expected input
// grammar carries at most one number per name.
func parseNumericName(s string) (float64, bool) {
	runs := digitRuns(s)
	var joined string
	switch len(runs) {
	case 0:
		return math.NaN(), false
	case 1:
		joined = runs[0]
	default:
		joined = strings.Join(runs, ".")
	}
	v, err := strconv.ParseFloat(joined, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// parseInterval extracts the start-end percentage pair from a duration name
// such as "duration5-95". A bare "duration" carries no interval and is
// reported as not ok; callers that want a default interval must expand the
// name before resolution.
func parseInterval(s string) ([2]float64, bool) {
	runs := digitRuns(s)
	switch len(runs) {
	case 2:
		lo, err1 := strconv.ParseFloat(runs[0], 64)
		hi, err2 := strconv.ParseFloat(runs[1], 64)
		if err1 != nil || err2 != nil || lo >= hi {
			return [2]float64{}, false
		}
		return [2]float64{lo, hi}, true
	}
	return [2]float64{}, false
}

// digitRuns returns the maximal runs of consecutive ASCII digits in s.
func digitRuns(s string) []string {
	var runs []string
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, s[start:])
	}
	return runs
}
