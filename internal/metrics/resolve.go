package metrics

import (
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// StepSet is the resolved stage chain for one valid measure/component pair,
// with the parsed numeric parameters carried alongside for the executor and
// assembler.
type StepSet struct {
	Key       string
	Measure   MeasureSpec
	Component ComponentSpec
	// Steps maps role to stage name for every role in execution order.
	Steps map[string]string
}

// Resolve turns the requested measure and component strings into step sets,
// one per valid pair, keyed "{measure}_{component}". Pairs are silently
// omitted when a required numeric parameter does not parse, when the
// measure or component kind is unknown, or when the pair is declared
// incompatible by either capability descriptor.
func Resolve(reg *stages.Registry, measures, components []string, units string) map[string]StepSet {
	out := make(map[string]StepSet)
	for _, m := range measures {
		mspec, ok := ParseMeasure(reg, m)
		if !ok {
			continue
		}
		mdef, ok := reg.Measure(mspec.Kind)
		if !ok {
			continue
		}
		for _, c := range components {
			cspec, ok := ParseComponent(reg, c)
			if !ok {
				continue
			}
			cdef, ok := reg.Component(cspec.Kind)
			if !ok {
				continue
			}
			if !mdef.ValidFor(cspec.Kind) || !cdef.ValidFor(mspec.Kind) {
				continue
			}

			steps := map[string]string{
				stages.RoleTransform1: unitTransform(mspec.Kind, units),
			}
			for role, name := range mdef.Steps() {
				steps[role] = name
			}
			// Component roles override measure roles.
			for role, name := range cdef.Steps(mspec.Kind) {
				steps[role] = name
			}

			key := mspec.Source + "_" + cspec.Source
			out[key] = StepSet{
				Key:       key,
				Measure:   mspec,
				Component: cspec,
				Steps:     steps,
			}
		}
	}
	return out
}

// unitTransform chooses the Transform1 stage by comparing the record's
// units to the measure's native domain: peak ground velocity wants a
// velocity series and everything else wants acceleration.
func unitTransform(measureKind, units string) string {
	switch {
	case measureKind == stages.MeasurePGV && units == waveform.UnitsAcc:
		return stages.Integrate
	case measureKind != stages.MeasurePGV && units == waveform.UnitsVel:
		return stages.Differentiate
	}
	return stages.NullTransform
}
