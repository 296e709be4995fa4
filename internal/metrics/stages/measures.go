package stages

// Role keys for step templates, in execution order.
const (
	RoleTransform1   = "Transform1"
	RoleTransform2   = "Transform2"
	RoleRotation     = "Rotation"
	RoleTransform3   = "Transform3"
	RoleCombination1 = "Combination1"
	RoleReduction    = "Reduction"
	RoleCombination2 = "Combination2"
)

// Measure base kinds.
const (
	MeasurePGA      = "pga"
	MeasurePGV      = "pgv"
	MeasureSA       = "sa"
	MeasureFAS      = "fas"
	MeasureArias    = "arias"
	MeasureDuration = "duration"
)

// Component base kinds.
const (
	ComponentChannels         = "channels"
	ComponentRotD             = "rotd"
	ComponentGMRotD           = "gmrotd"
	ComponentGeometricMean    = "geometric_mean"
	ComponentArithmeticMean   = "arithmetic_mean"
	ComponentQuadraticMean    = "quadratic_mean"
	ComponentGreaterOfTwo     = "greater_of_two_horizontals"
	ComponentRadialTransverse = "radial_transverse"
)

// MeasureDef is the capability descriptor for a measure kind: the roles it
// contributes to a step chain and the components it is incompatible with.
type MeasureDef struct {
	Name string
	// UsesPeriod marks measures whose name string carries a period (sa, fas).
	UsesPeriod bool
	// UsesInterval marks measures whose name string carries a start-end
	// interval (duration).
	UsesInterval bool
	// Units is the display unit string for serialized values.
	Units string

	steps   map[string]string
	invalid map[string]bool
}

// Steps returns a copy of the role template contributed by the measure.
func (d *MeasureDef) Steps() map[string]string {
	return copySteps(d.steps)
}

// ValidFor reports whether the measure may be computed for the component.
func (d *MeasureDef) ValidFor(component string) bool {
	return !d.invalid[component]
}

// ComponentDef is the capability descriptor for a component kind. Its role
// template can depend on the measure: rotation-percentile components move
// the oscillator after the rotation for spectral acceleration, and mean
// components fold spectra before reduction for Fourier amplitudes.
type ComponentDef struct {
	Name string
	// UsesPercentile marks components whose name string carries a
	// percentile (rotd, gmrotd).
	UsesPercentile bool
	// RequiresEvent marks components that need an event location.
	RequiresEvent bool

	steps   func(measure string) map[string]string
	invalid map[string]bool
}

// Steps returns the role template contributed by the component for the
// given measure kind. Component roles override measure roles.
func (d *ComponentDef) Steps(measure string) map[string]string {
	return d.steps(measure)
}

// ValidFor reports whether the component may be computed for the measure.
func (d *ComponentDef) ValidFor(measure string) bool {
	return !d.invalid[measure]
}

func copySteps(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func invalidSet(kinds ...string) map[string]bool {
	out := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		out[k] = true
	}
	return out
}

func builtinMeasures() []*MeasureDef {
	peakSteps := map[string]string{
		RoleTransform2:   NullTransform,
		RoleTransform3:   NullTransform,
		RoleCombination1: NullCombination,
		RoleReduction:    Max,
	}
	return []*MeasureDef{
		{
			Name:    MeasurePGA,
			Units:   "%g",
			steps:   peakSteps,
			invalid: invalidSet(),
		},
		{
			Name:    MeasurePGV,
			Units:   "cm/s",
			steps:   peakSteps,
			invalid: invalidSet(),
		},
		{
			Name:       MeasureSA,
			UsesPeriod: true,
			Units:      "%g",
			steps: map[string]string{
				RoleTransform2:   Oscillator,
				RoleTransform3:   NullTransform,
				RoleCombination1: NullCombination,
				RoleReduction:    Max,
			},
			invalid: invalidSet(),
		},
		{
			Name:       MeasureFAS,
			UsesPeriod: true,
			Units:      "cm/s",
			steps: map[string]string{
				RoleTransform2:   NullTransform,
				RoleTransform3:   FFT,
				RoleCombination1: NullCombination,
				RoleReduction:    SmoothSelect,
			},
			invalid: invalidSet(
				ComponentChannels, ComponentRotD, ComponentGMRotD,
				ComponentGreaterOfTwo, ComponentRadialTransverse,
			),
		},
		{
			Name:  MeasureArias,
			Units: "m/s",
			steps: map[string]string{
				RoleTransform2:   NullTransform,
				RoleTransform3:   NullTransform,
				RoleCombination1: NullCombination,
				RoleReduction:    AriasReduce,
			},
			invalid: invalidSet(
				ComponentChannels, ComponentRotD, ComponentGMRotD,
				ComponentGeometricMean, ComponentQuadraticMean,
				ComponentGreaterOfTwo, ComponentRadialTransverse,
			),
		},
		{
			Name:         MeasureDuration,
			UsesInterval: true,
			Units:        "s",
			steps: map[string]string{
				RoleTransform2:   NullTransform,
				RoleTransform3:   NullTransform,
				RoleCombination1: NullCombination,
				RoleReduction:    DurationReduce,
			},
			invalid: invalidSet(
				ComponentRotD, ComponentGMRotD,
				ComponentGeometricMean, ComponentQuadraticMean,
				ComponentGreaterOfTwo, ComponentRadialTransverse,
			),
		},
	}
}

func builtinComponents() []*ComponentDef {
	fixed := func(steps map[string]string) func(string) map[string]string {
		return func(string) map[string]string { return copySteps(steps) }
	}
	// Rotation-percentile components put the oscillator after the rotation
	// for spectral acceleration, so every rotation angle gets its own
	// oscillator response.
	rotSteps := func(rotation string) func(string) map[string]string {
		return func(measure string) map[string]string {
			steps := map[string]string{
				RoleRotation:     rotation,
				RoleReduction:    Percentile,
				RoleCombination2: NullCombination,
			}
			if measure == MeasureSA {
				steps[RoleTransform2] = NullTransform
				steps[RoleTransform3] = Oscillator
			}
			return steps
		}
	}
	// Mean components fold per-channel spectra before reduction for
	// Fourier amplitudes, and fold per-channel scalars afterwards for
	// everything else.
	meanSteps := func(mean string) func(string) map[string]string {
		return func(measure string) map[string]string {
			if measure == MeasureFAS {
				return map[string]string{
					RoleRotation:     NullRotation,
					RoleCombination1: mean,
					RoleCombination2: NullCombination,
				}
			}
			return map[string]string{
				RoleRotation:     NullRotation,
				RoleCombination2: mean,
			}
		}
	}
	return []*ComponentDef{
		{
			Name: ComponentChannels,
			steps: fixed(map[string]string{
				RoleRotation:     NullRotation,
				RoleCombination2: NullCombination,
			}),
			invalid: invalidSet(MeasureFAS, MeasureArias),
		},
		{
			Name:           ComponentRotD,
			UsesPercentile: true,
			steps:          rotSteps(RotD),
			invalid:        invalidSet(MeasureFAS, MeasureArias, MeasureDuration),
		},
		{
			Name:           ComponentGMRotD,
			UsesPercentile: true,
			steps:          rotSteps(GMRotD),
			invalid:        invalidSet(MeasureFAS, MeasureArias, MeasureDuration),
		},
		{
			Name:    ComponentGeometricMean,
			steps:   meanSteps(GeometricMean),
			invalid: invalidSet(MeasureArias, MeasureDuration),
		},
		{
			Name:    ComponentArithmeticMean,
			steps:   meanSteps(ArithmeticMean),
			invalid: invalidSet(),
		},
		{
			Name:    ComponentQuadraticMean,
			steps:   meanSteps(QuadraticMean),
			invalid: invalidSet(MeasureArias, MeasureDuration),
		},
		{
			Name: ComponentGreaterOfTwo,
			steps: fixed(map[string]string{
				RoleRotation:     NullRotation,
				RoleCombination2: GreaterOfTwo,
			}),
			invalid: invalidSet(MeasureFAS, MeasureArias, MeasureDuration),
		},
		{
			Name:          ComponentRadialTransverse,
			RequiresEvent: true,
			steps: fixed(map[string]string{
				RoleRotation:     RadialTransverse,
				RoleCombination2: NullCombination,
			}),
			invalid: invalidSet(MeasureFAS, MeasureArias),
		},
	}
}
