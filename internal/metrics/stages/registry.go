package stages

import "sync"

// Stage names. The set is closed: the registry is populated once at startup
// from these implementations and measure/component templates refer to stages
// by these names.
const (
	NullTransform    = "null_transform"
	Integrate        = "integrate"
	Differentiate    = "differentiate"
	Oscillator       = "oscillator"
	FFT              = "fft"
	NullRotation     = "null_rotation"
	RotD             = "rotd"
	GMRotD           = "gmrotd"
	RadialTransverse = "radial_transverse"
	NullCombination  = "null_combination"
	GeometricMean    = "geometric_mean"
	ArithmeticMean   = "arithmetic_mean"
	QuadraticMean    = "quadratic_mean"
	GreaterOfTwo     = "greater_of_two_horizontals"
	Max              = "max"
	Percentile       = "percentile"
	AriasReduce      = "arias"
	DurationReduce   = "duration"
	SmoothSelect     = "smooth_select"
)

// Registry resolves stage names to implementations per role, and measure or
// component kinds to their capability descriptors.
type Registry struct {
	mu           sync.RWMutex
	transforms   map[string]Transform
	rotations    map[string]Rotation
	combinations map[string]Combination
	reductions   map[string]Reduction
	measures     map[string]*MeasureDef
	components   map[string]*ComponentDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		transforms:   make(map[string]Transform),
		rotations:    make(map[string]Rotation),
		combinations: make(map[string]Combination),
		reductions:   make(map[string]Reduction),
		measures:     make(map[string]*MeasureDef),
		components:   make(map[string]*ComponentDef),
	}
}

// RegisterTransform adds a transform stage. An existing name is replaced.
func (r *Registry) RegisterTransform(name string, t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = t
}

// RegisterRotation adds a rotation stage.
func (r *Registry) RegisterRotation(name string, rot Rotation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotations[name] = rot
}

// RegisterCombination adds a combination stage.
func (r *Registry) RegisterCombination(name string, c Combination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combinations[name] = c
}

// RegisterReduction adds a reduction stage.
func (r *Registry) RegisterReduction(name string, red Reduction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reductions[name] = red
}

// RegisterMeasure adds a measure capability descriptor.
func (r *Registry) RegisterMeasure(def *MeasureDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measures[def.Name] = def
}

// RegisterComponent adds a component capability descriptor.
func (r *Registry) RegisterComponent(def *ComponentDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[def.Name] = def
}

// Transform retrieves a transform stage by name.
func (r *Registry) Transform(name string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[name]
	return t, ok
}

// Rotation retrieves a rotation stage by name.
func (r *Registry) Rotation(name string) (Rotation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rot, ok := r.rotations[name]
	return rot, ok
}

// Combination retrieves a combination stage by name.
func (r *Registry) Combination(name string) (Combination, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.combinations[name]
	return c, ok
}

// Reduction retrieves a reduction stage by name.
func (r *Registry) Reduction(name string) (Reduction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	red, ok := r.reductions[name]
	return red, ok
}

// Measure retrieves a measure descriptor by base kind.
func (r *Registry) Measure(name string) (*MeasureDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.measures[name]
	return def, ok
}

// Component retrieves a component descriptor by base kind.
func (r *Registry) Component(name string) (*ComponentDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.components[name]
	return def, ok
}

// MeasureNames returns the registered measure kinds, sorted.
func (r *Registry) MeasureNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.measures)
}

// ComponentNames returns the registered component kinds, sorted.
func (r *Registry) ComponentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.components)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys)-1; i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[i] > keys[j] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

// DefaultRegistry returns a registry pre-loaded with the built-in stage set
// and measure/component descriptors.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.RegisterTransform(NullTransform, nullTransform{})
	reg.RegisterTransform(Integrate, integrate{})
	reg.RegisterTransform(Differentiate, differentiate{})
	reg.RegisterTransform(Oscillator, oscillatorTransform{})
	reg.RegisterTransform(FFT, fftTransform{})

	reg.RegisterRotation(NullRotation, nullRotation{})
	reg.RegisterRotation(RotD, rotdRotation{})
	reg.RegisterRotation(GMRotD, gmrotdRotation{})
	reg.RegisterRotation(RadialTransverse, radialTransverse{})

	reg.RegisterCombination(NullCombination, nullCombination{})
	reg.RegisterCombination(GeometricMean, meanCombination{kind: GeometricMean})
	reg.RegisterCombination(ArithmeticMean, meanCombination{kind: ArithmeticMean})
	reg.RegisterCombination(QuadraticMean, meanCombination{kind: QuadraticMean})
	reg.RegisterCombination(GreaterOfTwo, greaterOfTwo{})

	reg.RegisterReduction(Max, maxReduction{})
	reg.RegisterReduction(Percentile, percentileReduction{})
	reg.RegisterReduction(AriasReduce, ariasReduction{})
	reg.RegisterReduction(DurationReduce, durationReduction{})
	reg.RegisterReduction(SmoothSelect, smoothSelect{})

	for _, def := range builtinMeasures() {
		reg.RegisterMeasure(def)
	}
	for _, def := range builtinComponents() {
		reg.RegisterComponent(def)
	}
	return reg
}
