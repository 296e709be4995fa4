package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
	"github.com/banshee-data/groundmotion.report/internal/monitoring"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// Default numeric configuration, matching the shipped metric defaults.
const (
	DefaultDamping   = 0.05
	DefaultBandwidth = 20.0
	DefaultSmoothing = "konno_ohmachi"
)

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	Event     *event.Event
	Damping   float64
	Bandwidth float64
	Smoothing string
	// DisableCache forces every pair to recompute its chain prefix. Results
	// must be identical either way; the switch exists for verification.
	DisableCache bool
	// Registry overrides the built-in stage set.
	Registry *stages.Registry
}

// Controller resolves and executes the step chains for one waveform record.
// It owns a per-instance prefix cache and is not safe for concurrent use;
// construct one controller per record.
type Controller struct {
	reg    *stages.Registry
	record *waveform.Record
	event  *event.Event

	damping   float64
	bandwidth float64
	smoothing string
	noCache   bool

	stepSets   map[string]StepSet
	cache      map[string]stages.Value
	chanLabels map[string]string
	times      []float64
}

// NewController validates the record, resolves the requested pairs, and
// returns a ready-to-execute controller. Structural problems (bad record,
// radial_transverse without an event) are returned as errors; invalid pairs
// are silently dropped during resolution.
func NewController(record *waveform.Record, measures, components []string, opts Options) (*Controller, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	for _, comp := range components {
		if strings.ToLower(strings.TrimSpace(comp)) == stages.ComponentRadialTransverse && opts.Event == nil {
			return nil, fmt.Errorf("%w: an event location is required for %s",
				waveform.ErrStructural, stages.ComponentRadialTransverse)
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = stages.DefaultRegistry()
	}
	c := &Controller{
		reg:       reg,
		record:    record,
		event:     opts.Event,
		damping:   opts.Damping,
		bandwidth: opts.Bandwidth,
		smoothing: opts.Smoothing,
		noCache:   opts.DisableCache,
		cache:     make(map[string]stages.Value),
	}
	if c.damping == 0 {
		c.damping = DefaultDamping
	}
	if c.bandwidth == 0 {
		c.bandwidth = DefaultBandwidth
	}
	if c.smoothing == "" {
		c.smoothing = DefaultSmoothing
	}

	c.stepSets = Resolve(reg, measures, components, record.Units())
	if times, err := record.HorizontalTimes(); err == nil {
		c.times = times
	}
	return c, nil
}

// StepSets exposes the resolved chains, keyed "{measure}_{component}".
func (c *Controller) StepSets() map[string]StepSet {
	return c.stepSets
}

// ChannelLabels returns the stable label assigned to each physical channel
// name (H1, H2, Z). The serializer records the originals so the relabeling
// decision survives a round trip.
func (c *Controller) ChannelLabels() map[string]string {
	if c.chanLabels == nil {
		c.chanLabels = deriveChannelLabels(c.record)
	}
	out := make(map[string]string, len(c.chanLabels))
	for k, v := range c.chanLabels {
		out[k] = v
	}
	return out
}

// Execute runs every resolved step set and assembles the result table. A
// failure inside one pair's chain is logged and degrades that pair to NaN;
// all other pairs are unaffected.
func (c *Controller) Execute() *Table {
	table := NewTable()
	keys := make([]string, 0, len(c.stepSets))
	for k := range c.stepSets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ss := c.stepSets[key]
		scalars, err := c.executePair(ss)
		if err != nil {
			monitoring.Warnf("error in calculation of %s: %v; result cell will be NaN", key, err)
			scalars = map[string]float64{stages.Combined: math.NaN()}
		}
		if ss.Component.Kind == stages.ComponentChannels {
			scalars = c.relabelChannels(scalars)
		}
		c.assemble(table, ss, scalars)
	}
	return table
}

// executePair runs one step chain: the shared prefix (from cache when
// possible) followed by the always-fresh result-specific stages.
func (c *Controller) executePair(ss StepSet) (result map[string]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()

	v, err := c.prefix(ss)
	if err != nil {
		return nil, err
	}
	p := c.params(ss)

	t3, err := c.transform(ss.Steps[stages.RoleTransform3])
	if err != nil {
		return nil, err
	}
	c1, err := c.combination(ss.Steps[stages.RoleCombination1])
	if err != nil {
		return nil, err
	}
	red, err := c.reduction(ss.Steps[stages.RoleReduction])
	if err != nil {
		return nil, err
	}
	c2, err := c.combination(ss.Steps[stages.RoleCombination2])
	if err != nil {
		return nil, err
	}

	if v, err = t3.Transform(v, p); err != nil {
		return nil, err
	}
	if v, err = c1.Combine(v); err != nil {
		return nil, err
	}
	if v, err = red.Reduce(v, p); err != nil {
		return nil, err
	}
	if v, err = c2.Combine(v); err != nil {
		return nil, err
	}
	if v.Scalars == nil {
		return nil, fmt.Errorf("chain for %s did not reduce to scalars", ss.Key)
	}
	return v.Scalars, nil
}

// prefix returns the shared Transform1/Transform2/Rotation result for the
// pair, memoized under the cache-key discipline in cacheKey.
func (c *Controller) prefix(ss StepSet) (stages.Value, error) {
	chain := []string{
		ss.Steps[stages.RoleTransform1],
		ss.Steps[stages.RoleTransform2],
		ss.Steps[stages.RoleRotation],
	}
	oscillator := ss.Steps[stages.RoleTransform2] == stages.Oscillator
	key := cacheKey(chain, ss.Measure.Period, ss.Component.Percentile, oscillator)

	if !c.noCache {
		if v, ok := c.cache[key]; ok {
			return v, nil
		}
	}

	t1, err := c.transform(chain[0])
	if err != nil {
		return stages.Value{}, err
	}
	t2, err := c.transform(chain[1])
	if err != nil {
		return stages.Value{}, err
	}
	rot, err := c.rotation(chain[2])
	if err != nil {
		return stages.Value{}, err
	}

	p := c.params(ss)
	v := stages.RecordValue(c.record)
	if v, err = t1.Transform(v, p); err != nil {
		return stages.Value{}, err
	}
	if v, err = t2.Transform(v, p); err != nil {
		return stages.Value{}, err
	}
	if v, err = rot.Rotate(v, c.event); err != nil {
		return stages.Value{}, err
	}
	if !c.noCache {
		c.cache[key] = v
	}
	return v, nil
}

func (c *Controller) params(ss StepSet) stages.Params {
	return stages.Params{
		Damping:    c.damping,
		Period:     ss.Measure.Period,
		Percentile: ss.Component.Percentile,
		Bandwidth:  c.bandwidth,
		Smoothing:  c.smoothing,
		Interval:   ss.Measure.Interval,
		Times:      c.times,
	}
}

// relabelChannels maps physical channel names onto the stable H1/H2/Z
// labels. The mapping is derived once, the first time a channels pair is
// processed, so every channels pair in one invocation is self-consistent.
func (c *Controller) relabelChannels(scalars map[string]float64) map[string]float64 {
	if c.chanLabels == nil {
		c.chanLabels = deriveChannelLabels(c.record)
	}
	out := make(map[string]float64, len(scalars))
	for name, v := range scalars {
		if label, ok := c.chanLabels[name]; ok {
			out[label] = v
		} else {
			out[name] = v
		}
	}
	return out
}

// deriveChannelLabels assigns H1 and H2 to the non-vertical channels in
// sorted name order and Z to the vertical one. Rotations downstream destroy
// the original naming, so the mapping must be fixed up front.
func deriveChannelLabels(rec *waveform.Record) map[string]string {
	names := make([]string, 0, len(rec.Channels))
	vertical := make(map[string]bool, len(rec.Channels))
	for _, ch := range rec.Channels {
		names = append(names, ch.Name)
		vertical[ch.Name] = ch.Vertical()
	}
	sort.Strings(names)

	labels := make(map[string]string, len(names))
	horizontals := 0
	for _, name := range names {
		if vertical[name] {
			labels[name] = "Z"
			continue
		}
		horizontals++
		labels[name] = fmt.Sprintf("H%d", horizontals)
	}
	return labels
}

func (c *Controller) transform(name string) (stages.Transform, error) {
	if t, ok := c.reg.Transform(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown transform stage %q", name)
}

func (c *Controller) rotation(name string) (stages.Rotation, error) {
	if r, ok := c.reg.Rotation(name); ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown rotation stage %q", name)
}

func (c *Controller) combination(name string) (stages.Combination, error) {
	if cb, ok := c.reg.Combination(name); ok {
		return cb, nil
	}
	return nil, fmt.Errorf("unknown combination stage %q", name)
}

func (c *Controller) reduction(name string) (stages.Reduction, error) {
	if r, ok := c.reg.Reduction(name); ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown reduction stage %q", name)
}
