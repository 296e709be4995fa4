package station

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/metrics"
	"github.com/banshee-data/groundmotion.report/internal/metrics/stages"
)

// element is a generic XML node used for both directions of the metric
// serialization, whose tag names are data-dependent.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// MetricsXML serializes the measure table. The schema is one element per
// measure kind (with units, and period/damping attributes for spectral
// kinds) containing one element per component whose text is the value to
// four decimals. H1/H2/Z components record their original channel name.
func (s *Summary) MetricsXML() ([]byte, error) {
	reg := stages.DefaultRegistry()
	root := element{
		XMLName: xml.Name{Local: "waveform_metrics"},
		Attrs:   []xml.Attr{attr("station_code", s.StationCode)},
	}

	for _, measure := range s.Measures() {
		spec, ok := metrics.ParseMeasure(reg, measure)
		if !ok {
			return nil, fmt.Errorf("cannot serialize measure label %q", measure)
		}
		def, ok := reg.Measure(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("no units known for measure %q", measure)
		}

		el := element{XMLName: xml.Name{Local: spec.Kind}}
		switch spec.Kind {
		case stages.MeasureSA:
			el.Attrs = append(el.Attrs,
				attr("period", fmt.Sprintf("%.3f", spec.Period)),
				attr("damping", fmt.Sprintf("%.2f", s.Damping)))
		case stages.MeasureFAS:
			el.Attrs = append(el.Attrs, attr("period", fmt.Sprintf("%.3f", spec.Period)))
		case stages.MeasureDuration:
			el.Attrs = append(el.Attrs,
				attr("interval", fmt.Sprintf("%g-%g", spec.Interval[0], spec.Interval[1])))
		}
		el.Attrs = append(el.Attrs, attr("units", def.Units))

		for _, row := range s.Table.Rows() {
			if row.Measure != measure {
				continue
			}
			child := element{
				XMLName: xml.Name{Local: componentTag(row.Component)},
				Text:    fmt.Sprintf("%.4f", row.Value),
			}
			if original, ok := s.OriginalChannels[row.Component]; ok {
				child.Attrs = append(child.Attrs, attr("original_channel", original))
			}
			el.Children = append(el.Children, child)
		}
		root.Children = append(root.Children, el)
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// FromMetricsXML rebuilds a summary from its serialized measure table.
func FromMetricsXML(data []byte) (*Summary, error) {
	var root element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing waveform metrics: %w", err)
	}
	if root.XMLName.Local != "waveform_metrics" {
		return nil, fmt.Errorf("unexpected root element %q", root.XMLName.Local)
	}

	reg := stages.DefaultRegistry()
	s := &Summary{
		Damping:          0.05,
		OriginalChannels: make(map[string]string),
		Table:            metrics.NewTable(),
		Station: StationMetrics{
			Distances:   NoDistances(),
			BackAzimuth: math.NaN(),
			Vs30:        math.NaN(),
		},
	}
	s.StationCode, _ = root.attr("station_code")

	for i := range root.Children {
		el := &root.Children[i]
		label, err := measureLabelFromElement(reg, el)
		if err != nil {
			return nil, err
		}
		if damping, ok := el.attr("damping"); ok {
			if v, err := strconv.ParseFloat(damping, 64); err == nil {
				s.Damping = v
			}
		}
		for j := range el.Children {
			child := &el.Children[j]
			component := componentLabelFromTag(reg, child.XMLName.Local)
			value, err := strconv.ParseFloat(strings.TrimSpace(child.Text), 64)
			if err != nil {
				return nil, fmt.Errorf("bad value for %s/%s: %w", label, component, err)
			}
			if original, ok := child.attr("original_channel"); ok {
				s.OriginalChannels[component] = original
			}
			s.Table.Add(label, component, value)
		}
	}
	return s, nil
}

// measureLabelFromElement reconstructs the canonical measure label from a
// serialized element tag and its attributes.
func measureLabelFromElement(reg *stages.Registry, el *element) (string, error) {
	kind := el.XMLName.Local
	def, ok := reg.Measure(kind)
	if !ok {
		return "", fmt.Errorf("unknown measure element %q", kind)
	}
	name := kind
	switch {
	case def.UsesPeriod:
		period, ok := el.attr("period")
		if !ok {
			return "", fmt.Errorf("measure element %q is missing its period", kind)
		}
		name = fmt.Sprintf("%s(%s)", kind, period)
	case def.UsesInterval:
		if interval, ok := el.attr("interval"); ok {
			name = fmt.Sprintf("%s%s", kind, interval)
		}
	}
	spec, ok := metrics.ParseMeasure(reg, name)
	if !ok {
		return "", fmt.Errorf("cannot parse measure element %q", name)
	}
	return spec.Label(), nil
}

// componentTag is the serialized tag for a component label: lower case
// with the parenthesized parameter inlined, e.g. ROTD(50.0) -> rotd50.0.
func componentTag(label string) string {
	lower := strings.ToLower(label)
	lower = strings.ReplaceAll(lower, "(", "")
	return strings.ReplaceAll(lower, ")", "")
}

// componentLabelFromTag reconstructs the canonical component label. Tags
// that do not name a registered component kind are sub-channel labels and
// round-trip as their upper case form.
func componentLabelFromTag(reg *stages.Registry, tag string) string {
	if spec, ok := metrics.ParseComponent(reg, tag); ok {
		return spec.Label()
	}
	return strings.ToUpper(tag)
}

// StationMetricsXML serializes the station-level scalars: distances in km
// to three decimals, Vs30 and back-azimuth to two. NaN fields are omitted.
func (s *Summary) StationMetricsXML() ([]byte, error) {
	root := element{
		XMLName: xml.Name{Local: "station_metrics"},
		Attrs:   []xml.Attr{attr("station_code", s.StationCode)},
	}

	distances := element{XMLName: xml.Name{Local: "distances"}}
	addDistance := func(tag string, value, variance float64) {
		if math.IsNaN(value) {
			return
		}
		el := element{
			XMLName: xml.Name{Local: tag},
			Attrs:   []xml.Attr{attr("units", "km")},
			Text:    fmt.Sprintf("%.3f", value),
		}
		if !math.IsNaN(variance) {
			el.Attrs = append(el.Attrs, attr("variance", fmt.Sprintf("%.3f", variance)))
		}
		distances.Children = append(distances.Children, el)
	}
	d := s.Station.Distances
	addDistance("epicentral", d.Epicentral, math.NaN())
	addDistance("hypocentral", d.Hypocentral, math.NaN())
	addDistance("rupture", d.Rupture, d.RuptureVar)
	addDistance("joyner_boore", d.JoynerBoore, d.JoynerBooreVar)
	if len(distances.Children) > 0 {
		root.Children = append(root.Children, distances)
	}

	if !math.IsNaN(s.Station.Vs30) {
		root.Children = append(root.Children, element{
			XMLName: xml.Name{Local: "vs30"},
			Attrs:   []xml.Attr{attr("units", "m/s")},
			Text:    fmt.Sprintf("%.2f", s.Station.Vs30),
		})
	}
	if !math.IsNaN(s.Station.BackAzimuth) {
		root.Children = append(root.Children, element{
			XMLName: xml.Name{Local: "back_azimuth"},
			Attrs:   []xml.Attr{attr("units", "deg")},
			Text:    fmt.Sprintf("%.2f", s.Station.BackAzimuth),
		})
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// ParseStationMetricsXML reads back the station-level scalars.
func ParseStationMetricsXML(data []byte) (StationMetrics, string, error) {
	var root element
	if err := xml.Unmarshal(data, &root); err != nil {
		return StationMetrics{}, "", fmt.Errorf("parsing station metrics: %w", err)
	}
	if root.XMLName.Local != "station_metrics" {
		return StationMetrics{}, "", fmt.Errorf("unexpected root element %q", root.XMLName.Local)
	}
	code, _ := root.attr("station_code")

	sm := StationMetrics{
		Distances:   NoDistances(),
		BackAzimuth: math.NaN(),
		Vs30:        math.NaN(),
	}
	parse := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	for i := range root.Children {
		el := &root.Children[i]
		switch el.XMLName.Local {
		case "distances":
			for j := range el.Children {
				dist := &el.Children[j]
				variance := math.NaN()
				if v, ok := dist.attr("variance"); ok {
					variance = parse(v)
				}
				switch dist.XMLName.Local {
				case "epicentral":
					sm.Distances.Epicentral = parse(dist.Text)
				case "hypocentral":
					sm.Distances.Hypocentral = parse(dist.Text)
				case "rupture":
					sm.Distances.Rupture = parse(dist.Text)
					sm.Distances.RuptureVar = variance
				case "joyner_boore":
					sm.Distances.JoynerBoore = parse(dist.Text)
					sm.Distances.JoynerBooreVar = variance
				}
			}
		case "vs30":
			sm.Vs30 = parse(el.Text)
		case "back_azimuth":
			sm.BackAzimuth = parse(el.Text)
		}
	}
	return sm, code, nil
}
