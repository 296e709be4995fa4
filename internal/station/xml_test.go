package station

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func roundTripSummary() *Summary {
	s := FromValues("ST01", map[string]map[string]float64{
		"PGA": {
			"H1": 24.2675,
			"H2": 12.1338,
			"Z":  math.NaN(),
		},
		"PGV": {
			"H1": 8.5000,
		},
		"SA(1.000)": {
			"ROTD(50.0)":                 31.2500,
			"GREATER_OF_TWO_HORIZONTALS": 35.1250,
		},
		"FAS(2.500)": {
			"GEOMETRIC_MEAN": 4.0625,
		},
		"ARIAS": {
			"ARITHMETIC_MEAN": 0.1250,
		},
		"DURATION(5-95)": {
			"ARITHMETIC_MEAN": 12.5000,
		},
	})
	s.Damping = 0.10
	s.OriginalChannels = map[string]string{"H1": "HN1", "H2": "HN2", "Z": "HNZ"}
	return s
}

func TestMetricsXMLRoundTrip(t *testing.T) {
	orig := roundTripSummary()
	data, err := orig.MetricsXML()
	if err != nil {
		t.Fatalf("MetricsXML: %v", err)
	}

	got, err := FromMetricsXML(data)
	if err != nil {
		t.Fatalf("FromMetricsXML: %v\n%s", err, data)
	}
	if got.StationCode != "ST01" {
		t.Errorf("StationCode = %q", got.StationCode)
	}
	if got.Damping != 0.10 {
		t.Errorf("Damping = %v, want 0.10", got.Damping)
	}
	if diff := cmp.Diff(orig.Table.Rows(), got.Table.Rows(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("table mismatch (-orig +roundtrip):\n%s", diff)
	}
	if diff := cmp.Diff(orig.OriginalChannels, got.OriginalChannels); diff != "" {
		t.Errorf("original channels mismatch:\n%s", diff)
	}
}

func TestMetricsXMLSchema(t *testing.T) {
	data, err := roundTripSummary().MetricsXML()
	if err != nil {
		t.Fatalf("MetricsXML: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		`<waveform_metrics station_code="ST01">`,
		`<sa period="1.000" damping="0.10" units="%g">`,
		`<fas period="2.500" units="cm/s">`,
		`<duration interval="5-95" units="s">`,
		`<h1 original_channel="HN1">`,
		`<rotd50.0>31.2500</rotd50.0>`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("serialized metrics missing %q:\n%s", want, text)
		}
	}
}

func TestMetricsXMLRejectsUnknownMeasure(t *testing.T) {
	s := FromValues("ST01", map[string]map[string]float64{
		"WEIRD": {"H1": 1.0},
	})
	if _, err := s.MetricsXML(); err == nil {
		t.Fatal("expected error for unknown measure label")
	}
}

func TestFromMetricsXMLRejectsWrongRoot(t *testing.T) {
	if _, err := FromMetricsXML([]byte(`<other/>`)); err == nil {
		t.Fatal("expected error for wrong root element")
	}
}

func TestStationMetricsXMLRoundTrip(t *testing.T) {
	s := FromValues("ST02", nil)
	s.Station.Distances.Epicentral = 12.345
	s.Station.Distances.Hypocentral = 16.789
	s.Station.Distances.Rupture = 20.500
	s.Station.Distances.RuptureVar = 1.250
	s.Station.Vs30 = 760.00
	s.Station.BackAzimuth = 90.00

	data, err := s.StationMetricsXML()
	if err != nil {
		t.Fatalf("StationMetricsXML: %v", err)
	}
	got, code, err := ParseStationMetricsXML(data)
	if err != nil {
		t.Fatalf("ParseStationMetricsXML: %v\n%s", err, data)
	}
	if code != "ST02" {
		t.Errorf("station code = %q", code)
	}
	if diff := cmp.Diff(s.Station, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("station metrics mismatch:\n%s", diff)
	}
}

func TestStationMetricsXMLOmitsNaN(t *testing.T) {
	s := FromValues("ST03", nil)
	data, err := s.StationMetricsXML()
	if err != nil {
		t.Fatalf("StationMetricsXML: %v", err)
	}
	text := string(data)
	for _, absent := range []string{"distances", "vs30", "back_azimuth"} {
		if strings.Contains(text, absent) {
			t.Errorf("serialized station metrics should omit %q:\n%s", absent, text)
		}
	}
}
