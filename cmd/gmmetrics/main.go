// Command gmmetrics computes waveform intensity measures for a single
// station record and prints, archives, or plots the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/groundmotion.report/internal/config"
	"github.com/banshee-data/groundmotion.report/internal/event"
	"github.com/banshee-data/groundmotion.report/internal/report"
	"github.com/banshee-data/groundmotion.report/internal/station"
	"github.com/banshee-data/groundmotion.report/internal/station/storage/sqlite"
	"github.com/banshee-data/groundmotion.report/internal/version"
	"github.com/banshee-data/groundmotion.report/internal/waveform"
)

// recordFile is the on-disk JSON shape for a station record.
type recordFile struct {
	StationCode string    `json:"station_code"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Elevation   float64   `json:"elevation"`
	Channels    []channel `json:"channels"`
}

type channel struct {
	Name  string    `json:"name"`
	Units string    `json:"units"`
	Delta float64   `json:"delta"`
	Data  []float64 `json:"data"`
	// Passed defaults to true when absent; only channels explicitly marked
	// failed are withheld from rotation components.
	Passed *bool `json:"passed,omitempty"`
}

func loadRecord(path string) (*waveform.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rf recordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	rec := &waveform.Record{
		StationCode: rf.StationCode,
		StationLat:  rf.Latitude,
		StationLon:  rf.Longitude,
		Elevation:   rf.Elevation,
	}
	for _, ch := range rf.Channels {
		passed := true
		if ch.Passed != nil {
			passed = *ch.Passed
		}
		rec.Channels = append(rec.Channels, waveform.Channel{
			Name:   ch.Name,
			Units:  ch.Units,
			Delta:  ch.Delta,
			Data:   ch.Data,
			Passed: passed,
		})
	}
	return rec, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	recordPath := flag.String("record", "", "Station record JSON file (required)")
	configPath := flag.String("config", "", "Metrics config JSON file (optional)")
	imts := flag.String("imts", "", "Comma-separated measure types, overriding the config (e.g. pga,sa1.0,fas)")
	imcs := flag.String("imcs", "", "Comma-separated components, overriding the config (e.g. channels,rotd50.0)")

	eventID := flag.String("event-id", "", "Event identifier for archiving")
	eventLat := flag.Float64("event-lat", math.NaN(), "Event latitude (degrees)")
	eventLon := flag.Float64("event-lon", math.NaN(), "Event longitude (degrees)")
	eventDepth := flag.Float64("event-depth", 0, "Event depth (km)")
	eventMag := flag.Float64("event-mag", 0, "Event magnitude")

	dbPath := flag.String("db", "", "Archive database path (optional)")
	xmlOut := flag.Bool("xml", false, "Print the metric XML instead of a table")
	plotDir := flag.String("plots", "", "Directory for response spectrum and trace plots (optional)")
	noCache := flag.Bool("no-cache", false, "Disable the stage prefix cache")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gmmetrics %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *recordPath == "" {
		flag.Usage()
		log.Fatal("-record is required")
	}

	rec, err := loadRecord(*recordPath)
	if err != nil {
		log.Fatalf("Failed to load record: %v", err)
	}

	var cfg *config.MetricsConfig
	if *configPath != "" {
		cfg, err = config.LoadMetricsConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	var ev *event.Event
	if !math.IsNaN(*eventLat) && !math.IsNaN(*eventLon) {
		ev = &event.Event{
			ID:        *eventID,
			Latitude:  *eventLat,
			Longitude: *eventLon,
			DepthKm:   *eventDepth,
			Magnitude: *eventMag,
		}
	}

	opts := station.Options{
		Event:        ev,
		Config:       cfg,
		DisableCache: *noCache,
	}
	if ev != nil {
		opts.Provider = station.Geodetic{}
	}

	summary, err := station.FromRecord(rec, splitList(*imts), splitList(*imcs), opts)
	if err != nil {
		log.Fatalf("Failed to compute metrics: %v", err)
	}

	if *xmlOut {
		data, err := summary.MetricsXML()
		if err != nil {
			log.Fatalf("Failed to serialize metrics: %v", err)
		}
		fmt.Println(string(data))
	} else {
		printTable(summary)
	}

	if *dbPath != "" {
		if *eventID == "" {
			log.Fatal("-event-id is required with -db")
		}
		db, err := sqlite.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
		defer db.Close()
		store := sqlite.NewSummaryStore(db)
		if err := store.SaveSummary(*eventID, summary); err != nil {
			log.Fatalf("Failed to archive summary: %v", err)
		}
		log.Printf("Archived summary %s for station %s", summary.ID, summary.StationCode)
	}

	if *plotDir != "" {
		dir := report.OutputDir(*plotDir, *recordPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create plot dir: %v", err)
		}
		spectrumPath := filepath.Join(dir, "response_spectrum.png")
		if err := report.SaveResponseSpectrum(summary, summary.Components(), spectrumPath); err != nil {
			log.Printf("Skipping response spectrum plot: %v", err)
		}
		if err := report.SaveTraces(rec, dir, "trace"); err != nil {
			log.Fatalf("Failed to plot traces: %v", err)
		}
		log.Printf("Plots written to %s", dir)
	}
}

// printTable writes the summary as a fixed-width measure by component
// grid, NaN cells rendered as "-".
func printTable(s *station.Summary) {
	components := s.Components()
	measures := s.Measures()
	sort.Strings(measures)

	width := 12
	for _, m := range measures {
		if len(m) >= width {
			width = len(m) + 2
		}
	}

	fmt.Printf("Station: %s\n", s.StationCode)
	fmt.Printf("%-*s", width, "")
	for _, c := range components {
		fmt.Printf("%*s", width, c)
	}
	fmt.Println()
	for _, m := range measures {
		fmt.Printf("%-*s", width, m)
		for _, c := range components {
			v := s.Value(m, c)
			if math.IsNaN(v) {
				fmt.Printf("%*s", width, "-")
			} else {
				fmt.Printf("%*.4f", width, v)
			}
		}
		fmt.Println()
	}
}
