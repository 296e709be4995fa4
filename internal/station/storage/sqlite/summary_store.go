package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/banshee-data/groundmotion.report/internal/station"
)

// SummaryStore provides persistence for computed station summaries.
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a SummaryStore backed by the given database.
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// SaveSummary archives a summary under the given event. A summary already
// stored for the same event and station is replaced.
func (s *SummaryStore) SaveSummary(eventID string, summary *station.Summary) error {
	metricsXML, err := summary.MetricsXML()
	if err != nil {
		return fmt.Errorf("serializing metrics for station %s: %w", summary.StationCode, err)
	}
	stationXML, err := summary.StationMetricsXML()
	if err != nil {
		return fmt.Errorf("serializing station metrics for station %s: %w", summary.StationCode, err)
	}

	query := `
		INSERT INTO station_summaries (
			id, event_id, station_code, damping, waveform_metrics, station_metrics, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, station_code) DO UPDATE SET
			id = excluded.id,
			damping = excluded.damping,
			waveform_metrics = excluded.waveform_metrics,
			station_metrics = excluded.station_metrics,
			created_at = excluded.created_at
	`
	err = retryOnBusy(func() error {
		_, err := s.db.Exec(query,
			summary.ID,
			eventID,
			summary.StationCode,
			summary.Damping,
			string(metricsXML),
			string(stationXML),
			time.Now().UTC().Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving summary for station %s: %w", summary.StationCode, err)
	}
	return nil
}

// GetSummary returns the archived summary for a station within an event,
// or nil when none is stored.
func (s *SummaryStore) GetSummary(eventID, stationCode string) (*station.Summary, error) {
	query := `
		SELECT id, damping, waveform_metrics, station_metrics
		FROM station_summaries
		WHERE event_id = ? AND station_code = ?
	`
	var (
		id         string
		damping    float64
		metricsXML string
		stationXML sql.NullString
	)
	err := s.db.QueryRow(query, eventID, stationCode).Scan(&id, &damping, &metricsXML, &stationXML)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying summary for station %s: %w", stationCode, err)
	}

	summary, err := station.FromMetricsXML([]byte(metricsXML))
	if err != nil {
		return nil, fmt.Errorf("parsing archived metrics for station %s: %w", stationCode, err)
	}
	summary.ID = id
	summary.Damping = damping
	if stationXML.Valid && stationXML.String != "" {
		sm, _, err := station.ParseStationMetricsXML([]byte(stationXML.String))
		if err != nil {
			return nil, fmt.Errorf("parsing archived station metrics for station %s: %w", stationCode, err)
		}
		summary.Station = sm
	}
	return summary, nil
}

// SummaryInfo is a lightweight listing row that omits the XML blobs.
type SummaryInfo struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	StationCode string    `json:"station_code"`
	Damping     float64   `json:"damping"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListSummaries returns the summaries archived for an event, most recent
// first.
func (s *SummaryStore) ListSummaries(eventID string, limit int) ([]SummaryInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, event_id, station_code, damping, created_at
		FROM station_summaries
		WHERE event_id = ?
		ORDER BY created_at DESC, station_code
		LIMIT ?
	`
	rows, err := s.db.Query(query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing summaries: %w", err)
	}
	defer rows.Close()

	var infos []SummaryInfo
	for rows.Next() {
		var info SummaryInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.EventID, &info.StationCode, &info.Damping, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for summary %s: %w", info.ID, err)
		}
		info.CreatedAt = t
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteSummary removes an archived summary.
func (s *SummaryStore) DeleteSummary(eventID, stationCode string) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(
			`DELETE FROM station_summaries WHERE event_id = ? AND station_code = ?`,
			eventID, stationCode)
		return err
	})
}
