package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/cityapi/internal/domain"
)

const historyLimit = 500

const schema = `
	CREATE TABLE IF NOT EXISTS traffic_snapshots (
		id                    BIGSERIAL PRIMARY KEY,
		snapshot_id           UUID NOT NULL,
		average_congestion    DOUBLE PRECISION NOT NULL,
		high_congestion_areas INTEGER NOT NULL,
		total_incidents       INTEGER NOT NULL,
		day_phase             TEXT NOT NULL,
		source                TEXT NOT NULL,
		center_lat            DOUBLE PRECISION NOT NULL,
		center_lon            DOUBLE PRECISION NOT NULL,
		timestamp             TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS traffic_snapshots_timestamp_idx ON traffic_snapshots (timestamp);

	CREATE TABLE IF NOT EXISTS weather_readings (
		id        BIGSERIAL PRIMARY KEY,
		city      TEXT NOT NULL,
		lat       DOUBLE PRECISION NOT NULL,
		lon       DOUBLE PRECISION NOT NULL,
		temp_c    DOUBLE PRECISION NOT NULL,
		humidity  INTEGER NOT NULL,
		pressure  INTEGER NOT NULL,
		wind_kph  DOUBLE PRECISION NOT NULL,
		condition TEXT NOT NULL,
		is_mock   BOOLEAN NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS weather_readings_timestamp_idx ON weather_readings (timestamp);
`

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the archive tables if they are missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// SaveTrafficSummary persists a snapshot digest to PostgreSQL
func (r *PostgresRepository) SaveTrafficSummary(ctx context.Context, s domain.TrafficSummary) error {
	query := `
		INSERT INTO traffic_snapshots (
			snapshot_id, average_congestion, high_congestion_areas, total_incidents,
			day_phase, source, center_lat, center_lon, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		s.SnapshotID, s.AverageCongestion, s.HighCongestionAreas, s.TotalIncidents,
		s.DayPhase, s.Source, s.CenterLat, s.CenterLon, s.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save traffic snapshot: %w", err)
	}

	return nil
}

// SaveWeatherRecord persists a weather reading to PostgreSQL
func (r *PostgresRepository) SaveWeatherRecord(ctx context.Context, w domain.WeatherRecord) error {
	query := `
		INSERT INTO weather_readings (
			city, lat, lon, temp_c, humidity, pressure, wind_kph, condition, is_mock, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		w.City, w.Latitude, w.Longitude, w.TempC, w.Humidity, w.Pressure, w.WindKph, w.Condition, w.IsMock, w.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weather reading: %w", err)
	}

	return nil
}

// GetHistoricalTraffic retrieves snapshot digests from PostgreSQL
func (r *PostgresRepository) GetHistoricalTraffic(ctx context.Context, from, to time.Time) ([]domain.TrafficSummary, error) {
	query := `
		SELECT snapshot_id, average_congestion, high_congestion_areas, total_incidents,
			   day_phase, source, center_lat, center_lon, timestamp
		FROM traffic_snapshots
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, from, to, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query traffic snapshots: %w", err)
	}
	defer rows.Close()

	results := []domain.TrafficSummary{}
	for rows.Next() {
		var s domain.TrafficSummary
		err := rows.Scan(
			&s.SnapshotID, &s.AverageCongestion, &s.HighCongestionAreas, &s.TotalIncidents,
			&s.DayPhase, &s.Source, &s.CenterLat, &s.CenterLon, &s.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan traffic row: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read traffic rows: %w", err)
	}

	return results, nil
}

// GetHistoricalWeather retrieves weather readings from PostgreSQL
func (r *PostgresRepository) GetHistoricalWeather(ctx context.Context, from, to time.Time) ([]domain.WeatherRecord, error) {
	query := `
		SELECT city, lat, lon, temp_c, humidity, pressure, wind_kph, condition, is_mock, timestamp
		FROM weather_readings
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, from, to, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather readings: %w", err)
	}
	defer rows.Close()

	results := []domain.WeatherRecord{}
	for rows.Next() {
		var w domain.WeatherRecord
		err := rows.Scan(
			&w.City, &w.Latitude, &w.Longitude, &w.TempC, &w.Humidity,
			&w.Pressure, &w.WindKph, &w.Condition, &w.IsMock, &w.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather row: %w", err)
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read weather rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
