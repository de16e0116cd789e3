// Package clickhouse stores EVM metric snapshots as a time series.
// Columnar storage keeps trend queries over months of snapshots cheap.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"natacare-cost/pkg/api"
)

// Snapshot is a point-in-time EVM metrics capture for a project.
// Currency columns are Decimal(18,2); indices stay Float64.
type Snapshot struct {
	ID              uuid.UUID       `ch:"id"`
	ProjectID       string          `ch:"project_id"`
	BAC             decimal.Decimal `ch:"bac"`
	PV              decimal.Decimal `ch:"pv"`
	EV              decimal.Decimal `ch:"ev"`
	AC              decimal.Decimal `ch:"ac"`
	CV              decimal.Decimal `ch:"cv"`
	SV              decimal.Decimal `ch:"sv"`
	EAC             decimal.Decimal `ch:"eac"`
	ETC             decimal.Decimal `ch:"etc"`
	VAC             decimal.Decimal `ch:"vac"`
	CPI             float64         `ch:"cpi"`
	SPI             float64         `ch:"spi"`
	TCPI            float64         `ch:"tcpi"`
	PercentComplete float64         `ch:"percent_complete"`
	PercentSpent    float64         `ch:"percent_spent"`
	Status          string          `ch:"status"`
	HealthScore     float64         `ch:"health_score"`
	CalculatedAt    time.Time       `ch:"calculated_at"`
	CreatedAt       time.Time       `ch:"created_at"`
}

// Metrics converts a stored snapshot back into the contract type.
func (s *Snapshot) Metrics() api.EVMMetrics {
	return api.EVMMetrics{
		BAC:             s.BAC.InexactFloat64(),
		PV:              s.PV.InexactFloat64(),
		EV:              s.EV.InexactFloat64(),
		AC:              s.AC.InexactFloat64(),
		CV:              s.CV.InexactFloat64(),
		SV:              s.SV.InexactFloat64(),
		CPI:             s.CPI,
		SPI:             s.SPI,
		EAC:             s.EAC.InexactFloat64(),
		ETC:             s.ETC.InexactFloat64(),
		VAC:             s.VAC.InexactFloat64(),
		TCPI:            s.TCPI,
		PercentComplete: s.PercentComplete,
		PercentSpent:    s.PercentSpent,
		Status:          api.ProjectStatus(s.Status),
		HealthScore:     s.HealthScore,
		CalculatedAt:    s.CalculatedAt,
	}
}

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "natacare",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store implements the snapshot history store on ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore connects to ClickHouse over the native protocol.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS evm_snapshots (
			id UUID,
			project_id String,
			bac Decimal(18, 2),
			pv Decimal(18, 2),
			ev Decimal(18, 2),
			ac Decimal(18, 2),
			cv Decimal(18, 2),
			sv Decimal(18, 2),
			eac Decimal(18, 2),
			etc Decimal(18, 2),
			vac Decimal(18, 2),
			cpi Float64,
			spi Float64,
			tcpi Float64,
			percent_complete Float64,
			percent_spent Float64,
			status LowCardinality(String),
			health_score Float64,
			calculated_at DateTime64(3),
			created_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (project_id, calculated_at)
	`
	if err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create evm_snapshots: %w", err)
	}
	return nil
}

// =============================================================================
// SNAPSHOT OPERATIONS
// =============================================================================

// SaveMetrics appends one metrics snapshot for a project.
func (s *Store) SaveMetrics(ctx context.Context, projectID string, m api.EVMMetrics) error {
	query := `
		INSERT INTO evm_snapshots (
			id, project_id, bac, pv, ev, ac, cv, sv, eac, etc, vac,
			cpi, spi, tcpi, percent_complete, percent_spent,
			status, health_score, calculated_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		uuid.New(),
		projectID,
		money(m.BAC),
		money(m.PV),
		money(m.EV),
		money(m.AC),
		money(m.CV),
		money(m.SV),
		money(m.EAC),
		money(m.ETC),
		money(m.VAC),
		m.CPI,
		m.SPI,
		m.TCPI,
		m.PercentComplete,
		m.PercentSpent,
		string(m.Status),
		m.HealthScore,
		m.CalculatedAt,
		time.Now(),
	)
}

// History returns snapshots for a project within [from, to], oldest first.
func (s *Store) History(ctx context.Context, projectID string, from, to time.Time) ([]Snapshot, error) {
	query := `
		SELECT id, project_id, bac, pv, ev, ac, cv, sv, eac, etc, vac,
			   cpi, spi, tcpi, percent_complete, percent_spent,
			   status, health_score, calculated_at, created_at
		FROM evm_snapshots
		WHERE project_id = ? AND calculated_at BETWEEN ? AND ?
		ORDER BY calculated_at ASC
	`
	rows, err := s.conn.Query(ctx, query, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(
			&snap.ID, &snap.ProjectID, &snap.BAC, &snap.PV, &snap.EV, &snap.AC,
			&snap.CV, &snap.SV, &snap.EAC, &snap.ETC, &snap.VAC,
			&snap.CPI, &snap.SPI, &snap.TCPI, &snap.PercentComplete, &snap.PercentSpent,
			&snap.Status, &snap.HealthScore, &snap.CalculatedAt, &snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Latest returns the most recent snapshot for a project, or nil when none
// has been recorded yet.
func (s *Store) Latest(ctx context.Context, projectID string) (*Snapshot, error) {
	query := `
		SELECT id, project_id, bac, pv, ev, ac, cv, sv, eac, etc, vac,
			   cpi, spi, tcpi, percent_complete, percent_spent,
			   status, health_score, calculated_at, created_at
		FROM evm_snapshots
		WHERE project_id = ?
		ORDER BY calculated_at DESC
		LIMIT 1
	`
	rows, err := s.conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var snap Snapshot
	if err := rows.Scan(
		&snap.ID, &snap.ProjectID, &snap.BAC, &snap.PV, &snap.EV, &snap.AC,
		&snap.CV, &snap.SV, &snap.EAC, &snap.ETC, &snap.VAC,
		&snap.CPI, &snap.SPI, &snap.TCPI, &snap.PercentComplete, &snap.PercentSpent,
		&snap.Status, &snap.HealthScore, &snap.CalculatedAt, &snap.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return &snap, nil
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
