// Package postgres persists cost-control alerts and owns their lifecycle.
// The generators always emit alerts unacknowledged and unresolved; the
// acknowledge/resolve transitions happen here.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"natacare-cost/pkg/api"
	cerrors "natacare-cost/pkg/errors"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		Database: "natacare",
		Username: "postgres",
		Password: "",
		SSLMode:  "disable",
	}
}

// DSN renders the config as a lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode)
}

// Store implements the alert store on PostgreSQL.
type Store struct {
	db  *sql.DB
	cfg *Config
}

// NewStore opens a connection pool to PostgreSQL.
func NewStore(cfg *Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the alerts table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS cost_alerts (
			id UUID PRIMARY KEY,
			project_id TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			current_value DOUBLE PRECISION NOT NULL,
			threshold_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			affected_wbs TEXT NOT NULL DEFAULT '',
			recommended_actions TEXT[] NOT NULL DEFAULT '{}',
			is_acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
			is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create cost_alerts: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS cost_alerts_project_open
		 ON cost_alerts (project_id) WHERE NOT is_resolved`)
	if err != nil {
		return fmt.Errorf("failed to create alert index: %w", err)
	}
	return nil
}

// Insert stores a batch of freshly generated alerts for a project.
func (s *Store) Insert(ctx context.Context, projectID string, alerts []api.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cost_alerts (
			id, project_id, alert_type, severity, message,
			current_value, threshold_value, affected_wbs,
			recommended_actions, is_acknowledged, is_resolved, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare alert insert: %w", err)
	}
	defer stmt.Close()

	for _, alert := range alerts {
		_, err := stmt.ExecContext(ctx,
			alert.ID,
			projectID,
			string(alert.AlertType),
			string(alert.Severity),
			alert.Message,
			alert.CurrentValue,
			alert.ThresholdValue,
			alert.AffectedWBS,
			pq.Array(alert.RecommendedActions),
			alert.IsAcknowledged,
			alert.IsResolved,
			alert.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", alert.ID, err)
		}
	}

	return tx.Commit()
}

// ListOpen returns unresolved alerts for a project, newest first.
func (s *Store) ListOpen(ctx context.Context, projectID string) ([]api.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, alert_type, severity, message,
			   current_value, threshold_value, affected_wbs,
			   recommended_actions, is_acknowledged, is_resolved, created_at
		FROM cost_alerts
		WHERE project_id = $1 AND NOT is_resolved
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]api.Alert, 0)
	for rows.Next() {
		var alert api.Alert
		var alertType, severity string
		if err := rows.Scan(
			&alert.ID, &alert.ProjectID, &alertType, &severity, &alert.Message,
			&alert.CurrentValue, &alert.ThresholdValue, &alert.AffectedWBS,
			pq.Array(&alert.RecommendedActions), &alert.IsAcknowledged,
			&alert.IsResolved, &alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alert.AlertType = api.AlertType(alertType)
		alert.Severity = api.AlertSeverity(severity)
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// Acknowledge marks an alert as seen by a project controller.
func (s *Store) Acknowledge(ctx context.Context, id uuid.UUID) error {
	return s.setFlag(ctx, id, "is_acknowledged")
}

// Resolve closes an alert.
func (s *Store) Resolve(ctx context.Context, id uuid.UUID) error {
	return s.setFlag(ctx, id, "is_resolved")
}

func (s *Store) setFlag(ctx context.Context, id uuid.UUID, column string) error {
	// column is one of two fixed identifiers, never user input.
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE cost_alerts SET %s = TRUE WHERE id = $1", column), id)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &cerrors.CostError{
			Code:     cerrors.ErrCodeNotFound,
			Message:  fmt.Sprintf("alert not found: %s", id),
			Severity: cerrors.SeverityError,
		}
	}
	return nil
}
