package alert

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"touristid/internal/safety/models"
	id "touristid/pkg/domain"
)

// PostgresStore keeps alerts in the safety_alerts table through
// database/sql and the lib/pq driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, a *models.Alert) error {
	const q = `
INSERT INTO safety_alerts (id, tourist_id, kind, location, message, notified, raised_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, q,
		uuid.UUID(a.ID), string(a.TouristID), string(a.Kind), a.Location, a.Message,
		pq.Array(a.Notified), a.RaisedAt,
	)
	if err != nil {
		return fmt.Errorf("insert safety alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTourist(ctx context.Context, touristID id.TouristID) ([]*models.Alert, error) {
	const q = `
SELECT id, tourist_id, kind, location, message, notified, raised_at
FROM safety_alerts WHERE tourist_id = $1
ORDER BY raised_at DESC`

	rows, err := s.db.QueryContext(ctx, q, string(touristID))
	if err != nil {
		return nil, fmt.Errorf("list safety alerts: %w", err)
	}
	defer rows.Close()

	var out []*models.Alert
	for rows.Next() {
		var (
			a        models.Alert
			alertID  uuid.UUID
			tourist  string
			kind     string
			notified pq.StringArray
		)
		if err := rows.Scan(&alertID, &tourist, &kind, &a.Location, &a.Message, &notified, &a.RaisedAt); err != nil {
			return nil, fmt.Errorf("scan safety alert: %w", err)
		}
		a.ID = id.AlertID(alertID)
		a.TouristID = id.TouristID(tourist)
		a.Kind = models.AlertKind(kind)
		a.Notified = []string(notified)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list safety alerts: %w", err)
	}
	return out, nil
}
