package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore keeps registrations in the registrations table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, reg *models.Registration) error {
	const q = `
INSERT INTO registrations (
  id, tourist_id, full_name, nationality, id_type, id_number_hash, id_verified,
  visit_purpose, duration, destinations, documents, tracking_consent, emergency_consent,
  device, submitted_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	docs := make([]string, len(reg.Documents))
	for i, d := range reg.Documents {
		docs[i] = string(d)
	}
	_, err := s.pool.Exec(ctx, q,
		reg.ID.String(), string(reg.TouristID), reg.FullName, reg.Nationality, string(reg.IDType),
		reg.IDNumberHash, reg.IDVerified, reg.VisitPurpose, reg.Duration, reg.Destinations, docs,
		reg.TrackingConsent, reg.EmergencyConsent, reg.Device, reg.SubmittedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, regID id.RegistrationID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, regID.String())
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByTouristID(ctx context.Context, touristID id.TouristID) (*models.Registration, error) {
	const q = `
SELECT id, tourist_id, full_name, nationality, id_type, id_number_hash, id_verified,
  visit_purpose, duration, destinations, documents, tracking_consent, emergency_consent,
  device, submitted_at
FROM registrations WHERE tourist_id = $1`

	var (
		rawID, rawTourist, idType string
		docs                      []string
		reg                       models.Registration
	)
	err := s.pool.QueryRow(ctx, q, string(touristID)).Scan(
		&rawID, &rawTourist, &reg.FullName, &reg.Nationality, &idType, &reg.IDNumberHash, &reg.IDVerified,
		&reg.VisitPurpose, &reg.Duration, &reg.Destinations, &docs, &reg.TrackingConsent, &reg.EmergencyConsent,
		&reg.Device, &reg.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}

	regID, err := id.ParseRegistrationID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored registration id: %w", err)
	}
	reg.ID = regID
	reg.TouristID = id.TouristID(rawTourist)
	reg.IDType = models.IDType(idType)
	for _, d := range docs {
		reg.Documents = append(reg.Documents, models.DocumentSlot(d))
	}
	return &reg, nil
}
