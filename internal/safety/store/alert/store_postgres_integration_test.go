//go:build integration

package alert_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"touristid/internal/safety/models"
	"touristid/internal/safety/store/alert"
	id "touristid/pkg/domain"
	"touristid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *alert.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = alert.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "safety_alerts"))
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	raised := time.Now().UTC().Truncate(time.Microsecond)

	sos := &models.Alert{
		ID:        id.NewAlertID(),
		TouristID: "TST-2024-ABCDEFGHI",
		Kind:      models.AlertSOS,
		Location:  models.DefaultLocation,
		Message:   models.AlertSOS.Message(),
		Notified:  models.AlertSOS.Notifies(),
		RaisedAt:  raised,
	}
	call := &models.Alert{
		ID:        id.NewAlertID(),
		TouristID: "TST-2024-ABCDEFGHI",
		Kind:      models.AlertEmergency,
		Location:  models.DefaultLocation,
		Message:   models.AlertEmergency.Message(),
		Notified:  models.AlertEmergency.Notifies(),
		RaisedAt:  raised.Add(time.Second),
	}
	s.Require().NoError(s.store.Append(ctx, sos))
	s.Require().NoError(s.store.Append(ctx, call))

	got, err := s.store.ListByTourist(ctx, "TST-2024-ABCDEFGHI")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(call.ID, got[0].ID)
	s.Equal(models.AlertEmergency, got[0].Kind)
	s.Equal(sos.Notified, got[1].Notified)
	s.True(sos.RaisedAt.Equal(got[1].RaisedAt))

	none, err := s.store.ListByTourist(ctx, "TST-2024-ZZZZZZZZZ")
	s.Require().NoError(err)
	s.Empty(none)
}
