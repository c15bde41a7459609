//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"touristid/internal/registration/models"
	"touristid/internal/registration/store/registry"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
	"touristid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *registry.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = registry.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "registrations"))
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	reg := &models.Registration{
		ID:               id.NewRegistrationID(),
		TouristID:        "TST-2024-ABCDEFGHI",
		FullName:         "Asha Rao",
		Nationality:      "indian",
		IDType:           models.IDTypeAadhaar,
		IDNumberHash:     "9f86d081884c7d65",
		IDVerified:       true,
		VisitPurpose:     "tourism",
		Duration:         "1-2-weeks",
		Destinations:     "Shillong",
		Documents:        []models.DocumentSlot{models.SlotPhotoID, models.SlotIDDocument},
		TrackingConsent:  true,
		EmergencyConsent: true,
		Device:           "Chrome on Android",
		SubmittedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Save(ctx, reg))

	got, err := s.store.FindByTouristID(ctx, reg.TouristID)
	s.Require().NoError(err)
	s.Equal(reg.ID, got.ID)
	s.Equal(reg.Documents, got.Documents)
	s.Equal(reg.IDType, got.IDType)
	s.True(reg.SubmittedAt.Equal(got.SubmittedAt))

	s.Run("duplicate tourist id conflicts", func() {
		dup := *reg
		dup.ID = id.NewRegistrationID()
		s.ErrorIs(s.store.Save(ctx, &dup), sentinel.ErrConflict)
	})

	s.Run("unknown tourist id", func() {
		_, err := s.store.FindByTouristID(ctx, "TST-2024-ZZZZZZZZZ")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete removes the record", func() {
		s.Require().NoError(s.store.Delete(ctx, reg.ID))
		_, err := s.store.FindByTouristID(ctx, reg.TouristID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.store.Delete(ctx, reg.ID), sentinel.ErrNotFound)
	})
}
