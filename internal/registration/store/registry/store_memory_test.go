package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

func newRegistration(touristID string) *models.Registration {
	return &models.Registration{
		ID:           id.NewRegistrationID(),
		TouristID:    id.TouristID(touristID),
		FullName:     "Asha Rao",
		Nationality:  "indian",
		IDType:       models.IDTypeAadhaar,
		IDNumberHash: "abc",
		IDVerified:   true,
		Documents:    []models.DocumentSlot{models.SlotPhotoID, models.SlotIDDocument},
		SubmittedAt:  time.Now(),
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	reg := newRegistration("TST-2024-ABCDEFGHI")

	require.NoError(t, store.Save(ctx, reg))

	t.Run("find by tourist id", func(t *testing.T) {
		got, err := store.FindByTouristID(ctx, reg.TouristID)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, got.ID)
		assert.Equal(t, reg.Documents, got.Documents)
	})

	t.Run("stored record is isolated from the caller", func(t *testing.T) {
		reg.Documents[0] = models.SlotPassport
		got, err := store.FindByTouristID(ctx, reg.TouristID)
		require.NoError(t, err)
		assert.Equal(t, models.SlotPhotoID, got.Documents[0])
	})

	t.Run("duplicate tourist id conflicts", func(t *testing.T) {
		err := store.Save(ctx, newRegistration("TST-2024-ABCDEFGHI"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("unknown tourist id", func(t *testing.T) {
		_, err := store.FindByTouristID(ctx, "TST-2024-000000000")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete frees the tourist id", func(t *testing.T) {
		other := newRegistration("TST-2024-DELETEME0")
		require.NoError(t, store.Save(ctx, other))
		require.NoError(t, store.Delete(ctx, other.ID))

		_, err := store.FindByTouristID(ctx, other.TouristID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, other.ID), sentinel.ErrNotFound)
		assert.NoError(t, store.Save(ctx, newRegistration("TST-2024-DELETEME0")))
	})
}
