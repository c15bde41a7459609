package document

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

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemory(time.Minute)
	store.now = func() time.Time { return now }

	sessionID := id.NewSessionID()
	data := []byte{0x89, 'P', 'N', 'G'}

	require.NoError(t, store.Put(ctx, sessionID, models.SlotPhotoID, Blob{ContentType: "image/png", Data: data}))
	data[0] = 0

	t.Run("get returns a copy of what was put", func(t *testing.T) {
		blob, err := store.Get(ctx, sessionID, models.SlotPhotoID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", blob.ContentType)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, blob.Data)
	})

	t.Run("empty slot is not found", func(t *testing.T) {
		_, err := store.Get(ctx, sessionID, models.SlotPassport)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("expired content is not found", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, err := store.Get(ctx, sessionID, models.SlotPhotoID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		now = now.Add(-2 * time.Minute)
	})

	t.Run("touch extends live slots only", func(t *testing.T) {
		other := id.NewSessionID()
		require.NoError(t, store.Put(ctx, other, models.SlotIDDocument, Blob{ContentType: models.MIMEPDF, Data: []byte("%PDF")}))

		now = now.Add(50 * time.Second)
		require.NoError(t, store.Touch(ctx, other))
		now = now.Add(50 * time.Second)
		_, err := store.Get(ctx, other, models.SlotIDDocument)
		assert.NoError(t, err, "touched slot outlives its original expiry")

		now = now.Add(2 * time.Minute)
		require.NoError(t, store.Touch(ctx, other))
		_, err = store.Get(ctx, other, models.SlotIDDocument)
		assert.ErrorIs(t, err, sentinel.ErrNotFound, "an expired slot is not revived")
		now = now.Add(-(2*time.Minute + 100*time.Second))
	})

	t.Run("delete all clears the session", func(t *testing.T) {
		require.NoError(t, store.DeleteAll(ctx, sessionID))
		_, err := store.Get(ctx, sessionID, models.SlotPhotoID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
