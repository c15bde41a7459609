package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/internal/safety/models"
	"touristid/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()

	require.NoError(t, store.Create(ctx, models.NewDashboard("TST-2024-AAAAAAAAA", now)))
	require.NoError(t, store.Create(ctx, models.NewDashboard("TST-2024-BBBBBBBBB", now)))
	assert.ErrorIs(t, store.Create(ctx, models.NewDashboard("TST-2024-AAAAAAAAA", now)), sentinel.ErrConflict)

	_, err := store.Find(ctx, "TST-2024-CCCCCCCCC")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	var visited []string
	n, err := store.UpdateAll(ctx, func(d *models.Dashboard) {
		visited = append(visited, d.TouristID.String())
		d.BatteryLevel = 50
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"TST-2024-AAAAAAAAA", "TST-2024-BBBBBBBBB"}, visited)

	got, err := store.Find(ctx, "TST-2024-BBBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.BatteryLevel)

	got.BatteryLevel = 1
	again, err := store.Find(ctx, "TST-2024-BBBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, 50.0, again.BatteryLevel, "returned dashboards are copies")
}
