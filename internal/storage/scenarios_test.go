package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	sess := createTestSession(t, store, "owner")
	other := createTestSession(t, store, "other")

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	_, err := store.SaveScenario(ctx, sess, model.Scenario{Name: " "})
	require.ErrorIs(t, err, common.ErrValidation)

	base, err := store.SaveScenario(ctx, sess, model.Scenario{
		Name:    "baseline",
		Summary: model.Summary{SurplusDeficit: 35_000_000, RemainingLife: 55},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, base.ID)

	_, err = store.SaveScenario(ctx, sess, model.Scenario{Name: "early retirement"})
	require.NoError(t, err)

	list, err := store.ListScenarios(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early retirement", list[0].Name)
	assert.InDelta(t, 35_000_000, list[1].Summary.SurplusDeficit, 0.001)
	assert.Equal(t, 55, list[1].Summary.RemainingLife)

	list, err = store.ListScenarios(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)
}
