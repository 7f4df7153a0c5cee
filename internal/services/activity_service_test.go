package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityFeedKeepsLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < maxActivities+5; i++ {
		require.NoError(t, f.activities.LogActivity(ctx, "column", fmt.Sprintf("entry %d", i)))
		f.clock.Advance(time.Second)
	}

	all, err := f.activities.GetRecentActivities(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, maxActivities)
	assert.Equal(t, fmt.Sprintf("entry %d", maxActivities+4), all[0].Message)
	assert.Equal(t, "entry 5", all[len(all)-1].Message)

	recent, err := f.activities.GetRecentActivities(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
	assert.Greater(t, recent[0].Timestamp, recent[1].Timestamp)
}
