package clockx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/clockx"
	"github.com/stretchr/testify/require"
)

func TestSystemReturnsUTC(t *testing.T) {
	now := clockx.System().Now()
	require.Equal(t, time.UTC, now.Location())
	require.WithinDuration(t, time.Now(), now, 5*time.Second)
}

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clockx.NewFake(start)

	require.Equal(t, start, clk.Now())

	clk.Advance(90 * time.Second)
	require.Equal(t, start.Add(90*time.Second), clk.Now())

	// Does not move on its own
	require.Equal(t, start.Add(90*time.Second), clk.Now())
}

func TestFakeSet(t *testing.T) {
	clk := clockx.NewFake(time.Unix(1700000000, 0))

	loc := time.FixedZone("AEST", 10*60*60)
	clk.Set(time.Date(2024, 3, 1, 22, 0, 0, 0, loc))

	got := clk.Now()
	require.Equal(t, time.UTC, got.Location())
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), got)
}
