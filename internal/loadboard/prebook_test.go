package loadboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func central(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

func ts(t time.Time) *time.Time { return &t }

func TestIsPrebookNilPickup(t *testing.T) {
	require.False(t, IsPrebook(nil, time.Now()))
}

func TestIsPrebookPastAndSameDay(t *testing.T) {
	loc := central(t)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, loc)

	require.False(t, IsPrebook(ts(now.AddDate(0, 0, -1)), now), "yesterday is not pre-book")
	require.False(t, IsPrebook(ts(now.Add(4*time.Hour)), now), "same-day pickup is not pre-book")
}

func TestIsPrebookFuturePickup(t *testing.T) {
	loc := central(t)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, loc)
	pickup := time.Date(2025, 6, 5, 15, 0, 0, 0, loc)

	require.True(t, IsPrebook(ts(pickup), now))
}

func TestIsPrebookTomorrowEarlyPickupAfternoonCutoff(t *testing.T) {
	loc := central(t)
	earlyPickup := time.Date(2025, 6, 3, 8, 0, 0, 0, loc)
	latePickup := time.Date(2025, 6, 3, 10, 0, 0, 0, loc)

	morning := time.Date(2025, 6, 2, 11, 59, 0, 0, loc)
	afternoon := time.Date(2025, 6, 2, 12, 0, 0, 0, loc)

	require.True(t, IsPrebook(ts(earlyPickup), morning), "before noon the early pickup still counts")
	require.False(t, IsPrebook(ts(earlyPickup), afternoon), "after noon a before-9am pickup tomorrow is working inventory")
	require.True(t, IsPrebook(ts(latePickup), afternoon), "a 10am pickup tomorrow stays pre-book")
}

func TestIsPrebookComparesInCentralTime(t *testing.T) {
	loc := central(t)
	// 2025-06-03 02:00 UTC is still 2025-06-02 21:00 Central, i.e. today.
	pickup := time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, loc)

	require.False(t, IsPrebook(ts(pickup), now))
}
