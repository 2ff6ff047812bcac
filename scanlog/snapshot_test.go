package scanlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func atHours(day time.Time, counts map[int]int) []ScanRecord {
	var out []ScanRecord
	for h, n := range counts {
		for i := 0; i < n; i++ {
			at := time.Date(day.Year(), day.Month(), day.Day(), h, i, 0, 0, day.Location())
			out = append(out, ScanRecord{ID: len(out) + 1, Date: at.UnixMilli()})
		}
	}
	return out
}

var snapDay = time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

func TestComputeSnapshot_SkipsHoursWithoutData(t *testing.T) {
	snap := ComputeSnapshot(atHours(snapDay, map[int]int{9: 3, 14: 5}), time.UTC)

	require.Equal(t, 5, snap.LastHourCapacity)
	require.Equal(t, 8, snap.TotalCapacity)
	require.InDelta(t, 4.0, snap.Speed, 1e-9)
	require.InDelta(t, 2.0/3.0, snap.Growth, 1e-9)
	require.Equal(t, []ChartPoint{{Time: "09:00", Capacity: 3}, {Time: "14:00", Capacity: 5}}, snap.ChartData)
}

func TestComputeSnapshot_Empty(t *testing.T) {
	snap := ComputeSnapshot(nil, time.UTC)
	require.Equal(t, Snapshot{ChartData: []ChartPoint{}}, snap)
}

func TestComputeSnapshot_SingleHourHasNoGrowth(t *testing.T) {
	snap := ComputeSnapshot(atHours(snapDay, map[int]int{0: 4}), time.UTC)
	require.Equal(t, 4, snap.LastHourCapacity)
	require.Equal(t, 0.0, snap.Growth)
	require.InDelta(t, 4.0, snap.Speed, 1e-9)
	require.Equal(t, []ChartPoint{{Time: "00:00", Capacity: 4}}, snap.ChartData)
}

func TestComputeSnapshot_GrowthSign(t *testing.T) {
	cases := []struct {
		prev, cur int
		sign      int
	}{
		{prev: 2, cur: 5, sign: 1},
		{prev: 5, cur: 5, sign: 0},
		{prev: 5, cur: 1, sign: -1},
	}
	for _, c := range cases {
		snap := ComputeSnapshot(atHours(snapDay, map[int]int{8: c.prev, 10: c.cur}), time.UTC)
		switch c.sign {
		case 1:
			require.Greater(t, snap.Growth, 0.0)
		case 0:
			require.Equal(t, 0.0, snap.Growth)
		case -1:
			require.Less(t, snap.Growth, 0.0)
		}
	}
}

func TestComputeSnapshot_HourZeroIsAPreviousHour(t *testing.T) {
	snap := ComputeSnapshot(atHours(snapDay, map[int]int{0: 2, 1: 3}), time.UTC)
	require.InDelta(t, 0.5, snap.Growth, 1e-9)
}

func TestHourBuckets_UsesLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	recs := []ScanRecord{{Date: time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC).UnixMilli()}}
	require.Equal(t, map[int]int{23: 1}, HourBuckets(recs, time.UTC))
	require.Equal(t, map[int]int{7: 1}, HourBuckets(recs, shanghai))
}
