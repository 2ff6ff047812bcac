package scanlog

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

type ChartPoint struct {
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}

type Snapshot struct {
	Speed            float64      `json:"speed"`
	LastHourCapacity int          `json:"lastHourCapacity"`
	TotalCapacity    int          `json:"totalCapacity"`
	Growth           float64      `json:"growth"`
	ChartData        []ChartPoint `json:"charData"`
}

// HourBuckets counts records per local hour of day. Hours without records
// are absent from the map.
func HourBuckets(records []ScanRecord, loc *time.Location) map[int]int {
	if loc == nil {
		loc = time.Local
	}
	buckets := make(map[int]int)
	for _, r := range records {
		buckets[r.Time().In(loc).Hour()]++
	}
	return buckets
}

// ComputeSnapshot derives throughput figures from a partition's records.
// "Previous hour" is the second latest hour that has data, not hour-1.
func ComputeSnapshot(records []ScanRecord, loc *time.Location) Snapshot {
	buckets := HourBuckets(records, loc)
	snap := Snapshot{
		TotalCapacity: len(records),
		ChartData:     []ChartPoint{},
	}
	if len(buckets) == 0 {
		return snap
	}

	hours := make([]int, 0, len(buckets))
	counts := make([]float64, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		counts = append(counts, float64(buckets[h]))
		snap.ChartData = append(snap.ChartData, ChartPoint{
			Time:     fmt.Sprintf("%02d:00", h),
			Capacity: buckets[h],
		})
	}

	// mean of per-hour counts == total / distinct hours
	snap.Speed = stat.Mean(counts, nil)

	current := buckets[hours[len(hours)-1]]
	snap.LastHourCapacity = current
	if len(hours) > 1 {
		previous := buckets[hours[len(hours)-2]]
		denom := previous
		if denom == 0 {
			denom = 1
		}
		snap.Growth = float64(current-previous) / float64(denom)
	}
	return snap
}
