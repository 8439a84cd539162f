package sounding

import (
	"math"
	"slices"
)

// BucketKey is the whole-second floor of a sample timestamp. It is the unit
// of temporal alignment across channels.
type BucketKey int64

func bucketOf(timestamp float64) BucketKey {
	return BucketKey(math.Floor(timestamp))
}

// masterIndex returns the sorted set of distinct bucket keys present in the
// position channel. The master index defines the output table rows; every
// other channel aligns to it.
func masterIndex(positions []PositionSample) []BucketKey {
	seen := make(map[BucketKey]struct{}, len(positions))
	keys := make([]BucketKey, 0, len(positions))
	for _, s := range positions {
		key := bucketOf(s.Timestamp)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	slices.Sort(keys)
	return keys
}
