package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")
)

// Key identifies synthesized audio. A change in any field means the audio
// must be synthesized again.
type Key struct {
	ItemID string
	Voice  string
	Speed  float64
}

// String returns a printable form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%s", k.ItemID, k.Voice, strconv.FormatFloat(k.Speed, 'f', 2, 64))
}

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of items in cache

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastEvict time.Time
}

// String summarizes usage, e.g. "3 entries, 1.2 MiB of 64 MiB, 50% hit rate".
func (s Stats) String() string {
	return fmt.Sprintf("%d entries, %s of %s, %.0f%% hit rate",
		s.ItemCount, humanize.IBytes(uint64(s.Size)), humanize.IBytes(uint64(s.Capacity)), s.HitRate*100) //nolint:gosec
}
