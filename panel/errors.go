package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/Syed-Amjad-Ali/Bergen-Bysykkel-2024-Data-and-Map-Analysis/models"
)

// EmptyInputError reports a grid or aggregation call with nothing to work on.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s", e.What)
}

// InvalidRangeError reports an inverted or non-hour-aligned analysis window.
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid hour range [%s, %s]: %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Reason)
}

// DuplicateKeyError reports panel keys that appear more than once.
type DuplicateKeyError struct {
	Keys []Slot
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, 0, len(e.Keys))
	for _, k := range e.Keys {
		parts = append(parts, fmt.Sprintf("(station=%d bucket=%s)", k.Station, k.Bucket.Format(time.RFC3339)))
	}
	return fmt.Sprintf("duplicate panel keys: %s", strings.Join(parts, ", "))
}

// GapOrOverlapError reports a station whose hourly sequence breaks: the
// row after Prev is Next instead of Prev+1h.
type GapOrOverlapError struct {
	Station models.StationKey
	Prev    time.Time
	Next    time.Time
}

func (e *GapOrOverlapError) Error() string {
	return fmt.Sprintf("station %d: expected bucket %s after %s, got %s",
		e.Station,
		e.Prev.Add(time.Hour).Format(time.RFC3339),
		e.Prev.Format(time.RFC3339),
		e.Next.Format(time.RFC3339))
}
