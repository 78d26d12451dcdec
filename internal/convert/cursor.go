package convert

import (
	"fmt"

	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// ValidateRange checks the client-supplied window parameters before any
// expensive work happens.
func ValidateRange(startIndex, batchSize int) error {
	if startIndex < 0 {
		return fmt.Errorf("%w: start_index %d must be non-negative", shared.ErrInvalidRange, startIndex)
	}
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch_size %d must be positive", shared.ErrInvalidRange, batchSize)
	}
	return nil
}

// NewBatchCursor computes the [start, end) window for a playlist of total
// tracks. A start index at or past the end yields an empty window, which is
// a valid terminal state, not an error.
//
// The returned cursor always satisfies 0 <= Start <= End <= Total and
// HasMore == (End < Total).
func NewBatchCursor(startIndex, batchSize, total int) models.BatchCursor {
	start := startIndex
	if start > total {
		start = total
	}

	end := start + batchSize
	if end > total {
		end = total
	}

	return models.BatchCursor{
		Start:   start,
		End:     end,
		Total:   total,
		HasMore: end < total,
	}
}
