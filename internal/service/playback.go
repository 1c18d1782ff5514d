package service

import (
	"time"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

// ExtrapolatePosition returns the position in seconds a newly connecting
// client should seek to. While paused the stored time is the truth; while
// playing the wall-clock delta since the snapshot is added on read — the
// stored time itself is never incremented. Writes store whole seconds; only
// this derived read may carry a fractional part.
func ExtrapolatePosition(state *domain.PlaybackState, now time.Time) float64 {
	if state == nil {
		return 0
	}

	pos := float64(state.TimeSeconds)
	if state.Status == domain.PlaybackPlaying {
		elapsed := float64(now.UnixMilli()-state.UpdatedAt) / 1000.0
		if elapsed > 0 {
			pos += elapsed
		}
	}

	if pos < 0 {
		return 0
	}
	return pos
}
