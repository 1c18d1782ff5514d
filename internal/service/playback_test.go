package service

import (
	"math"
	"testing"
	"time"

	"github.com/ekdbss/onairmate-sync/internal/domain"
)

func TestExtrapolatePosition(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state *domain.PlaybackState
		now   time.Time
		want  float64
	}{
		{
			name:  "nil state",
			state: nil,
			now:   base,
			want:  0,
		},
		{
			name: "paused returns stored time untouched",
			state: &domain.PlaybackState{
				Status:      domain.PlaybackPaused,
				TimeSeconds: 125,
				UpdatedAt:   base.Add(-10 * time.Minute).UnixMilli(),
			},
			now:  base,
			want: 125,
		},
		{
			name: "playing adds wall-clock delta",
			state: &domain.PlaybackState{
				Status:      domain.PlaybackPlaying,
				TimeSeconds: 100,
				UpdatedAt:   base.Add(-30 * time.Second).UnixMilli(),
			},
			now:  base,
			want: 130,
		},
		{
			name: "playing keeps fractional delta",
			state: &domain.PlaybackState{
				Status:      domain.PlaybackPlaying,
				TimeSeconds: 10,
				UpdatedAt:   base.Add(-2500 * time.Millisecond).UnixMilli(),
			},
			now:  base,
			want: 12.5,
		},
		{
			name: "clock skew before snapshot does not rewind",
			state: &domain.PlaybackState{
				Status:      domain.PlaybackPlaying,
				TimeSeconds: 40,
				UpdatedAt:   base.Add(5 * time.Second).UnixMilli(),
			},
			now:  base,
			want: 40,
		},
		{
			name: "zero delta returns stored time",
			state: &domain.PlaybackState{
				Status:      domain.PlaybackPlaying,
				TimeSeconds: 77,
				UpdatedAt:   base.UnixMilli(),
			},
			now:  base,
			want: 77,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtrapolatePosition(tt.state, tt.now)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("ExtrapolatePosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtrapolatePositionNeverNegative(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	state := &domain.PlaybackState{
		Status:      domain.PlaybackPaused,
		TimeSeconds: -5,
		UpdatedAt:   base.UnixMilli(),
	}
	if got := ExtrapolatePosition(state, base); got != 0 {
		t.Errorf("ExtrapolatePosition() = %v, want 0 for negative stored time", got)
	}
}
