package domain

// PlaybackStatus represents the playback status of a room's video.
type PlaybackStatus string

const (
	PlaybackPlaying PlaybackStatus = "playing"
	PlaybackPaused  PlaybackStatus = "paused"
)

// PlaybackState is the stored playback snapshot for a room. Time is stored in
// whole seconds at write time; while playing, the true position is derived by
// adding the wall-clock delta since UpdatedAt. The stored time is never
// actively incremented.
type PlaybackState struct {
	RoomID      string         `json:"roomId"`
	Status      PlaybackStatus `json:"status"`
	TimeSeconds int64          `json:"timeSeconds"`
	UpdatedAt   int64          `json:"updatedAt"` // epoch millis
}

// IsPlaying reports whether the snapshot is in the playing state.
func (s *PlaybackState) IsPlaying() bool {
	return s.Status == PlaybackPlaying
}
