package domain

// RoomPresenceInfo is the live membership snapshot served over HTTP.
type RoomPresenceInfo struct {
	RoomID           string   `json:"roomId"`
	ParticipantCount int      `json:"participantCount"`
	MemberUserIDs    []string `json:"memberUserIds"`
}

// PlaybackInfo pairs a stored playback snapshot with the extrapolated
// position at read time.
type PlaybackInfo struct {
	State    *PlaybackState `json:"state"`
	Position float64        `json:"position"`
}
