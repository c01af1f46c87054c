package model

import (
	"time"

	"github.com/google/uuid"
)

type PresenceState string

const (
	PresenceOnline  PresenceState = "online"
	PresenceOffline PresenceState = "offline"
)

// Presence is ephemeral per-user state held in the realtime store, never in
// the users table. A lease with TTL backs the online state: a missed
// heartbeat window flips the user offline without any explicit disconnect.
type Presence struct {
	UserID      uuid.UUID     `json:"user_id"`
	State       PresenceState `json:"state"`
	LastChanged time.Time     `json:"last_changed"`
}
