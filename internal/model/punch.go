package model

import "time"

// PunchType is the direction of a punch event.
type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// Valid reports whether t is "in" or "out".
func (t PunchType) Valid() bool {
	return t == PunchIn || t == PunchOut
}

// MaxNoteLength is the longest free-text note a punch may carry.
const MaxNoteLength = 255

// Punch is a single clock-in or clock-out event.
//
// There is no duration column: hours are always derived at read time by
// pairing consecutive in/out events (see package hours).
//
// UserName and UserEmail are copied from the user's profile when the punch
// is created, so reports show who the person was at punch time even if the
// profile changes later.
type Punch struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	BoardID   string    `json:"boardId"   db:"board_id"`
	UserName  string    `json:"userName"  db:"user_name"`
	UserEmail string    `json:"userEmail" db:"user_email"`
	Type      PunchType `json:"type"      db:"type"`
	Timestamp time.Time `json:"timestamp" db:"punched_at"`
	Note      string    `json:"note"      db:"note"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PunchStatus is the derived clock state of one user on one board.
type PunchStatus struct {
	IsClockedIn bool   `json:"isClockedIn"`
	LastPunch   *Punch `json:"lastPunch"`
}
