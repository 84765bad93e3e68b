package models

import (
	"time"
)

// UnknownSessionToken is stored when the auth collaborator could not supply a
// session token for a heartbeat.
const UnknownSessionToken = "unknown"

// SessionTracker is the liveness record for one identity. One row per
// identity is active at a time; every authenticated request bumps
// LastActivity, and the sweeper closes the linked attendance once the row
// goes silent past the inactivity threshold.
type SessionTracker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IdentityID   uint      `gorm:"index:idx_tracker_identity_active,priority:1;not null" json:"identity_id"`
	SessionToken string    `gorm:"index;default:unknown" json:"session_token"`
	LastActivity time.Time `gorm:"index:idx_tracker_active_seen,priority:2;not null" json:"last_activity"`
	LoginTime    time.Time `gorm:"not null" json:"login_time"`
	Active       bool      `gorm:"index:idx_tracker_identity_active,priority:2;index:idx_tracker_active_seen,priority:1;default:true" json:"active"`
	AttendanceID *uint     `json:"attendance_id"`

	Identity   Identity    `gorm:"foreignKey:IdentityID" json:"identity"`
	Attendance *Attendance `gorm:"foreignKey:AttendanceID" json:"attendance,omitempty"`
}

// IdleFor returns how long the tracker has been silent.
func (t *SessionTracker) IdleFor(now time.Time) time.Duration {
	return now.Sub(t.LastActivity)
}
