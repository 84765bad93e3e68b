package models

import (
	"time"
)

// Attendance is one arrival/departure interval for an employee. A nil
// CheckOut means the interval is still open. At most one interval per
// employee may be open at a time; the partial unique index in the db
// package enforces it.
type Attendance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EmployeeID  uint       `gorm:"index:idx_attendance_open,priority:1;not null" json:"employee_id"`
	CheckIn     time.Time  `gorm:"not null" json:"check_in"`
	CheckOut    *time.Time `gorm:"index:idx_attendance_open,priority:2" json:"check_out"`
	LateMinutes float64    `gorm:"default:0" json:"late_minutes"`

	Employee Employee `gorm:"foreignKey:EmployeeID" json:"employee"`
}

// Open reports whether the interval has no check-out yet.
func (a *Attendance) Open() bool {
	return a.CheckOut == nil
}

// Duration returns the worked span, using now for open intervals.
func (a *Attendance) Duration(now time.Time) time.Duration {
	if a.CheckOut != nil {
		return a.CheckOut.Sub(a.CheckIn)
	}
	return now.Sub(a.CheckIn)
}
