package models

import (
	"time"
)

// Identity is an authenticated principal. It may or may not be linked to an
// employee record; tracking works either way, attendance only with a link.
type Identity struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Login        string `gorm:"uniqueIndex;not null" json:"login"`
	PasswordHash string `gorm:"not null" json:"-"`
	System       bool   `gorm:"default:false" json:"system"` // reserved principals, never checked out by the sweeper

	Employee *Employee `gorm:"foreignKey:IdentityID" json:"employee,omitempty"`
}

// Employee is a directory entity with a weekly work schedule.
type Employee struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string `gorm:"not null" json:"name"`
	IdentityID *uint  `gorm:"index" json:"identity_id"`
	Active     bool   `gorm:"default:true" json:"active"`

	Schedule []ScheduleLine `gorm:"foreignKey:EmployeeID" json:"schedule,omitempty"`
}

// Schedule periods. Lateness is only computed against morning lines.
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
)

// ScheduleLine is one line of an employee's weekly calendar. StartHour is a
// fractional hour: 9.5 = 9:30, 9.25 = 9:15.
type ScheduleLine struct {
	ID         uint         `gorm:"primarykey" json:"id"`
	EmployeeID uint         `gorm:"index;not null" json:"employee_id"`
	Weekday    time.Weekday `gorm:"not null" json:"weekday"`
	Period     string       `gorm:"not null;default:morning" json:"period"`
	StartHour  float64      `gorm:"not null" json:"start_hour"`
}
