package models

import (
	"time"
)

// FollowUp is a notification task raised for an employee, e.g. a late
// arrival. AssigneeID is the identity the task is addressed to; for late
// arrivals one task goes to the employee and one to every member of the
// notification audience.
type FollowUp struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Subject    string    `gorm:"not null" json:"subject"`
	EmployeeID uint      `gorm:"index;not null" json:"employee_id"`
	AssigneeID uint      `gorm:"index;not null" json:"assignee_id"`
	Note       string    `json:"note"`
	DueDate    time.Time `json:"due_date"`

	Employee Employee `gorm:"foreignKey:EmployeeID" json:"employee"`
	Assignee Identity `gorm:"foreignKey:AssigneeID" json:"assignee"`
}
