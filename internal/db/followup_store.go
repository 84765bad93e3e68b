package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/models"
)

// FollowUpStore records notification tasks, e.g. the late-arrival follow-ups
// raised at check-in.
type FollowUpStore struct {
	db *gorm.DB
}

func NewFollowUpStore(gdb *gorm.DB) *FollowUpStore {
	return &FollowUpStore{db: gdb}
}

// Create inserts one follow-up task addressed to assignee.
func (s *FollowUpStore) Create(subject string, employeeID, assigneeID uint, note string, due time.Time) (*models.FollowUp, error) {
	fu := models.FollowUp{
		Subject:    subject,
		EmployeeID: employeeID,
		AssigneeID: assigneeID,
		Note:       note,
		DueDate:    due,
	}
	if err := s.db.Create(&fu).Error; err != nil {
		return nil, err
	}
	return &fu, nil
}

// ListForEmployee returns the follow-ups raised for an employee, newest
// first.
func (s *FollowUpStore) ListForEmployee(employeeID uint) ([]models.FollowUp, error) {
	var fus []models.FollowUp
	err := s.db.
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&fus).Error
	if err != nil {
		return nil, err
	}
	return fus, nil
}
