package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/models"
)

// AttendanceStore is the durable log of attendance intervals. It is a thin
// wrapper over a gorm handle so the same store works inside and outside a
// transaction.
type AttendanceStore struct {
	db *gorm.DB
}

func NewAttendanceStore(gdb *gorm.DB) *AttendanceStore {
	return &AttendanceStore{db: gdb}
}

// FindOpen returns the newest open interval for the employee, or nil when
// the employee is fully checked out.
func (s *AttendanceStore) FindOpen(employeeID uint) (*models.Attendance, error) {
	var att models.Attendance
	err := s.db.
		Where("employee_id = ? AND check_out IS NULL", employeeID).
		Order("check_in DESC").
		First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// OpenInterval creates a new open interval starting at start.
func (s *AttendanceStore) OpenInterval(employeeID uint, start time.Time) (*models.Attendance, error) {
	att := models.Attendance{
		EmployeeID: employeeID,
		CheckIn:    start,
	}
	if err := s.db.Create(&att).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

// CloseInterval sets the check-out on an interval. Closing an already closed
// interval is an error; the caller is expected to hold the open row.
func (s *AttendanceStore) CloseInterval(id uint, end time.Time) error {
	res := s.db.Model(&models.Attendance{}).
		Where("id = ? AND check_out IS NULL", id).
		Update("check_out", end)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("attendance #%d is not open", id)
	}
	return nil
}

// SetLateMinutes records the lateness on an interval. It is written at most
// once, at check-in time.
func (s *AttendanceStore) SetLateMinutes(id uint, minutes float64) error {
	return s.db.Model(&models.Attendance{}).
		Where("id = ?", id).
		Update("late_minutes", minutes).Error
}

// ListForEmployee returns the employee's intervals, newest first.
func (s *AttendanceStore) ListForEmployee(employeeID uint, limit int) ([]models.Attendance, error) {
	var atts []models.Attendance
	q := s.db.Where("employee_id = ?", employeeID).Order("check_in DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&atts).Error; err != nil {
		return nil, err
	}
	return atts, nil
}
