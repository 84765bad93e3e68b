package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/models"
)

// DirectoryStore is the employee/identity directory this service consumes:
// identity lookup for login and the identity -> employee -> weekly schedule
// mapping for attendance.
type DirectoryStore struct {
	db *gorm.DB
}

func NewDirectoryStore(gdb *gorm.DB) *DirectoryStore {
	return &DirectoryStore{db: gdb}
}

// IdentityByLogin resolves a login name, or nil when unknown.
func (s *DirectoryStore) IdentityByLogin(login string) (*models.Identity, error) {
	var id models.Identity
	err := s.db.Where("login = ?", login).First(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// IdentityByID loads an identity row, or nil when it no longer exists.
func (s *DirectoryStore) IdentityByID(identityID uint) (*models.Identity, error) {
	var id models.Identity
	err := s.db.First(&id, identityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// EmployeeByIdentity returns the active employee linked to an identity, with
// the weekly schedule preloaded. Identities without an employee record are
// not an error; attendance simply does not apply to them.
func (s *DirectoryStore) EmployeeByIdentity(identityID uint) (*models.Employee, error) {
	var emp models.Employee
	err := s.db.
		Where("identity_id = ? AND active = ?", identityID, true).
		Preload("Schedule", func(gdb *gorm.DB) *gorm.DB {
			return gdb.Order("start_hour ASC, id ASC")
		}).
		First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// IdentitiesByLogins resolves the notification audience. Unknown logins are
// skipped silently.
func (s *DirectoryStore) IdentitiesByLogins(logins []string) ([]models.Identity, error) {
	if len(logins) == 0 {
		return nil, nil
	}
	var ids []models.Identity
	if err := s.db.Where("login IN ?", logins).Find(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
