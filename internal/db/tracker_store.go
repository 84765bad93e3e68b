package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/models"
)

// TrackerStore is the durable table of per-identity liveness records.
type TrackerStore struct {
	db *gorm.DB
}

func NewTrackerStore(gdb *gorm.DB) *TrackerStore {
	return &TrackerStore{db: gdb}
}

// FindActive returns the active tracker for an identity, narrowed to a
// session token when one is supplied. Returns nil when no tracker is active.
func (s *TrackerStore) FindActive(identityID uint, sessionToken string) (*models.SessionTracker, error) {
	q := s.db.Where("identity_id = ? AND active = ?", identityID, true)
	if sessionToken != "" && sessionToken != models.UnknownSessionToken {
		q = q.Where("session_token = ?", sessionToken)
	}
	var tracker models.SessionTracker
	err := q.Order("last_activity DESC").First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// Touch bumps the tracker's last activity.
func (s *TrackerStore) Touch(id uint, now time.Time) error {
	return s.db.Model(&models.SessionTracker{}).
		Where("id = ?", id).
		Update("last_activity", now).Error
}

// Adopt bumps a tracker's last activity and, when a concrete session token
// is supplied, re-keys the row to it. This is how a re-login without a
// logout takes over the still-active tracker instead of violating the
// one-active-per-identity index.
func (s *TrackerStore) Adopt(id uint, sessionToken string, now time.Time) error {
	updates := map[string]any{"last_activity": now}
	if sessionToken != "" && sessionToken != models.UnknownSessionToken {
		updates["session_token"] = sessionToken
	}
	return s.db.Model(&models.SessionTracker{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Create inserts a fresh active tracker for a first heartbeat.
func (s *TrackerStore) Create(identityID uint, sessionToken string, now time.Time) (*models.SessionTracker, error) {
	if sessionToken == "" {
		sessionToken = models.UnknownSessionToken
	}
	tracker := models.SessionTracker{
		IdentityID:   identityID,
		SessionToken: sessionToken,
		LastActivity: now,
		LoginTime:    now,
		Active:       true,
	}
	if err := s.db.Create(&tracker).Error; err != nil {
		return nil, err
	}
	return &tracker, nil
}

// LinkAttendance points a tracker at the attendance interval opened for its
// login.
func (s *TrackerStore) LinkAttendance(id uint, attendanceID uint) error {
	return s.db.Model(&models.SessionTracker{}).
		Where("id = ?", id).
		Update("attendance_id", attendanceID).Error
}

// Deactivate marks every active tracker for the identity inactive and
// returns how many rows were touched.
func (s *TrackerStore) Deactivate(identityID uint) (int64, error) {
	res := s.db.Model(&models.SessionTracker{}).
		Where("identity_id = ? AND active = ?", identityID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

// DeactivateOne marks a single tracker inactive, optionally linking the
// interval it closed.
func (s *TrackerStore) DeactivateOne(id uint, attendanceID *uint) error {
	updates := map[string]any{"active": false}
	if attendanceID != nil {
		updates["attendance_id"] = *attendanceID
	}
	return s.db.Model(&models.SessionTracker{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FindStale returns active trackers silent since before cutoff, identity
// preloaded for the sweeper.
func (s *TrackerStore) FindStale(cutoff time.Time) ([]models.SessionTracker, error) {
	var trackers []models.SessionTracker
	err := s.db.
		Where("active = ? AND last_activity < ?", true, cutoff).
		Preload("Identity").
		Order("last_activity ASC").
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

// Refresh re-reads a tracker row. The sweeper calls this inside its
// transaction so a heartbeat that landed after the scan is not thrown away.
func (s *TrackerStore) Refresh(id uint) (*models.SessionTracker, error) {
	var tracker models.SessionTracker
	err := s.db.First(&tracker, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

// PurgeOld deletes inactive trackers whose last activity is before cutoff.
// Active rows are never deleted, whatever their age.
func (s *TrackerStore) PurgeOld(cutoff time.Time) (int64, error) {
	res := s.db.
		Where("active = ? AND last_activity < ?", false, cutoff).
		Delete(&models.SessionTracker{})
	return res.RowsAffected, res.Error
}

// ListActive returns all active trackers, most recently seen first.
func (s *TrackerStore) ListActive() ([]models.SessionTracker, error) {
	var trackers []models.SessionTracker
	err := s.db.
		Where("active = ?", true).
		Preload("Identity").
		Order("last_activity DESC").
		Find(&trackers).Error
	if err != nil {
		return nil, err
	}
	return trackers, nil
}
