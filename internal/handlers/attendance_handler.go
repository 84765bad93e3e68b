package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/middleware"
	"github.com/balkashynov/punchd/internal/presence"
)

// AttendanceHandler exposes read access to attendance data and an explicit
// heartbeat endpoint for thin clients that poll instead of making regular
// API calls.
type AttendanceHandler struct {
	DB  *gorm.DB
	Svc *presence.Service
}

func NewAttendanceHandler(gdb *gorm.DB, svc *presence.Service) *AttendanceHandler {
	return &AttendanceHandler{DB: gdb, Svc: svc}
}

// ListOwn returns the calling identity's attendance intervals, newest first.
func (h *AttendanceHandler) ListOwn(c *gin.Context) {
	dir := db.NewDirectoryStore(h.DB)
	emp, err := dir.EmployeeByIdentity(middleware.IdentityID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if emp == nil {
		c.JSON(http.StatusOK, gin.H{"attendances": []any{}})
		return
	}

	atts, err := db.NewAttendanceStore(h.DB).ListForEmployee(emp.ID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendances": atts})
}

// ListTrackers returns all active liveness trackers, for observability.
func (h *AttendanceHandler) ListTrackers(c *gin.Context) {
	trackers, err := db.NewTrackerStore(h.DB).ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trackers": trackers})
}

// Heartbeat records an explicit keep-alive. The middleware already recorded
// one for this request; the extra call is harmless (it just bumps the same
// row) and gives clients a dedicated liveness endpoint.
func (h *AttendanceHandler) Heartbeat(c *gin.Context) {
	res := h.Svc.RecordHeartbeat(c.Request.Context(), middleware.IdentityID(c), middleware.SessionToken(c))
	c.JSON(http.StatusOK, gin.H{"tracked": res.Tracked})
}
