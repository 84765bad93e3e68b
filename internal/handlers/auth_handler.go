package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/auth"
	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/middleware"
	"github.com/balkashynov/punchd/internal/presence"
)

// AuthHandler owns the two explicit session-lifecycle points: login opens an
// attendance interval, logout closes it.
type AuthHandler struct {
	DB     *gorm.DB
	Svc    *presence.Service
	Secret string
}

func NewAuthHandler(gdb *gorm.DB, svc *presence.Service, secret string) *AuthHandler {
	return &AuthHandler{DB: gdb, Svc: svc, Secret: secret}
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login validates credentials, issues a token and fires the automatic
// check-in. Attendance or tracking trouble never turns a valid credential
// check into a failed login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "detail": err.Error()})
		return
	}
	req.Login = strings.ToLower(strings.TrimSpace(req.Login))

	dir := db.NewDirectoryStore(h.DB)
	identity, err := dir.IdentityByLogin(req.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if identity == nil || !auth.CheckPassword(identity.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	signed, sessionToken, err := auth.IssueToken(h.Secret, identity.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	// Credentials are good; from here on the login succeeds no matter what
	// the attendance side does.
	ctx := c.Request.Context()
	h.Svc.RecordHeartbeat(ctx, identity.ID, sessionToken)
	h.Svc.OnAuthenticated(ctx, identity.ID, sessionToken)

	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_in": int(auth.TokenTTL.Seconds()),
	})
}

// Logout closes the open attendance interval and deactivates the liveness
// trackers before the client discards its token. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.OnLogout(c.Request.Context(), middleware.IdentityID(c))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
