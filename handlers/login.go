package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/config"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"

	"github.com/gin-gonic/gin"
)

// LoginHandler serves the portal session endpoints.
type LoginHandler struct {
	auth     portal.AuthService
	sessions portal.SessionStore
}

func NewLoginHandler(auth portal.AuthService, sessions portal.SessionStore) *LoginHandler {
	return &LoginHandler{auth: auth, sessions: sessions}
}

type loginRequest struct {
	UserID    string `json:"userId"`
	Password  string `json:"password"`
	Code      string `json:"code"`
	AutoLogin bool   `json:"autoLogin"`
}

// LoginHandler submits credentials with or without a verification code, or
// runs the automatic path that pulls the code from the mailbox.
func (h *LoginHandler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The portal account usually lives in config; request credentials
	// override it for operational use.
	creds := portal.Credentials{UserID: req.UserID, Password: req.Password}
	if creds.UserID == "" {
		creds.UserID = config.AppConfig.PortalUserID
		creds.Password = config.AppConfig.PortalPassword
	}

	var (
		result *portal.LoginResult
		err    error
	)
	if req.AutoLogin {
		result, err = h.auth.AutoLogin(c.Request.Context(), creds)
	} else {
		result, err = h.auth.Login(c.Request.Context(), creds, req.Code)
	}
	if err != nil {
		respondPortalError(c, err)
		return
	}
	if result.NeedsVerification {
		c.JSON(http.StatusOK, gin.H{"success": false, "needsVerification": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "expiresAt": result.Session.ExpiresAt})
}

// SessionStatusHandler reports whether a valid portal session is held.
func (h *LoginHandler) SessionStatusHandler(c *gin.Context) {
	resp := gin.H{"isValid": h.sessions.IsValid()}
	if session := h.sessions.Current(); session != nil {
		resp["expiresAt"] = session.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler drops the in-memory session.
func (h *LoginHandler) LogoutHandler(c *gin.Context) {
	h.sessions.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
