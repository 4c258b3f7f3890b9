package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
	"github.com/SAP-F-2025/thesis-review-portal/internal/utils"
)

const (
	sessionContextKey = "session"

	// One year; credentials live until an explicit logout.
	sessionCookieMaxAge = 365 * 24 * 60 * 60
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware loads the credentials of the browser identified by the
// session cookie, issuing a fresh id to browsers without a valid one.
func SessionMiddleware(sessions *session.Manager, cookie CookieConfig, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookie.Name)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, sid, sessionCookieMaxAge, "/", "", cookie.Secure, true)

		sess, err := sessions.Load(c.Request.Context(), sid)
		if err != nil {
			utils.GetLogger(c, logger).Error("Failed to load session", "error", err)
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, internalErrorMessage)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// GetSession returns the session SessionMiddleware attached. Routes outside
// the middleware get an anonymous session.
func GetSession(c *gin.Context) *session.Session {
	if value, ok := c.Get(sessionContextKey); ok {
		if sess, ok := value.(*session.Session); ok {
			return sess
		}
	}
	return &session.Session{}
}

func validSessionID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}
