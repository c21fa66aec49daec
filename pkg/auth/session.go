package auth

import (
	"net/http"
	"strings"

	"ecoroot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"

	ContextKey = "session_user"
)

var roles = map[string]bool{
	"student": true,
	"teacher": true,
}

type SessionUser struct {
	ID   string
	Name string
	Role string
}

// SessionAuth trusts the identity headers set by the fronting gateway.
// Websocket clients cannot set headers, so query parameters are accepted too.
type SessionAuth struct {
	defaultRole string
}

func NewSessionAuth(defaultRole string) *SessionAuth {
	if !roles[defaultRole] {
		defaultRole = "student"
	}
	return &SessionAuth{defaultRole: defaultRole}
}

func (s *SessionAuth) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		user, err := s.extract(c)
		if err != nil {
			log.Info("rejected session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextKey, user)
		c.Next()
	}
}

type sessionError string

func (e sessionError) Error() string { return string(e) }

const (
	errMissingUser sessionError = "user id is required"
	errInvalidRole sessionError = "invalid role"
)

func (s *SessionAuth) extract(c *gin.Context) (*SessionUser, error) {
	id := strings.TrimSpace(headerOrQuery(c, HeaderUserID, "user_id"))
	if id == "" {
		return nil, errMissingUser
	}

	role := strings.ToLower(strings.TrimSpace(headerOrQuery(c, HeaderUserRole, "role")))
	if role == "" {
		role = s.defaultRole
	}
	if !roles[role] {
		return nil, errInvalidRole
	}

	name := strings.TrimSpace(headerOrQuery(c, HeaderUserName, "name"))
	if name == "" {
		name = id
	}

	return &SessionUser{ID: id, Name: name, Role: role}, nil
}

func headerOrQuery(c *gin.Context, header, param string) string {
	if v := c.GetHeader(header); v != "" {
		return v
	}
	return c.Query(param)
}

// FromContext returns the session user set by SessionMiddleware.
func FromContext(c *gin.Context) (*SessionUser, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*SessionUser)
	return user, ok
}
