package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSessionMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		headers    map[string]string
		query      string
		wantStatus int
		wantUser   SessionUser
	}{
		{
			name:       "missing user id",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "defaults role and name",
			headers:    map[string]string{HeaderUserID: "u1"},
			wantStatus: http.StatusOK,
			wantUser:   SessionUser{ID: "u1", Name: "u1", Role: "student"},
		},
		{
			name:       "teacher from headers",
			headers:    map[string]string{HeaderUserID: "t1", HeaderUserRole: "Teacher", HeaderUserName: "Ms. Rao"},
			wantStatus: http.StatusOK,
			wantUser:   SessionUser{ID: "t1", Name: "Ms. Rao", Role: "teacher"},
		},
		{
			name:       "invalid role",
			headers:    map[string]string{HeaderUserID: "u1", HeaderUserRole: "admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "query fallback",
			query:      "?user_id=u2&role=student",
			wantStatus: http.StatusOK,
			wantUser:   SessionUser{ID: "u2", Name: "u2", Role: "student"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *SessionUser
			router := gin.New()
			router.Use(NewSessionAuth("student").SessionMiddleware())
			router.GET("/", func(c *gin.Context) {
				got, _ = FromContext(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				if assert.NotNil(t, got) {
					assert.Equal(t, tt.wantUser, *got)
				}
			}
		})
	}
}
