package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Role is a capability claim stored in the session cookie.
type Role string

const RoleAdmin Role = "admin"

const (
	sessionKeyRole        = "role"
	sessionKeyUsername    = "username"
	sessionKeyDeleteToken = "delete_token"
)

// AdminSession is the authenticated view of the session cookie.
type AdminSession struct {
	Role     Role
	Username string
}

// IsAdmin reports whether the session carries the admin claim.
func (s AdminSession) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func loadAdminSession(c *gin.Context) AdminSession {
	session := sessions.Default(c)
	role, _ := session.Get(sessionKeyRole).(string)
	username, _ := session.Get(sessionKeyUsername).(string)
	return AdminSession{Role: Role(role), Username: username}
}

func saveAdminSession(c *gin.Context, admin AdminSession) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionKeyRole, string(admin.Role))
	session.Set(sessionKeyUsername, admin.Username)
	return session.Save()
}

// WithAdmin 是后台路由的认证包装：未登录时重定向到登录页，不执行任何写操作；
// 已登录时把会话显式传给处理函数。
func (a *API) WithAdmin(next func(*gin.Context, AdminSession)) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := loadAdminSession(c)
		if !admin.IsAdmin() {
			c.Redirect(http.StatusFound, "/admin")
			c.Abort()
			return
		}
		next(c, admin)
	}
}
