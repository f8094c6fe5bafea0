package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/service"
)

// ShowLoginPage 渲染登录页面；已登录的管理员直接进入后台。
func (a *API) ShowLoginPage(c *gin.Context) {
	if loadAdminSession(c).IsAdmin() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{
		"title": "Admin Login",
	})
}

// Login 处理管理员登录请求
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	admin, err := a.auth.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			a.serverError(c, "authenticate", err)
			return
		}
		a.log.Info().Str("username", username).Msg("admin login rejected")
		a.renderHTML(c, http.StatusUnauthorized, "admin_login.html", gin.H{
			"title":    "Admin Login",
			"error":    "Invalid username or password.",
			"username": username,
		})
		return
	}

	if err := saveAdminSession(c, AdminSession{Role: RoleAdmin, Username: admin.Username}); err != nil {
		a.serverError(c, "save session", err)
		return
	}

	a.log.Info().Str("username", admin.Username).Msg("admin logged in")
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout 清空整个会话并回到首页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/")
}

// ShowDashboard lists every article for the administrator.
func (a *API) ShowDashboard(c *gin.Context, admin AdminSession) {
	articles, err := a.articles.ListAll()
	if err != nil {
		a.serverError(c, "list articles", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":    "Dashboard",
		"username": admin.Username,
		"articles": articles,
	})
}
