package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/service"
	"github.com/newsdesk/internal/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	articles *service.ArticleService
	auth     *service.AuthService
	intake   *service.IntakeService
	feed     *service.FeedService
	uploads  *storage.UploadStore
	log      zerolog.Logger
	siteName string
}

// Options configures NewAPI.
type Options struct {
	SiteName    string
	SiteBaseURL string
	Logger      zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploads *storage.UploadStore, opts Options) *API {
	siteName := opts.SiteName
	if siteName == "" {
		siteName = "Newsdesk"
	}

	articles := service.NewArticleService(gdb, uploads)

	return &API{
		db:       gdb,
		articles: articles,
		auth:     service.NewAuthService(gdb),
		intake:   service.NewIntakeService(gdb),
		feed:     service.NewFeedService(articles, siteName, opts.SiteBaseURL),
		uploads:  uploads,
		log:      opts.Logger,
		siteName: siteName,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// renderHTML 在向模板渲染时自动附加站点名称与当前会话信息。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["isAdmin"]; !exists {
		payload["isAdmin"] = loadAdminSession(c).IsAdmin()
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

// renderPublic adds the sidebar bundle every public page shows.
func (a *API) renderPublic(c *gin.Context, status int, template string, data gin.H) {
	sidebar, err := a.articles.Sidebar()
	if err != nil {
		a.serverError(c, "load sidebar", err)
		return
	}

	payload := gin.H{"sidebar": sidebar}
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, status, template, payload)
}

func (a *API) renderError(c *gin.Context, status int, message string) {
	a.renderHTML(c, status, "error.html", gin.H{
		"title":   http.StatusText(status),
		"status":  status,
		"message": message,
	})
}

func (a *API) serverError(c *gin.Context, action string, err error) {
	a.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(action + " failed")
	c.Error(err)
	a.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
