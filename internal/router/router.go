package router

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/handler"
	"github.com/newsdesk/internal/storage"
	"github.com/newsdesk/web"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const sessionCookieName = "newsdesk_session"

// Options 汇总构建路由所需的依赖。
type Options struct {
	DB            *gorm.DB
	SessionSecret string
	UploadDir     string
	UploadURLPath string
	MaxUploadSize int64
	SiteName      string
	SiteBaseURL   string
	Logger        zerolog.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))

	// 分类名可能含有 "/"，按原始路径匹配后再解码参数
	r.UseRawPath = true
	r.UnescapePathValues = true

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret(opts)))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))

	r.SetHTMLTemplate(loadTemplates())

	uploadURLPath := opts.UploadURLPath
	if uploadURLPath == "" {
		uploadURLPath = "/uploads/news"
	}
	uploads := storage.NewUploadStore(opts.UploadDir, opts.MaxUploadSize)
	r.Static(uploadURLPath, uploads.Dir())

	api := handler.NewAPI(opts.DB, uploads, handler.Options{
		SiteName:    opts.SiteName,
		SiteBaseURL: opts.SiteBaseURL,
		Logger:      opts.Logger,
	})

	// 前台路由
	r.GET("/", api.ShowHome)
	r.GET("/about", api.ShowAbout)
	r.GET("/category/:category", api.ShowCategory)
	r.GET("/news/:id", api.ShowArticle)
	r.GET("/videos", api.ShowVideos)
	r.GET("/contact", api.ShowContact)
	r.POST("/contact", api.SubmitContact)
	r.POST("/subscribe", api.Subscribe)
	r.GET("/feed.xml", api.ShowFeed)
	r.GET("/healthz", api.Healthz)

	// 后台管理路由
	r.GET("/admin", api.ShowLoginPage)
	r.POST("/admin", api.Login)
	r.GET("/logout", api.Logout)

	r.GET("/dashboard", api.WithAdmin(api.ShowDashboard))
	r.GET("/add-news", api.WithAdmin(api.ShowAddNews))
	r.POST("/add-news", api.WithAdmin(api.CreateNews))
	r.GET("/edit-news/:id", api.WithAdmin(api.ShowEditNews))
	r.POST("/edit-news/:id", api.WithAdmin(api.UpdateNews))
	r.GET("/delete-news/:id", api.WithAdmin(api.ShowDeleteConfirm))
	r.POST("/delete-news/:id", api.WithAdmin(api.DeleteNews))

	return r
}

// sessionSecret falls back to the development key and warns when a release
// build is signing cookies with it.
func sessionSecret(opts Options) string {
	secret := opts.SessionSecret
	if secret == "" {
		secret = config.DevSessionSecret
	}
	if secret == config.DevSessionSecret && gin.Mode() == gin.ReleaseMode {
		opts.Logger.Warn().Msg("SESSION_SECRET is the built-in development key; admin sessions can be forged")
	}
	return secret
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "template/*.html"))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"pathEscape": url.PathEscape,
		"pages": func(total int) []int {
			pages := make([]int, 0, total)
			for i := 1; i <= total; i++ {
				pages = append(pages, i)
			}
			return pages
		},
		"excerpt": func(content string, limit int) string {
			collapsed := strings.Join(strings.Fields(content), " ")
			if utf8.RuneCountInString(collapsed) <= limit {
				return collapsed
			}
			return string([]rune(collapsed)[:limit]) + "…"
		},
	}
}
