package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/newsdesk/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ShowHome renders the paginated home listing.
func (a *API) ShowHome(c *gin.Context) {
	a.showListing(c, "", service.HomePageSize)
}

// ShowCategory renders the listing filtered to one category.
func (a *API) ShowCategory(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		a.renderError(c, http.StatusNotFound, "Category not found.")
		return
	}
	a.showListing(c, category, service.CategoryPageSize)
}

func (a *API) showListing(c *gin.Context, category string, perPage int) {
	list, err := a.articles.List(service.ArticleFilter{
		Category: category,
		Page:     parsePage(c),
		PerPage:  perPage,
	})
	if err != nil {
		a.serverError(c, "list articles", err)
		return
	}

	title := "Home"
	if category != "" {
		title = category
	}

	a.renderPublic(c, http.StatusOK, "index.html", gin.H{
		"title":           title,
		"articles":        list.Articles,
		"page":            list.Page,
		"totalPages":      list.TotalPages,
		"total":           list.Total,
		"currentCategory": category,
		"subscribed":      c.Query("subscribed") == "1",
	})
}

// ShowArticle renders a single article with its markdown content.
func (a *API) ShowArticle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Article not found.")
		return
	}

	article, err := a.articles.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Article not found.")
			return
		}
		a.serverError(c, "load article", err)
		return
	}

	content, err := renderMarkdown(article.Content)
	if err != nil {
		a.serverError(c, "render article", err)
		return
	}

	a.renderPublic(c, http.StatusOK, "single.html", gin.H{
		"title":   article.Title,
		"article": article,
		"content": content,
	})
}

// ShowAbout renders the static about page.
func (a *API) ShowAbout(c *gin.Context) {
	a.renderPublic(c, http.StatusOK, "about.html", gin.H{
		"title": "About",
	})
}

// ShowVideos renders the latest articles carrying a video.
func (a *API) ShowVideos(c *gin.Context) {
	videos, err := a.articles.Videos(service.VideoLimit)
	if err != nil {
		a.serverError(c, "list videos", err)
		return
	}

	a.renderPublic(c, http.StatusOK, "videos.html", gin.H{
		"title":  "Videos",
		"videos": videos,
	})
}

// ShowFeed serves the RSS feed of the newest articles.
func (a *API) ShowFeed(c *gin.Context) {
	out, err := a.feed.Generate(service.FeedLimit)
	if err != nil {
		a.log.Error().Err(err).Msg("generate feed failed")
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", out)
}

// Healthz reports process and database liveness.
func (a *API) Healthz(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		a.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
