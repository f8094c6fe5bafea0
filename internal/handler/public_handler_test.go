package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
)

func seedHandlerArticles(t *testing.T, env *handlerEnv, count int, category string) {
	t.Helper()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		article := db.Article{
			Title:     fmt.Sprintf("%s story %d", category, i+1),
			Content:   "Body of the story.",
			Category:  category,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := env.db.Create(&article).Error; err != nil {
			t.Fatalf("seed article: %v", err)
		}
	}
}

func TestShowHomePaginatesByNine(t *testing.T) {
	env := newHandlerEnv(t)
	seedHandlerArticles(t, env, 10, "news")

	rec := env.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.html.last.name != "index.html" {
		t.Fatalf("expected index template, got %q", env.html.last.name)
	}
	data := env.html.lastData(t)
	articles := data["articles"].([]db.Article)
	if len(articles) != service.HomePageSize {
		t.Fatalf("expected %d articles, got %d", service.HomePageSize, len(articles))
	}
	if articles[0].Title != "news story 10" {
		t.Fatalf("expected newest first, got %q", articles[0].Title)
	}
	if data["totalPages"] != 2 {
		t.Fatalf("expected 2 pages, got %v", data["totalPages"])
	}
	if _, ok := data["sidebar"].(service.Sidebar); !ok {
		t.Fatalf("expected sidebar bundle, got %T", data["sidebar"])
	}

	env.get("/?page=2")
	if got := len(env.html.lastData(t)["articles"].([]db.Article)); got != 1 {
		t.Fatalf("expected 1 article on page 2, got %d", got)
	}
}

func TestShowHomeClampsInvalidPage(t *testing.T) {
	env := newHandlerEnv(t)
	seedHandlerArticles(t, env, 3, "news")

	for _, query := range []string{"?page=0", "?page=-4", "?page=abc"} {
		rec := env.get("/" + query)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", query, rec.Code)
		}
		if page := env.html.lastData(t)["page"]; page != 1 {
			t.Fatalf("%s: expected page 1, got %v", query, page)
		}
	}
}

func TestShowHomeEmpty(t *testing.T) {
	env := newHandlerEnv(t)

	env.get("/")
	data := env.html.lastData(t)
	if got := len(data["articles"].([]db.Article)); got != 0 {
		t.Fatalf("expected no articles, got %d", got)
	}
	if data["totalPages"] != 0 {
		t.Fatalf("expected 0 pages, got %v", data["totalPages"])
	}
}

func TestShowCategoryPaginatesBySix(t *testing.T) {
	env := newHandlerEnv(t)
	seedHandlerArticles(t, env, 7, "sports")
	seedHandlerArticles(t, env, 2, "politics")

	env.get("/category/sports")
	data := env.html.lastData(t)
	articles := data["articles"].([]db.Article)
	if len(articles) != service.CategoryPageSize {
		t.Fatalf("expected %d articles, got %d", service.CategoryPageSize, len(articles))
	}
	for _, a := range articles {
		if a.Category != "sports" {
			t.Fatalf("unexpected category %q", a.Category)
		}
	}
	if data["currentCategory"] != "sports" || data["totalPages"] != 2 {
		t.Fatalf("unexpected listing data: %v", data)
	}
}

func TestShowCategoryRejectsBlankName(t *testing.T) {
	env := newHandlerEnv(t)
	seedHandlerArticles(t, env, 2, "news")

	rec := env.get("/category/%20%20")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.html.last.name != "error.html" {
		t.Fatalf("expected error template, got %q", env.html.last.name)
	}
}

func TestShowArticleRendersSanitizedMarkdown(t *testing.T) {
	env := newHandlerEnv(t)
	article := db.Article{
		Title:    "Markdown",
		Content:  "**bold** <script>alert(1)</script>",
		Category: "news",
	}
	if err := env.db.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	rec := env.get("/news/" + uintToString(article.ID))
	if rec.Code != http.StatusOK || env.html.last.name != "single.html" {
		t.Fatalf("expected single page, got %d", rec.Code)
	}
	content := fmt.Sprint(env.html.lastData(t)["content"])
	if !strings.Contains(content, "<strong>bold</strong>") {
		t.Fatalf("expected rendered markdown, got %q", content)
	}
	if strings.Contains(content, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", content)
	}
}

func TestShowArticleNotFound(t *testing.T) {
	env := newHandlerEnv(t)

	for _, path := range []string{"/news/999", "/news/abc"} {
		rec := env.get(path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
		if env.html.last.name != "error.html" {
			t.Fatalf("%s: expected error template, got %q", path, env.html.last.name)
		}
	}
}

func TestShowVideosListsLatestThree(t *testing.T) {
	env := newHandlerEnv(t)
	for i := 0; i < 4; i++ {
		article := db.Article{
			Title:    fmt.Sprintf("clip %d", i),
			Content:  "body",
			Category: "video",
			Video:    "https://www.youtube.com/embed/id" + fmt.Sprint(i),
		}
		if err := env.db.Create(&article).Error; err != nil {
			t.Fatalf("seed article: %v", err)
		}
	}

	env.get("/videos")
	videos := env.html.lastData(t)["videos"].([]db.Article)
	if len(videos) != service.VideoLimit {
		t.Fatalf("expected %d videos, got %d", service.VideoLimit, len(videos))
	}
	if videos[0].Title != "clip 3" {
		t.Fatalf("expected newest video first, got %q", videos[0].Title)
	}
}

func TestShowFeed(t *testing.T) {
	env := newHandlerEnv(t)
	seedHandlerArticles(t, env, 2, "news")

	rec := env.get("/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "news story 2") {
		t.Fatalf("expected feed to list articles, got %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.get("/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("expected healthy response, got %d %s", rec.Code, rec.Body.String())
	}
}
