package service

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/newsdesk/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}

type fakeRemover struct {
	removed []string
	err     error
}

func (f *fakeRemover) Remove(name string) error {
	f.removed = append(f.removed, name)
	return f.err
}

func seedArticles(t *testing.T, svc *ArticleService, n int, category string) []*db.Article {
	t.Helper()
	created := make([]*db.Article, 0, n)
	for i := 0; i < n; i++ {
		article, err := svc.Create(ArticleInput{
			Title:    fmt.Sprintf("%s %d", category, i),
			Content:  "body",
			Category: category,
		})
		if err != nil {
			t.Fatalf("create article: %v", err)
		}
		created = append(created, article)
	}
	return created
}

func TestArticleService_ListPaginatesNewestFirst(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 20, "news")

	first, err := svc.List(ArticleFilter{Page: 1, PerPage: HomePageSize})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if first.Total != 20 {
		t.Fatalf("expected total 20, got %d", first.Total)
	}
	if first.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", first.TotalPages)
	}
	if len(first.Articles) != HomePageSize {
		t.Fatalf("expected %d rows, got %d", HomePageSize, len(first.Articles))
	}
	for i := 1; i < len(first.Articles); i++ {
		if first.Articles[i-1].ID <= first.Articles[i].ID {
			t.Fatalf("expected strictly descending ids, got %d then %d", first.Articles[i-1].ID, first.Articles[i].ID)
		}
	}

	last, err := svc.List(ArticleFilter{Page: 3, PerPage: HomePageSize})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(last.Articles) != 2 {
		t.Fatalf("expected 2 rows on last page, got %d", len(last.Articles))
	}
	if last.Articles[0].ID >= first.Articles[len(first.Articles)-1].ID {
		t.Fatal("expected later pages to hold older articles")
	}

	beyond, err := svc.List(ArticleFilter{Page: 9, PerPage: HomePageSize})
	if err != nil {
		t.Fatalf("list beyond last page: %v", err)
	}
	if len(beyond.Articles) != 0 {
		t.Fatalf("expected empty page beyond total, got %d rows", len(beyond.Articles))
	}
}

func TestArticleService_ListClampsPage(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 3, "news")

	list, err := svc.List(ArticleFilter{Page: -4})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", list.Page)
	}
	if list.PerPage != HomePageSize {
		t.Fatalf("expected default page size %d, got %d", HomePageSize, list.PerPage)
	}
	if len(list.Articles) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(list.Articles))
	}
}

func TestArticleService_ListBeyondLastPageIsEmpty(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 3, "news")

	for _, page := range []int{2, math.MaxInt/HomePageSize + 2, math.MaxInt} {
		list, err := svc.List(ArticleFilter{Page: page, PerPage: HomePageSize})
		if err != nil {
			t.Fatalf("page %d: list: %v", page, err)
		}
		if list.TotalPages != 1 {
			t.Fatalf("page %d: expected 1 total page, got %d", page, list.TotalPages)
		}
		if len(list.Articles) != 0 {
			t.Fatalf("page %d: expected no rows, got %d", page, len(list.Articles))
		}
		if list.Page != page {
			t.Fatalf("page %d: expected page to be echoed, got %d", page, list.Page)
		}
	}
}

func TestArticleService_ListEmptyHasZeroPages(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)

	list, err := svc.List(ArticleFilter{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 || list.TotalPages != 0 || len(list.Articles) != 0 {
		t.Fatalf("expected empty result, got %+v", list)
	}
}

func TestArticleService_ListFiltersByCategory(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 7, "sports")
	seedArticles(t, svc, 2, "politics")

	list, err := svc.List(ArticleFilter{Category: "sports", Page: 2, PerPage: CategoryPageSize})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 7 {
		t.Fatalf("expected 7 sports articles, got %d", list.Total)
	}
	if list.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", list.TotalPages)
	}
	if len(list.Articles) != 1 {
		t.Fatalf("expected 1 row on page 2, got %d", len(list.Articles))
	}
	if list.Articles[0].Category != "sports" {
		t.Fatalf("unexpected category %q", list.Articles[0].Category)
	}
}

func TestArticleService_CategoryCounts(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 1, "tech")
	seedArticles(t, svc, 4, "sports")
	seedArticles(t, svc, 2, "politics")

	counts, err := svc.CategoryCounts()
	if err != nil {
		t.Fatalf("category counts: %v", err)
	}

	want := []CategoryCount{{"sports", 4}, {"politics", 2}, {"tech", 1}}
	if len(counts) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(counts))
	}

	var sum int64
	for i, count := range counts {
		if count != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], count)
		}
		if i > 0 && counts[i-1].Total < count.Total {
			t.Fatal("expected non-increasing counts")
		}
		sum += count.Total
	}

	list, err := svc.List(ArticleFilter{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if sum != list.Total {
		t.Fatalf("expected category totals %d to equal article count %d", sum, list.Total)
	}
}

func TestArticleService_Sidebar(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	seedArticles(t, svc, 6, "news")

	breaking, err := svc.Create(ArticleInput{Title: "Alert", Content: "now", Category: "world", IsBreaking: true, Image: "a.png"})
	if err != nil {
		t.Fatalf("create breaking: %v", err)
	}

	sidebar, err := svc.Sidebar()
	if err != nil {
		t.Fatalf("sidebar: %v", err)
	}
	if len(sidebar.Recent) != RecentLimit {
		t.Fatalf("expected %d recent, got %d", RecentLimit, len(sidebar.Recent))
	}
	if sidebar.Recent[0].ID != breaking.ID || sidebar.Recent[0].Image != "a.png" {
		t.Fatalf("expected newest article first with image, got %+v", sidebar.Recent[0])
	}
	if sidebar.Recent[0].Content != "" {
		t.Fatal("expected recent rows to omit content")
	}
	if len(sidebar.Breaking) != 1 || sidebar.Breaking[0].Title != "Alert" {
		t.Fatalf("unexpected breaking list %+v", sidebar.Breaking)
	}
	if len(sidebar.Categories) != 2 || sidebar.Categories[0].Category != "news" {
		t.Fatalf("unexpected categories %+v", sidebar.Categories)
	}
}

func TestArticleService_CreateValidatesAndNormalizes(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)

	cases := []struct {
		input ArticleInput
		want  error
	}{
		{ArticleInput{Content: "c", Category: "x"}, ErrTitleRequired},
		{ArticleInput{Title: "t", Content: "  ", Category: "x"}, ErrContentRequired},
		{ArticleInput{Title: "t", Content: "c", Category: " "}, ErrCategoryRequired},
	}
	for _, tc := range cases {
		if _, err := svc.Create(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("expected %v, got %v", tc.want, err)
		}
	}

	article, err := svc.Create(ArticleInput{
		Title:    "  Clip  ",
		Content:  "watch this",
		Category: " video ",
		Video:    "https://youtu.be/abc123",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if article.Title != "Clip" || article.Category != "video" {
		t.Fatalf("expected trimmed fields, got %q / %q", article.Title, article.Category)
	}
	if article.Video != "https://www.youtube.com/embed/abc123" {
		t.Fatalf("expected normalized video, got %q", article.Video)
	}
}

func TestArticleService_UpdateKeepsImageUnlessReplaced(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)

	article, err := svc.Create(ArticleInput{Title: "t", Content: "c", Category: "a", Image: "old.png", ImageName: "old.png", IsBreaking: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(article.ID, ArticleInput{Title: "t2", Content: "c2", Category: "b"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Image != "old.png" {
		t.Fatalf("expected image preserved, got %q", updated.Image)
	}
	if updated.IsBreaking {
		t.Fatal("expected breaking flag to be overwritten")
	}

	replaced, err := svc.Update(article.ID, ArticleInput{Title: "t3", Content: "c3", Category: "b", Image: "new.png", ImageName: "cover.png"})
	if err != nil {
		t.Fatalf("update with image: %v", err)
	}
	if replaced.Image != "new.png" || replaced.ImageName != "cover.png" {
		t.Fatalf("expected image replaced, got %q / %q", replaced.Image, replaced.ImageName)
	}

	reloaded, err := svc.Get(article.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Title != "t3" || reloaded.Category != "b" {
		t.Fatalf("expected persisted update, got %+v", reloaded)
	}

	if _, err := svc.Update(article.ID+100, ArticleInput{Title: "t", Content: "c", Category: "a"}); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_DeleteRemovesImageBestEffort(t *testing.T) {
	remover := &fakeRemover{err: errors.New("disk gone")}
	svc := NewArticleService(setupServiceTestDB(t), remover)

	withImage, err := svc.Create(ArticleInput{Title: "t", Content: "c", Category: "a", Image: "pic.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Delete(withImage.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ImageErr == nil {
		t.Fatal("expected image error to be reported")
	}
	if len(remover.removed) != 1 || remover.removed[0] != "pic.png" {
		t.Fatalf("expected pic.png removal attempt, got %v", remover.removed)
	}
	if _, err := svc.Get(withImage.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected article to be gone, got %v", err)
	}

	noImage, err := svc.Create(ArticleInput{Title: "t", Content: "c", Category: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	result, err = svc.Delete(noImage.ID)
	if err != nil {
		t.Fatalf("delete without image: %v", err)
	}
	if result.ImageErr != nil || len(remover.removed) != 1 {
		t.Fatal("expected no removal attempt for article without image")
	}

	if _, err := svc.Delete(noImage.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound on second delete, got %v", err)
	}
}

func TestArticleService_Videos(t *testing.T) {
	svc := NewArticleService(setupServiceTestDB(t), nil)
	for i := 0; i < 5; i++ {
		video := ""
		if i%2 == 0 || i == 3 {
			video = fmt.Sprintf("https://youtu.be/v%d", i)
		}
		if _, err := svc.Create(ArticleInput{Title: "t", Content: "c", Category: "a", Video: video}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	videos, err := svc.Videos(VideoLimit)
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	if len(videos) != VideoLimit {
		t.Fatalf("expected %d videos, got %d", VideoLimit, len(videos))
	}
	want := []string{"v4", "v3", "v2"}
	for i, article := range videos {
		if article.Video != "https://www.youtube.com/embed/"+want[i] {
			t.Fatalf("row %d: unexpected video %q", i, article.Video)
		}
	}
}
