package service

import (
	"errors"
	"strings"

	"github.com/newsdesk/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrContentRequired  = errors.New("content is required")
	ErrCategoryRequired = errors.New("category is required")
)

const (
	HomePageSize     = 9
	CategoryPageSize = 6
	RecentLimit      = 5
	VideoLimit       = 3
)

// ImageRemover deletes stored upload files.
type ImageRemover interface {
	Remove(name string) error
}

// ArticleService wraps news table operations.
type ArticleService struct {
	db     *gorm.DB
	images ImageRemover
}

// ArticleFilter describes a paginated listing, optionally scoped to one category.
type ArticleFilter struct {
	Category string
	Page     int
	PerPage  int
}

// ArticleListResult aggregates paginated list data.
type ArticleListResult struct {
	Articles   []db.Article
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title      string
	Content    string
	Category   string
	Video      string
	IsBreaking bool
	// Image and ImageName are applied only when Image is non-empty.
	Image     string
	ImageName string
}

// CategoryCount is one row of the category sidebar.
type CategoryCount struct {
	Category string
	Total    int64
}

// Sidebar is the bundle rendered next to every public page.
type Sidebar struct {
	Recent     []db.Article
	Breaking   []db.Article
	Categories []CategoryCount
}

// NewArticleService creates an ArticleService. images may be nil when
// deletes never need file cleanup.
func NewArticleService(gdb *gorm.DB, images ImageRemover) *ArticleService {
	return &ArticleService{db: gdb, images: images}
}

// List returns articles newest first with pagination counters.
func (s *ArticleService) List(filter ArticleFilter) (ArticleListResult, error) {
	result := ArticleListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, HomePageSize),
	}

	scope := categoryScope(filter.Category)

	if err := s.db.Model(&db.Article{}).Scopes(scope).Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	// 超出最后一页时直接返回空列表，offset 也不会溢出
	if result.Page > result.TotalPages {
		result.Articles = []db.Article{}
		return result, nil
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Model(&db.Article{}).Scopes(scope).
		Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Articles).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListAll returns every article newest first, for the dashboard.
func (s *ArticleService) ListAll() ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Order("id desc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Get fetches an article by id.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create validates input, normalizes the video link and inserts a row.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	input, err := normalizeArticleInput(input)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		Title:      input.Title,
		Content:    input.Content,
		Category:   input.Category,
		Video:      input.Video,
		IsBreaking: input.IsBreaking,
		Image:      input.Image,
		ImageName:  input.ImageName,
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Update overwrites every mutable field. The stored image is kept unless a
// new one is supplied; the replaced file is left on disk.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input, err = normalizeArticleInput(input)
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Content = input.Content
	existing.Category = input.Category
	existing.Video = input.Video
	existing.IsBreaking = input.IsBreaking
	if input.Image != "" {
		existing.Image = input.Image
		existing.ImageName = input.ImageName
	}

	if err := s.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteResult reports what Delete removed.
type DeleteResult struct {
	Article *db.Article
	// ImageErr is the image cleanup failure, if any. It never blocks the row deletion.
	ImageErr error
}

// Delete removes the article row after a best-effort removal of its image.
func (s *ArticleService) Delete(id uint) (DeleteResult, error) {
	article, err := s.Get(id)
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{Article: article}
	if article.Image != "" && s.images != nil {
		result.ImageErr = s.images.Remove(article.Image)
	}

	if err := s.db.Delete(&db.Article{}, article.ID).Error; err != nil {
		return result, err
	}
	return result, nil
}

// Recent returns the newest articles with only sidebar columns populated.
func (s *ArticleService) Recent(limit int) ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Model(&db.Article{}).
		Select("id", "title", "image", "video").
		Order("id desc").
		Limit(limit).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Breaking returns every breaking article newest first.
func (s *ArticleService) Breaking() ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Model(&db.Article{}).
		Select("id", "title").
		Where("is_breaking = ?", true).
		Order("id desc").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Videos returns the newest articles that carry a video link.
func (s *ArticleService) Videos(limit int) ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Where("video IS NOT NULL AND video <> ''").
		Order("id desc").
		Limit(limit).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// CategoryCounts groups articles by category, largest first.
func (s *ArticleService) CategoryCounts() ([]CategoryCount, error) {
	var counts []CategoryCount
	if err := s.db.Model(&db.Article{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Order("total desc, category asc").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// Sidebar assembles the recent, breaking and category data for public pages.
func (s *ArticleService) Sidebar() (Sidebar, error) {
	var (
		sidebar Sidebar
		err     error
	)

	if sidebar.Recent, err = s.Recent(RecentLimit); err != nil {
		return sidebar, err
	}
	if sidebar.Breaking, err = s.Breaking(); err != nil {
		return sidebar, err
	}
	if sidebar.Categories, err = s.CategoryCounts(); err != nil {
		return sidebar, err
	}
	return sidebar, nil
}

func categoryScope(category string) func(*gorm.DB) *gorm.DB {
	trimmed := strings.TrimSpace(category)
	return func(tx *gorm.DB) *gorm.DB {
		if trimmed == "" {
			return tx
		}
		return tx.Where("category = ?", trimmed)
	}
}

// Validate checks the required fields without modifying the input.
func (in ArticleInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrContentRequired
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrCategoryRequired
	}
	return nil
}

func normalizeArticleInput(input ArticleInput) (ArticleInput, error) {
	if err := input.Validate(); err != nil {
		return input, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Video = NormalizeVideoURL(input.Video)
	return input, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

// calculateTotalPages is ceil(total/perPage); zero rows means zero pages.
func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
