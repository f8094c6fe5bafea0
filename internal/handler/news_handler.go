package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/service"
	"github.com/newsdesk/internal/storage"
)

// ShowAddNews renders an empty article form.
func (a *API) ShowAddNews(c *gin.Context, admin AdminSession) {
	a.renderHTML(c, http.StatusOK, "news_form.html", gin.H{
		"title":    "Add News",
		"action":   "/add-news",
		"article":  db.Article{},
		"username": admin.Username,
	})
}

// CreateNews 处理新增文章表单（含可选图片上传）。
func (a *API) CreateNews(c *gin.Context, admin AdminSession) {
	input := articleInputFromForm(c)
	if err := input.Validate(); err != nil {
		a.renderNewsFormError(c, "/add-news", "Add News", input, db.Article{}, err)
		return
	}

	stored, ok := a.saveImage(c, "/add-news", "Add News", input, db.Article{})
	if !ok {
		return
	}
	input.Image = stored.Filename
	input.ImageName = stored.OriginalName

	article, err := a.articles.Create(input)
	if err != nil {
		a.discardImage(stored.Filename)
		if isArticleInputError(err) {
			a.renderNewsFormError(c, "/add-news", "Add News", input, db.Article{}, err)
			return
		}
		a.serverError(c, "create article", err)
		return
	}

	a.log.Info().Uint("article_id", article.ID).Str("username", admin.Username).Msg("article created")
	c.Redirect(http.StatusFound, "/dashboard")
}

// ShowEditNews renders the form pre-filled with an existing article.
func (a *API) ShowEditNews(c *gin.Context, admin AdminSession) {
	article, ok := a.loadArticle(c)
	if !ok {
		return
	}

	a.renderHTML(c, http.StatusOK, "news_form.html", gin.H{
		"title":    "Edit News",
		"action":   editAction(article.ID),
		"article":  article,
		"username": admin.Username,
	})
}

// UpdateNews overwrites an article; the stored image is kept unless a new one is uploaded.
func (a *API) UpdateNews(c *gin.Context, admin AdminSession) {
	existing, ok := a.loadArticle(c)
	if !ok {
		return
	}

	action := editAction(existing.ID)
	input := articleInputFromForm(c)
	if err := input.Validate(); err != nil {
		a.renderNewsFormError(c, action, "Edit News", input, *existing, err)
		return
	}

	stored, ok := a.saveImage(c, action, "Edit News", input, *existing)
	if !ok {
		return
	}
	input.Image = stored.Filename
	input.ImageName = stored.OriginalName

	if _, err := a.articles.Update(existing.ID, input); err != nil {
		a.discardImage(stored.Filename)
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			a.renderError(c, http.StatusNotFound, "Article not found.")
		case isArticleInputError(err):
			a.renderNewsFormError(c, action, "Edit News", input, *existing, err)
		default:
			a.serverError(c, "update article", err)
		}
		return
	}

	a.log.Info().Uint("article_id", existing.ID).Str("username", admin.Username).Msg("article updated")
	c.Redirect(http.StatusFound, "/dashboard")
}

// ShowDeleteConfirm asks for confirmation and issues a one-time token.
func (a *API) ShowDeleteConfirm(c *gin.Context, admin AdminSession) {
	article, ok := a.loadArticle(c)
	if !ok {
		return
	}

	token := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionKeyDeleteToken, token)
	if err := session.Save(); err != nil {
		a.serverError(c, "save session", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "delete_confirm.html", gin.H{
		"title":    "Delete News",
		"article":  article,
		"token":    token,
		"username": admin.Username,
	})
}

// DeleteNews removes an article after a confirmed POST. Image cleanup is best effort.
func (a *API) DeleteNews(c *gin.Context, admin AdminSession) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Article not found.")
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(sessionKeyDeleteToken).(string)
	if !validDeleteToken(expected, c.PostForm("token")) {
		a.renderError(c, http.StatusBadRequest, "Delete confirmation expired. Please try again.")
		return
	}
	session.Delete(sessionKeyDeleteToken)
	if err := session.Save(); err != nil {
		c.Error(err)
	}

	result, err := a.articles.Delete(id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Article not found.")
			return
		}
		a.serverError(c, "delete article", err)
		return
	}

	if result.ImageErr != nil {
		a.log.Warn().Err(result.ImageErr).Uint("article_id", id).Str("image", result.Article.Image).Msg("article image cleanup failed")
	}
	a.log.Info().Uint("article_id", id).Str("username", admin.Username).Msg("article deleted")
	c.Redirect(http.StatusFound, "/dashboard")
}

// validDeleteToken compares the submitted token with the one issued by the
// confirmation page in constant time.
func validDeleteToken(expected, submitted string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

func (a *API) loadArticle(c *gin.Context) (*db.Article, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Article not found.")
		return nil, false
	}

	article, err := a.articles.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Article not found.")
			return nil, false
		}
		a.serverError(c, "load article", err)
		return nil, false
	}
	return article, true
}

// saveImage stores the optional "image" upload. A missing file or a non-multipart
// form yields an empty StoredImage.
func (a *API) saveImage(c *gin.Context, action, title string, input service.ArticleInput, current db.Article) (storage.StoredImage, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return storage.StoredImage{}, true
		}
		a.renderNewsFormError(c, action, title, input, current, err)
		return storage.StoredImage{}, false
	}

	stored, err := a.uploads.Save(file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrImageTooLarge) || errors.Is(err, storage.ErrInvalidFilename) {
			a.renderNewsFormError(c, action, title, input, current, err)
			return storage.StoredImage{}, false
		}
		a.serverError(c, "save upload", err)
		return storage.StoredImage{}, false
	}
	return stored, true
}

// discardImage removes a freshly saved upload when its row could not be written.
func (a *API) discardImage(name string) {
	if name == "" {
		return
	}
	if err := a.uploads.Remove(name); err != nil {
		a.log.Warn().Err(err).Str("image", name).Msg("orphaned upload left on disk")
	}
}

func (a *API) renderNewsFormError(c *gin.Context, action, title string, input service.ArticleInput, current db.Article, err error) {
	current.Title = input.Title
	current.Content = input.Content
	current.Category = input.Category
	current.Video = input.Video
	current.IsBreaking = input.IsBreaking

	a.renderHTML(c, http.StatusBadRequest, "news_form.html", gin.H{
		"title":   title,
		"action":  action,
		"article": current,
		"error":   articleErrorMessage(err),
	})
}

func articleInputFromForm(c *gin.Context) service.ArticleInput {
	return service.ArticleInput{
		Title:      c.PostForm("title"),
		Content:    c.PostForm("content"),
		Category:   c.PostForm("category"),
		Video:      c.PostForm("video"),
		IsBreaking: formTruthy(c.PostForm("is_breaking")),
	}
}

func isArticleInputError(err error) bool {
	return errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrContentRequired) ||
		errors.Is(err, service.ErrCategoryRequired)
}

func articleErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		return "Title is required."
	case errors.Is(err, service.ErrContentRequired):
		return "Content is required."
	case errors.Is(err, service.ErrCategoryRequired):
		return "Category is required."
	case errors.Is(err, storage.ErrUnsupportedImage):
		return "Only PNG, JPG and GIF images can be uploaded."
	case errors.Is(err, storage.ErrImageTooLarge):
		return "The image is too large."
	default:
		return "The upload could not be read."
	}
}

func editAction(id uint) string {
	return "/edit-news/" + uintToString(id)
}
