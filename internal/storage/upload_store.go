package storage

import (
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrUnsupportedImage = errors.New("only png, jpg, jpeg and gif images are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrInvalidFilename  = errors.New("invalid upload filename")
)

// allowedImages maps accepted extensions to the sniffed MIME type they must carry.
var allowedImages = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

var displayNamePolicy = bluemonday.StrictPolicy()

// StoredImage describes a saved upload.
type StoredImage struct {
	// Filename is the generated on-disk name referenced by news.image.
	Filename string
	// OriginalName is the sanitized client filename, kept for display only.
	OriginalName string
}

// UploadStore keeps uploaded article images in a single flat directory.
type UploadStore struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

// NewUploadStore creates a store rooted at dir. maxSize <= 0 disables the size check.
func NewUploadStore(dir string, maxSize int64) *UploadStore {
	return &UploadStore{dir: dir, maxSize: maxSize, now: time.Now}
}

// Dir returns the directory served under /uploads/news.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save validates and persists the uploaded image under a generated name.
func (s *UploadStore) Save(file *multipart.FileHeader) (StoredImage, error) {
	if file == nil {
		return StoredImage{}, ErrInvalidFilename
	}

	original := SanitizeFilename(file.Filename)
	ext := strings.ToLower(filepath.Ext(original))
	wantMIME, ok := allowedImages[ext]
	if !ok {
		return StoredImage{}, ErrUnsupportedImage
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return StoredImage{}, ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return StoredImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return StoredImage{}, fmt.Errorf("detect upload type: %w", err)
	}
	if !detected.Is(wantMIME) {
		return StoredImage{}, ErrUnsupportedImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return StoredImage{}, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredImage{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.NewString(), ext)
	target := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredImage{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return StoredImage{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return StoredImage{}, fmt.Errorf("close upload file: %w", err)
	}

	return StoredImage{Filename: name, OriginalName: original}, nil
}

// Remove deletes a stored file. An empty name is a no-op.
func (s *UploadStore) Remove(name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Path resolves a stored filename inside the upload directory.
func (s *UploadStore) Path(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base != name || base == "." || base == "/" {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, base), nil
}

// SanitizeFilename strips directory components, markup and unsafe characters
// from a client supplied filename. The result may be empty.
func SanitizeFilename(name string) string {
	cleaned := html.UnescapeString(displayNamePolicy.Sanitize(name))
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if idx := strings.LastIndex(cleaned, "/"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range cleaned {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
			if pendingSpace {
				b.WriteByte('_')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}
