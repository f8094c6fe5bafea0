package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/newsdesk/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash keeps the cost of a failed lookup equal to a failed comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("newsdesk-unknown-admin"), bcrypt.DefaultCost)
	return hashed
})

// AuthService checks administrator credentials.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates an AuthService.
func NewAuthService(gdb *gorm.DB) *AuthService {
	return &AuthService{db: gdb}
}

// Authenticate returns the admin whose username matches exactly and whose
// bcrypt hash matches password.
func (s *AuthService) Authenticate(username, password string) (*db.AdminCredential, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}

	var admin db.AdminCredential
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &admin, nil
}
