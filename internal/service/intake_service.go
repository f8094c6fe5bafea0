package service

import (
	"errors"
	"strings"

	"github.com/newsdesk/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmailRequired         = errors.New("email is required")
	ErrContactFieldsRequired = errors.New("name, mobile and message are required")
)

// IntakeService stores newsletter subscriptions and contact messages.
type IntakeService struct {
	db *gorm.DB
}

// ContactInput is the contact form payload.
type ContactInput struct {
	Name    string
	Mobile  string
	Message string
}

// NewIntakeService creates an IntakeService.
func NewIntakeService(gdb *gorm.DB) *IntakeService {
	return &IntakeService{db: gdb}
}

// Subscribe inserts the email unless it is already present. Addresses are
// stored trimmed and lower-cased.
func (s *IntakeService) Subscribe(email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ErrEmailRequired
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&db.NewsletterSubscription{Email: normalized}).Error
}

// SubmitContact appends a contact message.
func (s *IntakeService) SubmitContact(input ContactInput) (*db.ContactMessage, error) {
	message := db.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Mobile:  strings.TrimSpace(input.Mobile),
		Message: strings.TrimSpace(input.Message),
	}
	if message.Name == "" || message.Mobile == "" || message.Message == "" {
		return nil, ErrContactFieldsRequired
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}
