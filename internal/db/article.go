package db

import "time"

// Article 定义了新闻文章模型，对应 news 表。
type Article struct {
	ID         uint   `gorm:"primaryKey"`
	Title      string `gorm:"not null"`
	Content    string `gorm:"type:text;not null"`
	Category   string `gorm:"not null;index"`
	Image      string
	ImageName  string
	Video      string
	IsBreaking bool `gorm:"not null;default:false;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName keeps the historical table name.
func (Article) TableName() string {
	return "news"
}

// HasImage reports whether an upload is attached.
func (a Article) HasImage() bool {
	return a.Image != ""
}

// HasVideo reports whether an embed URL is attached.
func (a Article) HasVideo() bool {
	return a.Video != ""
}
