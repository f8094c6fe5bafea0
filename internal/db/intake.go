package db

import "time"

// NewsletterSubscription 记录订阅邮箱，email 唯一。
type NewsletterSubscription struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (NewsletterSubscription) TableName() string {
	return "newsletter"
}

// ContactMessage 保存联系表单留言，只追加不读取。
type ContactMessage struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Mobile    string `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (ContactMessage) TableName() string {
	return "contact"
}
