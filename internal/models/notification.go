package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationNewAnswer      = "new_answer"
	NotificationAnswerAccepted = "answer_accepted"
	NotificationAdminMessage   = "admin_message"
)

type Notification struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:36;index;not null" json:"user_id" validate:"required"`
	Type          string    `gorm:"size:32;not null" json:"type" validate:"required"`
	Message       string    `gorm:"type:text;not null" json:"message" validate:"required"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	RelatedID     *string   `gorm:"size:36;index" json:"related_id,omitempty"`
	SchemaVersion int       `gorm:"default:1" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	n.SchemaVersion = SchemaVersion
	return nil
}

func (n *Notification) Validate() error {
	return validate.Struct(n)
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

// Tag is a read-only view aggregated from question tag lists.
type Tag struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

type TagListResponse struct {
	Tags  []Tag `json:"tags"`
	Total int   `json:"total"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}
