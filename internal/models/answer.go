package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortVotes  = "votes"
)

type Answer struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Content        string    `gorm:"type:text;not null" json:"content" validate:"required"`
	QuestionID     string    `gorm:"size:36;index;not null" json:"question_id" validate:"required"`
	AuthorID       string    `gorm:"size:36;index;not null" json:"author_id" validate:"required"`
	AuthorUsername string    `json:"author_username"`
	VoteCount      int       `gorm:"default:0" json:"vote_count"`
	IsAccepted     bool      `gorm:"default:false" json:"is_accepted"`
	SchemaVersion  int       `gorm:"default:1" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Answer) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	a.SchemaVersion = SchemaVersion
	return nil
}

func (a *Answer) Validate() error {
	return validate.Struct(a)
}

type CreateAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateAnswerRequest struct {
	Content *string `json:"content" binding:"omitempty,min=1"`
}

type AnswerListResponse struct {
	Answers []Answer `json:"answers"`
	Total   int      `json:"total"`
}
