package models

import (
	"time"

	"gorm.io/gorm"
)

// Question.VoteCount is display-only and stays 0; votes are cast on answers.
type Question struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Title            string    `gorm:"size:300;not null" json:"title" validate:"required,max=300"`
	Description      string    `gorm:"type:text;not null" json:"description" validate:"required"`
	Tags             []string  `gorm:"serializer:json" json:"tags" validate:"tags"`
	AuthorID         string    `gorm:"size:36;index;not null" json:"author_id" validate:"required"`
	AuthorUsername   string    `json:"author_username"`
	VoteCount        int       `gorm:"default:0" json:"vote_count"`
	AnswerCount      int       `gorm:"default:0" json:"answer_count"`
	AcceptedAnswerID *string   `gorm:"size:36" json:"accepted_answer_id"`
	ViewCount        int       `gorm:"default:0" json:"view_count"`
	SchemaVersion    int       `gorm:"default:1" json:"-"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = NewID()
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	q.SchemaVersion = SchemaVersion
	return nil
}

func (q *Question) Validate() error {
	return validate.Struct(q)
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required,max=300"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags"`
}

// UpdateQuestionRequest is a partial update; nil fields are left alone.
type UpdateQuestionRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string   `json:"description" binding:"omitempty,min=1"`
	Tags        *[]string `json:"tags"`
}

type ListQuestionsQuery struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
	Search string `form:"search"`
	Tags   string `form:"tags"` // comma-separated
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}
