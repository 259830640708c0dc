package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// Vote tracks one user's ballot on one answer. The unique index keeps it to a
// single row per (user, answer); changing a vote rewrites that row.
type Vote struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AnswerID      string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_answer,priority:2;index" json:"answer_id"`
	UserID        string    `gorm:"size:36;not null;uniqueIndex:idx_votes_user_answer,priority:1" json:"user_id"`
	VoteType      string    `gorm:"size:8;not null" json:"vote_type" validate:"oneof=upvote downvote"`
	SchemaVersion int       `gorm:"default:1" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = NewID()
	}
	v.SchemaVersion = SchemaVersion
	return nil
}

func (v *Vote) Validate() error {
	return validate.Struct(v)
}

func ValidVoteType(t string) bool {
	return t == VoteUp || t == VoteDown
}

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required"`
}

// VoteResult.UserVote is nil once the caller's vote has been removed.
type VoteResult struct {
	VoteCount int     `json:"vote_count"`
	UserVote  *string `json:"user_vote"`
}
