package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emilythestrangee/stackit/backend/internal/metrics"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

// Vote casts or changes the caller's ballot on an answer. Repeating the same
// vote is rejected; the opposite vote rewrites the existing row.
func (s *AnswerService) Vote(ctx context.Context, answerID, voteType string, caller *models.User) (*models.VoteResult, error) {
	if !models.ValidVoteType(voteType) {
		return nil, fmt.Errorf("%w: vote_type must be %q or %q", ErrBadRequest, models.VoteUp, models.VoteDown)
	}

	var result *models.VoteResult
	outcome := "created"
	err := s.withAnswer(ctx, answerID, func(tx *store.Store, a *models.Answer) error {
		existing, err := tx.Votes().First(ctx, "answer_id = ? AND user_id = ?", a.ID, caller.ID)
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			v := &models.Vote{AnswerID: a.ID, UserID: caller.ID, VoteType: voteType}
			if err := tx.Votes().Create(ctx, v); err != nil {
				return storeErr(err, "vote")
			}
		case err != nil:
			return err
		case existing.VoteType == voteType:
			outcome = "rejected"
			return fmt.Errorf("%w: already voted this way", ErrBadRequest)
		default:
			outcome = "changed"
			existing.VoteType = voteType
			existing.CreatedAt = time.Now().UTC()
			if err := tx.Votes().Save(ctx, existing); err != nil {
				return storeErr(err, "vote")
			}
		}

		count, err := recountVotes(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		result = &models.VoteResult{VoteCount: count, UserVote: &voteType}
		return nil
	})
	if err != nil {
		if outcome == "rejected" {
			metrics.VotesTotal.WithLabelValues(outcome).Inc()
		}
		return nil, err
	}

	metrics.VotesTotal.WithLabelValues(outcome).Inc()
	return result, nil
}

func (s *AnswerService) RemoveVote(ctx context.Context, answerID string, caller *models.User) (*models.VoteResult, error) {
	var result *models.VoteResult
	err := s.withAnswer(ctx, answerID, func(tx *store.Store, a *models.Answer) error {
		n, err := tx.Votes().DeleteWhere(ctx, "answer_id = ? AND user_id = ?", a.ID, caller.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: no vote to remove", ErrBadRequest)
		}
		count, err := recountVotes(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		result = &models.VoteResult{VoteCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VotesTotal.WithLabelValues("removed").Inc()
	return result, nil
}

// recountVotes rebuilds vote_count from the vote rows rather than adjusting
// it, so the stored count can never drift from the ballots.
func recountVotes(ctx context.Context, tx *store.Store, answerID string) (int, error) {
	up, err := tx.Votes().Count(ctx, "answer_id = ? AND vote_type = ?", answerID, models.VoteUp)
	if err != nil {
		return 0, err
	}
	down, err := tx.Votes().Count(ctx, "answer_id = ? AND vote_type = ?", answerID, models.VoteDown)
	if err != nil {
		return 0, err
	}
	count := int(up - down)
	if err := tx.Answers().SetColumns(ctx, answerID, map[string]any{"vote_count": count}); err != nil {
		return 0, storeErr(err, "answer")
	}
	return count, nil
}
