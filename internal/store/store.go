// Package store is the document store adapter: one typed collection per
// entity, all sharing a gorm handle that may be scoped to a transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/stackit/backend/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrInvalidRecord  = errors.New("invalid record")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// WithTx runs fn inside a transaction. Everything fn does through tx commits
// or rolls back together.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Models lists every collection, in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Vote{},
		&models.Notification{},
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) Users() *Collection[models.User] { return &Collection[models.User]{db: s.DB} }

func (s *Store) Questions() *Collection[models.Question] {
	return &Collection[models.Question]{db: s.DB}
}

func (s *Store) Answers() *Collection[models.Answer] { return &Collection[models.Answer]{db: s.DB} }

func (s *Store) Votes() *Collection[models.Vote] { return &Collection[models.Vote]{db: s.DB} }

func (s *Store) Notifications() *Collection[models.Notification] {
	return &Collection[models.Notification]{db: s.DB}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
