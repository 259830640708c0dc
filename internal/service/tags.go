package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

const DefaultTagLimit = 100

// TagService derives tags from question tag lists. Nothing is stored.
type TagService struct {
	store *store.Store
}

// List counts, per case-insensitive tag, how many questions carry it. The
// displayed name is the spelling used by the newest question with that tag.
func (s *TagService) List(ctx context.Context, search string, limit int) ([]models.Tag, error) {
	if limit == 0 {
		limit = DefaultTagLimit
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", ErrBadRequest)
	}

	questions, err := s.store.Questions().Find(ctx, store.Query{Order: "created_at ASC, id ASC"})
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.Tag)
	for _, q := range questions {
		seen := make(map[string]struct{}, len(q.Tags))
		for _, name := range q.Tags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			t, ok := byKey[key]
			if !ok {
				t = &models.Tag{}
				byKey[key] = t
			}
			t.Name = name
			t.UsageCount++
		}
	}

	search = strings.ToLower(strings.TrimSpace(search))
	tags := make([]models.Tag, 0, len(byKey))
	for _, t := range byKey {
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].UsageCount != tags[j].UsageCount {
			return tags[i].UsageCount > tags[j].UsageCount
		}
		return tags[i].Name < tags[j].Name
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// Validate checks a tag name. Tags only exist through questions, so nothing
// is written.
func (s *TagService) Validate(_ context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if err := models.Validator().Var(name, "required,min=2,max=30"); err != nil {
		return nil, fmt.Errorf("%w: tag name must be between %d and %d characters", ErrBadRequest,
			models.MinTagLength, models.MaxTagLength)
	}
	return &models.Tag{Name: name}, nil
}
