package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type validatable interface {
	Validate() error
}

// Query narrows a Find. Zero values mean "no filter", "store order" and
// "no limit".
type Query struct {
	Where  string
	Args   []any
	Order  string
	Limit  int
	Offset int
}

// Collection is a typed view over one table. Records are keyed by their
// string "id" column.
type Collection[T any] struct {
	db *gorm.DB
}

func (c *Collection[T]) Create(ctx context.Context, rec *T) error {
	if err := check(rec); err != nil {
		return err
	}
	return translate(c.db.WithContext(ctx).Create(rec).Error)
}

// CreateMany inserts recs in batches; every record is validated first.
func (c *Collection[T]) CreateMany(ctx context.Context, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if err := check(&recs[i]); err != nil {
			return err
		}
	}
	return translate(c.db.WithContext(ctx).CreateInBatches(&recs, 100).Error)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	return c.First(ctx, "id = ?", id)
}

func (c *Collection[T]) First(ctx context.Context, where string, args ...any) (*T, error) {
	var rec T
	if err := c.db.WithContext(ctx).Where(where, args...).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (c *Collection[T]) Find(ctx context.Context, q Query) ([]T, error) {
	db := c.db.WithContext(ctx).Model(new(T))
	if q.Where != "" {
		db = db.Where(q.Where, q.Args...)
	}
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	out := []T{}
	if err := db.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, where string, args ...any) (int64, error) {
	db := c.db.WithContext(ctx).Model(new(T))
	if where != "" {
		db = db.Where(where, args...)
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Save writes every field of rec, inserting it if the id is new.
func (c *Collection[T]) Save(ctx context.Context, rec *T) error {
	if err := check(rec); err != nil {
		return err
	}
	return translate(c.db.WithContext(ctx).Save(rec).Error)
}

// Update writes only the named columns of rec, plus updated_at. Columns not
// listed keep whatever is stored, even if rec holds an older value.
func (c *Collection[T]) Update(ctx context.Context, rec *T, columns ...string) error {
	if err := check(rec); err != nil {
		return err
	}
	res := c.db.WithContext(ctx).Model(rec).Select(columns).Updates(rec)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetColumns writes derived columns without touching updated_at or hooks.
func (c *Collection[T]) SetColumns(ctx context.Context, id string, fields map[string]any) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).UpdateColumns(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetColumnsWhere writes fields on every matching record, again without
// hooks or updated_at, and reports how many rows matched.
func (c *Collection[T]) SetColumnsWhere(ctx context.Context, fields map[string]any, where string, args ...any) (int64, error) {
	res := c.db.WithContext(ctx).Model(new(T)).Where(where, args...).UpdateColumns(fields)
	return res.RowsAffected, translate(res.Error)
}

// Increment adds delta to a numeric column in a single statement.
func (c *Collection[T]) Increment(ctx context.Context, id, column string, delta int) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (c *Collection[T]) DeleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	res := c.db.WithContext(ctx).Where(where, args...).Delete(new(T))
	return res.RowsAffected, translate(res.Error)
}

func check(rec any) error {
	v, ok := rec.(validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
