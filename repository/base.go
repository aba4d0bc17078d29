// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository carries the GORM plumbing shared by every entity repository.
// T is the model type, F its filter type.
type BaseRepository[T any, F any] struct {
	DB *gorm.DB
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any, F any](db *gorm.DB) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{DB: db}
}

// ambientTx extracts the transaction handle placed in ctx by WithTransaction.
func ambientTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return nil
}

// getDB returns the ambient transaction when one is present, otherwise the
// root connection.
func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx := ambientTx(ctx); tx != nil {
		return tx
	}
	return r.DB
}

// getDBForWrite returns a handle suitable for a write. The second return
// value reports whether the caller owns the transaction and must finish it;
// an ambient transaction is finished by WithTransaction, not the caller.
func (r *BaseRepository[T, F]) getDBForWrite(ctx context.Context) (*gorm.DB, bool, error) {
	if tx := ambientTx(ctx); tx != nil {
		return tx, false, nil
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return tx, true, nil
}

// finishWrite commits or rolls back a transaction opened by getDBForWrite.
func finishWrite(tx *gorm.DB, ownsTx bool, err error) {
	if !ownsTx {
		return
	}
	if err != nil {
		tx.Rollback()
		return
	}
	tx.Commit()
}

// ByID loads the newest row with the given primary key, nil when absent.
func (r *BaseRepository[T, F]) ByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.getDB(ctx).Last(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entity by ID %d: %w", id, err)
	}
	return &entity, nil
}

// Save inserts a new entity
func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) (err error) {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	if err = db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// SaveBatch inserts entities in chunks of 100.
func (r *BaseRepository[T, F]) SaveBatch(ctx context.Context, entities []*T) (err error) {
	if len(entities) == 0 {
		return nil
	}

	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	if err = db.CreateInBatches(entities, 100).Error; err != nil {
		return fmt.Errorf("failed to save batch entities: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside one database transaction. The handle rides
// in ctx under TxContextKey so nested repository calls join it instead of
// opening their own.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(context.Context) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	if err := fn(context.WithValue(ctx, TxContextKey, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
