package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// SequenceCounterRepositoryImpl implements SequenceCounterRepository
type SequenceCounterRepositoryImpl struct {
	db *gorm.DB
}

// NewSequenceCounterRepository creates a new sequence counter repository
func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{db: db}
}

func (r *SequenceCounterRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// Next mints the next value for the named sequence. The increment runs as a
// single upsert so concurrent callers can never observe the same value; the
// row is created on first use. No write happens when the statement fails, so
// a failed mint never burns a value.
func (r *SequenceCounterRepositoryImpl) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name must not be empty")
	}

	db := r.getDB(ctx)

	var next int64
	err := db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (name, last_value, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (name)
		DO UPDATE SET last_value = sequence_counters.last_value + 1, updated_at = EXCLUDED.updated_at
		RETURNING last_value`,
		name, utils.UTCNow(), utils.UTCNow(),
	).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}

	return next, nil
}

// Initialize creates missing counters with last_value = 0. Existing counters
// are left untouched, so the call is idempotent and safe on every start.
func (r *SequenceCounterRepositoryImpl) Initialize(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	db := r.getDB(ctx)

	for _, name := range names {
		if name == "" {
			return fmt.Errorf("sequence name must not be empty")
		}
		err := db.WithContext(ctx).Exec(`
			INSERT INTO sequence_counters (name, last_value, created_at, updated_at)
			VALUES (?, 0, ?, ?)
			ON CONFLICT (name) DO NOTHING`,
			name, utils.UTCNow(), utils.UTCNow(),
		).Error
		if err != nil {
			return fmt.Errorf("failed to initialize sequence %q: %w", name, err)
		}
	}

	return nil
}

// Current returns the last issued value without advancing the sequence.
// Unknown sequences read as 0.
func (r *SequenceCounterRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name must not be empty")
	}

	db := r.getDB(ctx)

	var counter models.SequenceCounter
	err := db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sequence %q: %w", name, err)
	}

	return counter.LastValue, nil
}
