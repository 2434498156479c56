package syncrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderchain/internal/core/domain/model/sync"
	"orderchain/internal/pkg/errs"
)

// GormSyncTaskRepository implements SyncTaskRepository using GORM.
type GormSyncTaskRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormSyncTaskRepository creates a new GORM sync task repository.
func NewGormSyncTaskRepository(db *gorm.DB, tracker aggregateTracker) *GormSyncTaskRepository {
	return &GormSyncTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add enqueues a task. A transaction ID that is already queued is left
// untouched, so redelivered ledger events collapse into the existing row.
func (r *GormSyncTaskRepository) Add(ctx context.Context, task *sync.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	dto := fromDomain(task)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(task.TxID(), task)
	return nil
}

// GetAllPending retrieves up to limit pending tasks in enqueue order.
func (r *GormSyncTaskRepository) GetAllPending(ctx context.Context, limit int) ([]*sync.Task, error) {
	var dtos []TaskDTO
	if err := r.db.WithContext(ctx).
		Where("state = ?", sync.Pending.String()).
		Order("created_at ASC").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	tasks := make([]*sync.Task, 0, len(dtos))
	for _, dto := range dtos {
		task, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Update persists a task's processing state.
func (r *GormSyncTaskRepository) Update(ctx context.Context, task *sync.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	dto := fromDomain(task)
	result := r.db.WithContext(ctx).Model(&TaskDTO{}).
		Where("tx_id = ?", dto.TxID).
		Updates(map[string]any{
			"state":      dto.State,
			"attempts":   dto.Attempts,
			"last_error": dto.LastError,
			"updated_at": dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("txID", task.TxID())
	}

	r.tracker.TrackAggregate(task.TxID(), task)
	return nil
}
