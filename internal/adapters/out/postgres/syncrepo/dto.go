// Package syncrepo provides data transfer objects and mapping functions for
// the mirror sync outbox. Tasks are keyed by ledger transaction ID, which is
// what lets at-least-once event delivery collapse into single rows.
package syncrepo

import (
	"time"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/core/domain/model/sync"
)

// TaskDTO represents the database structure for persisting sync tasks.
type TaskDTO struct {
	TxID      string    `gorm:"type:varchar(128);primaryKey"`
	OrderID   string    `gorm:"type:varchar(128);not null;index"`
	NewStatus string    `gorm:"type:varchar(32);not null"`
	State     string    `gorm:"type:varchar(16);not null;index"`
	Attempts  int       `gorm:"not null"`
	LastError string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "sync_tasks".
func (TaskDTO) TableName() string {
	return "sync_tasks"
}

func fromDomain(task *sync.Task) TaskDTO {
	return TaskDTO{
		TxID:      task.TxID(),
		OrderID:   task.OrderID(),
		NewStatus: task.NewStatus().String(),
		State:     task.State().String(),
		Attempts:  task.Attempts(),
		LastError: task.LastError(),
		CreatedAt: task.CreatedAt(),
		UpdatedAt: task.UpdatedAt(),
	}
}

func toDomain(dto TaskDTO) (*sync.Task, error) {
	status, err := order.StatusFromString(dto.NewStatus)
	if err != nil {
		return nil, err
	}
	state, err := sync.TaskStateFromString(dto.State)
	if err != nil {
		return nil, err
	}

	return sync.RestoreTask(dto.TxID, dto.OrderID, status, state,
		dto.Attempts, dto.LastError, dto.CreatedAt, dto.UpdatedAt)
}
