// Package sync models the durable work queue between the ledger event stream
// and the storefront mirror. Events arrive at least once; tasks are keyed by
// ledger transaction ID so redelivery collapses into a single row, and each
// task records its processing state for retry and inspection.
package sync

import (
	"errors"
	"fmt"
	"time"

	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
)

// ErrTaskIsNotConstructed is returned when a Task was not created through
// NewTask or RestoreTask.
var ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask")

// TaskState is the processing state of a sync task.
type TaskState int

const (
	// UnknownState represents an invalid or undefined state.
	UnknownState TaskState = iota

	// Pending tasks are enqueued and waiting for the applier.
	Pending

	// Applied tasks finished successfully and are kept for audit.
	Applied

	// Failed tasks exhausted processing and need operator attention.
	Failed
)

func getTaskStateStrings() map[TaskState]string {
	return map[TaskState]string{
		UnknownState: "UNKNOWN",
		Pending:      "PENDING",
		Applied:      "APPLIED",
		Failed:       "FAILED",
	}
}

// Validate checks the TaskState is one of the defined states.
func (s TaskState) Validate() error {
	switch s {
	case Pending, Applied, Failed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("taskState",
			fmt.Errorf("%d is not a valid task state", s))
	}
}

// String returns the state name. Implements fmt.Stringer.
func (s TaskState) String() string {
	if str, ok := getTaskStateStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// TaskStateFromString parses a state name produced by String.
func TaskStateFromString(v string) (TaskState, error) {
	for state, str := range getTaskStateStrings() {
		if str == v && state != UnknownState {
			return state, nil
		}
	}
	return UnknownState, errs.NewValueIsInvalidErrorWithCause("taskState",
		fmt.Errorf("%q is not a valid task state", v))
}

// Task is one unit of mirror synchronization work, created from a ledger
// status event. The transaction ID is the task's identity.
type Task struct {
	txID      string
	orderID   string
	newStatus order.Status
	state     TaskState
	attempts  int
	lastError string
	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewTask enqueues a pending task for a freshly observed status event.
func NewTask(txID, orderID string, newStatus order.Status, at time.Time) (*Task, error) {
	if err := validateTaskFields(txID, orderID, newStatus); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}

	return &Task{
		txID:          txID,
		orderID:       orderID,
		newStatus:     newStatus,
		state:         Pending,
		createdAt:     at,
		updatedAt:     at,
		isConstructed: true,
	}, nil
}

// RestoreTask reconstructs a task from persistence.
func RestoreTask(txID, orderID string, newStatus order.Status, state TaskState,
	attempts int, lastError string, createdAt, updatedAt time.Time) (*Task, error) {
	if err := validateTaskFields(txID, orderID, newStatus); err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	return &Task{
		txID:          txID,
		orderID:       orderID,
		newStatus:     newStatus,
		state:         state,
		attempts:      attempts,
		lastError:     lastError,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

func validateTaskFields(txID, orderID string, newStatus order.Status) error {
	if txID == "" {
		return errs.NewValueIsRequiredError("txID")
	}
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}
	return newStatus.Validate()
}

// Validate ensures the Task was created through a constructor.
func (t *Task) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTaskIsNotConstructed
	}
	return nil
}

// TxID returns the ledger transaction ID that identifies the task.
func (t *Task) TxID() string { return t.txID }

// OrderID returns the sub-order the status event belongs to.
func (t *Task) OrderID() string { return t.orderID }

// NewStatus returns the status the order transitioned into.
func (t *Task) NewStatus() order.Status { return t.newStatus }

// State returns the task's processing state.
func (t *Task) State() TaskState { return t.state }

// Attempts returns how many times the applier has picked the task up.
func (t *Task) Attempts() int { return t.attempts }

// LastError returns the message of the most recent failed attempt.
func (t *Task) LastError() string { return t.lastError }

// CreatedAt returns when the task was enqueued.
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the task last changed state.
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// MarkApplied records a successful application.
func (t *Task) MarkApplied(at time.Time) error {
	if t.state != Pending {
		return errs.NewValueIsInvalidErrorWithCause("taskState",
			fmt.Errorf("cannot apply a task in state %s", t.state))
	}
	t.state = Applied
	t.attempts++
	t.updatedAt = at
	return nil
}

// MarkFailed records a failed attempt and parks the task for retry or
// inspection.
func (t *Task) MarkFailed(cause error, at time.Time) error {
	if t.state != Pending {
		return errs.NewValueIsInvalidErrorWithCause("taskState",
			fmt.Errorf("cannot fail a task in state %s", t.state))
	}
	t.state = Failed
	t.attempts++
	if cause != nil {
		t.lastError = cause.Error()
	}
	t.updatedAt = at
	return nil
}

// Requeue puts a failed task back into the pending queue.
func (t *Task) Requeue(at time.Time) error {
	if t.state != Failed {
		return errs.NewValueIsInvalidErrorWithCause("taskState",
			fmt.Errorf("cannot requeue a task in state %s", t.state))
	}
	t.state = Pending
	t.updatedAt = at
	return nil
}
