// Package ordering keeps task and column orders dense. Every operation runs
// on the transactional store it is given and locks the rows whose order it
// reads before changing them.
package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// Placement describes a completed move.
type Placement struct {
	Task          model.Task
	From          model.Column
	To            model.Column
	PreviousOrder int
}

// ErrTaskMoving is returned when a task keeps changing columns while its
// locks are taken.
var ErrTaskMoving = errors.New("task is being moved concurrently")

const lockAttempts = 3

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Append returns the order for a task added at the end of the column.
func (e *Engine) Append(ctx context.Context, tx repository.Store, columnID uuid.UUID) (int, error) {
	locked, err := tx.Columns().Lock(ctx, columnID)
	if err != nil {
		return 0, fmt.Errorf("lock column: %w", err)
	}
	if len(locked) == 0 {
		return 0, repository.ErrColumnNotFound
	}
	highest, err := tx.Tasks().MaxOrder(ctx, columnID, uuid.Nil)
	if err != nil {
		return 0, fmt.Errorf("max task order: %w", err)
	}
	return highest + 1, nil
}

// LockTask locks the column holding the task, the extra columns and then the
// task row. Column rows are always locked before task rows. The task is
// read again after the locks and the attempt repeats if it changed column
// in between.
func (e *Engine) LockTask(ctx context.Context, tx repository.Store, taskID uuid.UUID, extra ...uuid.UUID) (*model.Task, []model.Column, error) {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		seen, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return nil, nil, err
		}
		ids := append([]uuid.UUID{seen.ColumnID}, extra...)
		locked, err := tx.Columns().Lock(ctx, ids...)
		if err != nil {
			return nil, nil, fmt.Errorf("lock columns: %w", err)
		}
		task, err := tx.Tasks().GetForUpdate(ctx, taskID)
		if err != nil {
			return nil, nil, err
		}
		if task.ColumnID == seen.ColumnID {
			return task, locked, nil
		}
	}
	return nil, nil, ErrTaskMoving
}

// Move places the task at the end of the target column and closes the gap
// it leaves behind. A move within the same column sends the task to the end.
func (e *Engine) Move(ctx context.Context, tx repository.Store, taskID, targetColumnID uuid.UUID) (*Placement, error) {
	task, locked, err := e.LockTask(ctx, tx, taskID, targetColumnID)
	if err != nil {
		return nil, err
	}
	var from, to *model.Column
	for i := range locked {
		if locked[i].ID == task.ColumnID {
			from = &locked[i]
		}
		if locked[i].ID == targetColumnID {
			to = &locked[i]
		}
	}
	if to == nil {
		return nil, repository.ErrColumnNotFound
	}
	if from == nil {
		from = to
	}

	previous := task.Order
	if err := tx.Tasks().CloseGap(ctx, task.ColumnID, previous); err != nil {
		return nil, fmt.Errorf("close gap: %w", err)
	}
	highest, err := tx.Tasks().MaxOrder(ctx, targetColumnID, task.ID)
	if err != nil {
		return nil, fmt.Errorf("max task order: %w", err)
	}
	if err := tx.Tasks().SetPlacement(ctx, task.ID, targetColumnID, highest+1); err != nil {
		return nil, fmt.Errorf("set placement: %w", err)
	}

	task.ColumnID = targetColumnID
	task.Order = highest + 1
	return &Placement{Task: *task, From: *from, To: *to, PreviousOrder: previous}, nil
}

// Remove compacts the column of a task that was deleted in tx. Callers that
// locked the task through LockTask already hold the column lock.
func (e *Engine) Remove(ctx context.Context, tx repository.Store, task model.Task) error {
	if _, err := tx.Columns().Lock(ctx, task.ColumnID); err != nil {
		return fmt.Errorf("lock column: %w", err)
	}
	return e.Compact(ctx, tx, task.ColumnID, task.Order)
}

// Compact decrements every order in the column greater than removedOrder.
func (e *Engine) Compact(ctx context.Context, tx repository.Store, columnID uuid.UUID, removedOrder int) error {
	if err := tx.Tasks().CloseGap(ctx, columnID, removedOrder); err != nil {
		return fmt.Errorf("close gap: %w", err)
	}
	return nil
}

// AppendColumn returns the order for a column added at the end of the board.
func (e *Engine) AppendColumn(ctx context.Context, tx repository.Store, boardID uuid.UUID) (int, error) {
	if _, err := tx.Boards().Lock(ctx, boardID); err != nil {
		return 0, err
	}
	highest, err := tx.Columns().MaxOrder(ctx, boardID)
	if err != nil {
		return 0, fmt.Errorf("max column order: %w", err)
	}
	return highest + 1, nil
}
