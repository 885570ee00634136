package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

var _ AssignmentStore = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Assign(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]model.UserTask, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, model.UserTask{UserID: userID, TaskID: taskID})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	return translate(err, ErrTaskNotFound)
}

func (r *AssignmentRepository) UserIDsByTask(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("task_id = ?", taskID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AssignmentRepository) ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.UserTask, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var rows []model.UserTask
	err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Find(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) UserIDsInColumns(ctx context.Context, columnIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(columnIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Distinct("user_tasks.user_id").
		Joins("JOIN tasks ON tasks.id = user_tasks.task_id").
		Where("tasks.column_id IN ?", columnIDs).
		Pluck("user_tasks.user_id", &ids).Error
	return ids, err
}

func (r *AssignmentRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.UserTask{}).Error
}
