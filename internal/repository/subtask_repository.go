package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

var _ SubtaskStore = (*SubtaskRepository)(nil)

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	if subtask.ID == uuid.Nil {
		subtask.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(subtask).Error, ErrTaskNotFound)
}

func (r *SubtaskRepository) CreateMany(ctx context.Context, subtasks []model.Subtask) error {
	if len(subtasks) == 0 {
		return nil
	}
	for i := range subtasks {
		if subtasks[i].ID == uuid.Nil {
			subtasks[i].ID = uuid.New()
		}
	}
	return translate(r.db.WithContext(ctx).Create(&subtasks).Error, ErrTaskNotFound)
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subtask).Error; err != nil {
		return nil, translate(err, ErrSubtaskNotFound)
	}
	return &subtask, nil
}

func (r *SubtaskRepository) Update(ctx context.Context, subtask *model.Subtask) error {
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id = ?", subtask.ID).
		Updates(map[string]any{"title": subtask.Title, "is_done": subtask.IsDone})
	if result.Error != nil {
		return translate(result.Error, ErrSubtaskNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Subtask{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Subtask{}).Error
}

func (r *SubtaskRepository) ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.Subtask, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Find(&subtasks).Error
	return subtasks, err
}
