package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type TaskRepository struct {
	db *gorm.DB
}

var _ TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(task).Error, ErrTaskNotFound)
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return &task, nil
}

func (r *TaskRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&task).Error
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return &task, nil
}

func (r *TaskRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error
	return tasks, err
}

// List returns every task by ascending order.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Order("position").Order("created_at").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByColumns(ctx context.Context, columnIDs []uuid.UUID) ([]model.Task, error) {
	if len(columnIDs) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("column_id IN ?", columnIDs).
		Order("position").
		Find(&tasks).Error
	return tasks, err
}

// Search matches the query as a case-insensitive substring of the title or
// the description.
func (r *TaskRepository) Search(ctx context.Context, query string) ([]model.Task, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("position").
		Find(&tasks).Error
	return tasks, err
}

// ListDueForUser returns the user's assigned tasks ending within [from, to].
func (r *TaskRepository) ListDueForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN user_tasks ON user_tasks.task_id = tasks.id").
		Where("user_tasks.user_id = ? AND tasks.time_end BETWEEN ? AND ?", userID, from, to).
		Find(&tasks).Error
	return tasks, err
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) MaxOrder(ctx context.Context, columnID, exclude uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("column_id = ? AND id <> ?", columnID, exclude).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

func (r *TaskRepository) CloseGap(ctx context.Context, columnID uuid.UUID, after int) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("column_id = ? AND position > ?", columnID, after).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

func (r *TaskRepository) SetPlacement(ctx context.Context, id, columnID uuid.UUID, order int) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"column_id":  columnID,
			"position":   order,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translate(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CountByColumn groups tasks by the column they are placed in.
func (r *TaskRepository) CountByColumn(ctx context.Context) ([]model.ColumnStat, error) {
	var stats []model.ColumnStat
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.column_id AS column_id, column_names.name AS column_name, COUNT(tasks.id) AS count").
		Joins("JOIN columns ON columns.id = tasks.column_id").
		Joins("JOIN column_names ON column_names.id = columns.column_name_id").
		Group("tasks.column_id, column_names.name").
		Order("column_names.name").
		Scan(&stats).Error
	return stats, err
}
