package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

var _ CommentStore = (*CommentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateMany(ctx context.Context, comments []model.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	for i := range comments {
		if comments[i].ID == uuid.Nil {
			comments[i].ID = uuid.New()
		}
	}
	return translate(r.db.WithContext(ctx).Create(&comments).Error, ErrTaskNotFound)
}

func (r *CommentRepository) ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.Comment, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("created_at").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Comment{}).Error
}
