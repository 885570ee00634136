package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type BoardRepository struct {
	db *gorm.DB
}

var _ BoardStore = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(board).Error, ErrBoardNotFound)
}

// FindOrCreate resolves the board by (workspace, name).
func (r *BoardRepository) FindOrCreate(ctx context.Context, workspaceID uuid.UUID, name string) (*model.Board, error) {
	return resolveOrCreate(ctx, r.db,
		func(db *gorm.DB) *gorm.DB {
			return db.Where("workspace_id = ? AND name = ?", workspaceID, name)
		},
		func() *model.Board {
			return &model.Board{ID: uuid.New(), WorkspaceID: workspaceID, Name: name}
		},
	)
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err, ErrBoardNotFound)
	}
	return &board, nil
}

func (r *BoardRepository) Lock(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&board).Error
	if err != nil {
		return nil, translate(err, ErrBoardNotFound)
	}
	return &board, nil
}

func (r *BoardRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Board, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&boards).Error
	return boards, err
}
