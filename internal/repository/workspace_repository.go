package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

var _ WorkspaceStore = (*WorkspaceRepository)(nil)

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *model.Workspace) error {
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(ws).Error, ErrWorkspaceNotFound)
}

// FindOrCreate resolves the workspace by its unique name.
func (r *WorkspaceRepository) FindOrCreate(ctx context.Context, name string) (*model.Workspace, error) {
	return resolveOrCreate(ctx, r.db,
		func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", name) },
		func() *model.Workspace { return &model.Workspace{ID: uuid.New(), Name: name} },
	)
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, translate(err, ErrWorkspaceNotFound)
	}
	return &ws, nil
}

func (r *WorkspaceRepository) List(ctx context.Context) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	err := r.db.WithContext(ctx).Order("created_at").Find(&workspaces).Error
	return workspaces, err
}
