package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

const columnWithName = "columns.*, column_names.name AS name"

type ColumnRepository struct {
	db *gorm.DB
}

var _ ColumnStore = (*ColumnRepository)(nil)

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// named selects columns joined with their label.
func (r *ColumnRepository) named(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Column{}).
		Select(columnWithName).
		Joins("JOIN column_names ON column_names.id = columns.column_name_id")
}

func (r *ColumnRepository) FindOrCreateName(ctx context.Context, name string) (*model.ColumnName, error) {
	return resolveOrCreate(ctx, r.db,
		func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", name) },
		func() *model.ColumnName { return &model.ColumnName{ID: uuid.New(), Name: name} },
	)
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	if column.ID == uuid.Nil {
		column.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(column).Error, ErrColumnNotFound)
}

// FindOrCreate resolves the column by (board, label); order only applies
// when the column is created.
func (r *ColumnRepository) FindOrCreate(ctx context.Context, boardID, columnNameID uuid.UUID, order int) (*model.Column, error) {
	return resolveOrCreate(ctx, r.db,
		func(db *gorm.DB) *gorm.DB {
			return db.Where("board_id = ? AND column_name_id = ?", boardID, columnNameID)
		},
		func() *model.Column {
			return &model.Column{ID: uuid.New(), BoardID: boardID, ColumnNameID: columnNameID, Order: order}
		},
	)
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.named(ctx).Where("columns.id = ?", id).Take(&column).Error; err != nil {
		return nil, translate(err, ErrColumnNotFound)
	}
	return &column, nil
}

func (r *ColumnRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Column, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var columns []model.Column
	err := r.named(ctx).Where("columns.id IN ?", ids).Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) ListByBoards(ctx context.Context, boardIDs []uuid.UUID) ([]model.Column, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}
	var columns []model.Column
	err := r.named(ctx).
		Where("columns.board_id IN ?", boardIDs).
		Order("columns.position").
		Find(&columns).Error
	return columns, err
}

// Lock locks one row at a time in id order so that two transactions
// locking the same pair of columns cannot deadlock.
func (r *ColumnRepository) Lock(ctx context.Context, ids ...uuid.UUID) ([]model.Column, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	var locked []model.Column
	var prev uuid.UUID
	for i, id := range sorted {
		if i > 0 && id == prev {
			continue
		}
		prev = id

		var column model.Column
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&column).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, translate(err, ErrColumnNotFound)
		}
		locked = append(locked, column)
	}
	return locked, nil
}

func (r *ColumnRepository) MaxOrder(ctx context.Context, boardID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("board_id = ?", boardID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}
