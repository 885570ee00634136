package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxResolveAttempts bounds the select/insert loop of resolveOrCreate.
const maxResolveAttempts = 3

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Workspaces() WorkspaceStore       { return NewWorkspaceRepository(s.db) }
func (s *GormStore) Boards() BoardStore               { return NewBoardRepository(s.db) }
func (s *GormStore) Columns() ColumnStore             { return NewColumnRepository(s.db) }
func (s *GormStore) Tasks() TaskStore                 { return NewTaskRepository(s.db) }
func (s *GormStore) Subtasks() SubtaskStore           { return NewSubtaskRepository(s.db) }
func (s *GormStore) Comments() CommentStore           { return NewCommentRepository(s.db) }
func (s *GormStore) Assignments() AssignmentStore     { return NewAssignmentRepository(s.db) }
func (s *GormStore) Users() UserStore                 { return NewUserRepository(s.db) }
func (s *GormStore) Notifications() NotificationStore { return NewNotificationRepository(s.db) }

// InTx runs fn in a transaction. gorm turns a transaction started on a
// transactional handle into a savepoint.
func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// resolveOrCreate returns the row matched by find, inserting build() when
// there is none. The insert skips unique conflicts, so a concurrent writer
// that wins the race is picked up by the next select.
func resolveOrCreate[T any](ctx context.Context, db *gorm.DB, find func(*gorm.DB) *gorm.DB, build func() *T) (*T, error) {
	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		var existing T
		err := find(db.WithContext(ctx)).Take(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, translate(err, ErrNotFound)
		}

		row := build()
		result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if result.Error != nil {
			return nil, translate(result.Error, ErrNotFound)
		}
		if result.RowsAffected > 0 {
			return row, nil
		}
	}
	return nil, ErrResolveConflict
}
