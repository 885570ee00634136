package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Store groups the entity repositories. Repositories obtained from the Store
// passed to an InTx callback run inside that transaction; calling InTx on a
// transactional Store opens a nested transaction (a savepoint).
type Store interface {
	Workspaces() WorkspaceStore
	Boards() BoardStore
	Columns() ColumnStore
	Tasks() TaskStore
	Subtasks() SubtaskStore
	Comments() CommentStore
	Assignments() AssignmentStore
	Users() UserStore
	Notifications() NotificationStore

	InTx(ctx context.Context, fn func(tx Store) error) error
}

type WorkspaceStore interface {
	Create(ctx context.Context, ws *model.Workspace) error
	FindOrCreate(ctx context.Context, name string) (*model.Workspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	List(ctx context.Context) ([]model.Workspace, error)
}

type BoardStore interface {
	Create(ctx context.Context, board *model.Board) error
	FindOrCreate(ctx context.Context, workspaceID uuid.UUID, name string) (*model.Board, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	// Lock takes a row lock on the board for the rest of the transaction.
	Lock(ctx context.Context, id uuid.UUID) (*model.Board, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Board, error)
}

type ColumnStore interface {
	FindOrCreateName(ctx context.Context, name string) (*model.ColumnName, error)
	Create(ctx context.Context, column *model.Column) error
	FindOrCreate(ctx context.Context, boardID, columnNameID uuid.UUID, order int) (*model.Column, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Column, error)
	ListByBoards(ctx context.Context, boardIDs []uuid.UUID) ([]model.Column, error)
	// Lock takes row locks on the given columns in id order and returns
	// the columns that exist.
	Lock(ctx context.Context, ids ...uuid.UUID) ([]model.Column, error)
	// MaxOrder returns the highest column order on the board, -1 if none.
	MaxOrder(ctx context.Context, boardID uuid.UUID) (int, error)
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	// GetForUpdate loads the task with a row lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	ListByColumns(ctx context.Context, columnIDs []uuid.UUID) ([]model.Task, error)
	Search(ctx context.Context, query string) ([]model.Task, error)
	ListDueForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// MaxOrder returns the highest order in the column ignoring exclude,
	// -1 if the column holds no other task.
	MaxOrder(ctx context.Context, columnID, exclude uuid.UUID) (int, error)
	// CloseGap decrements the order of every task in the column placed
	// after the given order.
	CloseGap(ctx context.Context, columnID uuid.UUID, after int) error
	SetPlacement(ctx context.Context, id, columnID uuid.UUID, order int) error
	CountByColumn(ctx context.Context) ([]model.ColumnStat, error)
}

type SubtaskStore interface {
	Create(ctx context.Context, subtask *model.Subtask) error
	CreateMany(ctx context.Context, subtasks []model.Subtask) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error)
	Update(ctx context.Context, subtask *model.Subtask) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
	ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.Subtask, error)
}

type CommentStore interface {
	CreateMany(ctx context.Context, comments []model.Comment) error
	ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.Comment, error)
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]model.Comment, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}

type AssignmentStore interface {
	// Assign creates the missing UserTask rows; existing pairs are kept.
	Assign(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	UserIDsByTask(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
	ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.UserTask, error)
	// UserIDsInColumns returns the distinct users assigned to any task in the columns.
	UserIDsInColumns(ctx context.Context, columnIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByIDs returns the users that exist among ids.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
