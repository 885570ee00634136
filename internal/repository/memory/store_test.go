package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/repository/memory"
)

func seedColumn(t *testing.T, s *memory.Store) model.Column {
	t.Helper()
	ctx := context.Background()
	ws, err := s.Workspaces().FindOrCreate(ctx, "Roadmap")
	require.NoError(t, err)
	board, err := s.Boards().FindOrCreate(ctx, ws.ID, "Roadmap")
	require.NoError(t, err)
	label, err := s.Columns().FindOrCreateName(ctx, model.DefaultColumnName)
	require.NoError(t, err)
	column, err := s.Columns().FindOrCreate(ctx, board.ID, label.ID, 1)
	require.NoError(t, err)
	return *column
}

func TestInTx_Commit(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	err := s.InTx(ctx, func(tx repository.Store) error {
		return tx.Users().Create(ctx, &model.User{UserName: "ann", Email: "ann@example.com"})
	})

	require.NoError(t, err)
	ids, err := s.Users().ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestInTx_RollbackOnError(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, &model.User{UserName: "ann", Email: "ann@example.com"}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	ids, err := s.Users().ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInTx_NestedSavepoint(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	err := s.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, &model.User{UserName: "ann", Email: "ann@example.com"}); err != nil {
			return err
		}
		inner := tx.InTx(ctx, func(sp repository.Store) error {
			if err := sp.Users().Create(ctx, &model.User{UserName: "bob", Email: "bob@example.com"}); err != nil {
				return err
			}
			return errors.New("discard")
		})
		assert.Error(t, inner)
		return nil
	})

	require.NoError(t, err)
	ids, err := s.Users().ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestInTx_CanceledContext(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(repository.Store) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFindOrCreate_IsIdempotent(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	first, err := s.Workspaces().FindOrCreate(ctx, "Roadmap")
	require.NoError(t, err)
	second, err := s.Workspaces().FindOrCreate(ctx, "Roadmap")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := s.Workspaces().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &model.User{UserName: "ann", Email: "ann@example.com"}))

	err := s.Users().Create(ctx, &model.User{UserName: "ann2", Email: "ann@example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestNotifications_RequireExistingUser(t *testing.T) {
	s := memory.NewStore()

	err := s.Notifications().Create(context.Background(), &model.Notification{UserID: uuid.New(), Message: "hi"})

	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestTasks_DeleteCascades(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	column := seedColumn(t, s)
	user := model.User{UserName: "ann", Email: "ann@example.com"}
	require.NoError(t, s.Users().Create(ctx, &user))

	task := model.Task{ColumnID: column.ID, Title: "Ship", Status: model.StatusStart}
	require.NoError(t, s.Tasks().Create(ctx, &task))
	require.NoError(t, s.Subtasks().CreateMany(ctx, []model.Subtask{{TaskID: task.ID, Title: "a"}}))
	require.NoError(t, s.Comments().CreateMany(ctx, []model.Comment{{TaskID: task.ID, UserID: &user.ID, Content: "c"}}))
	require.NoError(t, s.Assignments().Assign(ctx, task.ID, []uuid.UUID{user.ID}))
	n := model.Notification{UserID: user.ID, Message: "m", TaskID: &task.ID}
	require.NoError(t, s.Notifications().Create(ctx, &n))

	require.NoError(t, s.Tasks().Delete(ctx, task.ID))

	subtasks, err := s.Subtasks().ListByTasks(ctx, []uuid.UUID{task.ID})
	require.NoError(t, err)
	assert.Empty(t, subtasks)
	comments, err := s.Comments().ListByTasks(ctx, []uuid.UUID{task.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)
	assignees, err := s.Assignments().UserIDsByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assignees)

	kept, err := s.Notifications().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Nil(t, kept[0].TaskID)
}

func TestTasks_CloseGapAndMaxOrder(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	column := seedColumn(t, s)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		task := model.Task{ColumnID: column.ID, Title: "t", Status: model.StatusStart, Order: i}
		require.NoError(t, s.Tasks().Create(ctx, &task))
		ids = append(ids, task.ID)
	}

	require.NoError(t, s.Tasks().Delete(ctx, ids[0]))
	require.NoError(t, s.Tasks().CloseGap(ctx, column.ID, 0))

	remaining, err := s.Tasks().ListByColumns(ctx, []uuid.UUID{column.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, ids[1], remaining[0].ID)
	assert.Equal(t, 0, remaining[0].Order)
	assert.Equal(t, 1, remaining[1].Order)

	maxOrder, err := s.Tasks().MaxOrder(ctx, column.ID, remaining[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, maxOrder)
}

func TestNotifications_OwnerScoped(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	owner := model.User{UserName: "ann", Email: "ann@example.com"}
	other := model.User{UserName: "bob", Email: "bob@example.com"}
	require.NoError(t, s.Users().Create(ctx, &owner))
	require.NoError(t, s.Users().Create(ctx, &other))
	n := model.Notification{UserID: owner.ID, Message: "m"}
	require.NoError(t, s.Notifications().Create(ctx, &n))

	assert.ErrorIs(t, s.Notifications().MarkRead(ctx, n.ID, other.ID), repository.ErrNotificationNotFound)
	assert.ErrorIs(t, s.Notifications().Delete(ctx, n.ID, other.ID), repository.ErrNotificationNotFound)

	require.NoError(t, s.Notifications().MarkRead(ctx, n.ID, owner.ID))
	require.NoError(t, s.Notifications().MarkRead(ctx, n.ID, owner.ID))
	list, err := s.Notifications().ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
