package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/apperr"
	"taskboard/internal/database/dbtest"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/ordering"
	"taskboard/internal/repository"
	"taskboard/internal/repository/memory"
)

func TestMain(m *testing.M) {
	os.Exit(dbtest.Main(m))
}

var backends = []struct {
	name string
	open func(t *testing.T) repository.Store
}{
	{"memory", func(*testing.T) repository.Store { return memory.NewStore() }},
	{"postgres", dbtest.Store},
}

var errInjected = errors.New("injected failure")

// faultyStore fails one repository call inside transactions: "comments"
// breaks comment inserts, "hydrate" breaks loading subtasks back.
type faultyStore struct {
	repository.Store
	fail string
}

type faultyComments struct {
	repository.CommentStore
	fail string
}

type faultySubtasks struct {
	repository.SubtaskStore
	fail string
}

func (f faultyStore) Comments() repository.CommentStore {
	return faultyComments{f.Store.Comments(), f.fail}
}

func (f faultyStore) Subtasks() repository.SubtaskStore {
	return faultySubtasks{f.Store.Subtasks(), f.fail}
}

func (f faultyStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return f.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(faultyStore{tx, f.fail})
	})
}

func (c faultyComments) CreateMany(ctx context.Context, comments []model.Comment) error {
	if c.fail == "comments" {
		return errInjected
	}
	return c.CommentStore.CreateMany(ctx, comments)
}

func (s faultySubtasks) ListByTasks(ctx context.Context, taskIDs []uuid.UUID) ([]model.Subtask, error) {
	if s.fail == "hydrate" {
		return nil, errInjected
	}
	return s.SubtaskStore.ListByTasks(ctx, taskIDs)
}

// lockLog records the order of column and task locks.
type lockLog struct {
	repository.Store
	calls *[]string
}

type lockLogColumns struct {
	repository.ColumnStore
	calls *[]string
}

type lockLogTasks struct {
	repository.TaskStore
	calls *[]string
}

func (l lockLog) Columns() repository.ColumnStore { return lockLogColumns{l.Store.Columns(), l.calls} }
func (l lockLog) Tasks() repository.TaskStore     { return lockLogTasks{l.Store.Tasks(), l.calls} }

func (l lockLog) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return l.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(lockLog{tx, l.calls})
	})
}

func (c lockLogColumns) Lock(ctx context.Context, ids ...uuid.UUID) ([]model.Column, error) {
	*c.calls = append(*c.calls, "column")
	return c.ColumnStore.Lock(ctx, ids...)
}

func (t lockLogTasks) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	*t.calls = append(*t.calls, "task")
	return t.TaskStore.GetForUpdate(ctx, id)
}

func TestCreateTask_FailureRollsBackEverything(t *testing.T) {
	for _, b := range backends {
		for _, fail := range []string{"comments", "hydrate"} {
			t.Run(b.name+"/"+fail, func(t *testing.T) {
				h := newHarnessOn(t, b.open(t), notify.WorkspaceScoped)
				ctx := context.Background()
				ann, bob := h.user(t, "ann"), h.user(t, "bob")
				conn := h.hub.Register(bob.ID)
				tasks := NewTaskService(faultyStore{h.store, fail}, ordering.NewEngine(),
					notify.NewResolver(notify.WorkspaceScoped), notify.NewPublisher(h.hub, h.log, nil), h.log)

				_, err := tasks.Create(ctx, ann.ID, CreateTaskInput{
					Title:           "Launch",
					AssignedUserIDs: []uuid.UUID{bob.ID},
					Subtasks:        []SubtaskInput{{Title: "a"}},
					Comments:        []CommentInput{{Content: "hi"}},
				})

				assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
				assert.ErrorIs(t, err, errInjected)

				workspaces, err := h.workspaces.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, workspaces)
				list, err := h.tasks.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, list)
				assert.Empty(t, h.messages(t, ann.ID))
				assert.Empty(t, h.messages(t, bob.ID))
				select {
				case payload := <-conn.Messages():
					t.Fatalf("rolled back work was delivered: %s", payload.Kind)
				default:
				}
			})
		}
	}
}

func TestDeleteTask_RemovesDependents(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			h := newHarnessOn(t, b.open(t), notify.WorkspaceScoped)
			ctx := context.Background()
			ann, bob := h.user(t, "ann"), h.user(t, "bob")
			res, err := h.tasks.Create(ctx, ann.ID, CreateTaskInput{
				Title:           "Launch",
				AssignedUserIDs: []uuid.UUID{bob.ID},
				Subtasks:        []SubtaskInput{{Title: "a"}, {Title: "b"}},
				Comments:        []CommentInput{{Content: "hi"}},
			})
			require.NoError(t, err)
			ids := []uuid.UUID{res.Task.ID}

			require.NoError(t, h.tasks.Delete(ctx, ann.ID, res.Task.ID))

			subtasks, err := h.store.Subtasks().ListByTasks(ctx, ids)
			require.NoError(t, err)
			assert.Empty(t, subtasks)
			comments, err := h.store.Comments().ListByTasks(ctx, ids)
			require.NoError(t, err)
			assert.Empty(t, comments)
			assignments, err := h.store.Assignments().ListByTasks(ctx, ids)
			require.NoError(t, err)
			assert.Empty(t, assignments)
			assert.Contains(t, h.messages(t, bob.ID), `Task "Launch" has been deleted`)
		})
	}
}

func TestDeleteTask_LocksColumnBeforeTask(t *testing.T) {
	h := newHarness(t, notify.WorkspaceScoped)
	ctx := context.Background()
	ann := h.user(t, "ann")
	res, err := h.tasks.Create(ctx, ann.ID, CreateTaskInput{Title: "Launch"})
	require.NoError(t, err)
	var calls []string
	tasks := NewTaskService(lockLog{h.store, &calls}, ordering.NewEngine(),
		notify.NewResolver(notify.WorkspaceScoped), notify.NewPublisher(h.hub, h.log, nil), h.log)

	require.NoError(t, tasks.Delete(ctx, ann.ID, res.Task.ID))

	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, []string{"column", "task"}, calls[:2])
}

func TestMoveAndDelete_ConcurrentKeepColumnsDense(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			h := newHarnessOn(t, b.open(t), notify.WorkspaceScoped)
			ctx := context.Background()
			ann, bob := h.user(t, "ann"), h.user(t, "bob")

			var ids []uuid.UUID
			var boardID uuid.UUID
			for i := 0; i < 6; i++ {
				res, err := h.tasks.Create(ctx, ann.ID, CreateTaskInput{Title: "Launch", AssignedUserIDs: []uuid.UUID{bob.ID}})
				require.NoError(t, err)
				ids = append(ids, res.Task.ID)
				boardID = res.BoardID
			}
			done, err := h.columns.Create(ctx, ann.ID, boardID, "done")
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, len(ids))
			for i, id := range ids {
				wg.Add(1)
				go func(i int, id uuid.UUID) {
					defer wg.Done()
					if i%3 == 0 {
						errs <- h.tasks.Delete(ctx, ann.ID, id)
						return
					}
					_, err := h.tasks.Move(ctx, ann.ID, id, done.ID)
					errs <- err
				}(i, id)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}
			board, err := h.boards.Get(ctx, boardID)
			require.NoError(t, err)
			require.Len(t, board.Columns, 2)
			assert.Empty(t, board.Columns[0].Tasks)
			require.Len(t, board.Columns[1].Tasks, 4)
			for i, task := range board.Columns[1].Tasks {
				assert.Equal(t, i, task.Order)
			}
		})
	}
}
