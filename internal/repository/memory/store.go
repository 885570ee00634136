// Package memory is an in-process repository.Store. Transactions are
// serialized by one mutex and work on a copy of the data that replaces the
// committed state on success.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type data struct {
	seq int64
	// created records insertion order; ties on timestamps sort by it.
	created map[uuid.UUID]int64

	workspaces    map[uuid.UUID]model.Workspace
	boards        map[uuid.UUID]model.Board
	columnNames   map[uuid.UUID]model.ColumnName
	columns       map[uuid.UUID]model.Column
	tasks         map[uuid.UUID]model.Task
	subtasks      map[uuid.UUID]model.Subtask
	comments      map[uuid.UUID]model.Comment
	assignments   map[model.UserTask]int64
	users         map[uuid.UUID]model.User
	notifications map[uuid.UUID]model.Notification
}

func newData() *data {
	return &data{
		created:       map[uuid.UUID]int64{},
		workspaces:    map[uuid.UUID]model.Workspace{},
		boards:        map[uuid.UUID]model.Board{},
		columnNames:   map[uuid.UUID]model.ColumnName{},
		columns:       map[uuid.UUID]model.Column{},
		tasks:         map[uuid.UUID]model.Task{},
		subtasks:      map[uuid.UUID]model.Subtask{},
		comments:      map[uuid.UUID]model.Comment{},
		assignments:   map[model.UserTask]int64{},
		users:         map[uuid.UUID]model.User{},
		notifications: map[uuid.UUID]model.Notification{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		seq:           d.seq,
		created:       cloneMap(d.created),
		workspaces:    cloneMap(d.workspaces),
		boards:        cloneMap(d.boards),
		columnNames:   cloneMap(d.columnNames),
		columns:       cloneMap(d.columns),
		tasks:         cloneMap(d.tasks),
		subtasks:      cloneMap(d.subtasks),
		comments:      cloneMap(d.comments),
		assignments:   cloneMap(d.assignments),
		users:         cloneMap(d.users),
		notifications: cloneMap(d.notifications),
	}
}

func (d *data) stamp(id uuid.UUID) {
	d.seq++
	d.created[id] = d.seq
}

// Store implements repository.Store in memory.
type Store struct {
	mu *sync.Mutex
	d  *data
	// inTx is set on stores handed to InTx callbacks; they already hold mu.
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, d: newData()}
}

func (s *Store) run(fn func(d *data) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.d)
}

// InTx runs fn against a copy of the data and commits the copy when fn
// succeeds. Called on a transactional store it behaves as a savepoint.
// fn must not use the outer non-transactional store.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(func(d *data) error {
		work := d.clone()
		if err := fn(&Store{mu: s.mu, d: work, inTx: true}); err != nil {
			return err
		}
		*d = *work
		return nil
	})
}

func (s *Store) Workspaces() repository.WorkspaceStore       { return workspaces{s} }
func (s *Store) Boards() repository.BoardStore               { return boards{s} }
func (s *Store) Columns() repository.ColumnStore             { return columns{s} }
func (s *Store) Tasks() repository.TaskStore                 { return tasks{s} }
func (s *Store) Subtasks() repository.SubtaskStore           { return subtasks{s} }
func (s *Store) Comments() repository.CommentStore           { return comments{s} }
func (s *Store) Assignments() repository.AssignmentStore     { return assignments{s} }
func (s *Store) Users() repository.UserStore                 { return users{s} }
func (s *Store) Notifications() repository.NotificationStore { return notifications{s} }

func now() time.Time {
	return time.Now().UTC()
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// sortByCreation orders rows by insertion sequence.
func sortByCreation[T any](d *data, rows []T, id func(T) uuid.UUID) {
	sort.SliceStable(rows, func(i, j int) bool {
		return d.created[id(rows[i])] < d.created[id(rows[j])]
	})
}
