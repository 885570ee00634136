package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

func duplicate(what string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, what)
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", repository.ErrInvalidReference, what)
}

type workspaces struct{ s *Store }

func (r workspaces) Create(_ context.Context, ws *model.Workspace) error {
	return r.s.run(func(d *data) error {
		return insertWorkspace(d, ws)
	})
}

func insertWorkspace(d *data, ws *model.Workspace) error {
	for _, existing := range d.workspaces {
		if existing.Name == ws.Name {
			return duplicate("workspace name")
		}
	}
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = now()
	}
	d.workspaces[ws.ID] = *ws
	d.stamp(ws.ID)
	return nil
}

func (r workspaces) FindOrCreate(_ context.Context, name string) (*model.Workspace, error) {
	var out model.Workspace
	err := r.s.run(func(d *data) error {
		for _, ws := range d.workspaces {
			if ws.Name == name {
				out = ws
				return nil
			}
		}
		out = model.Workspace{Name: name}
		return insertWorkspace(d, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r workspaces) GetByID(_ context.Context, id uuid.UUID) (*model.Workspace, error) {
	var out model.Workspace
	err := r.s.run(func(d *data) error {
		ws, ok := d.workspaces[id]
		if !ok {
			return repository.ErrWorkspaceNotFound
		}
		out = ws
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r workspaces) List(_ context.Context) ([]model.Workspace, error) {
	var out []model.Workspace
	err := r.s.run(func(d *data) error {
		for _, ws := range d.workspaces {
			out = append(out, ws)
		}
		sortByCreation(d, out, func(ws model.Workspace) uuid.UUID { return ws.ID })
		return nil
	})
	return out, err
}

type boards struct{ s *Store }

func insertBoard(d *data, board *model.Board) error {
	if _, ok := d.workspaces[board.WorkspaceID]; !ok {
		return missing("board workspace")
	}
	for _, existing := range d.boards {
		if existing.WorkspaceID == board.WorkspaceID && existing.Name == board.Name {
			return duplicate("board name")
		}
	}
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	if board.CreatedAt.IsZero() {
		board.CreatedAt = now()
	}
	d.boards[board.ID] = *board
	d.stamp(board.ID)
	return nil
}

func (r boards) Create(_ context.Context, board *model.Board) error {
	return r.s.run(func(d *data) error {
		return insertBoard(d, board)
	})
}

func (r boards) FindOrCreate(_ context.Context, workspaceID uuid.UUID, name string) (*model.Board, error) {
	var out model.Board
	err := r.s.run(func(d *data) error {
		for _, b := range d.boards {
			if b.WorkspaceID == workspaceID && b.Name == name {
				out = b
				return nil
			}
		}
		out = model.Board{WorkspaceID: workspaceID, Name: name}
		return insertBoard(d, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r boards) GetByID(_ context.Context, id uuid.UUID) (*model.Board, error) {
	var out model.Board
	err := r.s.run(func(d *data) error {
		b, ok := d.boards[id]
		if !ok {
			return repository.ErrBoardNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Lock is GetByID; the transaction mutex already serializes writers.
func (r boards) Lock(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	return r.GetByID(ctx, id)
}

func (r boards) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Board, error) {
	var out []model.Board
	err := r.s.run(func(d *data) error {
		for id := range idSet(ids) {
			if b, ok := d.boards[id]; ok {
				out = append(out, b)
			}
		}
		sortByCreation(d, out, func(b model.Board) uuid.UUID { return b.ID })
		return nil
	})
	return out, err
}

func (r boards) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]model.Board, error) {
	var out []model.Board
	err := r.s.run(func(d *data) error {
		for _, b := range d.boards {
			if b.WorkspaceID == workspaceID {
				out = append(out, b)
			}
		}
		sortByCreation(d, out, func(b model.Board) uuid.UUID { return b.ID })
		return nil
	})
	return out, err
}

type columns struct{ s *Store }

func (d *data) namedColumn(c model.Column) model.Column {
	c.Name = d.columnNames[c.ColumnNameID].Name
	return c
}

func insertColumn(d *data, column *model.Column) error {
	if _, ok := d.boards[column.BoardID]; !ok {
		return missing("column board")
	}
	if _, ok := d.columnNames[column.ColumnNameID]; !ok {
		return missing("column name")
	}
	for _, existing := range d.columns {
		if existing.BoardID == column.BoardID && existing.ColumnNameID == column.ColumnNameID {
			return duplicate("column name on board")
		}
	}
	if column.ID == uuid.Nil {
		column.ID = uuid.New()
	}
	column.Name = ""
	d.columns[column.ID] = *column
	d.stamp(column.ID)
	return nil
}

func (r columns) FindOrCreateName(_ context.Context, name string) (*model.ColumnName, error) {
	var out model.ColumnName
	err := r.s.run(func(d *data) error {
		for _, cn := range d.columnNames {
			if cn.Name == name {
				out = cn
				return nil
			}
		}
		out = model.ColumnName{ID: uuid.New(), Name: name}
		d.columnNames[out.ID] = out
		d.stamp(out.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r columns) Create(_ context.Context, column *model.Column) error {
	return r.s.run(func(d *data) error {
		return insertColumn(d, column)
	})
}

func (r columns) FindOrCreate(_ context.Context, boardID, columnNameID uuid.UUID, order int) (*model.Column, error) {
	var out model.Column
	err := r.s.run(func(d *data) error {
		for _, c := range d.columns {
			if c.BoardID == boardID && c.ColumnNameID == columnNameID {
				out = c
				return nil
			}
		}
		out = model.Column{BoardID: boardID, ColumnNameID: columnNameID, Order: order}
		return insertColumn(d, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r columns) GetByID(_ context.Context, id uuid.UUID) (*model.Column, error) {
	var out model.Column
	err := r.s.run(func(d *data) error {
		c, ok := d.columns[id]
		if !ok {
			return repository.ErrColumnNotFound
		}
		out = d.namedColumn(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r columns) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Column, error) {
	var out []model.Column
	err := r.s.run(func(d *data) error {
		for id := range idSet(ids) {
			if c, ok := d.columns[id]; ok {
				out = append(out, d.namedColumn(c))
			}
		}
		sortByCreation(d, out, func(c model.Column) uuid.UUID { return c.ID })
		return nil
	})
	return out, err
}

func (r columns) ListByBoards(_ context.Context, boardIDs []uuid.UUID) ([]model.Column, error) {
	var out []model.Column
	err := r.s.run(func(d *data) error {
		wanted := idSet(boardIDs)
		for _, c := range d.columns {
			if _, ok := wanted[c.BoardID]; ok {
				out = append(out, d.namedColumn(c))
			}
		}
		sortByCreation(d, out, func(c model.Column) uuid.UUID { return c.ID })
		sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
		return nil
	})
	return out, err
}

// Lock returns the existing columns in id order.
func (r columns) Lock(_ context.Context, ids ...uuid.UUID) ([]model.Column, error) {
	var out []model.Column
	err := r.s.run(func(d *data) error {
		for id := range idSet(ids) {
			if c, ok := d.columns[id]; ok {
				out = append(out, c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
		return nil
	})
	return out, err
}

func (r columns) MaxOrder(_ context.Context, boardID uuid.UUID) (int, error) {
	highest := -1
	err := r.s.run(func(d *data) error {
		for _, c := range d.columns {
			if c.BoardID == boardID && c.Order > highest {
				highest = c.Order
			}
		}
		return nil
	})
	return highest, err
}

type tasks struct{ s *Store }

func (r tasks) Create(_ context.Context, task *model.Task) error {
	return r.s.run(func(d *data) error {
		if _, ok := d.columns[task.ColumnID]; !ok {
			return missing("task column")
		}
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		ts := now()
		if task.CreatedAt.IsZero() {
			task.CreatedAt = ts
		}
		task.UpdatedAt = ts
		d.tasks[task.ID] = *task
		d.stamp(task.ID)
		return nil
	})
}

func (r tasks) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	var out model.Task
	err := r.s.run(func(d *data) error {
		t, ok := d.tasks[id]
		if !ok {
			return repository.ErrTaskNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r tasks) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return r.GetByID(ctx, id)
}

func (r tasks) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Task, error) {
	return r.filter(func(t model.Task) bool {
		for _, id := range ids {
			if t.ID == id {
				return true
			}
		}
		return false
	})
}

// filter returns matching tasks by ascending order.
func (r tasks) filter(keep func(model.Task) bool) ([]model.Task, error) {
	var out []model.Task
	err := r.s.run(func(d *data) error {
		for _, t := range d.tasks {
			if keep(t) {
				out = append(out, t)
			}
		}
		sortByCreation(d, out, func(t model.Task) uuid.UUID { return t.ID })
		sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
		return nil
	})
	return out, err
}

func (r tasks) List(_ context.Context) ([]model.Task, error) {
	return r.filter(func(model.Task) bool { return true })
}

func (r tasks) ListByColumns(_ context.Context, columnIDs []uuid.UUID) ([]model.Task, error) {
	wanted := idSet(columnIDs)
	return r.filter(func(t model.Task) bool {
		_, ok := wanted[t.ColumnID]
		return ok
	})
}

func (r tasks) Search(_ context.Context, query string) ([]model.Task, error) {
	q := strings.ToLower(query)
	return r.filter(func(t model.Task) bool {
		if strings.Contains(strings.ToLower(t.Title), q) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
	})
}

func (r tasks) ListDueForUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]model.Task, error) {
	var out []model.Task
	err := r.s.run(func(d *data) error {
		for ut := range d.assignments {
			if ut.UserID != userID {
				continue
			}
			t, ok := d.tasks[ut.TaskID]
			if !ok || t.TimeEnd == nil {
				continue
			}
			if t.TimeEnd.Before(from) || t.TimeEnd.After(to) {
				continue
			}
			out = append(out, t)
		}
		sortByCreation(d, out, func(t model.Task) uuid.UUID { return t.ID })
		return nil
	})
	return out, err
}

// Delete removes the task with its subtasks, comments and assignments and
// clears the task reference of notifications about it.
func (r tasks) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.run(func(d *data) error {
		if _, ok := d.tasks[id]; !ok {
			return repository.ErrTaskNotFound
		}
		delete(d.tasks, id)
		for sid, st := range d.subtasks {
			if st.TaskID == id {
				delete(d.subtasks, sid)
				clearSubtaskRefs(d, sid)
			}
		}
		for cid, c := range d.comments {
			if c.TaskID == id {
				delete(d.comments, cid)
			}
		}
		for ut := range d.assignments {
			if ut.TaskID == id {
				delete(d.assignments, ut)
			}
		}
		for nid, n := range d.notifications {
			if n.TaskID != nil && *n.TaskID == id {
				n.TaskID = nil
				d.notifications[nid] = n
			}
		}
		return nil
	})
}

func clearSubtaskRefs(d *data, subtaskID uuid.UUID) {
	for nid, n := range d.notifications {
		if n.SubtaskID != nil && *n.SubtaskID == subtaskID {
			n.SubtaskID = nil
			d.notifications[nid] = n
		}
	}
}

func (r tasks) MaxOrder(_ context.Context, columnID, exclude uuid.UUID) (int, error) {
	highest := -1
	err := r.s.run(func(d *data) error {
		for _, t := range d.tasks {
			if t.ColumnID == columnID && t.ID != exclude && t.Order > highest {
				highest = t.Order
			}
		}
		return nil
	})
	return highest, err
}

func (r tasks) CloseGap(_ context.Context, columnID uuid.UUID, after int) error {
	return r.s.run(func(d *data) error {
		for id, t := range d.tasks {
			if t.ColumnID == columnID && t.Order > after {
				t.Order--
				d.tasks[id] = t
			}
		}
		return nil
	})
}

func (r tasks) SetPlacement(_ context.Context, id, columnID uuid.UUID, order int) error {
	return r.s.run(func(d *data) error {
		t, ok := d.tasks[id]
		if !ok {
			return repository.ErrTaskNotFound
		}
		if _, ok := d.columns[columnID]; !ok {
			return missing("task column")
		}
		t.ColumnID = columnID
		t.Order = order
		t.UpdatedAt = now()
		d.tasks[id] = t
		return nil
	})
}

func (r tasks) CountByColumn(_ context.Context) ([]model.ColumnStat, error) {
	var out []model.ColumnStat
	err := r.s.run(func(d *data) error {
		counts := map[uuid.UUID]int64{}
		for _, t := range d.tasks {
			counts[t.ColumnID]++
		}
		for columnID, n := range counts {
			c := d.namedColumn(d.columns[columnID])
			out = append(out, model.ColumnStat{ColumnID: columnID, ColumnName: c.Name, Count: n})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].ColumnName != out[j].ColumnName {
				return out[i].ColumnName < out[j].ColumnName
			}
			return out[i].ColumnID.String() < out[j].ColumnID.String()
		})
		return nil
	})
	return out, err
}

type subtasks struct{ s *Store }

func insertSubtask(d *data, st *model.Subtask) error {
	if _, ok := d.tasks[st.TaskID]; !ok {
		return missing("subtask task")
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	d.subtasks[st.ID] = *st
	d.stamp(st.ID)
	return nil
}

func (r subtasks) Create(_ context.Context, st *model.Subtask) error {
	return r.s.run(func(d *data) error {
		return insertSubtask(d, st)
	})
}

func (r subtasks) CreateMany(_ context.Context, sts []model.Subtask) error {
	return r.s.run(func(d *data) error {
		for i := range sts {
			if err := insertSubtask(d, &sts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r subtasks) GetByID(_ context.Context, id uuid.UUID) (*model.Subtask, error) {
	var out model.Subtask
	err := r.s.run(func(d *data) error {
		st, ok := d.subtasks[id]
		if !ok {
			return repository.ErrSubtaskNotFound
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r subtasks) Update(_ context.Context, st *model.Subtask) error {
	return r.s.run(func(d *data) error {
		existing, ok := d.subtasks[st.ID]
		if !ok {
			return repository.ErrSubtaskNotFound
		}
		existing.Title = st.Title
		existing.IsDone = st.IsDone
		d.subtasks[st.ID] = existing
		return nil
	})
}

func (r subtasks) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.run(func(d *data) error {
		if _, ok := d.subtasks[id]; !ok {
			return repository.ErrSubtaskNotFound
		}
		delete(d.subtasks, id)
		clearSubtaskRefs(d, id)
		return nil
	})
}

func (r subtasks) DeleteByTask(_ context.Context, taskID uuid.UUID) error {
	return r.s.run(func(d *data) error {
		for id, st := range d.subtasks {
			if st.TaskID == taskID {
				delete(d.subtasks, id)
				clearSubtaskRefs(d, id)
			}
		}
		return nil
	})
}

func (r subtasks) ListByTasks(_ context.Context, taskIDs []uuid.UUID) ([]model.Subtask, error) {
	var out []model.Subtask
	err := r.s.run(func(d *data) error {
		wanted := idSet(taskIDs)
		for _, st := range d.subtasks {
			if _, ok := wanted[st.TaskID]; ok {
				out = append(out, st)
			}
		}
		sortByCreation(d, out, func(st model.Subtask) uuid.UUID { return st.ID })
		return nil
	})
	return out, err
}

type comments struct{ s *Store }

func (r comments) CreateMany(_ context.Context, cs []model.Comment) error {
	return r.s.run(func(d *data) error {
		for i := range cs {
			c := &cs[i]
			if _, ok := d.tasks[c.TaskID]; !ok {
				return missing("comment task")
			}
			if c.UserID != nil {
				if _, ok := d.users[*c.UserID]; !ok {
					return missing("comment user")
				}
			}
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now()
			}
			d.comments[c.ID] = *c
			d.stamp(c.ID)
		}
		return nil
	})
}

func (r comments) list(keep func(model.Comment) bool) ([]model.Comment, error) {
	var out []model.Comment
	err := r.s.run(func(d *data) error {
		for _, c := range d.comments {
			if keep(c) {
				out = append(out, c)
			}
		}
		sortByCreation(d, out, func(c model.Comment) uuid.UUID { return c.ID })
		return nil
	})
	return out, err
}

func (r comments) ListByTasks(_ context.Context, taskIDs []uuid.UUID) ([]model.Comment, error) {
	wanted := idSet(taskIDs)
	return r.list(func(c model.Comment) bool {
		_, ok := wanted[c.TaskID]
		return ok
	})
}

func (r comments) ListByUserSince(_ context.Context, userID uuid.UUID, since time.Time) ([]model.Comment, error) {
	return r.list(func(c model.Comment) bool {
		return c.UserID != nil && *c.UserID == userID && !c.CreatedAt.Before(since)
	})
}

func (r comments) DeleteByTask(_ context.Context, taskID uuid.UUID) error {
	return r.s.run(func(d *data) error {
		for id, c := range d.comments {
			if c.TaskID == taskID {
				delete(d.comments, id)
			}
		}
		return nil
	})
}

type assignments struct{ s *Store }

func (r assignments) Assign(_ context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	return r.s.run(func(d *data) error {
		if _, ok := d.tasks[taskID]; !ok {
			return missing("assignment task")
		}
		for _, userID := range userIDs {
			if _, ok := d.users[userID]; !ok {
				return missing("assignment user")
			}
		}
		for _, userID := range userIDs {
			key := model.UserTask{UserID: userID, TaskID: taskID}
			if _, ok := d.assignments[key]; ok {
				continue
			}
			d.seq++
			d.assignments[key] = d.seq
		}
		return nil
	})
}

// sorted returns the assignments matching keep in insertion order.
func (r assignments) sorted(keep func(model.UserTask) bool) ([]model.UserTask, error) {
	var out []model.UserTask
	err := r.s.run(func(d *data) error {
		for ut := range d.assignments {
			if keep(ut) {
				out = append(out, ut)
			}
		}
		sort.Slice(out, func(i, j int) bool { return d.assignments[out[i]] < d.assignments[out[j]] })
		return nil
	})
	return out, err
}

func (r assignments) UserIDsByTask(_ context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.sorted(func(ut model.UserTask) bool { return ut.TaskID == taskID })
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, ut := range rows {
		ids = append(ids, ut.UserID)
	}
	return ids, nil
}

func (r assignments) ListByTasks(_ context.Context, taskIDs []uuid.UUID) ([]model.UserTask, error) {
	wanted := idSet(taskIDs)
	return r.sorted(func(ut model.UserTask) bool {
		_, ok := wanted[ut.TaskID]
		return ok
	})
}

func (r assignments) UserIDsInColumns(_ context.Context, columnIDs []uuid.UUID) ([]uuid.UUID, error) {
	wanted := idSet(columnIDs)
	var taskColumn map[uuid.UUID]uuid.UUID
	if err := r.s.run(func(d *data) error {
		taskColumn = make(map[uuid.UUID]uuid.UUID, len(d.tasks))
		for id, t := range d.tasks {
			taskColumn[id] = t.ColumnID
		}
		return nil
	}); err != nil {
		return nil, err
	}
	rows, err := r.sorted(func(ut model.UserTask) bool {
		_, ok := wanted[taskColumn[ut.TaskID]]
		return ok
	})
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, ut := range rows {
		if _, ok := seen[ut.UserID]; ok {
			continue
		}
		seen[ut.UserID] = struct{}{}
		ids = append(ids, ut.UserID)
	}
	return ids, nil
}

func (r assignments) DeleteByTask(_ context.Context, taskID uuid.UUID) error {
	return r.s.run(func(d *data) error {
		for ut := range d.assignments {
			if ut.TaskID == taskID {
				delete(d.assignments, ut)
			}
		}
		return nil
	})
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u *model.User) error {
	return r.s.run(func(d *data) error {
		for _, existing := range d.users {
			if existing.Email == u.Email {
				return duplicate("user email")
			}
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now()
		}
		d.users[u.ID] = *u
		d.stamp(u.ID)
		return nil
	})
}

func (r users) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	var out model.User
	err := r.s.run(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrUserNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r users) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	err := r.s.run(func(d *data) error {
		for id := range idSet(ids) {
			if u, ok := d.users[id]; ok {
				out = append(out, u)
			}
		}
		sortByCreation(d, out, func(u model.User) uuid.UUID { return u.ID })
		return nil
	})
	return out, err
}

func (r users) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	var out []model.User
	err := r.s.run(func(d *data) error {
		for _, u := range d.users {
			out = append(out, u)
		}
		sortByCreation(d, out, func(u model.User) uuid.UUID { return u.ID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(out))
	for _, u := range out {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

type notifications struct{ s *Store }

func (r notifications) Create(_ context.Context, n *model.Notification) error {
	return r.s.run(func(d *data) error {
		if _, ok := d.users[n.UserID]; !ok {
			return missing("notification user")
		}
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now()
		}
		d.notifications[n.ID] = *n
		d.stamp(n.ID)
		return nil
	})
}

func (r notifications) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var out []model.Notification
	err := r.s.run(func(d *data) error {
		for _, n := range d.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		sort.Slice(out, func(i, j int) bool { return d.created[out[i].ID] > d.created[out[j].ID] })
		return nil
	})
	return out, err
}

func (r notifications) ListByUserSince(_ context.Context, userID uuid.UUID, since time.Time) ([]model.Notification, error) {
	var out []model.Notification
	err := r.s.run(func(d *data) error {
		for _, n := range d.notifications {
			if n.UserID == userID && !n.CreatedAt.Before(since) {
				out = append(out, n)
			}
		}
		sortByCreation(d, out, func(n model.Notification) uuid.UUID { return n.ID })
		return nil
	})
	return out, err
}

func (r notifications) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	return r.s.run(func(d *data) error {
		n, ok := d.notifications[id]
		if !ok || n.UserID != userID {
			return repository.ErrNotificationNotFound
		}
		n.IsRead = true
		d.notifications[id] = n
		return nil
	})
}

func (r notifications) Delete(_ context.Context, id, userID uuid.UUID) error {
	return r.s.run(func(d *data) error {
		n, ok := d.notifications[id]
		if !ok || n.UserID != userID {
			return repository.ErrNotificationNotFound
		}
		delete(d.notifications, id)
		return nil
	})
}
