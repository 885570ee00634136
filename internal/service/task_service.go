package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/ordering"
	"taskboard/internal/repository"
)

const (
	DefaultUrgencyLimit = 4
	createdComment      = "Task created"
)

type SubtaskInput struct {
	Title  string
	IsDone bool
}

type CommentInput struct {
	UserID  *uuid.UUID
	Content string
}

type CreateTaskInput struct {
	Title           string
	Description     *string
	TimeStart       *time.Time
	TimeEnd         *time.Time
	Priority        *string
	AssignedUserIDs []uuid.UUID
	Subtasks        []SubtaskInput
	Comments        []CommentInput
}

type TaskService struct {
	store  repository.Store
	engine *ordering.Engine
	fanout fanout
	log    *logrus.Entry
}

func NewTaskService(store repository.Store, engine *ordering.Engine, resolver *notify.Resolver, publisher *notify.Publisher, log *logrus.Entry) *TaskService {
	return &TaskService{
		store:  store,
		engine: engine,
		fanout: fanout{resolver: resolver, publisher: publisher},
		log:    log.WithField("component", "task_service"),
	}
}

// Create provisions the workspace, board and "to do" column named after the
// task title when they are missing, then creates the task with its
// assignees, subtasks and comments in one transaction.
func (s *TaskService) Create(ctx context.Context, actorID uuid.UUID, in CreateTaskInput) (*CreateTaskResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.ValidationFields("title is required", map[string]string{"title": "is required"})
	}

	var result CreateTaskResult
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		ws, err := tx.Workspaces().FindOrCreate(ctx, title)
		if err != nil {
			return err
		}
		board, err := tx.Boards().FindOrCreate(ctx, ws.ID, title)
		if err != nil {
			return err
		}
		label, err := tx.Columns().FindOrCreateName(ctx, model.DefaultColumnName)
		if err != nil {
			return err
		}
		column, err := tx.Columns().FindOrCreate(ctx, board.ID, label.ID, 1)
		if err != nil {
			return err
		}

		order, err := s.engine.Append(ctx, tx, column.ID)
		if err != nil {
			return err
		}
		task := model.Task{
			ID:          uuid.New(),
			ColumnID:    column.ID,
			Title:       title,
			Description: in.Description,
			TimeStart:   in.TimeStart,
			TimeEnd:     in.TimeEnd,
			Status:      model.StatusStart,
			Priority:    in.Priority,
			Order:       order,
		}
		if err := tx.Tasks().Create(ctx, &task); err != nil {
			return err
		}

		assignees, err := s.fanout.resolver.Existing(ctx, tx, in.AssignedUserIDs)
		if err != nil {
			return err
		}
		if err := tx.Assignments().Assign(ctx, task.ID, assignees); err != nil {
			return err
		}

		var subtasks []model.Subtask
		for _, st := range in.Subtasks {
			if strings.TrimSpace(st.Title) == "" {
				continue
			}
			subtasks = append(subtasks, model.Subtask{ID: uuid.New(), TaskID: task.ID, Title: st.Title, IsDone: st.IsDone})
		}
		if err := tx.Subtasks().CreateMany(ctx, subtasks); err != nil {
			return err
		}

		actor, err := s.existingUser(ctx, tx, actorID)
		if err != nil {
			return err
		}
		comments, err := s.seedComments(ctx, tx, task.ID, actor, in.Comments)
		if err != nil {
			return err
		}
		if err := tx.Comments().CreateMany(ctx, comments); err != nil {
			return err
		}

		audience := assignees
		if actor != nil {
			audience = notify.Dedup(append(append([]uuid.UUID{}, assignees...), actor.ID))
		}
		actorName := notify.UnknownActor
		if actor != nil {
			actorName = actor.UserName
		}
		*out = append(*out, s.fanout.emitTo(ctx, tx, notify.TaskCreated(actorID, task.ID, actorName, title), audience))

		for _, c := range comments {
			if c.UserID == nil {
				continue
			}
			commenter, err := s.existingUser(ctx, tx, *c.UserID)
			if err != nil {
				return err
			}
			if commenter == nil {
				continue
			}
			ev := notify.TaskCommented(commenter.ID, task.ID, c.ID, commenter.UserName, title, c.Content)
			*out = append(*out, s.fanout.emitTo(ctx, tx, ev, notify.Without(audience, commenter.ID)))
		}

		views, err := hydrate(ctx, tx, []model.Task{task}, true)
		if err != nil {
			return err
		}
		result = CreateTaskResult{Task: views[0], WorkspaceID: ws.ID, BoardID: board.ID, ColumnID: column.ID}
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to create task")
	}
	return &result, nil
}

// seedComments keeps entries with content; authors default to the actor.
// Without entries a single "Task created" comment by the actor is added.
func (s *TaskService) seedComments(ctx context.Context, tx repository.Store, taskID uuid.UUID, actor *model.User, in []CommentInput) ([]model.Comment, error) {
	var fallback *uuid.UUID
	if actor != nil {
		fallback = &actor.ID
	}
	if len(in) == 0 {
		return []model.Comment{{ID: uuid.New(), TaskID: taskID, UserID: fallback, Content: createdComment}}, nil
	}

	var authors []uuid.UUID
	for _, c := range in {
		if c.UserID != nil {
			authors = append(authors, *c.UserID)
		}
	}
	known, err := s.fanout.resolver.Existing(ctx, tx, authors)
	if err != nil {
		return nil, err
	}
	valid := make(map[uuid.UUID]struct{}, len(known))
	for _, id := range known {
		valid[id] = struct{}{}
	}

	var comments []model.Comment
	for _, c := range in {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		author := fallback
		if c.UserID != nil {
			if _, ok := valid[*c.UserID]; ok {
				id := *c.UserID
				author = &id
			}
		}
		comments = append(comments, model.Comment{ID: uuid.New(), TaskID: taskID, UserID: author, Content: c.Content})
	}
	return comments, nil
}

func (s *TaskService) existingUser(ctx context.Context, tx repository.Store, id uuid.UUID) (*model.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	u, err := tx.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// Get returns the task with subtasks, comments and assignees.
func (s *TaskService) Get(ctx context.Context, taskID uuid.UUID) (*TaskView, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch task")
	}
	views, err := hydrate(ctx, s.store, []model.Task{*task}, true)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch task")
	}
	return &views[0], nil
}

// List returns every task by ascending order.
func (s *TaskService) List(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.store.Tasks().List(ctx)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch tasks")
	}
	views, err := hydrate(ctx, s.store, tasks, false)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch tasks")
	}
	return views, nil
}

func (s *TaskService) Search(ctx context.Context, query string) ([]TaskView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.ValidationFields("query parameter is required", map[string]string{"query": "is required"})
	}
	tasks, err := s.store.Tasks().Search(ctx, query)
	if err != nil {
		return nil, apperr.From(err, "failed to search tasks")
	}
	views, err := hydrate(ctx, s.store, tasks, false)
	if err != nil {
		return nil, apperr.From(err, "failed to search tasks")
	}
	return views, nil
}

func (s *TaskService) Stats(ctx context.Context) ([]model.ColumnStat, error) {
	stats, err := s.store.Tasks().CountByColumn(ctx)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch stats")
	}
	if stats == nil {
		stats = []model.ColumnStat{}
	}
	return stats, nil
}

// Move sends the task to the end of the target column and notifies its
// assignees.
func (s *TaskService) Move(ctx context.Context, actorID, taskID, columnID uuid.UUID) (*MoveResult, error) {
	fields := map[string]string{}
	if taskID == uuid.Nil {
		fields["taskId"] = "is required"
	}
	if columnID == uuid.Nil {
		fields["columnId"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("taskId and columnId are required", fields)
	}

	var result MoveResult
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		placement, err := s.engine.Move(ctx, tx, taskID, columnID)
		if err != nil {
			return err
		}
		target, err := tx.Columns().GetByID(ctx, columnID)
		if err != nil {
			return err
		}
		batch, err := s.fanout.emit(ctx, tx, notify.TaskMoved(actorID, taskID, columnID, placement.Task.Title, target.Name))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		result = MoveResult{TaskID: taskID, ColumnID: columnID, Order: placement.Task.Order}
		return nil
	})
	if errors.Is(err, ordering.ErrTaskMoving) {
		return nil, apperr.Conflict(err.Error())
	}
	if err != nil {
		return nil, apperr.From(err, "failed to move task")
	}
	return &result, nil
}

// Delete removes the task with its subtasks, comments and assignments and
// compacts its column. Assignees are told before the rows go away.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID uuid.UUID) error {
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		task, _, err := s.engine.LockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		batch, err := s.fanout.emit(ctx, tx, notify.TaskDeleted(actorID, task.ID, task.Title))
		if err != nil {
			return err
		}
		*out = append(*out, batch)

		if err := tx.Subtasks().DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if err := tx.Comments().DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if err := tx.Assignments().DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if err := tx.Tasks().Delete(ctx, task.ID); err != nil {
			return err
		}
		return s.engine.Remove(ctx, tx, *task)
	})
	if errors.Is(err, ordering.ErrTaskMoving) {
		return apperr.Conflict(err.Error())
	}
	return apperr.From(err, "failed to delete task")
}

// Urgency ranks boards by the best subtask completion score of their tasks.
// Tasks without subtasks do not count.
func (s *TaskService) Urgency(ctx context.Context, limit int) ([]BoardUrgency, error) {
	if limit <= 0 {
		limit = DefaultUrgencyLimit
	}
	tasks, err := s.store.Tasks().List(ctx)
	if err != nil {
		return nil, apperr.From(err, "failed to rank boards")
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	columnIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		columnIDs = append(columnIDs, t.ColumnID)
	}
	subtasks, err := s.store.Subtasks().ListByTasks(ctx, taskIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to rank boards")
	}
	columns, err := s.store.Columns().GetByIDs(ctx, columnIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to rank boards")
	}
	boardOf := make(map[uuid.UUID]uuid.UUID, len(columns))
	boardIDs := make([]uuid.UUID, 0, len(columns))
	for _, c := range columns {
		boardOf[c.ID] = c.BoardID
		boardIDs = append(boardIDs, c.BoardID)
	}
	boards, err := s.store.Boards().GetByIDs(ctx, boardIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to rank boards")
	}
	names := make(map[uuid.UUID]string, len(boards))
	for _, b := range boards {
		names[b.ID] = b.Name
	}

	done := map[uuid.UUID]int{}
	total := map[uuid.UUID]int{}
	for _, st := range subtasks {
		total[st.TaskID]++
		if st.IsDone {
			done[st.TaskID]++
		}
	}

	best := map[uuid.UUID]int{}
	for _, t := range tasks {
		n := total[t.ID]
		if n == 0 {
			continue
		}
		boardID, ok := boardOf[t.ColumnID]
		if !ok {
			continue
		}
		if _, ok := names[boardID]; !ok {
			continue
		}
		score := int(math.Round(float64(done[t.ID]*100) / float64(n)))
		if cur, seen := best[boardID]; !seen || score > cur {
			best[boardID] = score
		}
	}

	rows := make([]BoardUrgency, 0, len(best))
	for boardID, score := range best {
		rows = append(rows, BoardUrgency{BoardID: boardID, BoardName: names[boardID], Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].BoardName < rows[j].BoardName
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
