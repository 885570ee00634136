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
	DefaultSuggestedLimit = 3
	activityWindow        = 14 * 24 * time.Hour
	upcomingWindow        = 7 * 24 * time.Hour
)

type WorkspaceService struct {
	store  repository.Store
	fanout fanout
	log    *logrus.Entry
}

func NewWorkspaceService(store repository.Store, resolver *notify.Resolver, publisher *notify.Publisher, log *logrus.Entry) *WorkspaceService {
	return &WorkspaceService{
		store:  store,
		fanout: fanout{resolver: resolver, publisher: publisher},
		log:    log.WithField("component", "workspace_service"),
	}
}

// Create fails with a conflict when the name is taken.
func (s *WorkspaceService) Create(ctx context.Context, actorID uuid.UUID, name string) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ValidationFields("name is required", map[string]string{"name": "is required"})
	}
	ws := model.Workspace{ID: uuid.New(), Name: name}
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		if err := tx.Workspaces().Create(ctx, &ws); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("workspace already exists")
			}
			return err
		}
		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		batch, err := s.fanout.emit(ctx, tx, notify.WorkspaceCreated(actorID, ws.ID, actor, ws.Name))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to create workspace")
	}
	return &ws, nil
}

func (s *WorkspaceService) List(ctx context.Context) ([]model.Workspace, error) {
	workspaces, err := s.store.Workspaces().List(ctx)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch workspaces")
	}
	if workspaces == nil {
		workspaces = []model.Workspace{}
	}
	return workspaces, nil
}

type BoardService struct {
	store  repository.Store
	fanout fanout
	now    func() time.Time
	log    *logrus.Entry
}

func NewBoardService(store repository.Store, resolver *notify.Resolver, publisher *notify.Publisher, log *logrus.Entry) *BoardService {
	return &BoardService{
		store:  store,
		fanout: fanout{resolver: resolver, publisher: publisher},
		now:    time.Now,
		log:    log.WithField("component", "board_service"),
	}
}

func (s *BoardService) Create(ctx context.Context, actorID, workspaceID uuid.UUID, name string) (*model.Board, error) {
	name = strings.TrimSpace(name)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if workspaceID == uuid.Nil {
		fields["workspaceId"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("name and workspaceId are required", fields)
	}

	board := model.Board{ID: uuid.New(), Name: name, WorkspaceID: workspaceID}
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		ws, err := tx.Workspaces().GetByID(ctx, workspaceID)
		if err != nil {
			return err
		}
		if err := tx.Boards().Create(ctx, &board); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("board already exists in workspace")
			}
			return err
		}
		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		batch, err := s.fanout.emit(ctx, tx, notify.BoardCreated(actorID, ws.ID, board.ID, actor, board.Name, ws.Name))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to create board")
	}
	return &board, nil
}

// Get returns the board with its columns and their tasks, both ordered.
func (s *BoardService) Get(ctx context.Context, boardID uuid.UUID) (*BoardView, error) {
	board, err := s.store.Boards().GetByID(ctx, boardID)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch board")
	}
	columns, err := s.store.Columns().ListByBoards(ctx, []uuid.UUID{board.ID})
	if err != nil {
		return nil, apperr.From(err, "failed to fetch board")
	}
	columnIDs := make([]uuid.UUID, len(columns))
	for i, c := range columns {
		columnIDs[i] = c.ID
	}
	tasks, err := s.store.Tasks().ListByColumns(ctx, columnIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch board")
	}
	views, err := hydrate(ctx, s.store, tasks, true)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch board")
	}

	out := &BoardView{Board: *board, Columns: make([]ColumnView, len(columns))}
	index := make(map[uuid.UUID]int, len(columns))
	for i, c := range columns {
		index[c.ID] = i
		out.Columns[i] = ColumnView{Column: c, Tasks: []TaskView{}}
	}
	for _, v := range views {
		col := &out.Columns[index[v.ColumnID]]
		col.Tasks = append(col.Tasks, v)
	}
	return out, nil
}

// ByIDs keeps the requested order and skips unknown ids.
func (s *BoardService) ByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Board, error) {
	boards, err := s.store.Boards().GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.From(err, "failed to fetch boards")
	}
	byID := make(map[uuid.UUID]model.Board, len(boards))
	for _, b := range boards {
		byID[b.ID] = b
	}
	out := make([]model.Board, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type boardActivity struct {
	metrics SuggestionMetrics
}

func (a *boardActivity) touch(t time.Time) {
	if a.metrics.LastActivity == nil || t.After(*a.metrics.LastActivity) {
		ts := t
		a.metrics.LastActivity = &ts
	}
}

// Suggested scores the boards the user recently interacted with: recent
// notifications, tasks due soon and recent comments.
func (s *BoardService) Suggested(ctx context.Context, userID uuid.UUID, limit int) ([]SuggestedBoard, error) {
	if limit <= 0 {
		limit = DefaultSuggestedLimit
	}
	now := s.now()
	since := now.Add(-activityWindow)
	activity := map[uuid.UUID]*boardActivity{}
	get := func(boardID uuid.UUID) *boardActivity {
		a, ok := activity[boardID]
		if !ok {
			a = &boardActivity{}
			activity[boardID] = a
		}
		return a
	}

	notifications, err := s.store.Notifications().ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}
	for _, n := range notifications {
		if n.BoardID == nil {
			continue
		}
		a := get(*n.BoardID)
		a.metrics.NotifCount++
		a.touch(n.CreatedAt)
	}

	due, err := s.store.Tasks().ListDueForUser(ctx, userID, now, now.Add(upcomingWindow))
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}
	comments, err := s.store.Comments().ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}
	commentTaskIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		commentTaskIDs = append(commentTaskIDs, c.TaskID)
	}
	commented, err := s.store.Tasks().GetByIDs(ctx, commentTaskIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}

	columnIDs := make([]uuid.UUID, 0, len(due)+len(commented))
	for _, t := range due {
		columnIDs = append(columnIDs, t.ColumnID)
	}
	taskColumn := make(map[uuid.UUID]uuid.UUID, len(commented))
	for _, t := range commented {
		columnIDs = append(columnIDs, t.ColumnID)
		taskColumn[t.ID] = t.ColumnID
	}
	columns, err := s.store.Columns().GetByIDs(ctx, columnIDs)
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}
	boardOf := make(map[uuid.UUID]uuid.UUID, len(columns))
	for _, c := range columns {
		boardOf[c.ID] = c.BoardID
	}

	for _, t := range due {
		boardID, ok := boardOf[t.ColumnID]
		if !ok || t.TimeEnd == nil {
			continue
		}
		a := get(boardID)
		a.metrics.UpcomingCount++
		if a.metrics.NextDue == nil || t.TimeEnd.Before(*a.metrics.NextDue) {
			ts := *t.TimeEnd
			a.metrics.NextDue = &ts
		}
	}
	for _, c := range comments {
		boardID, ok := boardOf[taskColumn[c.TaskID]]
		if !ok {
			continue
		}
		a := get(boardID)
		a.metrics.CommentCount++
		a.touch(c.CreatedAt)
	}

	ids := make([]uuid.UUID, 0, len(activity))
	for id := range activity {
		ids = append(ids, id)
	}
	boards, err := s.store.Boards().GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.From(err, "failed to suggest boards")
	}

	out := make([]SuggestedBoard, 0, len(boards))
	for _, b := range boards {
		m := activity[b.ID].metrics
		out = append(out, SuggestedBoard{Board: b, Score: suggestionScore(m, now), Metrics: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func daysSince(t time.Time, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}

func suggestionScore(m SuggestionMetrics, now time.Time) float64 {
	score := float64(m.NotifCount*2 + m.UpcomingCount*3 + m.CommentCount)
	if m.LastActivity != nil {
		score += math.Max(0, 10-daysSince(*m.LastActivity, now))
	}
	if m.NextDue != nil {
		score += math.Max(0, 7-daysSince(*m.NextDue, now))
	}
	return score
}

type ColumnService struct {
	store  repository.Store
	engine *ordering.Engine
	fanout fanout
	log    *logrus.Entry
}

func NewColumnService(store repository.Store, engine *ordering.Engine, resolver *notify.Resolver, publisher *notify.Publisher, log *logrus.Entry) *ColumnService {
	return &ColumnService{
		store:  store,
		engine: engine,
		fanout: fanout{resolver: resolver, publisher: publisher},
		log:    log.WithField("component", "column_service"),
	}
}

// Create appends a column to the board. The label is shared across boards;
// reusing a label already on the board is a conflict.
func (s *ColumnService) Create(ctx context.Context, actorID, boardID uuid.UUID, name string) (*model.Column, error) {
	name = strings.TrimSpace(name)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if boardID == uuid.Nil {
		fields["boardId"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("name and boardId are required", fields)
	}

	var column model.Column
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		board, err := tx.Boards().GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		order, err := s.engine.AppendColumn(ctx, tx, board.ID)
		if err != nil {
			return err
		}
		label, err := tx.Columns().FindOrCreateName(ctx, name)
		if err != nil {
			return err
		}
		column = model.Column{ID: uuid.New(), BoardID: board.ID, ColumnNameID: label.ID, Order: order}
		if err := tx.Columns().Create(ctx, &column); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("column already exists on board")
			}
			return err
		}
		column.Name = label.Name

		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		batch, err := s.fanout.emit(ctx, tx, notify.ColumnCreated(actorID, board.ID, column.ID, actor, label.Name, board.Name))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to create column")
	}
	return &column, nil
}
