package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type CommentView struct {
	model.Comment
	Author *model.UserRef `json:"author,omitempty"`
}

type TaskView struct {
	model.Task
	Subtasks      []model.Subtask `json:"subtasks"`
	Comments      []CommentView   `json:"comments,omitempty"`
	AssignedUsers []model.UserRef `json:"assignedUsers"`
}

type ColumnView struct {
	model.Column
	Tasks []TaskView `json:"tasks"`
}

type BoardView struct {
	model.Board
	Columns []ColumnView `json:"columns"`
}

type CreateTaskResult struct {
	Task        TaskView  `json:"task"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	BoardID     uuid.UUID `json:"boardId"`
	ColumnID    uuid.UUID `json:"columnId"`
}

type MoveResult struct {
	TaskID   uuid.UUID `json:"taskId"`
	ColumnID uuid.UUID `json:"columnId"`
	Order    int       `json:"order"`
}

// BoardUrgency is the best subtask completion score among a board's tasks.
type BoardUrgency struct {
	BoardID   uuid.UUID `json:"boardId"`
	BoardName string    `json:"boardName"`
	Score     int       `json:"score"`
}

type SuggestionMetrics struct {
	NotifCount    int        `json:"notifCount"`
	UpcomingCount int        `json:"upcomingCount"`
	CommentCount  int        `json:"commentCount"`
	LastActivity  *time.Time `json:"lastActivity,omitempty"`
	NextDue       *time.Time `json:"nextDue,omitempty"`
}

type SuggestedBoard struct {
	model.Board
	Score   float64           `json:"score"`
	Metrics SuggestionMetrics `json:"metrics"`
}

// hydrate attaches subtasks and assignees, and comments with their authors
// when withComments is set. The order of tasks is kept.
func hydrate(ctx context.Context, s repository.Store, tasks []model.Task, withComments bool) ([]TaskView, error) {
	views := make([]TaskView, len(tasks))
	if len(tasks) == 0 {
		return views, nil
	}
	ids := make([]uuid.UUID, len(tasks))
	index := make(map[uuid.UUID]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		index[t.ID] = i
		views[i] = TaskView{Task: t, Subtasks: []model.Subtask{}, AssignedUsers: []model.UserRef{}}
	}

	subtasks, err := s.Subtasks().ListByTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load subtasks: %w", err)
	}
	for _, st := range subtasks {
		v := &views[index[st.TaskID]]
		v.Subtasks = append(v.Subtasks, st)
	}

	assignments, err := s.Assignments().ListByTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	var comments []model.Comment
	if withComments {
		comments, err = s.Comments().ListByTasks(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load comments: %w", err)
		}
	}

	userIDs := make([]uuid.UUID, 0, len(assignments)+len(comments))
	for _, a := range assignments {
		userIDs = append(userIDs, a.UserID)
	}
	for _, c := range comments {
		if c.UserID != nil {
			userIDs = append(userIDs, *c.UserID)
		}
	}
	users, err := s.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	refs := make(map[uuid.UUID]model.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = u.Ref()
	}

	for _, a := range assignments {
		if ref, ok := refs[a.UserID]; ok {
			v := &views[index[a.TaskID]]
			v.AssignedUsers = append(v.AssignedUsers, ref)
		}
	}
	for _, c := range comments {
		cv := CommentView{Comment: c}
		if c.UserID != nil {
			if ref, ok := refs[*c.UserID]; ok {
				cv.Author = &ref
			}
		}
		v := &views[index[c.TaskID]]
		v.Comments = append(v.Comments, cv)
	}
	return views, nil
}
