package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/repository"
)

// WorkspacePolicy selects who hears about a new workspace.
type WorkspacePolicy string

const (
	// WorkspaceScoped notifies the creator only.
	WorkspaceScoped WorkspacePolicy = "scoped"
	// WorkspaceBroadcast notifies every user.
	WorkspaceBroadcast WorkspacePolicy = "broadcast"
)

// ParseWorkspacePolicy falls back to WorkspaceScoped for unknown values.
func ParseWorkspacePolicy(s string) WorkspacePolicy {
	if WorkspacePolicy(s) == WorkspaceBroadcast {
		return WorkspaceBroadcast
	}
	return WorkspaceScoped
}

// Resolver computes event audiences.
type Resolver struct {
	policy WorkspacePolicy
}

func NewResolver(policy WorkspacePolicy) *Resolver {
	return &Resolver{policy: policy}
}

// ActorName returns the user's name or UnknownActor.
func (r *Resolver) ActorName(ctx context.Context, s repository.Store, userID uuid.UUID) string {
	if userID == uuid.Nil {
		return UnknownActor
	}
	u, err := s.Users().GetByID(ctx, userID)
	if err != nil || u.UserName == "" {
		return UnknownActor
	}
	return u.UserName
}

// Audience returns the recipients of ev: deduplicated in first-seen order
// and restricted to existing users.
func (r *Resolver) Audience(ctx context.Context, s repository.Store, ev Event) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	var err error

	switch ev.Kind {
	case KindTaskCreated:
		ids, err = r.assignees(ctx, s, ev.Subject.TaskID)
		ids = append(ids, ev.ActorID)
	case KindTaskCommented:
		ids, err = r.assignees(ctx, s, ev.Subject.TaskID)
		ids = Without(ids, ev.ActorID)
	case KindTaskMoved, KindTaskDeleted:
		ids, err = r.assignees(ctx, s, ev.Subject.TaskID)
	case KindSubtaskCreated, KindSubtaskUpdated, KindSubtaskDeleted:
		ids, err = r.assignees(ctx, s, ev.Subject.TaskID)
		ids = append(ids, ev.ActorID)
	case KindColumnCreated:
		ids, err = r.boardMembers(ctx, s, ev.Subject.BoardID)
		ids = append(ids, ev.ActorID)
	case KindBoardCreated:
		ids, err = r.workspaceMembers(ctx, s, ev.Subject.WorkspaceID)
		ids = append(ids, ev.ActorID)
	case KindWorkspaceCreated:
		if r.policy == WorkspaceBroadcast {
			ids, err = s.Users().ListIDs(ctx)
		} else {
			ids = []uuid.UUID{ev.ActorID}
		}
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if err != nil {
		return nil, err
	}
	return r.Existing(ctx, s, ids)
}

// Existing deduplicates ids preserving order and drops ids that are not users.
func (r *Resolver) Existing(ctx context.Context, s repository.Store, ids []uuid.UUID) ([]uuid.UUID, error) {
	ids = Dedup(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}
	known := make(map[uuid.UUID]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}
	out := ids[:0]
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *Resolver) assignees(ctx context.Context, s repository.Store, taskID *uuid.UUID) ([]uuid.UUID, error) {
	if taskID == nil {
		return nil, nil
	}
	ids, err := s.Assignments().UserIDsByTask(ctx, *taskID)
	if err != nil {
		return nil, fmt.Errorf("load assignees: %w", err)
	}
	return ids, nil
}

func (r *Resolver) boardMembers(ctx context.Context, s repository.Store, boardID *uuid.UUID) ([]uuid.UUID, error) {
	if boardID == nil {
		return nil, nil
	}
	return r.membersOfBoards(ctx, s, []uuid.UUID{*boardID})
}

func (r *Resolver) workspaceMembers(ctx context.Context, s repository.Store, workspaceID *uuid.UUID) ([]uuid.UUID, error) {
	if workspaceID == nil {
		return nil, nil
	}
	boards, err := s.Boards().ListByWorkspace(ctx, *workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load boards: %w", err)
	}
	boardIDs := make([]uuid.UUID, 0, len(boards))
	for _, b := range boards {
		boardIDs = append(boardIDs, b.ID)
	}
	return r.membersOfBoards(ctx, s, boardIDs)
}

func (r *Resolver) membersOfBoards(ctx context.Context, s repository.Store, boardIDs []uuid.UUID) ([]uuid.UUID, error) {
	columns, err := s.Columns().ListByBoards(ctx, boardIDs)
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	columnIDs := make([]uuid.UUID, 0, len(columns))
	for _, c := range columns {
		columnIDs = append(columnIDs, c.ID)
	}
	ids, err := s.Assignments().UserIDsInColumns(ctx, columnIDs)
	if err != nil {
		return nil, fmt.Errorf("load assignees: %w", err)
	}
	return ids, nil
}

// Dedup removes repeated ids keeping the first occurrence. Nil ids are dropped.
func Dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Without returns ids minus drop.
func Without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
