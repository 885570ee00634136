// Package notify turns domain mutations into per-user notifications: it
// resolves who should hear about an event, persists one row per recipient
// and pushes the persisted rows to a real-time Transport.
package notify

import (
	"fmt"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTaskCreated      Kind = "task.created"
	KindTaskCommented    Kind = "task.commented"
	KindTaskMoved        Kind = "task.moved"
	KindTaskDeleted      Kind = "task.deleted"
	KindSubtaskCreated   Kind = "subtask.created"
	KindSubtaskUpdated   Kind = "subtask.updated"
	KindSubtaskDeleted   Kind = "subtask.deleted"
	KindColumnCreated    Kind = "column.created"
	KindBoardCreated     Kind = "board.created"
	KindWorkspaceCreated Kind = "workspace.created"
)

// UnknownActor is rendered when the acting user cannot be found.
const UnknownActor = "Unknown"

// Subject holds the keys of the entities an event is about. Nil ids are
// left unset on the notification.
type Subject struct {
	TaskID      *uuid.UUID
	SubtaskID   *uuid.UUID
	WorkspaceID *uuid.UUID
	BoardID     *uuid.UUID
	ColumnID    *uuid.UUID
	CommentID   *uuid.UUID
}

// Event is a rendered mutation ready for fan-out.
type Event struct {
	Kind    Kind
	ActorID uuid.UUID
	Subject Subject
	Message string
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

func TaskCreated(actorID, taskID uuid.UUID, actor, title string) Event {
	return Event{
		Kind:    KindTaskCreated,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID)},
		Message: fmt.Sprintf("Task \"%s\" created by %s", title, actor),
	}
}

func TaskCommented(commenterID, taskID, commentID uuid.UUID, commenter, title, content string) Event {
	return Event{
		Kind:    KindTaskCommented,
		ActorID: commenterID,
		Subject: Subject{TaskID: ref(taskID), CommentID: ref(commentID)},
		Message: fmt.Sprintf("%s commented on task \"%s\": %s", commenter, title, content),
	}
}

func TaskMoved(actorID, taskID, columnID uuid.UUID, title, column string) Event {
	return Event{
		Kind:    KindTaskMoved,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID), ColumnID: ref(columnID)},
		Message: fmt.Sprintf("Task \"%s\" moved to column \"%s\"", title, column),
	}
}

func TaskDeleted(actorID, taskID uuid.UUID, title string) Event {
	return Event{
		Kind:    KindTaskDeleted,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID)},
		Message: fmt.Sprintf("Task \"%s\" has been deleted", title),
	}
}

func SubtaskCreated(actorID, taskID, subtaskID uuid.UUID, actor, subtask, task string) Event {
	return Event{
		Kind:    KindSubtaskCreated,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID), SubtaskID: ref(subtaskID)},
		Message: fmt.Sprintf("%s created subtask \"%s\" in task \"%s\"", actor, subtask, task),
	}
}

// SubtaskUpdated renders a completion change when done is set and a plain
// update otherwise.
func SubtaskUpdated(actorID, taskID, subtaskID uuid.UUID, actor, subtask, task string, done *bool) Event {
	msg := fmt.Sprintf("%s updated subtask \"%s\" in task \"%s\"", actor, subtask, task)
	if done != nil {
		state := "incomplete"
		if *done {
			state = "complete"
		}
		msg = fmt.Sprintf("%s marked subtask \"%s\" as %s in task \"%s\"", actor, subtask, state, task)
	}
	return Event{
		Kind:    KindSubtaskUpdated,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID), SubtaskID: ref(subtaskID)},
		Message: msg,
	}
}

func SubtaskDeleted(actorID, taskID, subtaskID uuid.UUID, actor, subtask, task string) Event {
	return Event{
		Kind:    KindSubtaskDeleted,
		ActorID: actorID,
		Subject: Subject{TaskID: ref(taskID), SubtaskID: ref(subtaskID)},
		Message: fmt.Sprintf("%s deleted subtask \"%s\" in task \"%s\"", actor, subtask, task),
	}
}

func ColumnCreated(actorID, boardID, columnID uuid.UUID, actor, column, board string) Event {
	return Event{
		Kind:    KindColumnCreated,
		ActorID: actorID,
		Subject: Subject{BoardID: ref(boardID), ColumnID: ref(columnID)},
		Message: fmt.Sprintf("%s created column \"%s\" in board \"%s\"", actor, column, board),
	}
}

func BoardCreated(actorID, workspaceID, boardID uuid.UUID, actor, board, workspace string) Event {
	return Event{
		Kind:    KindBoardCreated,
		ActorID: actorID,
		Subject: Subject{WorkspaceID: ref(workspaceID), BoardID: ref(boardID)},
		Message: fmt.Sprintf("%s created board \"%s\" in workspace \"%s\"", actor, board, workspace),
	}
}

func WorkspaceCreated(actorID, workspaceID uuid.UUID, actor, workspace string) Event {
	return Event{
		Kind:    KindWorkspaceCreated,
		ActorID: actorID,
		Subject: Subject{WorkspaceID: ref(workspaceID)},
		Message: fmt.Sprintf("%s created workspace \"%s\"", actor, workspace),
	}
}
