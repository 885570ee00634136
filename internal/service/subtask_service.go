package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/repository"
)

type UpdateSubtaskInput struct {
	Title  *string
	IsDone *bool
}

type SubtaskService struct {
	store  repository.Store
	fanout fanout
	log    *logrus.Entry
}

func NewSubtaskService(store repository.Store, resolver *notify.Resolver, publisher *notify.Publisher, log *logrus.Entry) *SubtaskService {
	return &SubtaskService{
		store:  store,
		fanout: fanout{resolver: resolver, publisher: publisher},
		log:    log.WithField("component", "subtask_service"),
	}
}

func (s *SubtaskService) Create(ctx context.Context, actorID, taskID uuid.UUID, title string) (*model.Subtask, error) {
	title = strings.TrimSpace(title)
	fields := map[string]string{}
	if taskID == uuid.Nil {
		fields["taskId"] = "is required"
	}
	if title == "" {
		fields["title"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("taskId and title are required", fields)
	}

	subtask := model.Subtask{ID: uuid.New(), TaskID: taskID, Title: title}
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := tx.Subtasks().Create(ctx, &subtask); err != nil {
			return err
		}
		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		batch, err := s.fanout.emit(ctx, tx, notify.SubtaskCreated(actorID, task.ID, subtask.ID, actor, subtask.Title, task.Title))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to create subtask")
	}
	return &subtask, nil
}

// Update applies the fields that are set.
func (s *SubtaskService) Update(ctx context.Context, actorID, subtaskID uuid.UUID, in UpdateSubtaskInput) (*model.Subtask, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.ValidationFields("title must not be empty", map[string]string{"title": "must not be empty"})
	}

	var subtask *model.Subtask
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		var err error
		subtask, err = tx.Subtasks().GetByID(ctx, subtaskID)
		if err != nil {
			return err
		}
		if in.Title != nil {
			subtask.Title = strings.TrimSpace(*in.Title)
		}
		if in.IsDone != nil {
			subtask.IsDone = *in.IsDone
		}
		if err := tx.Subtasks().Update(ctx, subtask); err != nil {
			return err
		}
		task, err := tx.Tasks().GetByID(ctx, subtask.TaskID)
		if err != nil {
			return err
		}
		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		ev := notify.SubtaskUpdated(actorID, task.ID, subtask.ID, actor, subtask.Title, task.Title, in.IsDone)
		batch, err := s.fanout.emit(ctx, tx, ev)
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return nil
	})
	if err != nil {
		return nil, apperr.From(err, "failed to update subtask")
	}
	return subtask, nil
}

func (s *SubtaskService) Delete(ctx context.Context, actorID, subtaskID uuid.UUID) error {
	err := s.fanout.transact(ctx, s.store, func(tx repository.Store, out *[]notify.Batch) error {
		subtask, err := tx.Subtasks().GetByID(ctx, subtaskID)
		if err != nil {
			return err
		}
		task, err := tx.Tasks().GetByID(ctx, subtask.TaskID)
		if err != nil {
			return err
		}
		actor := s.fanout.resolver.ActorName(ctx, tx, actorID)
		batch, err := s.fanout.emit(ctx, tx, notify.SubtaskDeleted(actorID, task.ID, subtask.ID, actor, subtask.Title, task.Title))
		if err != nil {
			return err
		}
		*out = append(*out, batch)
		return tx.Subtasks().Delete(ctx, subtask.ID)
	})
	return apperr.From(err, "failed to delete subtask")
}
