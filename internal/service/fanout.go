package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/notify"
	"taskboard/internal/repository"
)

// fanout persists notifications inside a transaction and delivers them
// once the transaction has committed.
type fanout struct {
	resolver  *notify.Resolver
	publisher *notify.Publisher
}

// emit resolves the audience of ev and persists it in tx.
func (f fanout) emit(ctx context.Context, tx repository.Store, ev notify.Event) (notify.Batch, error) {
	audience, err := f.resolver.Audience(ctx, tx, ev)
	if err != nil {
		return notify.Batch{}, fmt.Errorf("resolve audience: %w", err)
	}
	return f.publisher.Persist(ctx, tx, ev, audience), nil
}

func (f fanout) emitTo(ctx context.Context, tx repository.Store, ev notify.Event, audience []uuid.UUID) notify.Batch {
	return f.publisher.Persist(ctx, tx, ev, audience)
}

// transact runs fn in a transaction and delivers the batches it collected
// after a successful commit.
func (f fanout) transact(ctx context.Context, s repository.Store, fn func(tx repository.Store, out *[]notify.Batch) error) error {
	var batches []notify.Batch
	err := s.InTx(ctx, func(tx repository.Store) error {
		batches = batches[:0]
		return fn(tx, &batches)
	})
	if err != nil {
		return err
	}
	f.publisher.Deliver(ctx, batches...)
	return nil
}
