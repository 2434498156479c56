// Package ledgerevents bridges the ledger's committed status event stream
// into the inventory sync outbox. The subscriber owns the reconnect loop;
// task dedupe on txID happens in the outbox itself, so replays after a
// reconnect are harmless.
package ledgerevents

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/ports"
)

// Subscriber consumes committed status events and enqueues one sync task
// per event. It reconnects with exponential backoff when the stream drops
// and stops only when its context is cancelled.
type Subscriber struct {
	source   ports.LedgerEventSource
	enqueuer commands.EnqueueSyncTaskCommandHandler
	logger   *slog.Logger
}

// NewSubscriber creates a subscriber over the given event source.
func NewSubscriber(
	source ports.LedgerEventSource,
	enqueuer commands.EnqueueSyncTaskCommandHandler,
	logger *slog.Logger,
) *Subscriber {
	return &Subscriber{
		source:   source,
		enqueuer: enqueuer,
		logger:   logger.With("component", "ledger_event_subscriber"),
	}
}

// Run blocks consuming events until ctx is cancelled. A dropped stream is
// reopened with exponential backoff; a successfully opened stream resets
// the backoff.
func (s *Subscriber) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = time.Minute
	policy.MaxElapsedTime = 0

	for {
		events, err := s.source.Events(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			wait := policy.NextBackOff()
			s.logger.Error("failed to open event stream, retrying",
				"error", err,
				"retry_in", wait.String())

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		policy.Reset()
		s.logger.Info("ledger event stream opened")

		if err := s.consume(ctx, events); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn("ledger event stream closed, reconnecting")
	}
}

// consume drains one stream until the channel closes or ctx is cancelled.
func (s *Subscriber) consume(ctx context.Context, events <-chan ports.StatusEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			s.handle(ctx, ev)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, ev ports.StatusEvent) {
	cmd, err := commands.NewEnqueueSyncTaskCommand(ev.TxID, ev.OrderID, ev.NewStatus, ev.At)
	if err != nil {
		s.logger.Error("dropping malformed ledger event",
			"tx_id", ev.TxID,
			"order_id", ev.OrderID,
			"error", err)
		return
	}

	if err := s.enqueuer.Handle(ctx, cmd); err != nil {
		s.logger.Error("failed to enqueue sync task",
			"tx_id", ev.TxID,
			"order_id", ev.OrderID,
			"error", err)
		return
	}

	s.logger.Debug("sync task enqueued",
		"tx_id", ev.TxID,
		"order_id", ev.OrderID,
		"new_status", ev.NewStatus.String())
}
