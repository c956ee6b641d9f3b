package worker

import (
	"context"
	"encoding/json"

	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type HoldReleaser interface {
	ReleaseHold(ctx context.Context, holdID uuid.UUID) (*commands.ReleaseHoldResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt shared.Event) error
}

// ReleaseHoldHandler runs hold.release jobs. Releasing an already released
// or used hold succeeds without effect, so redelivery is harmless.
func ReleaseHoldHandler(releaser HoldReleaser) Handler {
	return func(ctx context.Context, job shared.Job) error {
		var payload shared.ReleaseHoldPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return errs.Mark(errs.Wrap(err, "decode release payload"), ErrPermanent)
		}
		if payload.HoldID == uuid.Nil {
			return errs.Mark(errs.New("release payload without hold_id"), ErrPermanent)
		}
		_, err := releaser.ReleaseHold(ctx, payload.HoldID)
		return err
	}
}

func PublishEventHandler(pub EventPublisher) Handler {
	return func(ctx context.Context, job shared.Job) error {
		var evt shared.Event
		if err := json.Unmarshal(job.Payload, &evt); err != nil {
			return errs.Mark(errs.Wrap(err, "decode event"), ErrPermanent)
		}
		return pub.Publish(ctx, evt)
	}
}
