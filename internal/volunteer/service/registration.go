package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"volunteermatch/internal/platform/telemetry"
	"volunteermatch/internal/volunteer/metrics"
	"volunteermatch/internal/volunteer/models"
	dErrors "volunteermatch/pkg/domain-errors"
	"volunteermatch/pkg/requestcontext"
)

// MsgRegistrationFailed is shown to clients when the write fails.
const MsgRegistrationFailed = "Database write failed"

// RegisterVolunteer validates req, assigns a fresh id and creation time, and
// persists the volunteer. A store failure comes back as CodeRegistrationFailed
// wrapping the cause.
func (s *Service) RegisterVolunteer(ctx context.Context, req models.RegisterRequest) (*models.Volunteer, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "volunteer.RegisterVolunteer",
		attribute.String(telemetry.AttrLocation, req.Location),
	)
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incrementRegistration(metrics.OutcomeInvalid)
		telemetry.RecordError(span, err)
		return nil, err
	}

	v := &models.Volunteer{
		ID:           s.newID(),
		Name:         req.Name,
		Location:     req.Location,
		Skills:       req.Skills,
		Availability: req.Availability,
		CreatedAt:    models.NewTimestamp(requestcontext.Now(ctx)),
	}
	span.SetAttributes(attribute.String(telemetry.AttrVolunteerID, v.ID))

	item, err := models.NewVolunteerItem(v)
	if err != nil {
		s.incrementRegistration(metrics.OutcomeFailed)
		telemetry.RecordError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeRegistrationFailed, MsgRegistrationFailed)
	}

	start := time.Now()
	if err := s.store.Put(ctx, item); err != nil {
		s.incrementRegistration(metrics.OutcomeFailed)
		telemetry.RecordError(span, err)
		s.logger.ErrorContext(ctx, "volunteer write failed",
			"volunteer_id", v.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeRegistrationFailed, MsgRegistrationFailed)
	}

	s.incrementRegistration(metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "volunteer registered",
		"volunteer_id", v.ID,
		"location", v.Location,
		"availability", v.Availability,
		"skills", len(v.Skills),
		"store_ms", time.Since(start).Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return v, nil
}

func (s *Service) incrementRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRegistration(outcome)
	}
}
