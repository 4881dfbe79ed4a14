package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"volunteermatch/internal/auth/authz"
	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/platform/telemetry"
	"volunteermatch/internal/volunteer/metrics"
	"volunteermatch/internal/volunteer/models"
	dErrors "volunteermatch/pkg/domain-errors"
	"volunteermatch/pkg/requestcontext"
)

// MsgMatchQueryFailed describes a failed store query in logs. Clients see
// the generic internal error message instead.
const MsgMatchQueryFailed = "Match query failed"

// FindMatches returns the volunteers in location whose skills include
// skillRequired, scored by the configured Scorer.
//
// caller must be in the required group: a nil caller fails with
// CodeUnauthorized, a caller outside the group with CodeForbidden. Both are
// checked before the store is touched. No matches is an empty, successful
// result.
func (s *Service) FindMatches(ctx context.Context, skillRequired, location string, caller claims.Set) ([]models.Match, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, tracerName, "volunteer.FindMatches",
		attribute.String(telemetry.AttrSkill, skillRequired),
		attribute.String(telemetry.AttrLocation, location),
		attribute.String(telemetry.AttrGroup, s.requiredGroup),
	)
	defer span.End()

	if err := authz.Authorize(caller, s.requiredGroup); err != nil {
		s.incrementMatchRequest(authOutcome(err))
		telemetry.AddEvent(span, "authorization.failed")
		telemetry.RecordError(span, err)
		s.logger.InfoContext(ctx, "find matches refused",
			"reason", err.Error(),
			"sub", caller.Subject(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	if strings.TrimSpace(location) == "" {
		s.incrementMatchRequest(metrics.OutcomeInvalid)
		return nil, dErrors.New(dErrors.CodeValidation, "location is required")
	}

	items, err := s.store.QueryByLocation(ctx, location)
	if err != nil {
		s.incrementMatchRequest(metrics.OutcomeFailed)
		telemetry.RecordError(span, err)
		s.logger.ErrorContext(ctx, "match query failed",
			"location", location,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MsgMatchQueryFailed)
	}

	matches := make([]models.Match, 0)
	for _, item := range items {
		if !item.IsVolunteer() {
			s.incrementSkipped("entity_type")
			continue
		}
		v, err := item.Volunteer()
		if err != nil {
			s.incrementSkipped("decode")
			s.logger.WarnContext(ctx, "skipping undecodable volunteer item",
				"pk", item.PK,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		score, ok := s.scorer(v, skillRequired)
		if !ok {
			continue
		}
		matches = append(matches, models.Match{Volunteer: v, Score: score})
	}

	span.SetAttributes(
		attribute.Int(telemetry.AttrCandidates, len(items)),
		attribute.Int(telemetry.AttrMatchCount, len(matches)),
	)
	s.incrementMatchRequest(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.ObserveMatches(len(matches))
		s.metrics.ObserveFindMatches(start)
	}
	s.logger.InfoContext(ctx, "find matches completed",
		"skill", skillRequired,
		"location", location,
		"candidates", len(items),
		"matches", len(matches),
		"sub", caller.Subject(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return matches, nil
}

func authOutcome(err error) string {
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return metrics.OutcomeUnauthorized
	}
	return metrics.OutcomeForbidden
}

func (s *Service) incrementMatchRequest(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementMatchRequest(outcome)
	}
}

func (s *Service) incrementSkipped(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementSkipped(reason)
	}
}
