// Package cognito handles Cognito user pool triggers.
package cognito

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"volunteermatch/internal/platform/logger"
)

// DefaultGroup is the group confirmed users join when none is configured.
const DefaultGroup = "Charity"

//go:generate mockgen -source=hook.go -destination=mocks/api_mock.go -package=mocks

// GroupAdder is the slice of the Cognito API the hook calls.
type GroupAdder interface {
	AdminAddUserToGroup(ctx context.Context, params *cognitoidentityprovider.AdminAddUserToGroupInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminAddUserToGroupOutput, error)
}

// Hook adds newly confirmed users to a group.
type Hook struct {
	api     GroupAdder
	group   string
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Hook)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hook) {
		h.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *Hook) {
		h.metrics = m
	}
}

// WithGroup overrides DefaultGroup. Blank values are ignored.
func WithGroup(group string) Option {
	return func(h *Hook) {
		if group != "" {
			h.group = group
		}
	}
}

// NewHook builds a Hook calling api.
func NewHook(api GroupAdder, opts ...Option) *Hook {
	h := &Hook{api: api, group: DefaultGroup, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the post-confirmation trigger. It always returns the event
// unchanged and a nil error: a failed group assignment must not block sign-up.
// The user will then fail authorization until the group is added by hand,
// which is why failures are logged and counted.
func (h *Hook) Handle(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	log := h.logger.With(
		"user_pool_id", event.UserPoolID,
		"username", event.UserName,
		"trigger", event.TriggerSource,
	)

	if event.Request.UserAttributes["email_verified"] != "true" {
		h.increment(OutcomeSkipped)
		log.InfoContext(ctx, "email not verified, skipping group assignment")
		return event, nil
	}

	_, err := h.api.AdminAddUserToGroup(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		GroupName:  aws.String(h.group),
		UserPoolId: aws.String(event.UserPoolID),
		Username:   aws.String(event.UserName),
	})
	if err != nil {
		h.increment(OutcomeFailed)
		log.ErrorContext(ctx, "failed to add user to group", "group", h.group, "error", err)
		return event, nil
	}

	h.increment(OutcomeAdded)
	log.InfoContext(ctx, "user added to group", "group", h.group)
	return event, nil
}

func (h *Hook) increment(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementAssignment(outcome)
	}
}
