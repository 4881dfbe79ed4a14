package graph

import (
	"context"
	"log/slog"

	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/platform/logger"
	"volunteermatch/internal/volunteer/models"
)

// VolunteerService is what the resolvers need from the volunteer service.
type VolunteerService interface {
	RegisterVolunteer(ctx context.Context, req models.RegisterRequest) (*models.Volunteer, error)
	FindMatches(ctx context.Context, skillRequired, location string, caller claims.Set) ([]models.Match, error)
}

// ClaimsResolver identifies the caller from the request attached to ctx.
type ClaimsResolver interface {
	ResolveContext(ctx context.Context) claims.Set
}

// Resolver is the GraphQL root resolver.
type Resolver struct {
	service VolunteerService
	claims  ClaimsResolver
	logger  *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver builds the root resolver.
func NewResolver(service VolunteerService, claimsResolver ClaimsResolver, opts ...Option) *Resolver {
	r := &Resolver{service: service, claims: claimsResolver, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Health() string {
	return "ok"
}

type registerVolunteerArgs struct {
	Name         string
	Location     string
	Skills       []string
	Availability string
}

// RegisterVolunteer needs no identity.
func (r *Resolver) RegisterVolunteer(ctx context.Context, args registerVolunteerArgs) (*volunteerResolver, error) {
	v, err := r.service.RegisterVolunteer(ctx, models.RegisterRequest{
		Name:         args.Name,
		Location:     args.Location,
		Skills:       args.Skills,
		Availability: args.Availability,
	})
	if err != nil {
		return nil, r.toError(ctx, "registerVolunteer", err)
	}
	return &volunteerResolver{v: v}, nil
}

type findMatchesArgs struct {
	SkillRequired string
	Location      string
}

// FindMatches resolves the caller first; the service decides whether the
// caller may search.
func (r *Resolver) FindMatches(ctx context.Context, args findMatchesArgs) ([]*matchResolver, error) {
	caller := r.claims.ResolveContext(ctx)
	matches, err := r.service.FindMatches(ctx, args.SkillRequired, args.Location, caller)
	if err != nil {
		return nil, r.toError(ctx, "findMatches", err)
	}
	out := make([]*matchResolver, 0, len(matches))
	for _, m := range matches {
		out = append(out, &matchResolver{m: m})
	}
	return out, nil
}
