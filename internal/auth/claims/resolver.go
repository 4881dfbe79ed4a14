package claims

import (
	"context"
	"log/slog"

	authmetrics "volunteermatch/internal/auth/metrics"
	"volunteermatch/internal/platform/logger"
	"volunteermatch/pkg/requestcontext"
)

// Resolver runs the strategies in priority order.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
	metrics    *authmetrics.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	trustGateway bool
	logger       *slog.Logger
	metrics      *authmetrics.Metrics
}

// TrustGatewayClaims toggles the two authorizer strategies. Disable it when
// the service can be reached without passing through the gateway, so that
// every request must carry a verifiable bearer token.
func TrustGatewayClaims(trust bool) ResolverOption {
	return func(c *resolverConfig) {
		c.trustGateway = trust
	}
}

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(c *resolverConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) ResolverOption {
	return func(c *resolverConfig) {
		c.metrics = m
	}
}

// NewResolver builds a Resolver whose last strategy verifies bearer tokens
// with verifier. Gateway claims are trusted unless disabled.
func NewResolver(verifier *Verifier, opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{trustGateway: true, logger: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	strategies := make([]Strategy, 0, 3)
	if cfg.trustGateway {
		strategies = append(strategies, GatewayClaims{}, JWTAuthorizerClaims{})
	}
	strategies = append(strategies, NewBearerToken(verifier))

	return &Resolver{strategies: strategies, logger: cfg.logger, metrics: cfg.metrics}
}

// Strategies lists the active strategy names in evaluation order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the caller's claims, or nil when the caller is
// unauthenticated. A strategy that applies and fails ends resolution: a bad
// bearer token never falls through to anything weaker.
func (r *Resolver) Resolve(ctx context.Context, req Request) Set {
	for _, s := range r.strategies {
		set, err := s.Resolve(ctx, req)
		if err != nil {
			r.record(s.Name(), authmetrics.OutcomeRejected)
			r.logger.WarnContext(ctx, "claims rejected",
				"strategy", s.Name(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil
		}
		if set != nil {
			r.record(s.Name(), authmetrics.OutcomeResolved)
			r.logger.DebugContext(ctx, "claims resolved",
				"strategy", s.Name(),
				"sub", set.Subject(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return set
		}
	}
	r.record("none", authmetrics.OutcomeDeclined)
	return nil
}

// ResolveContext resolves the Request attached to ctx with WithRequest.
func (r *Resolver) ResolveContext(ctx context.Context) Set {
	return r.Resolve(ctx, RequestFrom(ctx))
}

func (r *Resolver) record(strategy, outcome string) {
	if r.metrics != nil {
		r.metrics.IncrementResolution(strategy, outcome)
	}
}
