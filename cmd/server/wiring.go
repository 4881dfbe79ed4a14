package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	graphql "github.com/graph-gophers/graphql-go"

	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/auth/jwks"
	authmetrics "volunteermatch/internal/auth/metrics"
	"volunteermatch/internal/graph"
	"volunteermatch/internal/platform/config"
	"volunteermatch/internal/platform/metrics"
	volunteermetrics "volunteermatch/internal/volunteer/metrics"
	"volunteermatch/internal/volunteer/service"
	"volunteermatch/internal/volunteer/store/dynamo"
	"volunteermatch/internal/volunteer/store/memory"
	"volunteermatch/pkg/platform/circuit"
)

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func newDynamoStore(ctx context.Context, cfg *config.Config) (*dynamo.Client, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := dynamo.New(&awsCfg, cfg.TableName)
	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to DynamoDB: %w", err)
	}
	return store, nil
}

func newStore(ctx context.Context, cfg *config.Config, inMemory bool) (service.Store, error) {
	if inMemory {
		log.Warn("using in-memory volunteer store; data is lost on exit")
		return memory.NewInMemory(), nil
	}
	return newDynamoStore(ctx, cfg)
}

// newClaimsResolver wires the key cache to the user pool's JWKS endpoint.
// Without an endpoint every bearer token fails verification.
func newClaimsResolver(cfg *config.Config, registry *metrics.Registry) *claims.Resolver {
	m := authmetrics.New(registry.Registerer())

	var keys jwks.Provider = jwks.Static(nil)
	if cfg.Auth.BearerVerificationEnabled() {
		keys = jwks.New(
			jwks.NewHTTPFetcher(cfg.Auth.JWKSURL, cfg.RequestTimeout),
			jwks.WithTTL(cfg.Auth.JWKSCacheTTL),
			jwks.WithBreaker(circuit.New("jwks")),
			jwks.WithLogger(log),
			jwks.WithMetrics(m),
		)
	} else {
		log.Warn("no JWKS endpoint configured; bearer tokens will be rejected")
	}

	verifier := claims.NewVerifier(keys,
		claims.WithIssuer(cfg.Auth.Issuer),
		claims.WithAudience(cfg.Auth.Audience),
	)
	return claims.NewResolver(verifier,
		claims.TrustGatewayClaims(cfg.Auth.TrustGatewayClaims),
		claims.WithLogger(log),
		claims.WithMetrics(m),
	)
}

func newSchema(cfg *config.Config, store service.Store, registry *metrics.Registry) *graphql.Schema {
	svc := service.New(store,
		service.WithLogger(log),
		service.WithMetrics(volunteermetrics.New(registry.Registerer())),
		service.WithRequiredGroup(config.RequiredGroup),
	)
	resolver := graph.NewResolver(svc, newClaimsResolver(cfg, registry), graph.WithLogger(log))
	return graph.NewSchema(resolver)
}
