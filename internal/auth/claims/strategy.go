package claims

import (
	"context"
	"errors"
	"fmt"

	"volunteermatch/pkg/platform/strings"
)

// Strategy names, used in logs and metrics.
const (
	StrategyGateway     = "gateway_claims"
	StrategyJWTAuthz    = "jwt_authorizer_claims"
	StrategyBearerToken = "bearer_token"
)

// ErrEmptyGatewayClaims means the authorizer attached a claims field with
// nothing usable in it.
var ErrEmptyGatewayClaims = errors.New("authorizer claims empty")

// Strategy extracts claims from a request.
//
// Return values:
//   - (nil, nil): the strategy does not apply; try the next one
//   - (set, nil): resolved
//   - (nil, err): the strategy applied and failed; resolution stops here
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, req Request) (Set, error)
}

// GatewayClaims returns the authorizer's claims field verbatim. API Gateway
// REST authorizers have already validated the token. Once the field is present
// the strategy owns the decision: an empty, null or non-map value leaves the
// caller unauthenticated.
type GatewayClaims struct{}

func (GatewayClaims) Name() string { return StrategyGateway }

func (GatewayClaims) Resolve(_ context.Context, req Request) (Set, error) {
	raw, ok := req.Authorizer["claims"]
	if !ok {
		return nil, nil
	}
	set, ok := asSet(raw)
	if !ok || len(set) == 0 {
		return nil, ErrEmptyGatewayClaims
	}
	return set, nil
}

// JWTAuthorizerClaims returns the HTTP API JWT authorizer's nested claims.
type JWTAuthorizerClaims struct{}

func (JWTAuthorizerClaims) Name() string { return StrategyJWTAuthz }

func (JWTAuthorizerClaims) Resolve(_ context.Context, req Request) (Set, error) {
	jwtField, ok := asSet(req.Authorizer["jwt"])
	if !ok {
		return nil, nil
	}
	set, ok := asSet(jwtField["claims"])
	if !ok || len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

// BearerToken verifies the token in the authorization header.
type BearerToken struct {
	verifier *Verifier
}

// NewBearerToken builds the bearer strategy. verifier is required.
func NewBearerToken(verifier *Verifier) BearerToken {
	if verifier == nil {
		panic("claims: bearer token strategy requires a verifier")
	}
	return BearerToken{verifier: verifier}
}

func (BearerToken) Name() string { return StrategyBearerToken }

func (b BearerToken) Resolve(ctx context.Context, req Request) (Set, error) {
	header, ok := req.Header("authorization")
	if !ok {
		return nil, nil
	}
	token := strings.LastField(header)
	if token == "" {
		return nil, nil
	}
	set, err := b.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("bearer token rejected: %w", err)
	}
	return set, nil
}

func asSet(raw any) (Set, bool) {
	switch v := raw.(type) {
	case Set:
		return v, v != nil
	case map[string]any:
		return Set(v), v != nil
	case map[string]string:
		if v == nil {
			return nil, false
		}
		set := make(Set, len(v))
		for k, val := range v {
			set[k] = val
		}
		return set, true
	default:
		return nil, false
	}
}
