package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"volunteermatch/internal/auth/jwks"
)

// Verification failures. Every one of them leaves the caller unauthenticated.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("token malformed")
	ErrClaimsInvalid    = errors.New("token claims invalid")
	ErrAudienceMismatch = errors.New("token audience mismatch")
)

// Verifier checks RS256 bearer tokens against a key Provider. There is no
// option to skip signature verification.
type Verifier struct {
	keys     jwks.Provider
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithIssuer requires the iss claim to equal issuer.
func WithIssuer(issuer string) VerifierOption {
	return func(v *Verifier) {
		v.issuer = issuer
	}
}

// WithAudience requires aud (ID tokens) or client_id (access tokens) to equal
// audience. Empty disables the check.
func WithAudience(audience string) VerifierOption {
	return func(v *Verifier) {
		v.audience = audience
	}
}

// WithLeeway tolerates clock skew when checking exp, nbf and iat.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.leeway = d
	}
}

// WithTimeFunc overrides the clock.
func WithTimeFunc(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier builds a Verifier reading keys from keys.
func NewVerifier(keys jwks.Provider, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the token's signature and registered claims and returns its
// claim set. Keys are only fetched once the token has parsed.
func (v *Verifier) Verify(ctx context.Context, token string) (Set, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	mapClaims := jwt.MapClaims{}
	_, err := jwt.NewParser(parserOpts...).ParseWithClaims(token, mapClaims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrSignatureInvalid)
		}
		set, err := v.keys.Keys(ctx)
		if err != nil {
			return nil, err
		}
		return set.RSAKey(kid)
	})
	if err != nil {
		return nil, classify(err)
	}

	if v.audience != "" && !audienceMatches(mapClaims, v.audience) {
		return nil, ErrAudienceMismatch
	}
	return Set(mapClaims), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwks.ErrKeyFetch):
		return fmt.Errorf("%w: %w", jwks.ErrKeyFetch, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwks.ErrKeyNotFound),
		errors.Is(err, ErrSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", ErrClaimsInvalid, err)
	}
}

func audienceMatches(c jwt.MapClaims, audience string) bool {
	if aud, err := c.GetAudience(); err == nil {
		for _, a := range aud {
			if a == audience {
				return true
			}
		}
	}
	clientID, _ := c["client_id"].(string)
	return clientID == audience
}
