package claims_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/auth/jwks"
	"volunteermatch/internal/auth/jwks/jwkstest"
	authmetrics "volunteermatch/internal/auth/metrics"
	"volunteermatch/internal/platform/metrics"
)

type ResolverSuite struct {
	suite.Suite
	signer   *jwkstest.Signer
	verifier *claims.Verifier
	resolver *claims.Resolver
	metrics  *authmetrics.Metrics
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.signer = jwkstest.NewSigner(s.T(), "kid-1")
	s.verifier = claims.NewVerifier(jwks.Static(s.signer.KeySet()), claims.WithIssuer(jwkstest.Issuer))
	s.metrics = authmetrics.New(metrics.NewForTest().Registerer())
	s.resolver = claims.NewResolver(s.verifier, claims.WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func (s *ResolverSuite) bearer(token string) claims.Request {
	return claims.Request{Headers: map[string]string{"Authorization": "Bearer " + token}}
}

func (s *ResolverSuite) TestStrategyOrder() {
	gatewayClaims := map[string]any{"sub": "gateway", claims.GroupsClaim: "[Charity]"}
	jwtClaims := map[string]any{"sub": "http-api"}
	token := s.signer.Sign(s.T(), jwkstest.Claims("bearer", "Charity"))

	s.Run("authorizer claims win over everything", func() {
		set := s.resolver.Resolve(s.ctx, claims.Request{
			Authorizer: map[string]any{"claims": gatewayClaims, "jwt": map[string]any{"claims": jwtClaims}},
			Headers:    map[string]string{"authorization": "Bearer " + token},
		})
		s.Require().NotNil(set)
		s.Equal("gateway", set.Subject())
		s.True(set.HasGroup("Charity"))
	})

	s.Run("jwt authorizer claims win over bearer token", func() {
		set := s.resolver.Resolve(s.ctx, claims.Request{
			Authorizer: map[string]any{"jwt": map[string]any{"claims": jwtClaims}},
			Headers:    map[string]string{"authorization": "Bearer " + token},
		})
		s.Require().NotNil(set)
		s.Equal("http-api", set.Subject())
	})

	s.Run("bearer token used when no authorizer claims", func() {
		set := s.resolver.Resolve(s.ctx, s.bearer(token))
		s.Require().NotNil(set)
		s.Equal("bearer", set.Subject())
		s.Equal([]string{"Charity"}, set.Groups())
	})

	s.Run("nothing present is unauthenticated", func() {
		s.Nil(s.resolver.Resolve(s.ctx, claims.Request{}))
	})
}

func (s *ResolverSuite) TestAuthorizerShapes() {
	token := s.signer.Sign(s.T(), jwkstest.Claims("bearer", "Charity"))

	for _, tc := range []struct {
		name string
		raw  any
	}{
		{"empty claims map", map[string]any{}},
		{"null claims", nil},
		{"non-map claims", "nope"},
	} {
		s.Run(tc.name+" is unauthenticated without falling through", func() {
			set := s.resolver.Resolve(s.ctx, claims.Request{
				Authorizer: map[string]any{"claims": tc.raw},
				Headers:    map[string]string{"authorization": "Bearer " + token},
			})
			s.Nil(set)
		})
	}

	s.Run("string valued claims map", func() {
		set := s.resolver.Resolve(s.ctx, claims.Request{Authorizer: map[string]any{
			"claims": map[string]string{"sub": "u-1", claims.GroupsClaim: "Charity"},
		}})
		s.Require().NotNil(set)
		s.True(set.HasGroup("Charity"))
	})

	s.Run("empty jwt claims fall through", func() {
		s.Nil(s.resolver.Resolve(s.ctx, claims.Request{Authorizer: map[string]any{
			"jwt": map[string]any{"claims": map[string]any{}},
		}}))
	})
}

func (s *ResolverSuite) TestBearerRejections() {
	other := jwkstest.NewSigner(s.T(), "kid-1")

	tests := []struct {
		name  string
		token func() string
	}{
		{"signed by a different key with the same kid", func() string {
			return other.Sign(s.T(), jwkstest.Claims("attacker", "Charity"))
		}},
		{"tampered payload", func() string {
			good := s.signer.Sign(s.T(), jwkstest.Claims("u-1"))
			forged := other.Sign(s.T(), jwkstest.Claims("u-1", "Charity"))
			return headerAndPayload(forged) + "." + signaturePart(good)
		}},
		{"expired", func() string {
			c := jwkstest.Claims("u-1", "Charity")
			c["exp"] = time.Now().Add(-time.Minute).Unix()
			return s.signer.Sign(s.T(), c)
		}},
		{"missing exp", func() string {
			c := jwkstest.Claims("u-1", "Charity")
			delete(c, "exp")
			return s.signer.Sign(s.T(), c)
		}},
		{"wrong issuer", func() string {
			c := jwkstest.Claims("u-1", "Charity")
			c["iss"] = "https://evil.example.com"
			return s.signer.Sign(s.T(), c)
		}},
		{"unknown kid", func() string {
			stranger := jwkstest.NewSigner(s.T(), "kid-2")
			return stranger.Sign(s.T(), jwkstest.Claims("u-1", "Charity"))
		}},
		{"unsigned alg none", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwkstest.Claims("u-1", "Charity"))
			tok.Header["kid"] = "kid-1"
			signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
			s.Require().NoError(err)
			return signed
		}},
		{"hmac signed", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwkstest.Claims("u-1", "Charity"))
			tok.Header["kid"] = "kid-1"
			signed, err := tok.SignedString([]byte("secret"))
			s.Require().NoError(err)
			return signed
		}},
		{"garbage", func() string { return "not-a-jwt" }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Nil(s.resolver.Resolve(s.ctx, s.bearer(tt.token())))
		})
	}
}

func (s *ResolverSuite) TestBearerFailureDoesNotFallThrough() {
	// With gateway trust disabled only the bearer strategy runs, so a bad
	// token ends resolution even when authorizer claims are present.
	strict := claims.NewResolver(s.verifier, claims.TrustGatewayClaims(false))
	s.Equal([]string{claims.StrategyBearerToken}, strict.Strategies())

	req := claims.Request{
		Authorizer: map[string]any{"claims": map[string]any{"sub": "gateway"}},
		Headers:    map[string]string{"authorization": "Bearer not-a-jwt"},
	}
	s.Nil(strict.Resolve(s.ctx, req))
	s.NotNil(s.resolver.Resolve(s.ctx, req))
}

func (s *ResolverSuite) TestKeyFetchFailureFailsClosed() {
	server := jwkstest.NewServer(s.T(), http.StatusInternalServerError, nil)
	resolver := claims.NewResolver(claims.NewVerifier(jwks.New(jwks.NewHTTPFetcher(server.URL, time.Second))))

	token := s.signer.Sign(s.T(), jwkstest.Claims("u-1", "Charity"))
	s.Nil(resolver.Resolve(s.ctx, s.bearer(token)))
	s.Nil(resolver.Resolve(s.ctx, s.bearer(token)))
}

func (s *ResolverSuite) TestResolveContext() {
	token := s.signer.Sign(s.T(), jwkstest.Claims("ctx-user"))
	ctx := claims.WithRequest(s.ctx, claims.Request{Headers: map[string]string{"AUTHORIZATION": token}})

	set := s.resolver.ResolveContext(ctx)
	s.Require().NotNil(set)
	s.Equal("ctx-user", set.Subject())
	s.Empty(set.Groups())
}

func (s *ResolverSuite) TestMetrics() {
	s.resolver.Resolve(s.ctx, s.bearer("garbage"))
	s.resolver.Resolve(s.ctx, claims.Request{})

	s.InDelta(1, testutil.ToFloat64(s.metrics.ClaimsResolutions.WithLabelValues(claims.StrategyBearerToken, authmetrics.OutcomeRejected)), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.ClaimsResolutions.WithLabelValues("none", authmetrics.OutcomeDeclined)), 0)
}

func TestVerifier(t *testing.T) {
	signer := jwkstest.NewSigner(t, "kid-1")
	keys := jwks.Static(signer.KeySet())
	ctx := context.Background()

	t.Run("accepts both id and access tokens", func(t *testing.T) {
		v := claims.NewVerifier(keys)
		for _, use := range []string{"id", "access"} {
			c := jwkstest.Claims("u-1", "Charity")
			c["token_use"] = use
			set, err := v.Verify(ctx, signer.Sign(t, c))
			require.NoError(t, err)
			assert.Equal(t, use, set["token_use"])
		}
	})

	t.Run("audience matches aud or client_id", func(t *testing.T) {
		v := claims.NewVerifier(keys, claims.WithAudience("web-client"))

		idToken := jwkstest.Claims("u-1")
		idToken["aud"] = "web-client"
		_, err := v.Verify(ctx, signer.Sign(t, idToken))
		require.NoError(t, err)

		accessToken := jwkstest.Claims("u-1")
		delete(accessToken, "aud")
		accessToken["client_id"] = "web-client"
		_, err = v.Verify(ctx, signer.Sign(t, accessToken))
		require.NoError(t, err)

		wrong := jwkstest.Claims("u-1")
		_, err = v.Verify(ctx, signer.Sign(t, wrong))
		require.ErrorIs(t, err, claims.ErrAudienceMismatch)
	})

	t.Run("classifies failures", func(t *testing.T) {
		v := claims.NewVerifier(keys)

		_, err := v.Verify(ctx, "a.b")
		require.ErrorIs(t, err, claims.ErrMalformedToken)

		expired := jwkstest.Claims("u-1")
		expired["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err = v.Verify(ctx, signer.Sign(t, expired))
		require.ErrorIs(t, err, claims.ErrTokenExpired)

		forged := jwkstest.NewSigner(t, "kid-1").Sign(t, jwkstest.Claims("u-1"))
		_, err = v.Verify(ctx, forged)
		require.ErrorIs(t, err, claims.ErrSignatureInvalid)

		_, err = claims.NewVerifier(jwks.Static(nil)).Verify(ctx, signer.Sign(t, jwkstest.Claims("u-1")))
		require.ErrorIs(t, err, jwks.ErrKeyFetch)
	})
}

func headerAndPayload(token string) string {
	return token[:strings.LastIndex(token, ".")]
}

func signaturePart(token string) string {
	return token[strings.LastIndex(token, ".")+1:]
}
