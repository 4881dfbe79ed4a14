package httptransport

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/auth/jwks"
	"volunteermatch/internal/auth/jwks/jwkstest"
	"volunteermatch/internal/graph"
	platformmetrics "volunteermatch/internal/platform/metrics"
	"volunteermatch/internal/volunteer/metrics"
	"volunteermatch/internal/volunteer/service"
	"volunteermatch/internal/volunteer/store/memory"
	"volunteermatch/pkg/testutil"
)

const (
	registerQuery = `mutation {
  registerVolunteer(name: "Ada", location: "London", skills: ["Gardening"], availability: "WEEKENDS") { id name }
}`
	findQuery = `mutation Find($skill: String!, $location: String!) {
  findMatches(skillRequired: $skill, location: $location) { matchScore volunteer { id name } }
}`
)

type RouterSuite struct {
	suite.Suite
	signer *jwkstest.Signer
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.signer = jwkstest.NewSigner(s.T(), "kid-1")
}

func (s *RouterSuite) SetupTest() {
	registry := platformmetrics.NewForTest()
	svc := service.New(memory.NewInMemory(), service.WithMetrics(metrics.New(registry.Registerer())))
	verifier := claims.NewVerifier(jwks.Static(s.signer.KeySet()), claims.WithIssuer(jwkstest.Issuer))
	resolver := claims.NewResolver(verifier)

	s.router = NewRouter(RouterOptions{
		Schema:  graph.NewSchema(graph.NewResolver(svc, resolver)),
		Metrics: registry.Handler(),
	})
}

func (s *RouterSuite) graphql(token, query string, vars map[string]any) *testutil.GraphQLResponse {
	rr := testutil.DoRequest(s.router, testutil.NewGraphQLRequest(s.T(), "/graphql", token, query, vars))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("application/json", rr.Header().Get("Content-Type"))
	return testutil.UnmarshalResponse[testutil.GraphQLResponse](s.T(), rr)
}

type findData struct {
	FindMatches []struct {
		MatchScore int `json:"matchScore"`
		Volunteer  struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"volunteer"`
	} `json:"findMatches"`
}

func (s *RouterSuite) TestCharityUserFindsRegisteredVolunteer() {
	resp := s.graphql("", registerQuery, nil)
	s.Require().Empty(resp.Errors)

	token := s.signer.Sign(s.T(), jwkstest.Claims("charity-1", "Charity"))
	resp = s.graphql(token, findQuery, map[string]any{"skill": "Gardening", "location": "LONDON"})
	s.Require().Empty(resp.Errors)

	data := testutil.DecodeData[findData](s.T(), resp)
	s.Require().Len(data.FindMatches, 1)
	s.Equal("Ada", data.FindMatches[0].Volunteer.Name)
	s.Equal(100, data.FindMatches[0].MatchScore)
}

func (s *RouterSuite) TestFindMatchesRejections() {
	other := jwkstest.NewSigner(s.T(), "kid-1")
	expired := jwkstest.Claims("charity-1", "Charity")
	expired["exp"] = int64(1)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"no token", "", graph.CodeUnauthenticated},
		{"garbage token", "abc.def.ghi", graph.CodeUnauthenticated},
		{"signed by unknown key", other.Sign(s.T(), jwkstest.Claims("charity-1", "Charity")), graph.CodeUnauthenticated},
		{"expired", s.signer.Sign(s.T(), expired), graph.CodeUnauthenticated},
		{"valid token outside group", s.signer.Sign(s.T(), jwkstest.Claims("volunteer-1", "Volunteer")), graph.CodeForbidden},
		{"valid token without groups", s.signer.Sign(s.T(), jwkstest.Claims("volunteer-1")), graph.CodeForbidden},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.graphql(tt.token, findQuery, map[string]any{"skill": "Gardening", "location": "London"})
			s.Require().Len(resp.Errors, 1)
			s.Equal(tt.code, resp.Errors[0].Extensions["code"])
		})
	}
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())
	s.NotEmpty(rr.Header().Get("X-Request-Id"))
}

func (s *RouterSuite) TestMetricsExposeRegistrations() {
	s.graphql("", registerQuery, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `volunteermatch_registrations_total{outcome="success"} 1`)
}

func (s *RouterSuite) TestCORSPreflight() {
	req := testutil.NewJSONRequest(s.T(), http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://volunteers.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	rr := testutil.DoRequest(s.router, req)
	s.Equal("*", rr.Header().Get("Access-Control-Allow-Origin"))
	s.Contains(strings.ToLower(rr.Header().Get("Access-Control-Allow-Headers")), "authorization")
}

func TestGraphQLRejectsMalformedBody(t *testing.T) {
	router := NewRouter(RouterOptions{
		Schema: graph.NewSchema(graph.NewResolver(service.New(memory.NewInMemory()),
			claims.NewResolver(claims.NewVerifier(jwks.Static(nil))))),
	})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/graphql", nil)
	req.Body = http.NoBody
	rr := testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/graphql", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.Body = http.NoBody
	req.ContentLength = 5
	rr = testutil.DoRequest(router, req)
	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestClaimsRequestCopiesHeaders(t *testing.T) {
	var got claims.Request
	handler := ClaimsRequest(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = claims.RequestFrom(r.Context())
	}))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer abc")
	testutil.DoRequest(handler, req)

	value, ok := got.Header("authorization")
	require.True(t, ok)
	assert.Equal(t, "Bearer abc", value)
	assert.Nil(t, got.Authorizer)
}
