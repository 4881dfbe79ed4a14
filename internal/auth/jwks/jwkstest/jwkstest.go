// Package jwkstest provides RSA signing keys, JWKS documents and signed tokens
// for tests that exercise bearer-token verification.
package jwkstest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"volunteermatch/internal/auth/jwks"
)

// Issuer is the issuer embedded in tokens built by Claims.
const Issuer = "https://cognito-idp.eu-west-2.amazonaws.com/eu-west-2_test"

// Signer holds one RSA key pair and its key id.
type Signer struct {
	KID string
	Key *rsa.PrivateKey
}

// NewSigner generates a 2048-bit key pair.
func NewSigner(t testing.TB, kid string) *Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &Signer{KID: kid, Key: key}
}

// JWK returns the public half as a JSON web key.
func (s *Signer) JWK() jose.JSONWebKey {
	return jose.JSONWebKey{Key: &s.Key.PublicKey, KeyID: s.KID, Algorithm: "RS256", Use: "sig"}
}

// KeySet returns a key set holding only this signer's public key.
func (s *Signer) KeySet() *jwks.KeySet {
	return jwks.NewKeySet(s.JWK())
}

// Sign signs claims with RS256 and sets the kid header.
func (s *Signer) Sign(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.KID
	signed, err := token.SignedString(s.Key)
	require.NoError(t, err)
	return signed
}

// Claims builds a Cognito-shaped ID token claim set valid for an hour.
func Claims(sub string, groups ...string) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       sub,
		"iss":       Issuer,
		"aud":       "test-client",
		"token_use": "id",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
	}
	if len(groups) > 0 {
		list := make([]any, 0, len(groups))
		for _, g := range groups {
			list = append(list, g)
		}
		claims["cognito:groups"] = list
	}
	return claims
}

// Document marshals a JWKS document for the given signers.
func Document(t testing.TB, signers ...*Signer) []byte {
	t.Helper()
	set := jose.JSONWebKeySet{}
	for _, s := range signers {
		set.Keys = append(set.Keys, s.JWK())
	}
	body, err := json.Marshal(set)
	require.NoError(t, err)
	return body
}

// Server serves a JWKS document and counts requests.
type Server struct {
	*httptest.Server
	hits atomic.Int32
}

// NewServer starts a JWKS endpoint serving body with the given status.
func NewServer(t testing.TB, status int, body []byte) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns the number of requests served.
func (s *Server) Hits() int {
	return int(s.hits.Load())
}
