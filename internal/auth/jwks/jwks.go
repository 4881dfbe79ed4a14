// Package jwks fetches and caches the identity provider's published signing
// keys. The cache is an explicit object owned by the composition root; there is
// no package-level key state.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	"volunteermatch/pkg/platform/sentinel"
)

// ErrKeyFetch is returned when the key set cannot be fetched or parsed.
var ErrKeyFetch = sentinel.ErrKeyFetch

// ErrCircuitOpen is returned while repeated fetch failures keep the key
// endpoint's circuit open. It wraps ErrKeyFetch.
var ErrCircuitOpen = fmt.Errorf("%w: circuit open", ErrKeyFetch)

// ErrKeyNotFound is returned when no RSA signing key matches a token's kid.
var ErrKeyNotFound = errors.New("signing key not found")

// KeySet is an immutable set of public signing keys.
type KeySet struct {
	set jose.JSONWebKeySet
}

// Provider yields the current key set.
type Provider interface {
	Keys(ctx context.Context) (*KeySet, error)
}

// NewKeySet wraps already parsed keys.
func NewKeySet(keys ...jose.JSONWebKey) *KeySet {
	return &KeySet{set: jose.JSONWebKeySet{Keys: keys}}
}

// Parse decodes a JWKS document. An empty key list is malformed: a provider
// that publishes no keys can never verify anything.
func Parse(data []byte) (*KeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: decode key set: %w", ErrKeyFetch, err)
	}
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("%w: key set is empty", ErrKeyFetch)
	}
	return &KeySet{set: set}, nil
}

// Len returns the number of keys in the set.
func (k *KeySet) Len() int {
	return len(k.set.Keys)
}

// RSAKey returns the RSA public key published under kid. Keys declaring an
// algorithm other than RS256 or a use other than "sig" are ignored.
func (k *KeySet) RSAKey(kid string) (*rsa.PublicKey, error) {
	for _, key := range k.set.Key(kid) {
		if key.Algorithm != "" && key.Algorithm != "RS256" {
			continue
		}
		if key.Use != "" && key.Use != "sig" {
			continue
		}
		if pub, ok := key.Key.(*rsa.PublicKey); ok {
			return pub, nil
		}
	}
	return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
}

type staticProvider struct {
	set *KeySet
}

// Static returns a Provider that always yields set. Used in tests and when the
// keys are supplied out of band.
func Static(set *KeySet) Provider {
	return staticProvider{set: set}
}

func (s staticProvider) Keys(context.Context) (*KeySet, error) {
	if s.set == nil {
		return nil, fmt.Errorf("%w: no static key set configured", ErrKeyFetch)
	}
	return s.set, nil
}
