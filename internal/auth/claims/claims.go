// Package claims resolves the caller's identity claims from an inbound request.
//
// Three strategies are tried in a fixed order and the first that applies wins:
// claims attached by a REST API authorizer, claims attached by an HTTP API JWT
// authorizer, and finally a raw bearer token verified with RS256 against the
// provider's published keys. The first two trust the gateway; only the bearer
// path performs cryptographic verification and it cannot be switched off.
package claims

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// GroupsClaim is the claim carrying group membership.
const GroupsClaim = "cognito:groups"

// Set is a resolved claim set. A nil Set means the caller is unauthenticated;
// a non-nil Set without groups is authenticated but belongs to no group.
type Set map[string]any

// Identity is the typed view of the claims the service cares about.
type Identity struct {
	Subject  string   `mapstructure:"sub"`
	Username string   `mapstructure:"cognito:username"`
	Email    string   `mapstructure:"email"`
	TokenUse string   `mapstructure:"token_use"`
	ClientID string   `mapstructure:"client_id"`
	Groups   []string `mapstructure:"cognito:groups"`
}

// Identity decodes the well-known claims. Groups arrive in several shapes
// depending on the path the request took, all of which decode to []string.
func (s Set) Identity() (Identity, error) {
	var id Identity
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(groupsHook),
		WeaklyTypedInput: true,
		Result:           &id,
	})
	if err != nil {
		return Identity{}, err
	}
	if err := decoder.Decode(map[string]any(s)); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Groups returns the caller's groups, or nil when the claim is missing or
// cannot be decoded. Only the group claim is read, so an oddly typed claim
// elsewhere in the set cannot change the authorization decision.
func (s Set) Groups() []string {
	raw, ok := s[GroupsClaim]
	if !ok || raw == nil {
		return nil
	}
	var groups []string
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(groupsHook),
		WeaklyTypedInput: true,
		Result:           &groups,
	})
	if err != nil {
		return nil
	}
	if err := decoder.Decode(raw); err != nil {
		return nil
	}
	return groups
}

// HasGroup reports exact membership of group.
func (s Set) HasGroup(group string) bool {
	for _, g := range s.Groups() {
		if g == group {
			return true
		}
	}
	return false
}

// Subject returns the sub claim.
func (s Set) Subject() string {
	v, _ := s["sub"].(string)
	return v
}

var stringSliceType = reflect.TypeOf([]string(nil))

// groupsHook turns string encodings of a group list into []string:
// a JSON array ("[\"a\",\"b\"]"), the HTTP API authorizer's flattened form
// ("[a b]"), or a comma or space separated list ("a,b").
func groupsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stringSliceType || from.Kind() != reflect.String {
		return data, nil
	}
	return splitGroups(data.(string)), nil
}

func splitGroups(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list
		}
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	}
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
