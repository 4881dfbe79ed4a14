// Package authz gates operations on group membership.
package authz

import (
	"volunteermatch/internal/auth/claims"
	dErrors "volunteermatch/pkg/domain-errors"
)

// Messages returned to clients. Callers branch on the code, not the text.
const (
	MsgAuthenticationRequired = "Authentication required to find matches"
	MsgAuthorizationDenied    = "Authorisation denied. Matching only available to charity users"
)

// Authorize fails with CodeUnauthorized when set is nil and CodeForbidden when
// requiredGroup is not one of the caller's groups (exact match).
func Authorize(set claims.Set, requiredGroup string) error {
	if set == nil {
		return dErrors.New(dErrors.CodeUnauthorized, MsgAuthenticationRequired)
	}
	if !set.HasGroup(requiredGroup) {
		return dErrors.New(dErrors.CodeForbidden, MsgAuthorizationDenied)
	}
	return nil
}
