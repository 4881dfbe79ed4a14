package graph

import (
	"context"

	dErrors "volunteermatch/pkg/domain-errors"
	"volunteermatch/pkg/requestcontext"
)

// Error codes placed in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is a resolver error shaped for clients. graphql-go copies
// Extensions into the response.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// extensionCode maps a domain code to its GraphQL extension code.
func extensionCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeUnauthorized:
		return CodeUnauthenticated
	case dErrors.CodeForbidden:
		return CodeForbidden
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return CodeBadUserInput
	default:
		return CodeInternal
	}
}

// toError redacts err for the client and logs the full chain when the cause
// is on our side.
func (r *Resolver) toError(ctx context.Context, field string, err error) *Error {
	gqlErr := &Error{Code: CodeInternal, Message: dErrors.PublicMessage(err)}
	if de, ok := dErrors.From(err); ok {
		gqlErr.Code = extensionCode(de.Code)
	}
	if gqlErr.Code == CodeInternal {
		r.logger.ErrorContext(ctx, "resolver failed",
			"field", field,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return gqlErr
}
