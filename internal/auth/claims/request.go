package claims

import (
	"context"
	"strings"
)

// Request is the transport-neutral view of an inbound request: the authorizer
// structure a gateway attached (if any) and the raw headers.
type Request struct {
	Authorizer map[string]any
	Headers    map[string]string
}

// Header looks a header up by case-insensitive name.
func (r Request) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

type requestKey struct{}

// WithRequest attaches req to ctx.
func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFrom returns the request attached to ctx; the zero Request when none is.
func RequestFrom(ctx context.Context) Request {
	req, _ := ctx.Value(requestKey{}).(Request)
	return req
}
