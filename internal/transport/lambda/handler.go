// Package lambdatransport adapts API Gateway events to the GraphQL schema.
// One handler serves both REST API (payload 1.0) and HTTP API (payload 2.0)
// integrations.
package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	graphql "github.com/graph-gophers/graphql-go"

	"volunteermatch/internal/auth/claims"
	"volunteermatch/internal/platform/logger"
	"volunteermatch/pkg/requestcontext"
)

const payloadV2 = "2.0"

// corsHeaders are attached to every response; the frontend is served from a
// different origin.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Authorization,Content-Type",
	"Access-Control-Allow-Methods": "OPTIONS,POST",
}

// Handler executes GraphQL requests delivered by API Gateway.
type Handler struct {
	schema  *graphql.Schema
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTimeout bounds each invocation; zero leaves only the Lambda deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// New builds a Handler for schema.
func New(schema *graphql.Schema, opts ...Option) *Handler {
	h := &Handler{schema: schema, logger: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// inbound is the transport-neutral part of either payload version.
type inbound struct {
	method     string
	requestID  string
	headers    map[string]string
	authorizer map[string]any
	body       string
	base64     bool
}

// outbound is converted back to the caller's payload version.
type outbound struct {
	status int
	body   string
}

// Handle is the Lambda entrypoint. Payload errors become 400 responses; the
// returned error is reserved for events that cannot be decoded at all.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	var probe struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	if probe.Version == payloadV2 {
		var event events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decode http api event: %w", err)
		}
		out := h.serve(ctx, fromV2(event))
		return events.APIGatewayV2HTTPResponse{
			StatusCode: out.status,
			Headers:    responseHeaders(),
			Body:       out.body,
		}, nil
	}

	var event events.APIGatewayProxyRequest
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode rest api event: %w", err)
	}
	out := h.serve(ctx, fromV1(event))
	return events.APIGatewayProxyResponse{
		StatusCode: out.status,
		Headers:    responseHeaders(),
		Body:       out.body,
	}, nil
}

// fromV1 keeps the REST authorizer structure as delivered: a Cognito user
// pool authorizer nests the token claims under "claims".
func fromV1(event events.APIGatewayProxyRequest) inbound {
	return inbound{
		method:     event.HTTPMethod,
		requestID:  event.RequestContext.RequestID,
		headers:    event.Headers,
		authorizer: event.RequestContext.Authorizer,
		body:       event.Body,
		base64:     event.IsBase64Encoded,
	}
}

// fromV2 reshapes the HTTP API JWT authorizer claims to {"jwt":{"claims":...}}.
func fromV2(event events.APIGatewayV2HTTPRequest) inbound {
	in := inbound{
		method:    event.RequestContext.HTTP.Method,
		requestID: event.RequestContext.RequestID,
		headers:   event.Headers,
		body:      event.Body,
		base64:    event.IsBase64Encoded,
	}
	if auth := event.RequestContext.Authorizer; auth != nil && auth.JWT != nil && len(auth.JWT.Claims) > 0 {
		jwtClaims := make(map[string]any, len(auth.JWT.Claims))
		for k, v := range auth.JWT.Claims {
			jwtClaims[k] = v
		}
		in.authorizer = map[string]any{"jwt": map[string]any{"claims": jwtClaims}}
	}
	return in
}

type graphQLParams struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) serve(ctx context.Context, in inbound) outbound {
	if strings.EqualFold(in.method, http.MethodOptions) {
		return outbound{status: http.StatusNoContent}
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	ctx = requestcontext.WithRequestID(ctx, in.requestID)
	ctx = requestcontext.WithTime(ctx, h.now())
	ctx = claims.WithRequest(ctx, claims.Request{Authorizer: in.authorizer, Headers: in.headers})

	body := in.body
	if in.base64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return h.badRequest(ctx, "body is not valid base64", err)
		}
		body = string(decoded)
	}

	var params graphQLParams
	if err := json.Unmarshal([]byte(body), &params); err != nil {
		return h.badRequest(ctx, "body must be a JSON GraphQL request", err)
	}

	start := time.Now()
	resp := h.schema.Exec(ctx, params.Query, params.OperationName, params.Variables)
	out, err := json.Marshal(resp)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode graphql response",
			"error", err,
			"request_id", in.requestID,
		)
		return outbound{status: http.StatusInternalServerError, body: `{"errors":[{"message":"internal error"}]}`}
	}

	h.logger.InfoContext(ctx, "graphql request",
		"operation", params.OperationName,
		"errors", len(resp.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", in.requestID,
	)
	return outbound{status: http.StatusOK, body: string(out)}
}

func (h *Handler) badRequest(ctx context.Context, message string, err error) outbound {
	h.logger.WarnContext(ctx, "rejected request body",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	body, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
	return outbound{status: http.StatusBadRequest, body: string(body)}
}

func responseHeaders() map[string]string {
	headers := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"
	return headers
}
