package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxAuthMethod    ContextKey = "ctx_auth_method"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// DefaultUserID is used for system initiated operations (cron, scheduler)
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// AuthMethod describes how the caller of a request was authenticated
type AuthMethod string

const (
	AuthMethodAPIKey AuthMethod = "api_key"
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodSystem AuthMethod = "system"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetAuthMethod(ctx context.Context) AuthMethod {
	if method, ok := ctx.Value(CtxAuthMethod).(AuthMethod); ok {
		return method
	}
	return ""
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// SetAuthMethod sets the auth method in the context
func SetAuthMethod(ctx context.Context, method AuthMethod) context.Context {
	return context.WithValue(ctx, CtxAuthMethod, method)
}

// NewSystemContext returns a context for jobs that run without a request,
// such as the scheduler and the notification consumer.
func NewSystemContext(parent context.Context) context.Context {
	ctx := SetUserID(parent, DefaultUserID)
	ctx = SetAuthMethod(ctx, AuthMethodSystem)
	return SetRequestID(ctx, GenerateTraceID())
}
