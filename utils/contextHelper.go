package utils

import (
	"context"

	"github.com/mmdatafocus/adsync_backend/appctx"
)

var (
	ContextKeyCaller        = appctx.ContextKeyCaller
	ContextKeyAuthHeader    = appctx.ContextKeyAuthHeader
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

// GetCallerFromContext returns the subject of the validated service token,
// when the request carried one.
func GetCallerFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCaller)
}

func GetAuthHeaderFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyAuthHeader)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCallerInContext(ctx context.Context, caller string) context.Context {
	return appctx.Set(ctx, ContextKeyCaller, caller)
}

func SetAuthHeaderInContext(ctx context.Context, authHeader string) context.Context {
	return appctx.Set(ctx, ContextKeyAuthHeader, authHeader)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
