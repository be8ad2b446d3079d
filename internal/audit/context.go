package audit

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/staybook/audit-service/internal/models"
)

type ctxKey string

const requestMetaKey ctxKey = "audit_request_meta"

// UnknownValue is substituted for request fields that cannot be determined,
// e.g. when an event originates from a background job with no HTTP request.
const UnknownValue = "unknown"

// WithRequestMeta stores request metadata on the context for later extraction.
// The requestmeta HTTP middleware calls this for every inbound request;
// background jobs may call it directly to tag their events.
func WithRequestMeta(ctx context.Context, meta models.RequestContext) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

// ExtractRequestContext pulls actor-facing request metadata from the ambient
// context. It never fails: missing fields degrade to UnknownValue so the
// writer always has a well-formed context to embed.
func ExtractRequestContext(ctx context.Context) models.RequestContext {
	meta, ok := ctx.Value(requestMetaKey).(models.RequestContext)
	if !ok {
		return models.RequestContext{
			IPAddress: UnknownValue,
			UserAgent: UnknownValue,
			RequestID: chimw.GetReqID(ctx),
		}
	}
	if meta.IPAddress == "" {
		meta.IPAddress = UnknownValue
	}
	if meta.UserAgent == "" {
		meta.UserAgent = UnknownValue
	}
	if meta.RequestID == "" {
		meta.RequestID = chimw.GetReqID(ctx)
	}
	return meta
}
