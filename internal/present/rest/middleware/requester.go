package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/catalog/internal/domain"
)

var tracer = otel.Tracer("middleware")

const TraceIDHeader = "trace-id"

// IdentifyRequester copies the identity asserted by the authenticating proxy
// into the request context. Requests without it stay anonymous.
func IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Middleware.IdentifyRequester")
		defer span.End()

		requester := strings.TrimSpace(c.Request().Header.Get(domain.RequesterIdHeader))
		if requester != "" {
			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, requester)
			span.SetAttributes(attribute.String("RequesterId", requester))

			role := strings.TrimSpace(c.Request().Header.Get(domain.RequesterRoleHeader))
			if role != "" {
				ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, role)
				span.SetAttributes(attribute.String("RequesterRole", role))
			}
		}

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Response().Header().Set(TraceIDHeader, sc.TraceID().String())
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
