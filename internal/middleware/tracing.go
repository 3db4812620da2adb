package middleware

import (
	"net/http"
	"strings"

	"recipebox/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Health checks and metric scrapes are not traced.
var untracedPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// routeResource maps a path parameter under an API prefix to the span
// attribute naming the object it addresses.
type routeResource struct {
	prefix string
	param  string
	attr   string
}

var routeResources = []routeResource{
	{"/api/recipes/", "id", "recipebox.recipe.id"},
	{"/api/recipes/", "userId", "recipebox.author.id"},
	{"/api/recipebooks/", "id", "recipebox.recipe_book.id"},
	{"/api/recipebooks/", "recipeId", "recipebox.recipe.id"},
	{"/api/recipebooks/", "userId", "recipebox.owner.id"},
	{"/api/users/", "id", "recipebox.user.id"},
	{"/api/tags/", "id", "recipebox.tag.id"},
	{"/api/tags/", "name", "recipebox.tag.name"},
	{"/api/tags/", "category", "recipebox.tag.category"},
	{"/api/images/", "key", "recipebox.image.key"},
}

// TracingMiddleware opens a server span per request, continuing any trace
// propagated in the request headers. Once routing is done the span is
// renamed to the matched route and tagged with the recipe, book, tag or
// user the request addressed.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if untracedPaths[c.Path()] {
			return c.Next()
		}

		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Locals("spanID", span.SpanContext().SpanID().String())
		c.Set("X-Trace-ID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		span.SetAttributes(resourceAttributes(c, route)...)
		if userID, ok := c.Locals("userID").(uint); ok {
			span.SetAttributes(attribute.Int64("recipebox.caller.id", int64(userID)))
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}

func resourceAttributes(c *fiber.Ctx, route string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, r := range routeResources {
		if !strings.HasPrefix(route, r.prefix) {
			continue
		}
		if v := c.Params(r.param); v != "" {
			attrs = append(attrs, attribute.String(r.attr, v))
		}
	}
	return attrs
}
