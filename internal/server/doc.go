// Package server provides HTTP routing, middleware, and the employee REST API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /healthz"), so the mux answers
// unsupported methods with 405.
//
// # Middleware
//
// [NewRouter] installs, outermost first:
//   - [RequestID] : reuses or generates an X-Request-ID (uuid v4)
//   - [Logging] : one charmbracelet/log line per request
//   - [Recover] : converts panics into a 500 JSON error
//   - [RateLimit] : token bucket from golang.org/x/time/rate, 429 when empty
//   - [Compress] : brotli response bodies for clients that accept "br" (optional)
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [EmployeeHandler] owns /api/v1/employees and everything below it, dispatching with its own method patterns.
// [HealthHandler] serves GET /healthz.
//
// # Errors
//
// Failures are written as {"error": "..."} with a status chosen by [StatusFor]:
//   - [shared.ErrInvalidInput], [shared.ErrInvalidArgument] : 400
//   - [shared.ErrEmployeeNotFound] : 404
//   - [shared.ErrEmployeeAlreadyExists], [shared.ErrNonUniqueResult] : 409
//   - [shared.ErrServiceUnavailable] : 503
//   - anything else : 500, logged with the request id
//
// A missing employee on GET or PUT by id is a 404 with an empty body.
//
// # Lifecycle
//
// [Server] wraps [http.Server] and shuts down gracefully when its context is cancelled.
package server
