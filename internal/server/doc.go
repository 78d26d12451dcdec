// Package server provides HTTP routing, middleware, and the JSON API for the
// conversion service.
//
// # Router infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # API surface
//
//   - POST /api/convert - run one batch window of a playlist conversion
//   - POST /api/search  - ranked alternatives for a single track, honoring a
//     URL blacklist of previously rejected matches
//   - GET  /api/health  - liveness probe
//
// Business failures (unsupported platform, extraction errors) are returned
// as structured {success: false, message} envelopes; transport-level
// problems (malformed JSON, wrong method) use conventional HTTP status
// codes. The permissive CORS middleware exists because the original client
// is a static browser frontend served from elsewhere.
package server
