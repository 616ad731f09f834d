// Package middleware holds the Echo middleware chain: request ids, New
// Relic transactions, request-scoped loggers, Clerk session checks, rate
// limiting, and the global error handler that renders every failure as an
// errs.HTTPError.
package middleware
