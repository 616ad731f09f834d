// Package errs defines the error shapes returned to API clients.
//
// Every failure that reaches a client is rendered as an HTTPError so the
// frontend can rely on one JSON shape: a machine code, a message, the HTTP
// status, optional field errors and an optional follow-up action.
package errs
