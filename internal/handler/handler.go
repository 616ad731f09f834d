// Package handler is the HTTP layer. Each typed endpoint binds and validates
// its request through the validation package, calls one service method and
// lets the shared pipeline in base.go log, trace and write the response.
package handler
