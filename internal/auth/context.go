// Package auth provides request-scoped caller identity.
//
// This package is designed to be imported by middleware, handler and service
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// callerContextKey is the key used to store the caller in context.
	callerContextKey contextKey = "caller"
)

// Headers carrying the caller identity. They are set by the gateway in front
// of this service.
const (
	HeaderCallerName = "X-Fleet-Caller"
	HeaderCallerRole = "X-Fleet-Role"
)

// Role is the coarse permission level of a caller.
type Role string

const (
	RoleInspector Role = "inspector"
	RoleManager   Role = "manager"
	RoleSystem    Role = "system"
)

// Caller identifies who issued the current request.
type Caller struct {
	Name string
	Role Role
}

// Anonymous is returned when no caller is present in the context.
var Anonymous = Caller{Name: "anonymous", Role: RoleSystem}

// GetCaller retrieves the caller from the context.
//
// Returns Anonymous if no caller was stored.
//
// Usage:
//
//	caller := auth.GetCaller(ctx)
//	logger.Info("inspection created", "caller", caller.Name)
func GetCaller(ctx context.Context) Caller {
	caller, ok := ctx.Value(callerContextKey).(Caller)
	if !ok {
		return Anonymous
	}
	return caller
}

// HasCaller reports whether a caller was stored in the context.
func HasCaller(ctx context.Context) bool {
	_, ok := ctx.Value(callerContextKey).(Caller)
	return ok
}

// WithCaller stores a caller in the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromRequest reads the caller headers. The second return value is
// false when the request carries no caller name.
func CallerFromRequest(r *http.Request) (Caller, bool) {
	name := strings.TrimSpace(r.Header.Get(HeaderCallerName))
	if name == "" {
		return Caller{}, false
	}

	role := Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderCallerRole))))
	switch role {
	case RoleInspector, RoleManager, RoleSystem:
	default:
		role = RoleInspector
	}

	return Caller{Name: name, Role: role}, true
}
