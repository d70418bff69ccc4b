package rbac

import "go-attend/internal/domain"

// Aliased so callers and middleware share one request shape.
type (
	EnforceRequest  = domain.EnforceRequest
	EnforceResponse = domain.EnforceResponse
	RoleResponse    = domain.RoleResponse
)
