// Package rbac decides whether authenticated claims may perform an operation.
package rbac

import (
	"MediChain/apperror"
	"MediChain/models"
)

const insufficientPrivileges = "Forbidden: insufficient privileges"

// Authorize allows the caller iff its role is one of roles.
func Authorize(claims *models.Claims, roles ...models.Role) error {
	if claims == nil {
		return apperror.NewForbidden(insufficientPrivileges)
	}
	for _, role := range roles {
		if hasRole(claims.Role, role) {
			return nil
		}
	}
	return apperror.NewForbidden(insufficientPrivileges)
}

// AuthorizeOwnership allows the owner of a resource and any Admin.
func AuthorizeOwnership(claims *models.Claims, ownerID string) error {
	if claims == nil {
		return apperror.NewForbidden(insufficientPrivileges)
	}
	if hasRole(claims.Role, models.RoleAdmin) {
		return nil
	}
	if ownerID != "" && claims.UserID == ownerID {
		return nil
	}
	return apperror.NewForbidden(insufficientPrivileges)
}

// AuthorizeSelf allows only the owner of a resource.
func AuthorizeSelf(claims *models.Claims, ownerID string) error {
	if claims == nil || ownerID == "" || claims.UserID != ownerID {
		return apperror.NewForbidden(insufficientPrivileges)
	}
	return nil
}

func hasRole(actual, want models.Role) bool {
	switch actual {
	case models.RoleAdmin, models.RoleDoctor, models.RolePatient:
		return actual == want
	default:
		return false
	}
}
