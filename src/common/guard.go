package common

import "rbs/src/types"

// CanAct is the single ownership/role predicate consulted by every
// mutating operation. Admins may always act; everyone else must both hold
// one of the required roles and own the resource. Pure, no side effects.
func CanAct(p types.Principal, resourceOwnerID uint, requiredRoles ...types.Role) bool {
	if p.Role == types.ROLE_ADMIN {
		return true
	}
	if p.ID != resourceOwnerID {
		return false
	}
	for _, role := range requiredRoles {
		if p.Role == role {
			return true
		}
	}
	return false
}
