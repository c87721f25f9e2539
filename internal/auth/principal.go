// Package auth resolves credentials into principals and answers
// capability questions about them. A Principal is built once per request
// from the session token; authorization checks are pure predicates over
// that value.
package auth

// Role group names as stored in the groups table.
const (
	GroupWaitstaff = "Meseros"
	GroupKitchen   = "Cocina"
	GroupManager   = "Gerente"
)

// Capability names an action class a principal may be required to hold.
type Capability string

const (
	CapWaitstaff Capability = "waitstaff"
	CapKitchen   Capability = "kitchen"
	CapManager   Capability = "manager"
)

// capabilityGroups maps each capability to the group that grants it.
// Superusers hold every capability regardless of group membership.
var capabilityGroups = map[Capability]string{
	CapWaitstaff: GroupWaitstaff,
	CapKitchen:   GroupKitchen,
	CapManager:   GroupManager,
}

// Principal is the resolved identity of a caller.
type Principal struct {
	UserID    int64    `json:"id"`
	Username  string   `json:"username"`
	Groups    []string `json:"groups"`
	Superuser bool     `json:"is_superuser"`
}

// InGroup reports whether the principal is a member of the named group.
func (p Principal) InGroup(name string) bool {
	for _, g := range p.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Has reports whether the principal holds the given capability.
func (p Principal) Has(cap Capability) bool {
	if p.Superuser {
		return true
	}
	group, ok := capabilityGroups[cap]
	return ok && p.InGroup(group)
}

// HasAny reports whether the principal holds at least one of the given
// capabilities.
func (p Principal) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if p.Has(c) {
			return true
		}
	}
	return false
}
