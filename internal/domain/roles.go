package domain

// Role enumerates workflow role tags a viewer may hold.
type Role string

const (
	RoleRequestor      Role = "REQUESTOR"
	RoleProgrammer     Role = "PROGRAMMER"
	RoleDepartmentHead Role = "DEPARTMENT_HEAD"
	RoleOD             Role = "OD"
	RoleMISSupervisor  Role = "MIS_SUPERVISOR"
)

// RolePriority is the fixed resolution order used wherever a single role
// must win over co-held ones (dashboard action selection).
var RolePriority = []Role{
	RoleMISSupervisor,
	RoleProgrammer,
	RoleDepartmentHead,
	RoleOD,
	RoleRequestor,
}

func validRole(r Role) bool {
	switch r {
	case RoleRequestor, RoleProgrammer, RoleDepartmentHead, RoleOD, RoleMISSupervisor:
		return true
	}
	return false
}

// RoleSet is an ordered, deduplicated collection of role tags. Order is
// insertion order; unknown tags are dropped during construction.
type RoleSet struct {
	roles []Role
}

// NewRoleSet normalizes raw role strings into a RoleSet. It accepts both
// a single tag and a list, deduplicates, and ignores unknown tags.
func NewRoleSet(tags ...string) RoleSet {
	set := RoleSet{}
	for _, tag := range tags {
		set = set.With(Role(tag))
	}
	return set
}

// With returns a copy of the set extended with the given role. Duplicates
// and unknown tags are ignored.
func (s RoleSet) With(r Role) RoleSet {
	if !validRole(r) || s.Has(r) {
		return s
	}
	roles := make([]Role, len(s.roles), len(s.roles)+1)
	copy(roles, s.roles)
	return RoleSet{roles: append(roles, r)}
}

// Has reports whether the set contains the role.
func (s RoleSet) Has(r Role) bool {
	for _, held := range s.roles {
		if held == r {
			return true
		}
	}
	return false
}

// Roles returns the held tags in insertion order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Empty reports whether no role is held.
func (s RoleSet) Empty() bool {
	return len(s.roles) == 0
}

// AuditRole extracts the single role recorded on an outbound transition
// request: OD is preferred over co-held roles, otherwise the first held
// role wins.
func (s RoleSet) AuditRole() Role {
	if s.Has(RoleOD) {
		return RoleOD
	}
	if len(s.roles) == 0 {
		return ""
	}
	return s.roles[0]
}

// Strings returns the held tags as plain strings, for token claims and
// persistence.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s.roles))
	for i, r := range s.roles {
		out[i] = string(r)
	}
	return out
}
