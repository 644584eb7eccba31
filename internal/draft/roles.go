package draft

import "fmt"

// NeutralRoles assigns the neutral catalog's abstract roles to seats.
type NeutralRoles struct {
	RoleA Seat `json:"ROLE_A"`
	RoleB Seat `json:"ROLE_B"`
}

// FavoredRoles assigns the favored catalog's roles to seats. The favored seat
// is always the one cast as P1_ROLE.
type FavoredRoles struct {
	P1Role Seat `json:"P1_ROLE_IN_TEMPLATE"`
	P2Role Seat `json:"P2_ROLE_IN_TEMPLATE"`
}

// RoleAssignment is the per-draft mapping from role designations to seats.
// Exactly one variant is populated, matching the catalog in effect.
type RoleAssignment struct {
	Neutral *NeutralRoles `json:"neutral,omitempty"`
	Favored *FavoredRoles `json:"favored,omitempty"`
}

// Resolve maps a role designation to a concrete seat. The empty role (the
// completion sentinel) resolves to an empty seat. Resolution failure means the
// record and the catalog disagree; callers must abort the transition rather
// than default a seat.
func (a RoleAssignment) Resolve(role Role) (Seat, error) {
	if role == RoleEmpty {
		return "", nil
	}
	switch role {
	case RoleA, RoleB:
		if a.Neutral == nil {
			return "", fmt.Errorf("role %s has no neutral assignment", role)
		}
		if role == RoleA {
			return a.Neutral.RoleA, nil
		}
		return a.Neutral.RoleB, nil
	case P1Role, P2Role:
		if a.Favored == nil {
			return "", fmt.Errorf("role %s has no favored assignment", role)
		}
		if role == P1Role {
			return a.Favored.P1Role, nil
		}
		return a.Favored.P2Role, nil
	default:
		return "", fmt.Errorf("unknown role designation %q", role)
	}
}
