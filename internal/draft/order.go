package draft

// Seat identifies one of the two drafting participants. The lobby host is a
// separate concept and may or may not occupy a seat.
type Seat string

const (
	SeatP1 Seat = "P1"
	SeatP2 Seat = "P2"
)

// Phase is the wire name of a draft phase.
type Phase string

const (
	PhaseBan1        Phase = "BAN1"
	PhasePick1       Phase = "PICK1"
	PhaseBan2        Phase = "BAN2"
	PhasePick2       Phase = "PICK2"
	PhaseEquilibrate Phase = "EQUILIBRATE_BANS"
	PhaseComplete    Phase = "DRAFT_COMPLETE"
)

// IsBan reports whether the phase accepts ban actions.
func (p Phase) IsBan() bool {
	return p == PhaseBan1 || p == PhaseBan2 || p == PhaseEquilibrate
}

// IsPick reports whether the phase accepts pick actions.
func (p Phase) IsPick() bool {
	return p == PhasePick1 || p == PhasePick2
}

// Role is an abstract role designation used by an order catalog. Neutral
// catalogs use ROLE_A/ROLE_B, favored catalogs use P1_ROLE/P2_ROLE; the
// assignment to concrete seats is decided once per draft.
type Role string

const (
	RoleA     Role = "ROLE_A"
	RoleB     Role = "ROLE_B"
	P1Role    Role = "P1_ROLE"
	P2Role    Role = "P2_ROLE"
	RoleEmpty Role = ""
)

// Step is one entry of a draft order catalog.
type Step struct {
	Phase Phase `json:"phase"`
	Role  Role  `json:"role"`
}

// OrderName identifies which catalog a lobby snapshotted.
type OrderName string

const (
	OrderNeutral OrderName = "NEUTRAL"
	OrderFavored OrderName = "FAVORED"
)

// neutralOrder front-loads nothing: A and B alternate symmetrically.
var neutralOrder = []Step{
	{PhaseBan1, RoleA},
	{PhaseBan1, RoleB},
	{PhasePick1, RoleB},
	{PhasePick1, RoleA},
	{PhasePick1, RoleA},
	{PhasePick1, RoleB},
	{PhaseBan2, RoleB},
	{PhaseBan2, RoleA},
	{PhasePick2, RoleA},
	{PhasePick2, RoleB},
}

// favoredOrder front-loads advantage for whichever seat is cast as P1_ROLE.
var favoredOrder = []Step{
	{PhaseBan1, P1Role},
	{PhaseBan1, P2Role},
	{PhasePick1, P1Role},
	{PhasePick1, P2Role},
	{PhasePick1, P1Role},
	{PhasePick1, P2Role},
	{PhaseBan2, P1Role},
	{PhaseBan2, P2Role},
	{PhasePick2, P2Role},
	{PhasePick2, P1Role},
}

// Order returns a copy of the named catalog. Callers snapshot it into the
// lobby record so a catalog change never alters a draft in progress.
func Order(name OrderName) []Step {
	var src []Step
	switch name {
	case OrderFavored:
		src = favoredOrder
	default:
		src = neutralOrder
	}
	out := make([]Step, len(src))
	copy(out, src)
	return out
}

// Next returns the step following index i in order. ok is false once i+1 runs
// past the end; the returned step then carries the completion sentinel phase
// and an empty role.
func Next(order []Step, i int) (step Step, next int, ok bool) {
	next = i + 1
	if next < 0 || next >= len(order) {
		return Step{Phase: PhaseComplete, Role: RoleEmpty}, -1, false
	}
	return order[next], next, true
}
