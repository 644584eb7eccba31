package draft

import "math/rand"

// Score-difference thresholds for the equilibration decision.
const (
	FavoredOrderThreshold = 6  // below this the neutral catalog is used
	OneBanThreshold       = 12 // diff in [12,24) grants one bonus ban
	TwoBanThreshold       = 24 // diff >= 24 grants two bonus bans
)

// Setup is the equilibration engine's decision, snapshotted into the lobby
// record when both players become ready.
type Setup struct {
	OrderName   OrderName
	Order       []Step
	Roles       RoleAssignment
	BansAllowed int
	// Banner is the seat owing the bonus bans; empty when BansAllowed is 0.
	Banner Seat
}

// Equilibrate decides catalog, role assignment and bonus bans from the two
// server-recomputed weighted box scores. With equilibration disabled the
// neutral catalog is used with a random role assignment and no bonus bans.
//
// When the difference reaches FavoredOrderThreshold the lower-scoring seat is
// cast as the favored P1_ROLE. A tie at or above the threshold cannot name a
// lower seat; the nominal P1 seat is favored by default and no bonus bans are
// granted, since those require a strictly lower seat.
func Equilibrate(enabled bool, p1Score, p2Score int, rng *rand.Rand) Setup {
	diff := p1Score - p2Score
	if diff < 0 {
		diff = -diff
	}

	var lower Seat
	switch {
	case p1Score < p2Score:
		lower = SeatP1
	case p2Score < p1Score:
		lower = SeatP2
	}

	if !enabled || diff < FavoredOrderThreshold {
		return Setup{
			OrderName: OrderNeutral,
			Order:     Order(OrderNeutral),
			Roles:     randomNeutralRoles(rng),
		}
	}

	favored := lower
	if favored == "" {
		favored = SeatP1
	}
	other := SeatP2
	if favored == SeatP2 {
		other = SeatP1
	}

	setup := Setup{
		OrderName: OrderFavored,
		Order:     Order(OrderFavored),
		Roles: RoleAssignment{
			Favored: &FavoredRoles{P1Role: favored, P2Role: other},
		},
	}

	if lower != "" {
		switch {
		case diff >= TwoBanThreshold:
			setup.BansAllowed = 2
		case diff >= OneBanThreshold:
			setup.BansAllowed = 1
		}
		if setup.BansAllowed > 0 {
			setup.Banner = lower
		}
	}
	return setup
}

func randomNeutralRoles(rng *rand.Rand) RoleAssignment {
	roles := &NeutralRoles{RoleA: SeatP1, RoleB: SeatP2}
	if rng.Intn(2) == 1 {
		roles.RoleA, roles.RoleB = SeatP2, SeatP1
	}
	return RoleAssignment{Neutral: roles}
}
