package draft

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquilibrateBoundaries(t *testing.T) {
	cases := []struct {
		name        string
		p1, p2      int
		wantOrder   OrderName
		wantFavored Seat // favored seat when the favored catalog is chosen
		wantBans    int
		wantBanner  Seat
	}{
		{name: "tied", p1: 50, p2: 50, wantOrder: OrderNeutral},
		{name: "below threshold", p1: 0, p2: 5, wantOrder: OrderNeutral},
		{name: "exactly at favored threshold", p1: 0, p2: 6,
			wantOrder: OrderFavored, wantFavored: SeatP1},
		{name: "one ban boundary", p1: 0, p2: 12,
			wantOrder: OrderFavored, wantFavored: SeatP1, wantBans: 1, wantBanner: SeatP1},
		{name: "just under two bans", p1: 23, p2: 0,
			wantOrder: OrderFavored, wantFavored: SeatP2, wantBans: 1, wantBanner: SeatP2},
		{name: "two bans", p1: 0, p2: 30,
			wantOrder: OrderFavored, wantFavored: SeatP1, wantBans: 2, wantBanner: SeatP1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			setup := Equilibrate(true, tc.p1, tc.p2, rng)

			assert.Equal(t, tc.wantOrder, setup.OrderName)
			assert.Equal(t, Order(tc.wantOrder), setup.Order)
			assert.Equal(t, tc.wantBans, setup.BansAllowed)
			assert.Equal(t, tc.wantBanner, setup.Banner)

			if tc.wantOrder == OrderFavored {
				require.NotNil(t, setup.Roles.Favored)
				assert.Nil(t, setup.Roles.Neutral)
				assert.Equal(t, tc.wantFavored, setup.Roles.Favored.P1Role)
				assert.NotEqual(t, setup.Roles.Favored.P1Role, setup.Roles.Favored.P2Role)
			} else {
				require.NotNil(t, setup.Roles.Neutral)
				assert.Nil(t, setup.Roles.Favored)
				assert.NotEqual(t, setup.Roles.Neutral.RoleA, setup.Roles.Neutral.RoleB)
			}
		})
	}
}

func TestEquilibrateDisabledIgnoresScores(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	setup := Equilibrate(false, 0, 200, rng)

	assert.Equal(t, OrderNeutral, setup.OrderName)
	assert.Zero(t, setup.BansAllowed)
	assert.Empty(t, setup.Banner)
	require.NotNil(t, setup.Roles.Neutral)
}

func TestEquilibrateNeutralRolesAreRandom(t *testing.T) {
	seen := map[Seat]bool{}
	for seed := int64(0); seed < 32; seed++ {
		rng := rand.New(rand.NewSource(seed))
		setup := Equilibrate(true, 10, 10, rng)
		require.NotNil(t, setup.Roles.Neutral)
		seen[setup.Roles.Neutral.RoleA] = true
	}
	assert.True(t, seen[SeatP1] && seen[SeatP2], "both directions should occur across seeds")
}

func TestExpiryDurations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(TurnDuration), Expiry(now, PhaseBan1))
	assert.Equal(t, now.Add(TurnDuration), Expiry(now, PhasePick2))
	assert.Equal(t, now.Add(EquilibrateBanDuration), Expiry(now, PhaseEquilibrate))
}
