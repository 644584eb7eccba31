package draft

import "time"

const (
	// TurnDuration bounds a standard ban or pick step.
	TurnDuration = 30 * time.Second
	// EquilibrateBanDuration bounds the whole bonus-ban sub-phase turn.
	EquilibrateBanDuration = 300 * time.Second
)

// Expiry computes the absolute deadline for the turn entering phase at now.
// Clients race their own countdown against the same timestamp; the server is
// the sole arbiter of whether a reported timeout is honored.
func Expiry(now time.Time, phase Phase) time.Time {
	if phase == PhaseEquilibrate {
		return now.Add(EquilibrateBanDuration)
	}
	return now.Add(TurnDuration)
}
