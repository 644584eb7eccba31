package lobby

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/wuwadraft/backend/internal/draft"
	"github.com/wuwadraft/backend/internal/protocol"
	"github.com/wuwadraft/backend/internal/roster"
)

// handlePlayerReady sets the caller's ready flag. The second ready flag going
// up while the lobby is WAITING runs the equilibration engine and moves the
// lobby to PRE_DRAFT_READY in the same conditional write; losing that race to
// a concurrent duplicate trigger is not an error. The missing-scores gate is
// part of the write condition, so a ready racing in behind this handler's
// read can never complete the transition around it.
func (m *Machine) handlePlayerReady(ctx context.Context, connID string) error {
	lb, err := m.lobbyFor(ctx, connID)
	if err != nil {
		return err
	}

	seat, ok := lb.SeatOf(connID)
	if !ok {
		// Ready from a non-seated connection carries no meaning.
		return nil
	}
	if lb.State != StateWaiting {
		return errors.New("lobby is not waiting for ready-up")
	}
	if readyBlockedOnScores(lb, seat) {
		return errScoresRequired
	}

	updated, err := m.lobbies.Update(ctx, lb.LobbyID,
		func(cur *Lobby) bool {
			return cur.State == StateWaiting &&
				cur.ConnFor(seat) == connID &&
				!readyBlockedOnScores(cur, seat)
		},
		func(cur *Lobby) {
			if seat == draft.SeatP1 {
				cur.Player1Ready = true
			} else {
				cur.Player2Ready = true
			}
			cur.LastAction = fmt.Sprintf("%s is ready", cur.NameFor(seat))

			if cur.Player1Ready && cur.Player2Ready {
				setup := m.equilibrate(cur)
				cur.EffectiveDraftOrder = setup.Order
				cur.PlayerRoles = setup.Roles
				cur.EquilibrationBansAllowed = setup.BansAllowed
				cur.EquilibrationBansMade = 0
				cur.CurrentEquilibrationBanner = setup.Banner
				cur.State = StatePreDraftReady
				cur.LastAction = fmt.Sprintf("Both players ready (%s order)", setup.OrderName)
			}
		})
	if errors.Is(err, ErrConflict) {
		// Either a concurrent trigger already advanced the lobby (its
		// broadcast will resync this client), or the other seat's ready
		// committed first and the score gate now blocks this one. Only the
		// latter deserves an error.
		cur, gerr := m.lobbies.Get(ctx, lb.LobbyID, true)
		if gerr == nil && cur.State == StateWaiting && cur.ConnFor(seat) == connID &&
			readyBlockedOnScores(cur, seat) {
			return errScoresRequired
		}
		return nil
	}
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// readyBlockedOnScores reports whether seat readying up now would make both
// seats ready in an equilibration lobby that is still missing a box score.
func readyBlockedOnScores(lb *Lobby, seat draft.Seat) bool {
	otherReady := lb.Player2Ready
	if seat == draft.SeatP2 {
		otherReady = lb.Player1Ready
	}
	return otherReady && lb.EquilibrationEnabled && !lb.ScoresSubmitted()
}

func (m *Machine) equilibrate(cur *Lobby) draft.Setup {
	enabled := cur.EquilibrationEnabled && cur.ScoresSubmitted()
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return draft.Equilibrate(enabled, cur.Player1WeightedBoxScore, cur.Player2WeightedBoxScore, m.rng)
}

// handleSubmitBoxScore recomputes the weighted score server-side, storing the
// sanitized sequence map. Invalid entries are dropped, never rejected.
func (m *Machine) handleSubmitBoxScore(ctx context.Context, connID string, a protocol.SubmitBoxScore) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}

	seat, ok := lb.SeatOf(connID)
	if !ok {
		return errNotSeated
	}
	if lb.State != StateWaiting {
		return errors.New("box scores can only be submitted before ready-up")
	}

	clean, score := roster.ScoreSequences(a.Sequences)

	updated, err := m.lobbies.Update(ctx, a.LobbyID,
		func(cur *Lobby) bool {
			return cur.State == StateWaiting && cur.ConnFor(seat) == connID
		},
		func(cur *Lobby) {
			if seat == draft.SeatP1 {
				cur.Player1Sequences = clean
				cur.Player1WeightedBoxScore = score
				cur.Player1ScoreSubmitted = true
			} else {
				cur.Player2Sequences = clean
				cur.Player2WeightedBoxScore = score
				cur.Player2ScoreSubmitted = true
			}
			cur.LastAction = fmt.Sprintf("%s submitted a box score (%d points)", cur.NameFor(seat), score)
		})
	if err != nil {
		return err
	}

	m.send(ctx, connID, protocol.BoxScoreSubmitted{Type: "boxScoreSubmitted"})
	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// handleHostStartsDraft moves PRE_DRAFT_READY into DRAFTING: either into the
// equilibration-ban sub-phase or straight into step 0 of the snapshotted
// order.
func (m *Machine) handleHostStartsDraft(ctx context.Context, connID string, a protocol.HostStartsDraft) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}
	if lb.State != StatePreDraftReady {
		return errors.New("lobby is not ready to start drafting")
	}

	var phase draft.Phase
	var turn draft.Seat
	stepIndex := -1

	if lb.EquilibrationBansAllowed > 0 {
		phase = draft.PhaseEquilibrate
		turn = lb.CurrentEquilibrationBanner
	} else {
		if len(lb.EffectiveDraftOrder) == 0 {
			return errors.New("lobby has no draft order")
		}
		first := lb.EffectiveDraftOrder[0]
		seat, rerr := lb.PlayerRoles.Resolve(first.Role)
		if rerr != nil {
			m.log.WithError(rerr).WithField("lobby", lb.LobbyID).Error("draft start: role resolution failed")
			return errors.New("draft setup is inconsistent; reset the draft")
		}
		phase = first.Phase
		turn = seat
		stepIndex = 0
	}

	expiry := draft.Expiry(m.now().UTC(), phase)

	updated, err := m.lobbies.Update(ctx, a.LobbyID,
		func(cur *Lobby) bool {
			return cur.State == StatePreDraftReady && cur.HostConnectionID == connID
		},
		func(cur *Lobby) {
			cur.State = StateDrafting
			cur.AvailableResonators = roster.Names()
			cur.Bans = []string{}
			cur.Player1Picks = []string{}
			cur.Player2Picks = []string{}
			cur.CurrentPhase = phase
			cur.CurrentTurn = turn
			cur.CurrentStepIndex = stepIndex
			cur.TurnExpiresAt = &expiry
			cur.LastAction = "Host started the draft"
		})
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// advancePlan is the precomputed turn transition applied after one ban/pick.
// It is derived from the same record snapshot the write condition guards, so
// applying it under that condition is race-free.
type advancePlan struct {
	phase     draft.Phase
	turn      draft.Seat
	stepIndex int
	bansMade  int
	complete  bool
}

func (m *Machine) planAdvance(lb *Lobby) (advancePlan, error) {
	if lb.CurrentPhase == draft.PhaseEquilibrate {
		made := lb.EquilibrationBansMade + 1
		if made < lb.EquilibrationBansAllowed {
			return advancePlan{
				phase:     draft.PhaseEquilibrate,
				turn:      lb.CurrentTurn,
				stepIndex: -1,
				bansMade:  made,
			}, nil
		}
		// Bonus bans exhausted: the standard order begins at step 0.
		if len(lb.EffectiveDraftOrder) == 0 {
			return advancePlan{}, errors.New("lobby has no draft order")
		}
		first := lb.EffectiveDraftOrder[0]
		seat, err := lb.PlayerRoles.Resolve(first.Role)
		if err != nil {
			return advancePlan{}, err
		}
		return advancePlan{phase: first.Phase, turn: seat, stepIndex: 0, bansMade: made}, nil
	}

	step, idx, ok := draft.Next(lb.EffectiveDraftOrder, lb.CurrentStepIndex)
	if !ok {
		return advancePlan{
			phase:     draft.PhaseComplete,
			stepIndex: -1,
			bansMade:  lb.EquilibrationBansMade,
			complete:  true,
		}, nil
	}
	seat, err := lb.PlayerRoles.Resolve(step.Role)
	if err != nil {
		return advancePlan{}, err
	}
	return advancePlan{phase: step.Phase, turn: seat, stepIndex: idx, bansMade: lb.EquilibrationBansMade}, nil
}

// handleDraftMove validates and applies a manual ban or pick.
func (m *Machine) handleDraftMove(ctx context.Context, connID, name string, isBan bool) error {
	lb, err := m.lobbyFor(ctx, connID)
	if err != nil {
		return err
	}

	seat, ok := lb.SeatOf(connID)
	if !ok {
		return errNotSeated
	}
	if err := validateMove(lb, seat, name, isBan); err != nil {
		return err
	}

	verb := "picked"
	if isBan {
		verb = "banned"
	}
	lastAction := fmt.Sprintf("%s %s %s", lb.NameFor(seat), verb, name)

	updated, err := m.applyMove(ctx, lb, seat, name, isBan, lastAction)
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

func validateMove(lb *Lobby, seat draft.Seat, name string, isBan bool) error {
	if lb.State != StateDrafting || lb.CurrentPhase == "" || lb.CurrentPhase == draft.PhaseComplete {
		return errors.New("draft is not in progress")
	}
	if isBan && !lb.CurrentPhase.IsBan() {
		return errors.New("current phase does not accept bans")
	}
	if !isBan && !lb.CurrentPhase.IsPick() {
		return errors.New("current phase does not accept picks")
	}
	if lb.CurrentTurn != seat {
		return errNotYourTurn
	}
	if !slices.Contains(lb.AvailableResonators, name) {
		return errNotAvailable
	}
	return nil
}

// applyMove computes the turn transition from the read snapshot and commits
// the whole move in one conditional write. The condition re-asserts the
// discriminators read at validation time; a failure means another invocation
// won and the caller is expected to wait for the authoritative broadcast.
func (m *Machine) applyMove(ctx context.Context, lb *Lobby, seat draft.Seat, name string, isBan bool, lastAction string) (*Lobby, error) {
	plan, err := m.planAdvance(lb)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lb.LobbyID).Error("turn advance failed")
		return nil, errors.New("draft setup is inconsistent; reset the draft")
	}

	expectedIndex := lb.CurrentStepIndex
	expectedBansMade := lb.EquilibrationBansMade
	expectedPhase := lb.CurrentPhase
	expectedTurn := lb.CurrentTurn

	expiresAt := draft.Expiry(m.now().UTC(), plan.phase)

	return m.lobbies.Update(ctx, lb.LobbyID,
		func(cur *Lobby) bool {
			return cur.State == StateDrafting &&
				cur.CurrentStepIndex == expectedIndex &&
				cur.EquilibrationBansMade == expectedBansMade &&
				cur.CurrentPhase == expectedPhase &&
				cur.CurrentTurn == expectedTurn
		},
		func(cur *Lobby) {
			cur.RemoveAvailable(name)
			if isBan {
				cur.Bans = append(cur.Bans, name)
			} else {
				picks := cur.PicksFor(seat)
				*picks = append(*picks, name)
			}
			cur.EquilibrationBansMade = plan.bansMade
			cur.CurrentPhase = plan.phase
			cur.CurrentTurn = plan.turn
			cur.CurrentStepIndex = plan.stepIndex
			cur.LastAction = lastAction
			if plan.complete {
				cur.State = StateComplete
				cur.TurnExpiresAt = nil
			} else {
				e := expiresAt
				cur.TurnExpiresAt = &e
			}
		})
}

// handleTurnTimeout validates a client-reported timeout and, when honored,
// consumes one uniformly random available resonator on behalf of the
// timed-out seat.
func (m *Machine) handleTurnTimeout(ctx context.Context, connID string, a protocol.TurnTimeout) error {
	lb, err := m.lobbyFor(ctx, connID)
	if err != nil {
		return err
	}

	// A mismatched phase or turn means someone already acted; the report is
	// stale and silently dropped.
	if string(lb.CurrentPhase) != a.ExpectedPhase || string(lb.CurrentTurn) != a.ExpectedTurn {
		return nil
	}
	if lb.State != StateDrafting || lb.CurrentPhase == draft.PhaseComplete || lb.CurrentTurn == "" {
		return nil
	}
	if lb.TurnExpiresAt == nil {
		return nil
	}
	if m.now().UTC().Before(*lb.TurnExpiresAt) {
		return errors.New("turn has not expired yet")
	}
	if len(lb.AvailableResonators) == 0 {
		return errors.New("no resonators left to auto-play")
	}

	seat := lb.CurrentTurn
	isBan := lb.CurrentPhase.IsBan()
	name := lb.AvailableResonators[m.randIntn(len(lb.AvailableResonators))]

	verb := "picked"
	if isBan {
		verb = "banned"
	}
	lastAction := fmt.Sprintf("%s timed out; %s was %s automatically", lb.NameFor(seat), name, verb)

	updated, err := m.applyMove(ctx, lb, seat, name, isBan, lastAction)
	if errors.Is(err, ErrConflict) {
		// Someone acted between the read and the write; their state wins.
		return nil
	}
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// handleResetDraft is the host's explicit reset back to WAITING.
func (m *Machine) handleResetDraft(ctx context.Context, connID string, a protocol.ResetDraft) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}

	updated, err := m.lobbies.Update(ctx, a.LobbyID,
		func(cur *Lobby) bool { return cur.HostConnectionID == connID },
		func(cur *Lobby) {
			cur.ResetDraft()
			cur.LastAction = "Host reset the draft"
		})
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}
