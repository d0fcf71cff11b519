package party

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// CreateParty creates a party in the lobby with this client as host
func (s *Session) CreateParty(ctx context.Context, name string) (model.PartyCode, error) {
	name, err := model.ValidateName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.code != "" {
		return "", model.ErrAlreadyInParty
	}

	for attempt := 0; attempt < s.cfg.CodeAttempts; attempt++ {
		code := model.PartyCode(s.random.String(model.CodeLength, model.CodeAlphabet))

		existing, err := s.store.Get(ctx, model.PartyPath(code))
		if err != nil {
			return "", err
		}
		if existing.Exists() {
			s.logger.Debug("party code taken", slog.String("party", string(code)))
			continue
		}

		err = s.store.Set(ctx, model.PartyPath(code), model.NewPartyTree(s.uid, name))
		if errors.Is(err, model.ErrPermissionDenied) {
			// Someone created it between the read and the write
			continue
		}
		if err != nil {
			return "", err
		}

		s.logger.Info("party created", slog.String("party", string(code)))
		if err := s.enterPartyLocked(code, name, s.uid, 0); err != nil {
			return "", err
		}
		return code, nil
	}
	return "", model.ErrCodeExhausted
}

// JoinParty adds this client to a party that is still in the lobby
func (s *Session) JoinParty(ctx context.Context, name, rawCode string) error {
	name, err := model.ValidateName(name)
	if err != nil {
		return err
	}
	code, err := model.NormalizeCode(rawCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.code != "" {
		return model.ErrAlreadyInParty
	}

	party, err := s.fetchParty(ctx, code)
	if err != nil {
		return err
	}
	if party.Status != model.StatusLobby {
		return model.ErrPartyNotJoinable
	}

	if err := s.store.Set(ctx, model.PlayerPath(code, s.uid), model.PlayerTree(name)); err != nil {
		return err
	}

	s.logger.Info("joined party", slog.String("party", string(code)))
	return s.enterPartyLocked(code, name, party.HostID, party.Round)
}

// enterPartyLocked starts the party-long subscriptions and the lobby watch
func (s *Session) enterPartyLocked(code model.PartyCode, name string, hostID model.PlayerID, round int) error {
	s.code = code
	s.name = name
	s.hostID = hostID
	s.isHost = hostID == s.uid
	s.phase = model.StatusLobby
	s.round = round
	s.mode = model.ModeClassic
	s.partyScope = store.NewScope()

	err := s.subscribeLocked(s.partyScope, model.PlayersPath(code), s.onRosterLocked)
	if err == nil {
		err = s.armWatchLocked()
	}
	if err != nil {
		s.resetLocked()
		return err
	}
	s.emitLocked(model.EventPhaseChanged, model.PhaseChangedPayload{To: model.StatusLobby})
	return nil
}

// LeaveParty releases every subscription, then removes this client's record.
// The host leaving deletes the party. Subscriptions are released even when
// the removal fails.
func (s *Session) LeaveParty(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireParty(); err != nil {
		return err
	}

	code, isHost := s.code, s.isHost
	s.resetLocked()

	var err error
	if isHost {
		err = s.store.Remove(ctx, model.PartyPath(code))
	} else {
		err = s.store.Remove(ctx, model.PlayerPath(code, s.uid))
	}
	if err != nil {
		return fmt.Errorf("leaving party %s: %w", code, err)
	}
	s.logger.Info("left party", slog.String("party", string(code)), slog.Bool("host", isHost))
	return nil
}

// onRosterLocked reports roster changes and lets the host repair a choosing
// phase whose word setter has left
func (s *Session) onRosterLocked(snap store.Snapshot) {
	players, err := model.DecodePlayers(s.code, snap.Value())
	if err != nil {
		s.reportLocked(err)
		return
	}

	sorted := model.SortedPlayers(players)
	if sig := rosterSignature(sorted); sig != s.roster {
		s.roster = sig
		s.emitLocked(model.EventPlayersChanged, model.PlayersChangedPayload{HostID: s.hostID, Players: sorted})
	}

	if !s.isHost {
		return
	}
	if s.phase == model.StatusChoosing && s.setterID != "" && players[s.setterID] == nil {
		s.skipDepartedSetterLocked()
	}
	// A failed results write is retried on the next roster change
	if s.phase == model.StatusPlaying && s.resultsRound < s.round && (s.barrierScope == nil || s.barrierScope.Released()) {
		if err := s.armBarrierLocked(); err != nil {
			s.reportLocked(err)
		}
	}
}

func rosterSignature(players []model.Player) string {
	var b strings.Builder
	for _, p := range players {
		fmt.Fprintf(&b, "%s=%s|%t|%t|%d|%s;", p.ID, p.Name, p.Done, p.Won, p.GuessCount, p.Typing)
	}
	return b.String()
}
