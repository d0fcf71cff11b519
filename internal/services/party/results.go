package party

import (
	"context"
	"sort"

	"github.com/mcoot/wordparty/internal/model"
)

// Rank orders a round's players: winners before losers, winners by fewer
// guesses, and the word setter always last. Names break remaining ties.
func Rank(players map[model.PlayerID]*model.Player) []model.Standing {
	list := make([]*model.Player, 0, len(players))
	for _, p := range players {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.IsWordSetter != b.IsWordSetter {
			return !a.IsWordSetter
		}
		if a.Won != b.Won {
			return a.Won
		}
		if a.Won && a.GuessCount != b.GuessCount {
			return a.GuessCount < b.GuessCount
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	standings := make([]model.Standing, len(list))
	for i, p := range list {
		standings[i] = model.Standing{
			Rank:         i + 1,
			PlayerID:     p.ID,
			Name:         p.Name,
			Won:          p.Won,
			GuessCount:   p.GuessCount,
			IsWordSetter: p.IsWordSetter,
		}
	}
	return standings
}

// PlayAgain starts the next round from the results screen. Classic mode
// picks a new word. Custom mode passes the setter role to the next player
// in the queue.
func (s *Session) PlayAgain(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireHost(); err != nil {
		return err
	}
	if err := s.requirePhase(model.StatusResults); err != nil {
		return err
	}

	p, err := s.fetchParty(ctx, s.code)
	if err != nil {
		return err
	}
	if p.GameMode == model.ModeClassic {
		return s.startClassicLocked(ctx, p)
	}
	if len(p.Players) < 2 {
		return model.ErrInsufficientPlayers
	}

	updates := resetPlayers(s.code, p.PlayerIDs(), "")
	updates[model.PartyField(s.code, model.FieldWordSetterIndex)] = p.NextSetterIndex()
	updates[model.PartyField(s.code, model.FieldTargetWord)] = ""
	updates[model.StatusPath(s.code)] = string(model.StatusChoosing)
	return s.store.Update(ctx, updates)
}

// ReturnToLobby ends the game and brings everyone back to the lobby
func (s *Session) ReturnToLobby(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()
	if err := s.requireHost(); err != nil {
		return err
	}
	if err := s.requirePhase(model.StatusChoosing, model.StatusPlaying, model.StatusResults); err != nil {
		return err
	}

	p, err := s.fetchParty(ctx, s.code)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, lobbyUpdate(s.code, p.PlayerIDs()))
}
