package party

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordparty/internal/dependencies/mocks"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/store"
	"github.com/mcoot/wordparty/internal/store/memory"
	"github.com/mcoot/wordparty/internal/testutil"
)

const code = model.PartyCode("ABC234")

type SessionSuite struct {
	suite.Suite
	base  *memory.Store
	dict  *dictionary.Service
	rnd   *mocks.MockRandom
	clock *mocks.MockClock
	ctx   context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.base = memory.New()
	s.dict = dictionary.New()
	s.Require().NoError(s.dict.LoadWords(
		[]string{"crane", "slate", "trace"},
		[]string{"adieu", "blast", "brace", "cramp", "track", "train"},
	))
	s.rnd = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()
}

func (s *SessionSuite) newSessionOn(st store.Store, uid model.PlayerID, cfg Config) (*Session, *recorder) {
	rec := &recorder{}
	sess := New(st, uid, s.dict, s.rnd, s.clock, cfg, rec, testutil.NopLogger())
	s.T().Cleanup(sess.Close)
	return sess, rec
}

func (s *SessionSuite) newSession(uid model.PlayerID) (*Session, *recorder) {
	return s.newSessionOn(s.base, uid, DefaultConfig())
}

// hostAndGuest creates a party ABC234 with host-1 and guest-1 in the lobby
func (s *SessionSuite) hostAndGuest() (*Session, *recorder, *Session, *recorder) {
	host, hostRec := s.newSession("host-1")
	guest, guestRec := s.newSession("guest-1")

	s.rnd.QueueString(string(code))
	got, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	s.Require().Equal(code, got)
	s.Require().NoError(guest.JoinParty(s.ctx, "Guesty", "abc234"))
	settle(host, guest)
	return host, hostRec, guest, guestRec
}

func (s *SessionSuite) party() *model.Party {
	snap, err := s.base.Get(s.ctx, model.PartyPath(code))
	s.Require().NoError(err)
	p, err := model.DecodeParty(code, snap.Value())
	s.Require().NoError(err)
	return p
}

// Lobby

func (s *SessionSuite) TestCreateParty() {
	host, rec := s.newSession("host-1")
	s.rnd.QueueString(string(code))

	got, err := host.CreateParty(s.ctx, "  Ho!!st  ")
	s.Require().NoError(err)
	s.Equal(code, got)
	settle(host)

	view := host.Snapshot()
	s.True(view.IsHost)
	s.Equal(model.StatusLobby, view.Phase)

	p := s.party()
	s.Equal(model.PlayerID("host-1"), p.HostID)
	s.Equal("Host", p.Players["host-1"].Name)

	ev, ok := rec.last(model.EventPlayersChanged)
	s.Require().True(ok)
	s.Len(ev.Payload.(model.PlayersChangedPayload).Players, 1)
}

func (s *SessionSuite) TestCreatePartySkipsTakenCode() {
	s.Require().NoError(s.base.Set(s.ctx, model.PartyPath("AAAAAA"), model.NewPartyTree("other", "Other")))
	host, _ := s.newSession("host-1")
	s.rnd.QueueString("AAAAAA", "BBBBBB")

	got, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	s.Equal(model.PartyCode("BBBBBB"), got)
}

func (s *SessionSuite) TestCreatePartyCodeExhausted() {
	s.Require().NoError(s.base.Set(s.ctx, model.PartyPath("AAAAAA"), model.NewPartyTree("other", "Other")))
	host, _ := s.newSession("host-1")
	s.rnd.QueueString("AAAAAA", "AAAAAA", "AAAAAA", "AAAAAA", "AAAAAA")

	_, err := host.CreateParty(s.ctx, "Hosty")
	s.ErrorIs(err, model.ErrCodeExhausted)
	s.Equal(model.PartyCode(""), host.Snapshot().Code)
}

func (s *SessionSuite) TestCreatePartyRejectsEmptyName() {
	host, _ := s.newSession("host-1")
	_, err := host.CreateParty(s.ctx, " !! ")
	s.ErrorIs(err, model.ErrValidation)
}

func (s *SessionSuite) TestJoinParty() {
	host, hostRec, guest, _ := s.hostAndGuest()

	s.False(guest.Snapshot().IsHost)
	s.Equal(code, guest.Snapshot().Code)

	ev, ok := hostRec.last(model.EventPlayersChanged)
	s.Require().True(ok)
	payload := ev.Payload.(model.PlayersChangedPayload)
	s.Equal(model.PlayerID("host-1"), payload.HostID)
	s.Len(payload.Players, 2)

	_, err := host.CreateParty(s.ctx, "Again")
	s.ErrorIs(err, model.ErrAlreadyInParty)
}

func (s *SessionSuite) TestJoinErrors() {
	guest, _ := s.newSession("guest-1")

	s.ErrorIs(guest.JoinParty(s.ctx, "Guesty", "NOPE42"), model.ErrPartyNotFound)
	s.ErrorIs(guest.JoinParty(s.ctx, "Guesty", "AB"), model.ErrValidation)
	s.ErrorIs(guest.JoinParty(s.ctx, "", "ABC234"), model.ErrValidation)
}

func (s *SessionSuite) TestJoinAfterStartIsRefused() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	late, _ := s.newSession("late-1")
	s.ErrorIs(late.JoinParty(s.ctx, "Late", string(code)), model.ErrPartyNotJoinable)
}

func (s *SessionSuite) TestStartRoundRules() {
	host, _, guest, _ := s.hostAndGuest()

	s.ErrorIs(guest.StartRound(s.ctx, model.ModeClassic), model.ErrNotHost)
	s.ErrorIs(host.StartRound(s.ctx, "speedrun"), model.ErrValidation)

	solo, _ := s.newSession("solo-1")
	s.rnd.QueueString("SSSSSS")
	_, err := solo.CreateParty(s.ctx, "Solo")
	s.Require().NoError(err)
	s.ErrorIs(solo.StartRound(s.ctx, model.ModeCustom), model.ErrInsufficientPlayers)
}

func (s *SessionSuite) TestWrongPhase() {
	host, _, guest, _ := s.hostAndGuest()

	s.ErrorIs(host.PlayAgain(s.ctx), model.ErrWrongPhase)
	_, err := guest.Guess(s.ctx, "crane")
	s.ErrorIs(err, model.ErrWrongPhase)
	s.ErrorIs(guest.SubmitWord(s.ctx, "crane"), model.ErrWrongPhase)

	outsider, _ := s.newSession("outsider")
	s.ErrorIs(outsider.MarkRoundDone(s.ctx, true), model.ErrNotInParty)
}

// Classic rounds

func (s *SessionSuite) TestClassicRoundToResults() {
	host, hostRec, guest, guestRec := s.hostAndGuest()

	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	for _, sess := range []*Session{host, guest} {
		view := sess.Snapshot()
		s.Equal(model.StatusPlaying, view.Phase)
		s.Equal(1, view.Round)
		s.Equal(6, view.Remaining)
		s.Empty(view.Target)
	}
	ev, ok := guestRec.last(model.EventRoundStarted)
	s.Require().True(ok)
	s.Equal(model.RoundStartedPayload{Round: 1, Mode: model.ModeClassic, WordLength: 5}, ev.Payload)

	res, err := guest.Guess(s.ctx, "slate")
	s.Require().NoError(err)
	s.False(res.Finished)
	res, err = guest.Guess(s.ctx, "crane")
	s.Require().NoError(err)
	s.True(res.Won)
	settle(host, guest)
	s.Equal(model.StatusPlaying, host.Snapshot().Phase)

	_, err = host.Guess(s.ctx, "CRANE")
	s.Require().NoError(err)
	settle(host, guest)

	for _, rec := range []*recorder{hostRec, guestRec} {
		ev, ok := rec.last(model.EventRoundResults)
		s.Require().True(ok)
		results := ev.Payload.(model.RoundResultsPayload)
		s.Equal("CRANE", results.TargetWord)
		s.Require().Len(results.Standings, 2)
		s.Equal(model.PlayerID("host-1"), results.Standings[0].PlayerID)
		s.Equal(1, results.Standings[0].GuessCount)
		s.Equal(model.PlayerID("guest-1"), results.Standings[1].PlayerID)
		s.Equal(1, rec.count(model.EventRoundResults))
	}
	s.Equal("CRANE", guest.Snapshot().Target)

	p := s.party()
	s.Equal(model.StatusResults, p.Status)
	s.Equal(2, p.Players["guest-1"].GuessCount)
	s.Equal("SLATE", p.Players["guest-1"].Guesses[0].Word)
}

func (s *SessionSuite) TestBarrierWaitsForEveryone() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	_, err := host.Guess(s.ctx, "crane")
	s.Require().NoError(err)
	settle(host, guest)

	s.Equal(model.StatusPlaying, s.party().Status)
	s.Equal(model.StatusPlaying, guest.Snapshot().Phase)
}

func (s *SessionSuite) TestLosingPlayerFinishesRound() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	_, err := host.Guess(s.ctx, "crane")
	s.Require().NoError(err)
	for i := 0; i < 6; i++ {
		res, err := guest.Guess(s.ctx, "slate")
		s.Require().NoError(err)
		s.Equal(i == 5, res.Finished)
	}
	settle(host, guest)

	p := s.party()
	s.Equal(model.StatusResults, p.Status)
	s.False(p.Players["guest-1"].Won)
	s.True(p.Players["guest-1"].Done)
}

func (s *SessionSuite) TestRejectedGuessNeverWrites() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	_, err := guest.Guess(s.ctx, "zzzzz")
	s.ErrorIs(err, model.ErrValidation)
	_, err = guest.Guess(s.ctx, "cra")
	s.ErrorIs(err, model.ErrValidation)

	s.Equal(0, s.party().Players["guest-1"].GuessCount)
}

func (s *SessionSuite) TestFailedGuessWriteLeavesBoardUntouched() {
	host, _ := s.newSession("host-1")
	failing := &failingStore{Store: s.base}
	guest, _ := s.newSessionOn(failing, "guest-1", DefaultConfig())
	s.rnd.QueueString(string(code))
	_, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	s.Require().NoError(guest.JoinParty(s.ctx, "Guesty", string(code)))
	settle(host, guest)
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	failing.broken.Store(true)
	_, err = guest.Guess(s.ctx, "slate")
	s.ErrorIs(err, errStoreDown)
	s.Empty(guest.Snapshot().Rows)
	s.Equal(6, guest.Snapshot().Remaining)

	failing.broken.Store(false)
	res, err := guest.Guess(s.ctx, "trace")
	s.Require().NoError(err)
	s.Equal(0, res.Row)
	settle(host, guest)

	p := s.party()
	s.Equal(1, p.Players["guest-1"].GuessCount)
	s.Equal("TRACE", p.Players["guest-1"].Guesses[0].Word)
	s.Len(guest.Snapshot().Rows, 1)
}

func (s *SessionSuite) TestRecordGuessRequiresNextRow() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	states := []model.LetterState{
		model.StateAbsent, model.StateAbsent, model.StateCorrect, model.StateAbsent, model.StateCorrect,
	}
	err := guest.RecordGuess(s.ctx, "slate", states, 3)
	s.ErrorIs(err, model.ErrValidation)
	s.Equal(0, s.party().Players["guest-1"].GuessCount)
	s.Empty(guest.Snapshot().Rows)

	s.Require().NoError(guest.RecordGuess(s.ctx, "slate", states, 0))
	s.ErrorIs(guest.RecordGuess(s.ctx, "slate", states, 0), model.ErrValidation)
	settle(host, guest)

	s.Len(guest.Snapshot().Rows, 1)
	s.Equal(5, guest.Snapshot().Remaining)
	p := s.party()
	s.Equal(1, p.Players["guest-1"].GuessCount)
	s.Equal(states, p.Players["guest-1"].Guesses[0].Result)
}

func (s *SessionSuite) TestHardModeInSession() {
	host, _ := s.newSessionOn(s.base, "host-1", Config{HardMode: true})
	s.rnd.QueueString(string(code))
	// Answers sort to CRANE, SLATE, TRACE
	s.rnd.QueueIntn(2)
	_, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host)

	_, err = host.Guess(s.ctx, "cramp")
	s.Require().NoError(err)
	_, err = host.Guess(s.ctx, "blast")
	s.ErrorIs(err, model.ErrValidation)
	s.Len(host.Snapshot().Rows, 1)
}

func (s *SessionSuite) TestPlayAgainClassic() {
	host, _, guest, guestRec := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)
	_, _ = host.Guess(s.ctx, "crane")
	_, _ = guest.Guess(s.ctx, "crane")
	settle(host, guest)
	s.Require().Equal(model.StatusResults, guest.Snapshot().Phase)

	s.rnd.QueueIntn(1)
	s.Require().NoError(host.PlayAgain(s.ctx))
	settle(host, guest)

	view := guest.Snapshot()
	s.Equal(model.StatusPlaying, view.Phase)
	s.Equal(2, view.Round)
	s.Empty(view.Rows)
	s.Equal(2, guestRec.count(model.EventRoundStarted))

	p := s.party()
	s.Equal("SLATE", p.TargetWord)
	s.Equal(0, p.Players["guest-1"].GuessCount)
	s.False(p.Players["guest-1"].Done)
}

func (s *SessionSuite) TestReturnToLobby() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	s.ErrorIs(guest.ReturnToLobby(s.ctx), model.ErrNotHost)
	s.Require().NoError(host.ReturnToLobby(s.ctx))
	settle(host, guest)

	s.Equal(model.StatusLobby, guest.Snapshot().Phase)
	s.Nil(guest.Snapshot().Rows)
	p := s.party()
	s.Equal("", p.TargetWord)
	s.Equal(1, p.Round)
}

// Custom rounds and the relay

func (s *SessionSuite) TestCustomRelayStartsRound() {
	host, hostRec, guest, guestRec := s.hostAndGuest()
	// PlayerIDs sort to guest-1, host-1: the identity permutation makes guest-1 the setter
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)

	s.Equal(model.StatusChoosing, guest.Snapshot().Phase)
	s.True(guest.Snapshot().IsWordSetter)
	s.Equal(1, guestRec.count(model.EventWordRequested))
	ev, ok := hostRec.last(model.EventAwaitingWord)
	s.Require().True(ok)
	s.Equal(model.AwaitingWordPayload{SetterID: "guest-1", SetterName: "Guesty"}, ev.Payload)

	s.Require().NoError(guest.SubmitWord(s.ctx, "trace"))
	settle(host, guest)

	p := s.party()
	s.Equal(model.StatusPlaying, p.Status)
	s.Equal("TRACE", p.TargetWord)
	s.Equal(1, p.Round)
	s.True(p.Players["guest-1"].Done)
	s.True(p.Players["guest-1"].IsWordSetter)
	s.Empty(p.Players["guest-1"].ProposedWord)

	s.True(guest.Snapshot().IsWordSetter)
	s.Equal("TRACE", guest.Snapshot().Target)
	_, err := guest.Guess(s.ctx, "trace")
	s.ErrorIs(err, model.ErrWrongPhase)

	_, err = host.Guess(s.ctx, "trace")
	s.Require().NoError(err)
	settle(host, guest)

	ev, ok = guestRec.last(model.EventRoundResults)
	s.Require().True(ok)
	standings := ev.Payload.(model.RoundResultsPayload).Standings
	s.Equal(model.PlayerID("host-1"), standings[0].PlayerID)
	s.Equal(model.PlayerID("guest-1"), standings[1].PlayerID)
	s.True(standings[1].IsWordSetter)
}

func (s *SessionSuite) TestRelayIgnoresDuplicateDeliveries() {
	host, _ := s.newSessionOn(duplicatingStore{s.base}, "host-1", DefaultConfig())
	guest, _ := s.newSession("guest-1")
	s.rnd.QueueString(string(code))
	_, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	s.Require().NoError(guest.JoinParty(s.ctx, "Guesty", string(code)))
	settle(host, guest)

	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)
	s.Require().NoError(guest.SubmitWord(s.ctx, "trace"))
	settle(host, guest)

	s.Equal(1, s.party().Round)
	s.Equal(1, host.Snapshot().Round)
}

func (s *SessionSuite) TestHostSetterStillRunsBarrier() {
	host, _, guest, guestRec := s.hostAndGuest()
	s.rnd.QueuePerm(1, 0)
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)
	s.Require().True(host.Snapshot().IsWordSetter)

	s.Require().NoError(host.SubmitWord(s.ctx, "slate"))
	settle(host, guest)
	s.Equal(model.StatusPlaying, guest.Snapshot().Phase)
	s.True(host.Snapshot().IsWordSetter)

	_, err := guest.Guess(s.ctx, "slate")
	s.Require().NoError(err)
	settle(host, guest)

	s.Equal(model.StatusResults, s.party().Status)
	s.Equal(1, guestRec.count(model.EventRoundResults))
}

func (s *SessionSuite) TestSubmitWordChecks() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)

	s.ErrorIs(guest.SubmitWord(s.ctx, "abc"), model.ErrValidation)
	s.ErrorIs(guest.SubmitWord(s.ctx, "zzzzz"), model.ErrValidation)
	s.ErrorIs(host.SubmitWord(s.ctx, "crane"), model.ErrRejoinRequired)
}

func (s *SessionSuite) TestStaleSetterMustRejoin() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)
	s.Require().True(guest.Snapshot().IsWordSetter)

	// The live record moves on before this client hears about it
	s.Require().NoError(s.base.Set(s.ctx, model.PartyField(code, model.FieldWordSetterIndex), 1))

	s.ErrorIs(guest.SubmitWord(s.ctx, "trace"), model.ErrRejoinRequired)
	proposed, err := s.base.Get(s.ctx, model.PlayerField(code, "guest-1", model.FieldProposedWord))
	s.Require().NoError(err)
	s.False(proposed.Exists())

	settle(host, guest)
	s.False(guest.Snapshot().IsWordSetter)
	s.True(host.Snapshot().IsWordSetter)
}

func (s *SessionSuite) TestPlayAgainCustomRotatesSetter() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest)
	s.Require().NoError(guest.SubmitWord(s.ctx, "trace"))
	settle(host, guest)
	_, err := host.Guess(s.ctx, "trace")
	s.Require().NoError(err)
	settle(host, guest)
	s.Require().Equal(model.StatusResults, host.Snapshot().Phase)

	s.Require().NoError(host.PlayAgain(s.ctx))
	settle(host, guest)

	p := s.party()
	s.Equal(model.StatusChoosing, p.Status)
	s.Equal(1, p.WordSetterIndex)
	s.Equal(model.PlayerID("host-1"), p.Setter())
	s.True(host.Snapshot().IsWordSetter)
	s.False(guest.Snapshot().IsWordSetter)

	s.Require().NoError(host.SubmitWord(s.ctx, "crane"))
	settle(host, guest)
	s.Equal(2, guest.Snapshot().Round)
	s.Equal(model.StatusPlaying, guest.Snapshot().Phase)
}

func (s *SessionSuite) TestDepartedSetterIsSkipped() {
	host, _, guest, _ := s.hostAndGuest()
	third, _ := s.newSession("zed-1")
	s.Require().NoError(third.JoinParty(s.ctx, "Zed", string(code)))
	settle(host, guest, third)

	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, guest, third)
	s.Require().True(guest.Snapshot().IsWordSetter)

	s.Require().NoError(guest.LeaveParty(s.ctx))
	settle(host, guest, third)

	p := s.party()
	s.Equal(model.StatusChoosing, p.Status)
	s.Equal(model.PlayerID("host-1"), p.Setter())
	s.True(host.Snapshot().IsWordSetter)
	s.False(third.Snapshot().IsWordSetter)
}

// Leaving

func (s *SessionSuite) TestGuestLeaveCompletesBarrier() {
	host, _, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	_, err := host.Guess(s.ctx, "crane")
	s.Require().NoError(err)
	s.Require().NoError(guest.LeaveParty(s.ctx))
	settle(host, guest)

	s.Equal(model.StatusResults, host.Snapshot().Phase)
	s.Equal(model.PartyCode(""), guest.Snapshot().Code)
}

func (s *SessionSuite) TestHostLeaveClosesParty() {
	host, _, guest, guestRec := s.hostAndGuest()

	s.Require().NoError(host.LeaveParty(s.ctx))
	settle(host, guest)

	snap, err := s.base.Get(s.ctx, model.PartyPath(code))
	s.Require().NoError(err)
	s.False(snap.Exists())
	s.Equal(1, guestRec.count(model.EventPartyClosed))
	s.Equal(model.PartyCode(""), guest.Snapshot().Code)
	s.Equal(0, s.base.SubscriberCount())
}

func (s *SessionSuite) TestLeaveReleasesSubscriptionsWhenRemoveFails() {
	failing := &failingStore{Store: s.base}
	host, _ := s.newSessionOn(failing, "host-1", DefaultConfig())
	s.rnd.QueueString(string(code))
	_, err := host.CreateParty(s.ctx, "Hosty")
	s.Require().NoError(err)
	settle(host)
	s.Greater(s.base.SubscriberCount(), 0)

	failing.broken.Store(true)
	err = host.LeaveParty(s.ctx)
	s.ErrorIs(err, errStoreDown)
	s.Equal(0, s.base.SubscriberCount())
	s.ErrorIs(host.LeaveParty(s.ctx), model.ErrNotInParty)
}

func (s *SessionSuite) TestTypingIndicator() {
	host, hostRec, guest, _ := s.hostAndGuest()
	s.Require().NoError(host.StartRound(s.ctx, model.ModeClassic))
	settle(host, guest)

	guest.SyncTyping(s.ctx, "cr4a")
	typing, err := s.base.Get(s.ctx, model.PlayerField(code, "guest-1", model.FieldTyping))
	s.Require().NoError(err)
	s.Equal("CRA", typing.String())
	settle(host, guest)
	s.Equal("CRA", typingOf(s.T(), hostRec, "guest-1"))

	guest.SyncTyping(s.ctx, "cran")
	settle(host, guest)
	s.Equal("CRAN", typingOf(s.T(), hostRec, "guest-1"))

	_, err = guest.Guess(s.ctx, "slate")
	s.Require().NoError(err)
	typing, err = s.base.Get(s.ctx, model.PlayerField(code, "guest-1", model.FieldTyping))
	s.Require().NoError(err)
	s.False(typing.Exists())
	settle(host, guest)
	s.Empty(typingOf(s.T(), hostRec, "guest-1"))
}

func (s *SessionSuite) TestCloseStopsEverything() {
	host, _, guest, _ := s.hostAndGuest()
	guest.Close()
	host.Close()

	s.Equal(0, s.base.SubscriberCount())
	_, err := host.CreateParty(s.ctx, "Again")
	s.ErrorIs(err, ErrSessionClosed)
}
