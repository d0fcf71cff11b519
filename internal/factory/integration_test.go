package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/identity"
	"github.com/mcoot/wordparty/internal/services/party"
	redisstore "github.com/mcoot/wordparty/internal/store/redis"
	"github.com/mcoot/wordparty/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestDictionary())
}

func settle(sessions ...*party.Session) {
	for {
		var before, after uint64
		for _, sess := range sessions {
			before += sess.Loop().Processed()
		}
		for _, sess := range sessions {
			sess.Loop().Flush()
		}
		for _, sess := range sessions {
			after += sess.Loop().Processed()
		}
		if before == after {
			return
		}
	}
}

func (s *IntegrationSuite) party(code model.PartyCode) *model.Party {
	snap, err := s.app.Store.Get(s.ctx, model.PartyPath(code))
	s.Require().NoError(err)
	p, err := model.DecodeParty(code, snap.Value())
	s.Require().NoError(err)
	return p
}

// Test: identities are issued and restored through the shared store
func (s *IntegrationSuite) TestSignInRestoresCredential() {
	first, err := s.app.SignIn(s.ctx, nil)
	s.Require().NoError(err)
	s.False(first.Restored)

	again, err := s.app.SignIn(s.ctx, &first.Credential)
	s.Require().NoError(err)
	s.True(again.Restored)
	s.Equal(first.UID, again.UID)
}

// Test: complete custom game with a human host and a bot, from lobby to a second round
func (s *IntegrationSuite) TestHostAndBotPlayCustomGame() {
	host, hostID, err := s.app.NewSession(s.ctx, nil, nil)
	s.Require().NoError(err)
	defer host.Close()
	b, botSess, err := s.app.NewBot(s.ctx, nil)
	s.Require().NoError(err)
	defer botSess.Close()

	s.app.MockRandom.QueueString("ABC234")
	code, err := host.CreateParty(s.ctx, "Host")
	s.Require().NoError(err)
	s.Require().NoError(botSess.JoinParty(s.ctx, "Bot", string(code)))
	settle(host, botSess)

	// Step 1: the host sets the first word
	ids := s.party(code).PlayerIDs()
	hostIndex := 0
	if ids[1] == hostID.UID {
		hostIndex = 1
	}
	perm := []int{hostIndex, 1 - hostIndex}
	s.app.MockRandom.QueuePerm(perm...)
	s.Require().NoError(host.StartRound(s.ctx, model.ModeCustom))
	settle(host, botSess)
	s.True(host.Snapshot().IsWordSetter)

	s.Require().NoError(host.SubmitWord(s.ctx, "slate"))
	settle(host, botSess)

	// Step 2: the bot guesses until done and the round ends
	p := s.party(code)
	s.Equal(model.StatusResults, p.Status)
	s.Greater(b.Guesses(), 0)
	s.Equal(model.StatusResults, host.Snapshot().Phase)

	// Step 3: the bot sets the next word and the host guesses it
	s.Require().NoError(host.PlayAgain(s.ctx))
	settle(host, botSess)
	s.Equal(1, b.Words())
	s.Equal(model.StatusPlaying, host.Snapshot().Phase)
	s.Equal(2, host.Snapshot().Round)

	target := s.party(code).TargetWord
	res, err := host.Guess(s.ctx, target)
	s.Require().NoError(err)
	s.True(res.Won)
	settle(host, botSess)
	s.Equal(model.StatusResults, s.party(code).Status)

	// Step 4: back to the lobby
	s.Require().NoError(host.ReturnToLobby(s.ctx))
	settle(host, botSess)
	s.Equal(model.StatusLobby, botSess.Snapshot().Phase)
}

// Test: multiplayer is unavailable when sign-in is switched off
func (s *IntegrationSuite) TestDisabledIdentity() {
	app := newWithDependencies(s.app.Store, s.app.Clock, s.app.Random, s.app.DictionaryService, Config{
		IdentityConfig: identity.Config{Enabled: false, BcryptCost: 4},
		RetryPolicy:    s.app.RetryPolicy,
	}, testutil.NopLogger())

	_, _, err := app.NewSession(s.ctx, nil, nil)
	s.ErrorIs(err, model.ErrIdentityUnavailable)
	s.ErrorIs(err, identity.ErrProviderDisabled)
}

type eventLog struct {
	mu     sync.Mutex
	events []model.EventType
}

func (l *eventLog) Notify(ev model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev.Type)
}

func (l *eventLog) has(t model.EventType) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e == t {
			return true
		}
	}
	return false
}

// Test: two sessions play a classic round over the Redis store
func TestRedisClassicRound(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisstore.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(Config{
		StorageType:    StorageTypeRedis,
		RedisConfig:    &cfg,
		IdentityConfig: identity.Config{Enabled: true, BcryptCost: 4},
		Logger:         testutil.NopLogger(),
	})
	if err != nil {
		t.Fatalf("creating app: %v", err)
	}
	defer func() { _ = app.Close() }()

	ctx := context.Background()
	hostLog, guestLog := &eventLog{}, &eventLog{}
	host, _, err := app.NewSession(ctx, nil, hostLog)
	if err != nil {
		t.Fatalf("host sign in: %v", err)
	}
	defer host.Close()
	guest, _, err := app.NewSession(ctx, nil, guestLog)
	if err != nil {
		t.Fatalf("guest sign in: %v", err)
	}
	defer guest.Close()

	code, err := host.CreateParty(ctx, "Host")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := guest.JoinParty(ctx, "Guest", string(code)); err != nil {
		t.Fatalf("join: %v", err)
	}

	waitFor := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(3 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %s", what)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	if err := host.StartRound(ctx, model.ModeClassic); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor("round start", func() bool {
		return host.Snapshot().Phase == model.StatusPlaying && guest.Snapshot().Phase == model.StatusPlaying
	})

	snap, err := app.Store.Get(ctx, model.PartyField(code, model.FieldTargetWord))
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	target := snap.String()

	for _, sess := range []*party.Session{host, guest} {
		if _, err := sess.Guess(ctx, target); err != nil {
			t.Fatalf("guess: %v", err)
		}
	}
	waitFor("results", func() bool {
		return hostLog.has(model.EventRoundResults) && guestLog.has(model.EventRoundResults)
	})
}
