// Package bot plays a party session automatically.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/party"
)

// MaxBotGuesses is a safety limit for one round's guess loop
const MaxBotGuesses = 32

// Bot drives a session from its events: it guesses until its board is
// finished and submits a word when asked to set one. Events are forwarded to
// next, if any, after the bot has acted.
type Bot struct {
	strategy Strategy
	next     party.Observer
	logger   *slog.Logger

	ctx     context.Context
	session atomic.Pointer[party.Session]

	guesses atomic.Int64
	words   atomic.Int64
}

var _ party.Observer = (*Bot)(nil)

// New creates a bot. It does nothing until attached to a session.
func New(strategy Strategy, next party.Observer, logger *slog.Logger) *Bot {
	return &Bot{
		strategy: strategy,
		next:     next,
		logger:   logger.With(slog.String("component", "bot")),
		ctx:      context.Background(),
	}
}

// Attach binds the bot to the session it observes. The session must have
// been created with the bot as its observer.
func (b *Bot) Attach(ctx context.Context, sess *party.Session) {
	b.ctx = ctx
	b.session.Store(sess)
}

// Guesses returns how many guesses the bot has made
func (b *Bot) Guesses() int {
	return int(b.guesses.Load())
}

// Words returns how many words the bot has submitted as setter
func (b *Bot) Words() int {
	return int(b.words.Load())
}

// Notify implements party.Observer
func (b *Bot) Notify(ev model.Event) {
	if sess := b.session.Load(); sess != nil {
		switch ev.Type {
		case model.EventRoundStarted:
			if payload, ok := ev.Payload.(model.RoundStartedPayload); ok && !payload.IsWordSetter {
				b.playRound(sess)
			}
		case model.EventWordRequested:
			b.submitWord(sess)
		}
	}
	if b.next != nil {
		b.next.Notify(ev)
	}
}

func (b *Bot) playRound(sess *party.Session) {
	for range MaxBotGuesses {
		view := sess.Snapshot()
		if view.Finished || view.Phase != model.StatusPlaying {
			return
		}

		word, err := b.strategy.ChooseGuess(view.Rows)
		if err != nil {
			b.giveUp(sess, err)
			return
		}
		res, err := sess.Guess(b.ctx, word)
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			// Hard mode can reject a fallback guess; the board is unchanged
			b.logger.Debug("guess rejected", slog.String("word", word), slog.String("reason", verr.Reason))
			b.giveUp(sess, err)
			return
		}
		if err != nil {
			b.logger.Warn("guess failed", slog.String("word", word), slog.String("error", err.Error()))
			b.giveUp(sess, err)
			return
		}
		b.guesses.Add(1)
		b.logger.Debug("guessed",
			slog.String("word", res.Word),
			slog.Int("row", res.Row),
			slog.String("result", model.JoinStates(res.States)))
		if res.Finished {
			return
		}
	}
}

// giveUp marks the round lost so the party is not left waiting on the bot
func (b *Bot) giveUp(sess *party.Session, cause error) {
	b.logger.Info("bot giving up", slog.String("error", cause.Error()))
	if err := sess.MarkRoundDone(b.ctx, false); err != nil {
		b.logger.Warn("marking round done failed", slog.String("error", err.Error()))
	}
}

func (b *Bot) submitWord(sess *party.Session) {
	word, err := b.strategy.ChooseWord()
	if err != nil {
		b.logger.Warn("choosing word failed", slog.String("error", err.Error()))
		return
	}
	if err := sess.SubmitWord(b.ctx, word); err != nil {
		b.logger.Warn("submitting word failed", slog.String("word", word), slog.String("error", err.Error()))
		return
	}
	b.words.Add(1)
	b.logger.Info("submitted word")
}
