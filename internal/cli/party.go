package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordparty/internal/factory"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/bot"
	"github.com/mcoot/wordparty/internal/services/party"
)

// leaveTimeout bounds the final leave once the command is interrupted
const leaveTimeout = 5 * time.Second

const partyHelp = `Commands:
  start [classic|custom]  start a round (host)
  word <WORD>             choose the word when it is your turn
  <WORD>                  guess during a round
  again                   play another round (host)
  lobby                   return everyone to the lobby (host)
  status                  show your view of the party
  leave                   leave the party and exit`

type partyOptions struct {
	name string
	bot  bool
	bots int
	hard bool
}

func (o *partyOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.name, "name", "", "Your display name")
	cmd.Flags().BoolVar(&o.bot, "bot", false, "Let a bot play for you")
	cmd.Flags().BoolVar(&o.hard, "hard", false, "Revealed hints must be used in later guesses")
	_ = cmd.MarkFlagRequired("name")
}

func newPartyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party",
		Short: "Play with others through the shared store",
		Long: `Create or join a party and play interactively.

` + partyHelp,
	}

	cmd.AddCommand(newPartyCreateCmd())
	cmd.AddCommand(newPartyJoinCmd())

	return cmd
}

func newPartyCreateCmd() *cobra.Command {
	var opts partyOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a party and host it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParty(cmd, opts, func(ctx context.Context, sess *party.Session) error {
				code, err := sess.CreateParty(ctx, opts.name)
				if err != nil {
					return err
				}
				if out.JSON() {
					out.Print(map[string]string{"code": string(code)})
				} else {
					out.PrintMessage(fmt.Sprintf("Party code: %s", code))
				}
				return nil
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.bots, "bots", 0, "Number of bot players to add to the party")

	return cmd
}

func newPartyJoinCmd() *cobra.Command {
	var opts partyOptions

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a party waiting in its lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParty(cmd, opts, func(ctx context.Context, sess *party.Session) error {
				if err := sess.JoinParty(ctx, opts.name, args[0]); err != nil {
					return err
				}
				if !out.JSON() {
					out.PrintMessage(fmt.Sprintf("Joined party %s", sess.Snapshot().Code))
				}
				return nil
			})
		},
	}

	opts.register(cmd)

	return cmd
}

// runParty signs in, enters a party and then plays from standard input
// until the party closes, the player leaves or input ends.
func runParty(cmd *cobra.Command, opts partyOptions, enter func(context.Context, *party.Session) error) error {
	ctx := cmd.Context()

	fc := cfg.FactoryConfig(logger)
	fc.PartyConfig.HardMode = opts.hard
	app, err := factory.New(fc)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	cred, err := cfg.LoadCredential()
	if err != nil {
		return err
	}
	id, err := app.SignIn(ctx, cred)
	if err != nil {
		return fmt.Errorf("multiplayer is unavailable, solo play still works: %w", err)
	}
	if !id.Restored {
		if err := cfg.SaveCredential(id.Credential); err != nil {
			logger.Warn("failed to save identity", slog.String("error", err.Error()))
		}
	}

	printer := newEventPrinter(out)
	var sess *party.Session
	if opts.bot {
		b := bot.New(bot.NewRandomStrategy(app.DictionaryService, app.Random), printer, app.Logger)
		sess = app.SessionFor(id, b)
		b.Attach(ctx, sess)
	} else {
		sess = app.SessionFor(id, printer)
	}
	defer sess.Close()

	if err := enter(ctx, sess); err != nil {
		return err
	}

	code := sess.Snapshot().Code
	for i := range opts.bots {
		_, botSess, err := app.NewBot(ctx, nil)
		if err != nil {
			return err
		}
		defer botSess.Close()
		if err := botSess.JoinParty(ctx, fmt.Sprintf("Bot %d", i+1), string(code)); err != nil {
			return fmt.Errorf("adding bot %d: %w", i+1, err)
		}
	}

	if !out.JSON() {
		out.PrintMessage(partyHelp)
	}
	return playLoop(ctx, cmd.InOrStdin(), sess, printer, opts.bot)
}

// playLoop feeds input lines to the session. When autoplay is set the end of
// input does not leave the party; the bot keeps playing until it closes.
func playLoop(ctx context.Context, in io.Reader, sess *party.Session, printer *eventPrinter, autoplay bool) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return leave(sess)
		case <-printer.Closed():
			return nil
		case line, ok := <-lines:
			if !ok {
				if autoplay {
					lines = nil
					continue
				}
				return leave(sess)
			}
			quit, err := handleLine(ctx, sess, line)
			if quit {
				return err
			}
			if err != nil {
				out.PrintError(err)
			}
		}
	}
}

func handleLine(ctx context.Context, sess *party.Session, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "help", "?":
		out.PrintMessage(partyHelp)
	case "status":
		out.Print(sess.Snapshot())
	case "start":
		mode := model.ModeClassic
		if arg != "" {
			mode = model.GameMode(strings.ToLower(arg))
		}
		return false, sess.StartRound(ctx, mode)
	case "word":
		return false, sess.SubmitWord(ctx, arg)
	case "again":
		return false, sess.PlayAgain(ctx)
	case "lobby":
		return false, sess.ReturnToLobby(ctx)
	case "leave", "quit", "exit":
		return true, leave(sess)
	default:
		if arg != "" {
			return false, fmt.Errorf("unknown command %q, type help for the list", cmd)
		}
		return false, guess(ctx, sess, cmd)
	}
	return false, nil
}

func guess(ctx context.Context, sess *party.Session, word string) error {
	res, err := sess.Guess(ctx, word)
	if err != nil {
		return err
	}
	out.Print(model.Guess{Word: res.Word, Result: res.States})
	if res.Finished && !out.JSON() {
		if res.Won {
			out.PrintMessage(fmt.Sprintf("Solved in %d! Waiting for the others.", res.Row+1))
		} else {
			out.PrintMessage("Out of guesses. Waiting for the others.")
		}
	}
	return nil
}

func leave(sess *party.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	err := sess.LeaveParty(ctx)
	if errors.Is(err, model.ErrNotInParty) {
		return nil
	}
	return err
}

// eventPrinter prints session events and reports when the party closes
type eventPrinter struct {
	out    *Output
	closed chan struct{}
	once   sync.Once
}

var _ party.Observer = (*eventPrinter)(nil)

func newEventPrinter(o *Output) *eventPrinter {
	return &eventPrinter{out: o, closed: make(chan struct{})}
}

// Notify implements party.Observer
func (p *eventPrinter) Notify(ev model.Event) {
	p.out.Print(ev)
	if ev.Type == model.EventPartyClosed {
		p.once.Do(func() { close(p.closed) })
	}
}

// Closed is closed once the party has gone
func (p *eventPrinter) Closed() <-chan struct{} {
	return p.closed
}
